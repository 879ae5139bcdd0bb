package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"fingpt-backend/internal/models"
	"fingpt-backend/internal/services"
	"fingpt-backend/internal/session"
)

type fakeRecognizer struct {
	text string
	err  error
}

func (f *fakeRecognizer) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	return f.text, f.err
}

type fakeSynth struct {
	calls int
	err   error
}

func (f *fakeSynth) Synthesize(_ context.Context, _, _ string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("mp3-bytes"), nil
}

func speechRouter(h *SpeechHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/speech/transcribe", h.Transcribe)
	r.Post("/sessions/{id}/speak", h.Speak)
	return r
}

func audioForm(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", "recording.wav")
	if err != nil {
		t.Fatalf("Failed to build form: %v", err)
	}
	fw.Write([]byte("riff-data"))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func postSpeak(t *testing.T, r http.Handler, sessionID string, index int) *httptest.ResponseRecorder {
	t.Helper()

	body, _ := json.Marshal(models.SpeakRequest{Index: index})
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID+"/speak", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestTranscribeSuccess(t *testing.T) {
	h := NewSpeechHandler(session.NewManager(), &fakeRecognizer{text: "what is apple trading at"}, &fakeSynth{}, t.TempDir(), "en")
	r := speechRouter(h)

	buf, contentType := audioForm(t)
	req := httptest.NewRequest(http.MethodPost, "/speech/transcribe", buf)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.TranscribeResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Text != "what is apple trading at" {
		t.Errorf("Unexpected transcript: %q", resp.Text)
	}
}

func TestTranscribeOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"unintelligible", services.ErrUnintelligible, http.StatusUnprocessableEntity, "SPEECH_UNINTELLIGIBLE"},
		{"service down", services.ErrRecognitionUnavailable, http.StatusBadGateway, "SPEECH_SERVICE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSpeechHandler(session.NewManager(), &fakeRecognizer{err: tt.err}, &fakeSynth{}, t.TempDir(), "en")
			r := speechRouter(h)

			buf, contentType := audioForm(t)
			req := httptest.NewRequest(http.MethodPost, "/speech/transcribe", buf)
			req.Header.Set("Content-Type", contentType)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("Expected %d, got %d", tt.wantCode, rr.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Error.Code != tt.wantErr {
				t.Errorf("Expected code %q, got %q", tt.wantErr, resp.Error.Code)
			}
		})
	}
}

func TestSpeakPlaysThenGone(t *testing.T) {
	manager := session.NewManager()
	sess := manager.Create()
	synth := &fakeSynth{}
	h := NewSpeechHandler(manager, &fakeRecognizer{}, synth, t.TempDir(), "en")
	r := speechRouter(h)

	rr := postSpeak(t, r, sess.ID.String(), 0)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Type"); got != "audio/mpeg" {
		t.Errorf("Expected audio/mpeg, got %q", got)
	}
	if rr.Body.String() != "mp3-bytes" {
		t.Errorf("Unexpected clip body: %q", rr.Body.String())
	}
	if synth.calls != 1 {
		t.Errorf("Expected 1 synthesis call, got %d", synth.calls)
	}

	// The clip file was removed after playback; the handle remains, so a
	// replay reports the clip as consumed without re-synthesizing.
	rr = postSpeak(t, r, sess.ID.String(), 0)
	if rr.Code != http.StatusGone {
		t.Fatalf("Expected 410 on replay, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Error.Code != "CLIP_CONSUMED" {
		t.Errorf("Expected CLIP_CONSUMED, got %q", resp.Error.Code)
	}
	if synth.calls != 1 {
		t.Errorf("Replay should not re-synthesize, got %d calls", synth.calls)
	}
}

func TestSpeakDistinctIndexes(t *testing.T) {
	manager := session.NewManager()
	sess := manager.Create()
	sess.Append(models.ChatMessage{Role: models.RoleAssistant, Content: "second reply"})
	synth := &fakeSynth{}
	h := NewSpeechHandler(manager, &fakeRecognizer{}, synth, t.TempDir(), "en")
	r := speechRouter(h)

	for _, idx := range []int{0, 1} {
		rr := postSpeak(t, r, sess.ID.String(), idx)
		if rr.Code != http.StatusOK {
			t.Fatalf("Index %d: expected 200, got %d", idx, rr.Code)
		}
	}
	if synth.calls != 2 {
		t.Errorf("Expected one synthesis per index, got %d", synth.calls)
	}
}

func TestSpeakUnknownIndex(t *testing.T) {
	manager := session.NewManager()
	sess := manager.Create()
	h := NewSpeechHandler(manager, &fakeRecognizer{}, &fakeSynth{}, t.TempDir(), "en")
	r := speechRouter(h)

	rr := postSpeak(t, r, sess.ID.String(), 7)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for out-of-range index, got %d", rr.Code)
	}
}
