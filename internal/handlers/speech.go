package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fingpt-backend/internal/models"
	"fingpt-backend/internal/services"
	"fingpt-backend/internal/session"
)

type speechRecognizer interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

type speechSynthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

type SpeechHandler struct {
	sessions   *session.Manager
	recognizer speechRecognizer
	synth      speechSynthesizer
	clipDir    string
	language   string
}

func NewSpeechHandler(sessions *session.Manager, recognizer speechRecognizer, synth speechSynthesizer, clipDir, language string) *SpeechHandler {
	return &SpeechHandler{
		sessions:   sessions,
		recognizer: recognizer,
		synth:      synth,
		clipDir:    clipDir,
		language:   language,
	}
}

// Transcribe converts an uploaded audio recording to text. It never touches
// the session log: the client decides whether to send the text as a chat
// message, so a failed recognition leaves the conversation unchanged.
func (h *SpeechHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 25*1024*1024)

	if err := r.ParseMultipartForm(25 * 1024 * 1024); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart body", r))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Audio file is required", r))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Failed to read audio file", r))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/wav"
	}

	text, err := h.recognizer.Transcribe(r.Context(), audio, mimeType)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnintelligible):
			writeJSON(w, http.StatusUnprocessableEntity,
				errorResp("SPEECH_UNINTELLIGIBLE", "Sorry, I did not understand that. Please try again.", r))
		case errors.Is(err, services.ErrRecognitionUnavailable):
			writeJSON(w, http.StatusBadGateway,
				errorResp("SPEECH_SERVICE_ERROR", "Speech recognition service is unavailable", r))
		default:
			writeJSON(w, http.StatusBadGateway,
				errorResp("SPEECH_SERVICE_ERROR", "Speech recognition failed", r))
		}
		return
	}

	writeJSON(w, http.StatusOK, models.TranscribeResponse{Text: text})
}

// Speak synthesizes the message at the requested index and streams the clip
// back. Clips are generated at most once per index: repeated requests before
// playback return the same file, and a clip that was already played is gone
// for good (410).
func (h *SpeechHandler) Speak(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}
	sess, ok := h.sessions.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	var req models.SpeakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	sess.Acquire()
	defer sess.Release()

	msg, ok := sess.Message(req.Index)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No message at that index", r))
		return
	}

	path, exists := sess.ClipPath(req.Index)
	if !exists {
		audio, err := h.synth.Synthesize(r.Context(), msg.Content, h.language)
		if err != nil {
			writeJSON(w, http.StatusBadGateway, errorResp("TTS_ERROR", "Failed to synthesize speech", r))
			return
		}

		if err := os.MkdirAll(h.clipDir, 0o755); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store audio clip", r))
			return
		}

		path = filepath.Join(h.clipDir, fmt.Sprintf("%s-response%d.mp3", sess.ID, req.Index))
		if err := os.WriteFile(path, audio, 0o644); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store audio clip", r))
			return
		}
		sess.SetClipPath(req.Index, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// The handle stays registered but the file was consumed by an
		// earlier playback.
		writeJSON(w, http.StatusGone, errorResp("CLIP_CONSUMED", "Audio clip was already played", r))
		return
	}
	os.Remove(path)

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
