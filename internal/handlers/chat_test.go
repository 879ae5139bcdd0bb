package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fingpt-backend/internal/models"
	"fingpt-backend/internal/session"
)

type fakeComposer struct {
	lastMessage string
}

func (f *fakeComposer) Compose(_ context.Context, userMessage string) []models.ChatMessage {
	f.lastMessage = userMessage
	return []models.ChatMessage{
		{Role: models.RoleSystem, Content: "persona"},
		{Role: models.RoleUser, Content: userMessage},
	}
}

type fakeInference struct {
	reply string
	err   error
	calls int
}

func (f *fakeInference) Generate(_ context.Context, _ []models.ChatMessage) (string, error) {
	f.calls++
	return f.reply, f.err
}

type fakeArchive struct {
	saved []string
}

func (f *fakeArchive) Save(_, role, content string) {
	f.saved = append(f.saved, role+": "+content)
}

func postChat(t *testing.T, h *ChatHandler, sessionID, message string) *httptest.ResponseRecorder {
	t.Helper()

	body, _ := json.Marshal(models.ChatRequest{SessionID: sessionID, Message: message})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Ask(rr, req)
	return rr
}

func TestChatTurn(t *testing.T) {
	manager := session.NewManager()
	sess := manager.Create()
	inference := &fakeInference{reply: "Markets closed mixed today."}
	arch := &fakeArchive{}
	h := NewChatHandler(manager, &fakeComposer{}, inference, arch)

	rr := postChat(t, h, sess.ID.String(), "How did the market do?")

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Reply != "Markets closed mixed today." {
		t.Errorf("Unexpected reply: %q", resp.Reply)
	}
	// Greeting is index 0, user message 1, assistant reply 2.
	if resp.Turn != 2 {
		t.Errorf("Expected turn index 2, got %d", resp.Turn)
	}

	msgs := sess.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Expected 3 messages in session, got %d", len(msgs))
	}
	if msgs[1].Role != models.RoleUser || msgs[2].Role != models.RoleAssistant {
		t.Errorf("Unexpected roles: %q, %q", msgs[1].Role, msgs[2].Role)
	}

	if len(arch.saved) != 2 {
		t.Errorf("Expected 2 archived entries, got %d", len(arch.saved))
	}
}

func TestChatEmptyMessage(t *testing.T) {
	manager := session.NewManager()
	sess := manager.Create()
	h := NewChatHandler(manager, &fakeComposer{}, &fakeInference{}, &fakeArchive{})

	rr := postChat(t, h, sess.ID.String(), "   ")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty message, got %d", rr.Code)
	}
}

func TestChatUnknownSession(t *testing.T) {
	h := NewChatHandler(session.NewManager(), &fakeComposer{}, &fakeInference{}, &fakeArchive{})

	rr := postChat(t, h, "0b51974a-9816-4b8e-9482-713b51f55077", "hello")

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %d", rr.Code)
	}
}

func TestChatInferenceFailure(t *testing.T) {
	manager := session.NewManager()
	sess := manager.Create()
	inference := &fakeInference{err: errors.New("upstream down")}
	h := NewChatHandler(manager, &fakeComposer{}, inference, &fakeArchive{})

	rr := postChat(t, h, sess.ID.String(), "hello")

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Error.Code != "AI_ERROR" {
		t.Errorf("Expected AI_ERROR code, got %q", resp.Error.Code)
	}

	// The user message stays in the log even when inference fails.
	msgs := sess.Messages()
	if len(msgs) != 2 || msgs[1].Role != models.RoleUser {
		t.Errorf("Expected user message to remain appended, got %d messages", len(msgs))
	}
}
