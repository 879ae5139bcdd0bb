package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"fingpt-backend/internal/models"
	"fingpt-backend/internal/session"
)

type promptComposer interface {
	Compose(ctx context.Context, userMessage string) []models.ChatMessage
}

type inferenceService interface {
	Generate(ctx context.Context, messages []models.ChatMessage) (string, error)
}

type transcriptArchive interface {
	Save(sessionID, role, content string)
}

type ChatHandler struct {
	sessions  *session.Manager
	composer  promptComposer
	inference inferenceService
	archive   transcriptArchive
}

func NewChatHandler(sessions *session.Manager, composer promptComposer, inference inferenceService, archive transcriptArchive) *ChatHandler {
	return &ChatHandler{
		sessions:  sessions,
		composer:  composer,
		inference: inference,
		archive:   archive,
	}
}

// Ask runs one full chat turn: append the user message, compose the prompt
// (context files plus any stock quotes), stream the reply, append it.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	sess, ok := h.sessions.Get(sessionID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	// One interaction at a time per session.
	sess.Acquire()
	defer sess.Release()

	sess.Append(models.ChatMessage{Role: models.RoleUser, Content: req.Message})
	h.archive.Save(sess.ID.String(), models.RoleUser, req.Message)

	// Composition never fails: missing context degrades to placeholders and
	// per-ticker lookup failures are inlined into the prompt.
	messages := h.composer.Compose(r.Context(), req.Message)

	reply, err := h.inference.Generate(r.Context(), messages)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResp("AI_ERROR", "Failed to get AI response", r))
		return
	}

	turn := sess.Append(models.ChatMessage{Role: models.RoleAssistant, Content: reply})
	h.archive.Save(sess.ID.String(), models.RoleAssistant, reply)

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply, Turn: turn})
}
