package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fingpt-backend/internal/archive"
	"fingpt-backend/internal/models"
	"fingpt-backend/internal/session"
)

type transcriptReader interface {
	List(sessionID string) []archive.Entry
}

type SessionHandler struct {
	sessions    *session.Manager
	transcripts transcriptReader
}

func NewSessionHandler(sessions *session.Manager, transcripts transcriptReader) *SessionHandler {
	return &SessionHandler{sessions: sessions, transcripts: transcripts}
}

// Create starts a new session seeded with the assistant greeting.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()
	writeJSON(w, http.StatusCreated, models.SessionResponse{SessionID: sess.ID, Messages: sess.Messages()})
}

// Messages returns the session's message log in chronological order.
func (h *SessionHandler) Messages(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, models.SessionResponse{SessionID: sess.ID, Messages: sess.Messages()})
}

// Reset clears the conversation back to the single greeting message.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	sess.Acquire()
	defer sess.Release()

	sess.Reset()
	writeJSON(w, http.StatusOK, models.SessionResponse{SessionID: sess.ID, Messages: sess.Messages()})
}

// Transcript returns the archived message log, which survives resets.
func (h *SessionHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	entries := h.transcripts.List(sess.ID.String())
	out := make([]models.TranscriptEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.TranscriptEntry{
			Role:      e.Role,
			Content:   e.Content,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"session_id": sess.ID, "transcript": out})
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return nil, false
	}
	sess, ok := h.sessions.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return nil, false
	}
	return sess, true
}
