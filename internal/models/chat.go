package models

import "github.com/google/uuid"

// Message roles, matching the roles sent to the chat-completion endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse is the reply from the assistant. Turn is the index of the
// assistant message in the session log, usable as the speak slot index.
type ChatResponse struct {
	Reply string `json:"reply"`
	Turn  int    `json:"turn"`
}

// SessionResponse describes a session and its current message log.
type SessionResponse struct {
	SessionID uuid.UUID     `json:"session_id"`
	Messages  []ChatMessage `json:"messages"`
}

// SpeakRequest selects which message of a session to synthesize.
type SpeakRequest struct {
	Index int `json:"index"`
}

// TranscribeResponse carries recognized speech back to the client.
type TranscribeResponse struct {
	Text string `json:"text"`
}

// TranscriptEntry is one archived message row.
type TranscriptEntry struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}
