package session

import (
	"sync"

	"github.com/google/uuid"

	"fingpt-backend/internal/models"
)

// Greeting seeds every new (or reset) conversation.
const Greeting = "How may I assist you today?"

// Session holds one interactive conversation: the ordered message log plus
// the audio-clip registry keyed by message index. All per-conversation state
// lives here so that multiple sessions can coexist in one process.
type Session struct {
	ID uuid.UUID

	mu       sync.Mutex
	turnMu   sync.Mutex
	messages []models.ChatMessage
	clips    map[int]string
}

func newSession() *Session {
	return &Session{
		ID:       uuid.New(),
		messages: []models.ChatMessage{{Role: models.RoleAssistant, Content: Greeting}},
		clips:    make(map[int]string),
	}
}

// Acquire serializes interactions on the session. Handlers hold it for the
// duration of one user action, preserving the one-handler-at-a-time model.
func (s *Session) Acquire() { s.turnMu.Lock() }

// Release ends the current interaction.
func (s *Session) Release() { s.turnMu.Unlock() }

// Append adds a message to the end of the log and returns its index.
func (s *Session) Append(msg models.ChatMessage) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return len(s.messages) - 1
}

// Messages returns a copy of the message log in chronological order.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Message returns the message at index, if it exists.
func (s *Session) Message(index int) (models.ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.messages) {
		return models.ChatMessage{}, false
	}
	return s.messages[index], true
}

// Turns counts the user messages submitted so far.
func (s *Session) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.Role == models.RoleUser {
			n++
		}
	}
	return n
}

// Reset atomically replaces the whole log with a fresh greeting. The clip
// registry is left alone: registered clips belong to playback state, not to
// the conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = []models.ChatMessage{{Role: models.RoleAssistant, Content: Greeting}}
}

// ClipPath returns the registered audio clip handle for a slot index.
func (s *Session) ClipPath(index int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.clips[index]
	return p, ok
}

// SetClipPath registers the clip handle for a slot index. The handle persists
// even after the backing file is deleted post-playback.
func (s *Session) SetClipPath(index int, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clips[index] = path
}

// Manager owns all live sessions for the process.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[uuid.UUID]*Session)}
}

// Create starts a new session seeded with the greeting message.
func (m *Manager) Create() *Session {
	s := newSession()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get looks up a session by ID.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}
