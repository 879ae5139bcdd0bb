package session

import (
	"testing"

	"fingpt-backend/internal/models"
)

func TestNewSessionSeedsGreeting(t *testing.T) {
	m := NewManager()
	s := m.Create()

	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 seeded message, got %d", len(msgs))
	}
	if msgs[0].Role != models.RoleAssistant {
		t.Errorf("Expected assistant role, got %q", msgs[0].Role)
	}
	if msgs[0].Content != Greeting {
		t.Errorf("Expected greeting %q, got %q", Greeting, msgs[0].Content)
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	s := NewManager().Create()

	i1 := s.Append(models.ChatMessage{Role: models.RoleUser, Content: "first"})
	i2 := s.Append(models.ChatMessage{Role: models.RoleAssistant, Content: "second"})

	if i1 != 1 || i2 != 2 {
		t.Errorf("Expected indices 1 and 2, got %d and %d", i1, i2)
	}

	msgs := s.Messages()
	if msgs[1].Content != "first" || msgs[2].Content != "second" {
		t.Errorf("Messages out of order: %+v", msgs)
	}
}

func TestResetRestoresSingleGreeting(t *testing.T) {
	s := NewManager().Create()
	s.Append(models.ChatMessage{Role: models.RoleUser, Content: "hello"})
	s.Append(models.ChatMessage{Role: models.RoleAssistant, Content: "hi"})

	s.Reset()

	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("Expected exactly 1 message after reset, got %d", len(msgs))
	}
	if msgs[0].Role != models.RoleAssistant || msgs[0].Content != Greeting {
		t.Errorf("Expected greeting after reset, got %+v", msgs[0])
	}
}

func TestTurnsCountsUserMessagesOnly(t *testing.T) {
	s := NewManager().Create()
	if s.Turns() != 0 {
		t.Errorf("Expected 0 turns initially, got %d", s.Turns())
	}

	s.Append(models.ChatMessage{Role: models.RoleUser, Content: "q"})
	s.Append(models.ChatMessage{Role: models.RoleAssistant, Content: "a"})

	if s.Turns() != 1 {
		t.Errorf("Expected 1 turn, got %d", s.Turns())
	}
}

func TestClipRegistry(t *testing.T) {
	s := NewManager().Create()

	if _, ok := s.ClipPath(0); ok {
		t.Error("Expected no clip registered for index 0")
	}

	s.SetClipPath(0, "clips/response0.mp3")

	p, ok := s.ClipPath(0)
	if !ok || p != "clips/response0.mp3" {
		t.Errorf("Expected registered clip path, got %q (ok=%v)", p, ok)
	}

	// Handle survives reset by design.
	s.Reset()
	if _, ok := s.ClipPath(0); !ok {
		t.Error("Expected clip handle to survive reset")
	}
}

func TestManagerLookup(t *testing.T) {
	m := NewManager()
	s := m.Create()

	got, ok := m.Get(s.ID)
	if !ok || got != s {
		t.Error("Expected to retrieve the created session")
	}

	if _, ok := m.Get(NewManager().Create().ID); ok {
		t.Error("Expected lookup miss for a foreign session ID")
	}
}
