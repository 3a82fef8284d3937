package chat

import (
	"errors"
	"testing"
	"time"
)

func TestNewMessageValidation(t *testing.T) {
	t.Run("requires conversation and author", func(t *testing.T) {
		if _, err := NewMessage(Message{AuthorID: "u1", Content: "hi"}); !errors.Is(err, ErrInvalidConversation) {
			t.Fatalf("missing conversation: got %v", err)
		}
		if _, err := NewMessage(Message{ConversationID: "c1", Content: "hi"}); !errors.Is(err, ErrInvalidConversation) {
			t.Fatalf("missing author: got %v", err)
		}
	})

	t.Run("rejects blank content", func(t *testing.T) {
		if _, err := NewMessage(Message{ConversationID: "c1", AuthorID: "u1", Content: "   "}); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("blank content: got %v", err)
		}
	})

	t.Run("defaults created at", func(t *testing.T) {
		msg, err := NewMessage(Message{ConversationID: "c1", AuthorID: "u1", Content: "hi"})
		if err != nil {
			t.Fatalf("NewMessage: %v", err)
		}
		if msg.CreatedAt.IsZero() {
			t.Fatal("CreatedAt was not defaulted")
		}
	})

	t.Run("keeps explicit created at", func(t *testing.T) {
		at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		msg, err := NewMessage(Message{ConversationID: "c1", AuthorID: "u1", Content: "hi", CreatedAt: at})
		if err != nil {
			t.Fatalf("NewMessage: %v", err)
		}
		if !msg.CreatedAt.Equal(at) {
			t.Fatalf("CreatedAt = %v, want %v", msg.CreatedAt, at)
		}
	})
}
