package chat

import (
	"strings"
	"time"
)

// Message is an immutable log entry in a conversation. Content holds
// ciphertext everywhere at rest; plaintext appears only between the
// codec and the delivery boundary.
type Message struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	AuthorID       string    `db:"author_id"`
	Content        string    `db:"content"`
	CreatedAt      time.Time `db:"created_at"`
}

// NewMessage validates and normalizes a message prior to persistence.
func NewMessage(m Message) (*Message, error) {
	if m.ConversationID == "" || m.AuthorID == "" {
		return nil, ErrInvalidConversation
	}

	if strings.TrimSpace(m.Content) == "" {
		return nil, ErrEmptyMessage
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	return &m, nil
}
