package chat

import "time"

// Conversation represents a 1:1 thread (future-proof for groups).
// UpdatedAt is touched whenever a message lands so listings can order
// by recent activity.
type Conversation struct {
	ID        string    `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
