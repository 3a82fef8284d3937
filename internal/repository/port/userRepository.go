package repository

import (
	"context"
	"errors"
	"time"
)

// ErrUserNotFound reports an update or lookup against an unknown user.
var ErrUserNotFound = errors.New("repository: user not found")

// User is the slice of the user record this core reads and writes. The
// full account (email, credentials, profile) belongs to the auth service.
type User struct {
	ID       string
	Username string
	LastSeen *time.Time
}

// UserRepository exposes the user-store operations the realtime core
// needs: identity lookups for conversation detail and the last-seen
// write issued on disconnect.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	UpdateLastSeen(ctx context.Context, id string, lastSeen time.Time) error
}
