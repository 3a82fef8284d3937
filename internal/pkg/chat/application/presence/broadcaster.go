// Package presence derives online/offline announcements from connection
// registry transitions and persists last-seen timestamps on disconnect.
package presence

import (
	"context"
	"encoding/json"
	"log"
	"time"

	qport "go-parley/internal/infrastructure/queue/port"
	"go-parley/internal/pkg/chat/application/task"
	users "go-parley/internal/repository/port"
)

// Hub is the slice of the realtime layer presence needs: a broadcast to
// every attached session, optionally excluding one user.
type Hub interface {
	BroadcastAll(payload []byte, excludeUserID string) int
}

// Event is the presence frame delivered to clients.
type Event struct {
	Type     string     `json:"type"`
	UserID   string     `json:"user_id"`
	IsOnline bool       `json:"is_online"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

// Broadcaster announces presence transitions. Errors on the persistence or
// delivery side are logged and never propagate to the connection handling
// that triggered them.
type Broadcaster struct {
	hub     Hub
	users   users.UserRepository
	queue   qport.Client // optional; nil means synchronous persistence only
	timeout time.Duration
}

func NewBroadcaster(hub Hub, userRepo users.UserRepository, queue qport.Client) *Broadcaster {
	return &Broadcaster{
		hub:     hub,
		users:   userRepo,
		queue:   queue,
		timeout: 5 * time.Second,
	}
}

// UserOnline announces that userID came online to every other connection.
// The subject is excluded: a client already knows it just connected.
func (b *Broadcaster) UserOnline(userID string) {
	if userID == "" {
		return
	}
	b.broadcast(Event{Type: "presence", UserID: userID, IsOnline: true}, userID)
}

// UserOffline announces that userID went offline, stamping the moment of
// disconnect, and persists that timestamp as the user's last-seen value.
// Callers must only invoke this for a registry detach that actually found
// a user; an unregistered disconnect is a no-op upstream.
func (b *Broadcaster) UserOffline(userID string) {
	if userID == "" {
		return
	}
	lastSeen := time.Now().UTC()
	b.broadcast(Event{Type: "presence", UserID: userID, IsOnline: false, LastSeen: &lastSeen}, "")
	b.persistLastSeen(userID, lastSeen)
}

func (b *Broadcaster) broadcast(ev Event, excludeUserID string) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("presence: encode event for %s: %v", ev.UserID, err)
		return
	}
	b.hub.BroadcastAll(payload, excludeUserID)
}

// persistLastSeen prefers the background queue so a slow user store cannot
// stall disconnect handling; it falls back to a direct write when the queue
// is unavailable.
func (b *Broadcaster) persistLastSeen(userID string, lastSeen time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	if b.queue != nil {
		err := task.EnqueuePersistLastSeen(ctx, b.queue, userID, lastSeen)
		if err == nil {
			return
		}
		log.Printf("presence: enqueue last-seen for %s: %v", userID, err)
	}

	if b.users == nil {
		return
	}
	if err := b.users.UpdateLastSeen(ctx, userID, lastSeen); err != nil {
		log.Printf("presence: persist last-seen for %s: %v", userID, err)
	}
}
