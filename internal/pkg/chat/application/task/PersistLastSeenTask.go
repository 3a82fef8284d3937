package task

import (
	"context"
	"encoding/json"
	"time"

	qport "go-parley/internal/infrastructure/queue/port"
	userAdapter "go-parley/internal/repository/adapter"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PersistLastSeenTaskType is the queue task name for writing a user's
// last-seen timestamp after disconnect.
const PersistLastSeenTaskType = "presence:persist_last_seen"

// PersistLastSeenPayload is the JSON payload transported via the queue.
// Kept decoupled from domain types to avoid tight coupling with JSON tags.
type PersistLastSeenPayload struct {
	UserID   string    `json:"userId"`
	LastSeen time.Time `json:"lastSeen"`
}

// EnqueuePersistLastSeen schedules the last-seen write on the chat queue.
func EnqueuePersistLastSeen(ctx context.Context, client qport.Client, userID string, lastSeen time.Time) error {
	payload, err := json.Marshal(PersistLastSeenPayload{UserID: userID, LastSeen: lastSeen})
	if err != nil {
		return err
	}
	_, err = client.Enqueue(ctx, qport.Task{Type: PersistLastSeenTaskType, Payload: payload}, qport.EnqueueOption{
		Queue:    "chat",
		MaxRetry: 3,
	})
	return err
}

// RegisterPersistLastSeenTask binds the task handler to the provided server.
// The handler writes the timestamp through the user repository.
func RegisterPersistLastSeenTask(srv qport.Server, pool *pgxpool.Pool) {
	srv.Register(PersistLastSeenTaskType, func(ctx context.Context, t qport.Task) error {
		var p PersistLastSeenPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}

		repo := userAdapter.NewPgUserRepository(pool)

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		return repo.UpdateLastSeen(ctx, p.UserID, p.LastSeen)
	})
}
