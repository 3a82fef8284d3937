package adapter

import (
	"context"
	"errors"
	"time"

	port "go-parley/internal/repository/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

var _ port.UserRepository = (*PgUserRepository)(nil)

func (r *PgUserRepository) FindByID(ctx context.Context, id string) (*port.User, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgUserRepository: nil pool")
	}
	var u port.User
	err := r.pool.QueryRow(ctx,
		"SELECT id::text, username, last_seen FROM chat.app_user WHERE id = $1::uuid",
		id,
	).Scan(&u.ID, &u.Username, &u.LastSeen)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PgUserRepository) UpdateLastSeen(ctx context.Context, id string, lastSeen time.Time) error {
	if r == nil || r.pool == nil {
		return errors.New("PgUserRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx,
		"UPDATE chat.app_user SET last_seen = $2 WHERE id = $1::uuid",
		id, lastSeen,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return port.ErrUserNotFound
	}
	return nil
}
