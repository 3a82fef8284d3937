package adapter

import (
	"context"
	"errors"
	"time"

	chat "go-parley/internal/pkg/chat/application/domain"
	port "go-parley/internal/pkg/chat/persistence/repository/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

var _ port.ChatRepository = (*PgChatRepository)(nil)

func (r *PgChatRepository) FindPairConversation(ctx context.Context, userLow, userHigh string) (*chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var conv chat.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT c.id::text, c.created_at, c.updated_at
		FROM chat.conversation_pair p
		JOIN chat.conversation c ON c.id = p.conversation_id
		WHERE p.user_low = $1::uuid AND p.user_high = $2::uuid
	`, userLow, userHigh).Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *PgChatRepository) CreatePairConversation(ctx context.Context, userLow, userHigh string) (*chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	var conv chat.Conversation
	err = tx.QueryRow(ctx,
		"INSERT INTO chat.conversation (created_at, updated_at) VALUES ($1, $1) RETURNING id::text, created_at, updated_at",
		now,
	).Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return nil, err
	}

	// The unique index on (user_low, user_high) is what closes the
	// find-or-create race: the loser of two concurrent creations lands
	// here with a 23505 and must re-read.
	_, err = tx.Exec(ctx,
		"INSERT INTO chat.conversation_pair (conversation_id, user_low, user_high) VALUES ($1::uuid, $2::uuid, $3::uuid)",
		conv.ID, userLow, userHigh,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, port.ErrPairExists
		}
		return nil, err
	}

	for _, uid := range []string{userLow, userHigh} {
		if _, err := tx.Exec(ctx,
			"INSERT INTO chat.participant (conversation_id, user_id, role) VALUES ($1::uuid, $2::uuid, $3)",
			conv.ID, uid, chat.ParticipantRoleMember,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *PgChatRepository) GetConversation(ctx context.Context, conversationID string) (*chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var conv chat.Conversation
	err := r.pool.QueryRow(ctx,
		"SELECT id::text, created_at, updated_at FROM chat.conversation WHERE id = $1::uuid",
		conversationID,
	).Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *PgChatRepository) IsParticipant(ctx context.Context, conversationID string, userID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgChatRepository: nil pool")
	}
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM chat.participant
			WHERE conversation_id = $1::uuid AND user_id = $2::uuid
		)
	`, conversationID, userID).Scan(&exists)
	return exists, err
}

func (r *PgChatRepository) ListParticipantIDs(ctx context.Context, conversationID string) ([]string, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx,
		"SELECT user_id::text FROM chat.participant WHERE conversation_id = $1::uuid ORDER BY user_id",
		conversationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PgChatRepository) ListUserConversations(ctx context.Context, userID string, limit int, offset int) ([]port.ConversationSummary, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, c.created_at, c.updated_at,
		       m.id::text, m.author_id::text, m.content, m.created_at
		FROM chat.participant p
		JOIN chat.conversation c ON c.id = p.conversation_id
		LEFT JOIN LATERAL (
			SELECT id, author_id, content, created_at
			FROM chat.message
			WHERE conversation_id = c.id
			ORDER BY created_at DESC, seq DESC
			LIMIT 1
		) m ON true
		WHERE p.user_id = $1::uuid
		ORDER BY c.updated_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []port.ConversationSummary
	for rows.Next() {
		var s port.ConversationSummary
		var msgID, msgAuthor, msgContent *string
		var msgCreated *time.Time
		if err := rows.Scan(
			&s.Conversation.ID, &s.Conversation.CreatedAt, &s.Conversation.UpdatedAt,
			&msgID, &msgAuthor, &msgContent, &msgCreated,
		); err != nil {
			return nil, err
		}
		if msgID != nil {
			s.LastMessage = &chat.Message{
				ID:             *msgID,
				ConversationID: s.Conversation.ID,
				AuthorID:       *msgAuthor,
				Content:        *msgContent,
				CreatedAt:      *msgCreated,
			}
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (*chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	saved := m
	err = tx.QueryRow(ctx, `
		INSERT INTO chat.message (conversation_id, author_id, content, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4)
		RETURNING id::text, created_at
	`, m.ConversationID, m.AuthorID, m.Content, m.CreatedAt).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		"UPDATE chat.conversation SET updated_at = $2 WHERE id = $1::uuid",
		m.ConversationID, saved.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *PgChatRepository) ListMessages(ctx context.Context, conversationID string, limit int, offset int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, conversation_id::text, author_id::text, content, created_at
		FROM chat.message
		WHERE conversation_id = $1::uuid
		ORDER BY created_at ASC, seq ASC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var msg chat.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.AuthorID, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}
