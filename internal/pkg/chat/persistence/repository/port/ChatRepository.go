package repository

import (
	"context"
	"errors"

	chat "go-parley/internal/pkg/chat/application/domain"
)

// Sentinel errors adapters translate storage conditions into so use cases
// can branch without importing driver packages.
var (
	// ErrConversationNotFound reports that no conversation matched.
	ErrConversationNotFound = errors.New("repository: conversation not found")
	// ErrPairExists reports that another writer created the pairwise
	// conversation first (storage-level uniqueness on the unordered pair).
	// Callers should re-read instead of treating this as a failure.
	ErrPairExists = errors.New("repository: pairwise conversation already exists")
)

// ConversationSummary pairs a conversation with its most recent message.
// LastMessage is nil for a conversation that has no messages yet; its
// Content, when present, is ciphertext like everywhere else at rest.
type ConversationSummary struct {
	Conversation chat.Conversation
	LastMessage  *chat.Message
}

// ChatRepository defines persistence operations for the chat domain.
// Pairwise lookups take the normalized (low, high) user ordering so that
// (a, b) and (b, a) address the same row.
type ChatRepository interface {
	// FindPairConversation returns the conversation whose member set is
	// exactly {userLow, userHigh}. Group conversations containing both
	// users do not match. ErrConversationNotFound when absent.
	FindPairConversation(ctx context.Context, userLow, userHigh string) (*chat.Conversation, error)

	// CreatePairConversation creates the conversation together with both
	// participant rows and the pair uniqueness record in one transaction.
	// ErrPairExists when a concurrent creation won.
	CreatePairConversation(ctx context.Context, userLow, userHigh string) (*chat.Conversation, error)

	// GetConversation fetches a conversation by id.
	GetConversation(ctx context.Context, conversationID string) (*chat.Conversation, error)

	IsParticipant(ctx context.Context, conversationID string, userID string) (bool, error)
	ListParticipantIDs(ctx context.Context, conversationID string) ([]string, error)

	// ListUserConversations returns every conversation the user belongs
	// to, most recently active first, each with its latest message.
	ListUserConversations(ctx context.Context, userID string, limit int, offset int) ([]ConversationSummary, error)

	// SaveMessage persists a message (content is ciphertext) and touches
	// the conversation's updated_at in the same transaction. The returned
	// message carries the storage-assigned id and created_at.
	SaveMessage(ctx context.Context, m chat.Message) (*chat.Message, error)

	// ListMessages returns messages ordered oldest first; insertion order
	// breaks created_at ties.
	ListMessages(ctx context.Context, conversationID string, limit int, offset int) ([]chat.Message, error)
}
