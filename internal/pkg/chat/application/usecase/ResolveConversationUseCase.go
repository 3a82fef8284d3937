package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	cport "go-parley/internal/infrastructure/cache/port"
	chat "go-parley/internal/pkg/chat/application/domain"
	repository "go-parley/internal/pkg/chat/persistence/repository/port"

	"github.com/google/uuid"
)

// ResolveConversationInput carries the unordered user pair to resolve.
type ResolveConversationInput struct {
	UserA string
	UserB string
}

// ResolveConversationUseCase finds or creates the canonical two-member
// conversation between a pair of users. The pair is normalized before any
// storage access, so Execute(a, b) and Execute(b, a) are the same request.
// Concurrent first contact is settled by the storage layer's unique index
// on the normalized pair: the losing creator re-reads the winner's row.
type ResolveConversationUseCase struct {
	Repo     repository.ChatRepository
	Cache    cport.Cache // optional pair -> conversation id read-through cache
	CacheTTL time.Duration
}

func NewResolveConversationUseCase(repo repository.ChatRepository, cache cport.Cache) *ResolveConversationUseCase {
	return &ResolveConversationUseCase{Repo: repo, Cache: cache, CacheTTL: 15 * time.Minute}
}

// Execute returns the pairwise conversation for the two users, creating it
// when absent.
func (uc *ResolveConversationUseCase) Execute(ctx context.Context, in ResolveConversationInput) (*chat.Conversation, error) {
	userA, err := uuid.Parse(strings.TrimSpace(in.UserA))
	if err != nil {
		return nil, fmt.Errorf("user_a must be a valid uuid")
	}
	userB, err := uuid.Parse(strings.TrimSpace(in.UserB))
	if err != nil {
		return nil, fmt.Errorf("user_b must be a valid uuid")
	}
	if userA == userB {
		return nil, chat.ErrSelfConversation
	}

	low, high := normalizePair(userA, userB)

	if conv := uc.cachedConversation(ctx, low, high); conv != nil {
		return conv, nil
	}

	conv, err := uc.Repo.FindPairConversation(ctx, low, high)
	if errors.Is(err, repository.ErrConversationNotFound) {
		conv, err = uc.Repo.CreatePairConversation(ctx, low, high)
		if errors.Is(err, repository.ErrPairExists) {
			// Lost the creation race; the winner's conversation is the
			// canonical one.
			conv, err = uc.Repo.FindPairConversation(ctx, low, high)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.rememberConversation(ctx, low, high, conv.ID)
	return conv, nil
}

func (uc *ResolveConversationUseCase) cachedConversation(ctx context.Context, low, high string) *chat.Conversation {
	if uc.Cache == nil {
		return nil
	}
	id, err := uc.Cache.Get(ctx, pairCacheKey(low, high))
	if err != nil || id == "" {
		return nil
	}
	conv, err := uc.Repo.GetConversation(ctx, id)
	if err != nil {
		// Stale cache entry; fall through to the storage lookup.
		return nil
	}
	return conv
}

func (uc *ResolveConversationUseCase) rememberConversation(ctx context.Context, low, high, conversationID string) {
	if uc.Cache == nil {
		return
	}
	if err := uc.Cache.Set(ctx, pairCacheKey(low, high), conversationID, uc.CacheTTL); err != nil {
		log.Printf("resolve conversation: cache set failed: %v", err)
	}
}

func pairCacheKey(low, high string) string {
	return "chat:pair:" + low + ":" + high
}

// normalizePair orders the two user ids by uuid byte value, the same
// ordering the storage layer's uuid columns use, and renders them in
// canonical form so casing variants of one id cannot produce two distinct
// pairs.
func normalizePair(a, b uuid.UUID) (low string, high string) {
	if bytes.Compare(a[:], b[:]) < 0 {
		return a.String(), b.String()
	}
	return b.String(), a.String()
}
