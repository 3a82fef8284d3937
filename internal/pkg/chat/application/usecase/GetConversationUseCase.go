package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	chat "go-parley/internal/pkg/chat/application/domain"
	repository "go-parley/internal/pkg/chat/persistence/repository/port"
	users "go-parley/internal/repository/port"
)

// GetConversationInput wraps the conversation identifier for the detail view.
type GetConversationInput struct {
	ConversationID string
}

// ConversationMember is a participant enriched with user-store fields.
type ConversationMember struct {
	ID       string
	Username string
	LastSeen *time.Time
}

// ConversationDetail is a conversation with its resolved member list.
type ConversationDetail struct {
	Conversation chat.Conversation
	Members      []ConversationMember
}

// ErrConversationNotFound is the use-case-level not-found for the detail view.
var ErrConversationNotFound = errors.New("conversation not found")

// GetConversationUseCase loads a conversation and resolves its members
// against the user store. A member whose user record cannot be loaded is
// returned with its id only rather than failing the whole view.
type GetConversationUseCase struct {
	Repo  repository.ChatRepository
	Users users.UserRepository
}

func NewGetConversationUseCase(repo repository.ChatRepository, userRepo users.UserRepository) *GetConversationUseCase {
	return &GetConversationUseCase{Repo: repo, Users: userRepo}
}

func (uc *GetConversationUseCase) Execute(ctx context.Context, in GetConversationInput) (*ConversationDetail, error) {
	if in.ConversationID == "" {
		return nil, fmt.Errorf("conversation_id is required")
	}

	conv, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if errors.Is(err, repository.ErrConversationNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	ids, err := uc.Repo.ListParticipantIDs(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	detail := &ConversationDetail{Conversation: *conv}
	for _, id := range ids {
		member := ConversationMember{ID: id}
		if uc.Users != nil {
			if u, err := uc.Users.FindByID(ctx, id); err == nil {
				member.Username = u.Username
				member.LastSeen = u.LastSeen
			} else if !errors.Is(err, users.ErrUserNotFound) {
				log.Printf("get conversation: load member %s: %v", id, err)
			}
		}
		detail.Members = append(detail.Members, member)
	}
	return detail, nil
}
