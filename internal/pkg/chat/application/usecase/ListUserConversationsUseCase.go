package usecase

import (
	"context"
	"fmt"
	"log"

	chat "go-parley/internal/pkg/chat/application/domain"
	repository "go-parley/internal/pkg/chat/persistence/repository/port"
)

// ListUserConversationsInput carries parameters for a user's conversation
// list.
type ListUserConversationsInput struct {
	UserID string
	Limit  int
	Offset int
}

// ConversationListItem is one entry of the list: the conversation plus its
// latest message decrypted for preview. LastMessage is nil for an empty
// conversation and for a preview that no longer decrypts.
type ConversationListItem struct {
	Conversation chat.Conversation
	LastMessage  *chat.Message
}

// ListUserConversationsUseCase returns the conversations a user belongs
// to, most recently active first, with the last message decrypted at the
// edge for preview.
type ListUserConversationsUseCase struct {
	Repo  repository.ChatRepository
	Codec MessageCodec
}

func NewListUserConversationsUseCase(repo repository.ChatRepository, codec MessageCodec) *ListUserConversationsUseCase {
	return &ListUserConversationsUseCase{Repo: repo, Codec: codec}
}

func (uc *ListUserConversationsUseCase) Execute(ctx context.Context, in ListUserConversationsInput) ([]ConversationListItem, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	summaries, err := uc.Repo.ListUserConversations(ctx, in.UserID, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	items := make([]ConversationListItem, 0, len(summaries))
	for _, s := range summaries {
		item := ConversationListItem{Conversation: s.Conversation}
		if s.LastMessage != nil {
			plaintext, err := uc.Codec.Decrypt(s.LastMessage.Content)
			if err != nil {
				// The conversation still lists; only the preview is lost.
				log.Printf("list conversations: undecryptable preview %s in %s: %v", s.LastMessage.ID, s.Conversation.ID, err)
			} else {
				preview := *s.LastMessage
				preview.Content = plaintext
				item.LastMessage = &preview
			}
		}
		items = append(items, item)
	}
	return items, nil
}
