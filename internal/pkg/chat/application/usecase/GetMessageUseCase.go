package usecase

import (
	"context"
	"fmt"
	"log"

	chat "go-parley/internal/pkg/chat/application/domain"
	repository "go-parley/internal/pkg/chat/persistence/repository/port"
)

// GetMessageInput carries parameters to fetch messages of a conversation.
type GetMessageInput struct {
	ConversationID string
	Limit          int
	Offset         int
}

// GetMessageUseCase fetches message history oldest first, decrypting
// content at the edge. Rows that no longer decrypt (key rotation, corrupt
// ciphertext) are skipped and logged instead of failing the whole listing.
type GetMessageUseCase struct {
	Repo  repository.ChatRepository
	Codec MessageCodec
}

func NewGetMessageUseCase(repo repository.ChatRepository, codec MessageCodec) *GetMessageUseCase {
	return &GetMessageUseCase{Repo: repo, Codec: codec}
}

// Execute returns decrypted messages for the conversation honoring
// limit/offset.
func (uc *GetMessageUseCase) Execute(ctx context.Context, in GetMessageInput) ([]chat.Message, error) {
	if in.ConversationID == "" {
		return nil, fmt.Errorf("conversationId is required")
	}
	msgs, err := uc.Repo.ListMessages(ctx, in.ConversationID, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	decrypted := make([]chat.Message, 0, len(msgs))
	for _, msg := range msgs {
		plaintext, err := uc.Codec.Decrypt(msg.Content)
		if err != nil {
			log.Printf("get messages: undecryptable message %s in %s: %v", msg.ID, in.ConversationID, err)
			continue
		}
		msg.Content = plaintext
		decrypted = append(decrypted, msg)
	}
	return decrypted, nil
}
