package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	chat "go-parley/internal/pkg/chat/application/domain"
	repository "go-parley/internal/pkg/chat/persistence/repository/port"
)

// MessageCodec is the encrypt/decrypt boundary for message content.
type MessageCodec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// RoomBroadcaster is the slice of the realtime layer the fanout needs: it
// multicasts a payload to every session subscribed to a conversation.
type RoomBroadcaster interface {
	Broadcast(conversationID string, payload []byte) int
}

// SendMessageInput carries the data needed to send a new message.
// Content is plaintext; it is never persisted as-is.
type SendMessageInput struct {
	ConversationID string
	AuthorID       string
	Content        string
}

// DeliveredMessage is the realtime frame subscribers receive for a new
// message. Content here is plaintext reconstructed from what was stored.
type DeliveredMessage struct {
	Type           string         `json:"type"`
	ConversationID string         `json:"conversation_id"`
	Message        MessagePayload `json:"message"`
}

type MessagePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	AuthorID       string    `json:"author_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// SendMessageUseCase is the per-conversation fanout path: encrypt, persist,
// decrypt the persisted ciphertext, multicast to the room. The send is
// successful once persistence succeeds; delivery is fire-and-forget.
type SendMessageUseCase struct {
	Repo  repository.ChatRepository
	Codec MessageCodec
	Rooms RoomBroadcaster
}

func NewSendMessageUseCase(repo repository.ChatRepository, codec MessageCodec, rooms RoomBroadcaster) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Codec: codec, Rooms: rooms}
}

// Execute sends a message into a conversation. The returned message carries
// plaintext content for the caller's view of what was delivered.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	if in.ConversationID == "" || in.AuthorID == "" {
		return nil, fmt.Errorf("conversationId and authorId are required")
	}

	isParticipant, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return nil, chat.ErrNotParticipant
	}

	// Validate against the plaintext before it is sealed.
	msg, err := chat.NewMessage(chat.Message{
		ConversationID: in.ConversationID,
		AuthorID:       in.AuthorID,
		Content:        in.Content,
	})
	if err != nil {
		return nil, err
	}

	ciphertext, err := uc.Codec.Encrypt(msg.Content)
	if err != nil {
		return nil, fmt.Errorf("encrypt message content: %w", err)
	}
	msg.Content = ciphertext

	saved, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// The delivery view is reconstructed from the persisted ciphertext, not
	// from the caller's input, so subscribers see exactly what is durable.
	plaintext, err := uc.Codec.Decrypt(saved.Content)
	if err != nil {
		// Persistence already succeeded, so the send stands; the broadcast
		// is skipped and the message is surfaced as undeliverable.
		log.Printf("send message: decrypt persisted content for %s: %v", saved.ID, err)
		undeliverable := *saved
		undeliverable.Content = ""
		return &undeliverable, nil
	}

	delivered := *saved
	delivered.Content = plaintext
	uc.fanout(delivered)
	return &delivered, nil
}

// fanout multicasts the message to the conversation's room. Failures here
// never affect the caller: persistence is the only success signal.
func (uc *SendMessageUseCase) fanout(msg chat.Message) {
	if uc.Rooms == nil {
		return
	}
	frame := DeliveredMessage{
		Type:           "message",
		ConversationID: msg.ConversationID,
		Message: MessagePayload{
			ID:             msg.ID,
			ConversationID: msg.ConversationID,
			AuthorID:       msg.AuthorID,
			Content:        msg.Content,
			CreatedAt:      msg.CreatedAt,
		},
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		log.Printf("send message: encode delivery frame for %s: %v", msg.ID, err)
		return
	}
	uc.Rooms.Broadcast(msg.ConversationID, payload)
}
