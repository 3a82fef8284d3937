package usecase

import (
	"context"
	"testing"
	"time"

	chat "go-parley/internal/pkg/chat/application/domain"
)

func TestListUserConversationsOrdersByActivity(t *testing.T) {
	repo := newMemChatRepo()
	repo.seedConversation("c-old", "alice", "bob")
	repo.seedConversation("c-new", "alice", "carol")
	sender := NewSendMessageUseCase(repo, reversibleCodec{}, nil)
	ctx := context.Background()

	if _, err := sender.Execute(ctx, SendMessageInput{ConversationID: "c-old", AuthorID: "alice", Content: "earlier"}); err != nil {
		t.Fatalf("seed send: %v", err)
	}
	// A later message makes c-new the most recently active conversation.
	repo.mu.Lock()
	repo.conversations["c-new"].UpdatedAt = repo.conversations["c-old"].UpdatedAt.Add(time.Minute)
	repo.messages["c-new"] = append(repo.messages["c-new"], chat.Message{
		ID: "m-new", ConversationID: "c-new", AuthorID: "carol",
		Content:   "sealed:latest",
		CreatedAt: repo.conversations["c-new"].UpdatedAt,
	})
	repo.mu.Unlock()

	uc := NewListUserConversationsUseCase(repo, reversibleCodec{})
	items, err := uc.Execute(ctx, ListUserConversationsInput{UserID: "alice"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("listed %d conversations, want 2", len(items))
	}
	if items[0].Conversation.ID != "c-new" || items[1].Conversation.ID != "c-old" {
		t.Fatalf("order = [%s, %s], want most recent activity first", items[0].Conversation.ID, items[1].Conversation.ID)
	}
	if items[0].LastMessage == nil || items[0].LastMessage.Content != "latest" {
		t.Fatalf("preview = %+v, want decrypted latest message", items[0].LastMessage)
	}
	if items[1].LastMessage == nil || items[1].LastMessage.Content != "earlier" {
		t.Fatalf("preview = %+v, want decrypted earlier message", items[1].LastMessage)
	}

	// Bob only belongs to one of them.
	bobItems, err := uc.Execute(ctx, ListUserConversationsInput{UserID: "bob"})
	if err != nil {
		t.Fatalf("Execute for bob: %v", err)
	}
	if len(bobItems) != 1 || bobItems[0].Conversation.ID != "c-old" {
		t.Fatalf("bob's list = %+v, want only c-old", bobItems)
	}
}

func TestListUserConversationsDropsUndecryptablePreview(t *testing.T) {
	repo := newMemChatRepo()
	repo.seedConversation("c1", "alice", "bob")
	repo.mu.Lock()
	repo.messages["c1"] = append(repo.messages["c1"], chat.Message{
		ID: "poisoned", ConversationID: "c1", AuthorID: "bob", Content: "garbage",
	})
	repo.mu.Unlock()

	uc := NewListUserConversationsUseCase(repo, reversibleCodec{})
	items, err := uc.Execute(context.Background(), ListUserConversationsInput{UserID: "alice"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("listed %d conversations, want 1", len(items))
	}
	if items[0].LastMessage != nil {
		t.Fatalf("preview = %+v, want nil for undecryptable content", items[0].LastMessage)
	}
}

func TestListUserConversationsEmptyForStranger(t *testing.T) {
	repo := newMemChatRepo()
	repo.seedConversation("c1", "alice", "bob")

	uc := NewListUserConversationsUseCase(repo, reversibleCodec{})
	items, err := uc.Execute(context.Background(), ListUserConversationsInput{UserID: "mallory"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("stranger sees %d conversations, want 0", len(items))
	}
}
