package chat

import "errors"

// Domain-level errors for chat behaviors.
var (
	ErrInvalidConversation = errors.New("chat: conversation/message mismatch")
	ErrNotParticipant      = errors.New("chat: sender is not a participant in the conversation")
	ErrEmptyMessage        = errors.New("chat: empty message body")
	ErrSelfConversation    = errors.New("chat: a conversation requires two distinct users")
)
