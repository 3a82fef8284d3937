package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	chat "go-parley/internal/pkg/chat/application/domain"
	repository "go-parley/internal/pkg/chat/persistence/repository/port"
)

// memChatRepo is an in-memory ChatRepository that mirrors the storage
// semantics the pgx adapter relies on, including the unique constraint on
// the unordered pair.
type memChatRepo struct {
	mu            sync.Mutex
	conversations map[string]*chat.Conversation
	pairs         map[string]string          // "low|high" -> conversation id
	participants  map[string]map[string]bool // conversation id -> user id set
	messages      map[string][]chat.Message
	nextID        int

	failSave bool
	findGate func() // invoked between find and create to widen race windows
}

func newMemChatRepo() *memChatRepo {
	return &memChatRepo{
		conversations: make(map[string]*chat.Conversation),
		pairs:         make(map[string]string),
		participants:  make(map[string]map[string]bool),
		messages:      make(map[string][]chat.Message),
	}
}

var _ repository.ChatRepository = (*memChatRepo)(nil)

func pairKey(low, high string) string { return low + "|" + high }

func (r *memChatRepo) FindPairConversation(_ context.Context, userLow, userHigh string) (*chat.Conversation, error) {
	r.mu.Lock()
	id, ok := r.pairs[pairKey(userLow, userHigh)]
	var conv chat.Conversation
	if ok {
		conv = *r.conversations[id]
	}
	r.mu.Unlock()

	if r.findGate != nil {
		r.findGate()
	}
	if !ok {
		return nil, repository.ErrConversationNotFound
	}
	return &conv, nil
}

func (r *memChatRepo) CreatePairConversation(_ context.Context, userLow, userHigh string) (*chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(userLow, userHigh)
	if _, exists := r.pairs[key]; exists {
		return nil, repository.ErrPairExists
	}

	r.nextID++
	now := time.Now().UTC()
	conv := &chat.Conversation{ID: fmt.Sprintf("conv-%d", r.nextID), CreatedAt: now, UpdatedAt: now}
	r.conversations[conv.ID] = conv
	r.pairs[key] = conv.ID
	r.participants[conv.ID] = map[string]bool{userLow: true, userHigh: true}
	copied := *conv
	return &copied, nil
}

func (r *memChatRepo) GetConversation(_ context.Context, conversationID string) (*chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.conversations[conversationID]
	if !ok {
		return nil, repository.ErrConversationNotFound
	}
	copied := *conv
	return &copied, nil
}

func (r *memChatRepo) IsParticipant(_ context.Context, conversationID string, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.participants[conversationID][userID], nil
}

func (r *memChatRepo) ListParticipantIDs(_ context.Context, conversationID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id := range r.participants[conversationID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *memChatRepo) ListUserConversations(_ context.Context, userID string, limit int, offset int) ([]repository.ConversationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.ConversationSummary
	for id, set := range r.participants {
		if !set[userID] {
			continue
		}
		s := repository.ConversationSummary{Conversation: *r.conversations[id]}
		if msgs := r.messages[id]; len(msgs) > 0 {
			last := msgs[len(msgs)-1]
			s.LastMessage = &last
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Conversation.UpdatedAt.After(out[j].Conversation.UpdatedAt)
	})
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memChatRepo) SaveMessage(_ context.Context, m chat.Message) (*chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave {
		return nil, errors.New("storage down")
	}
	r.nextID++
	saved := m
	saved.ID = fmt.Sprintf("msg-%d", r.nextID)
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], saved)
	if conv, ok := r.conversations[m.ConversationID]; ok {
		conv.UpdatedAt = saved.CreatedAt
	}
	return &saved, nil
}

func (r *memChatRepo) ListMessages(_ context.Context, conversationID string, limit int, offset int) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.messages[conversationID]
	if offset > len(msgs) {
		offset = len(msgs)
	}
	msgs = msgs[offset:]
	if limit > 0 && limit < len(msgs) {
		msgs = msgs[:limit]
	}
	out := make([]chat.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// seedConversation registers a conversation with the given participants,
// bypassing pair bookkeeping.
func (r *memChatRepo) seedConversation(id string, userIDs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	r.conversations[id] = &chat.Conversation{ID: id, CreatedAt: now, UpdatedAt: now}
	set := make(map[string]bool, len(userIDs))
	for _, uid := range userIDs {
		set[uid] = true
	}
	r.participants[id] = set
}

// reversibleCodec is a deterministic stand-in for the AES codec with the
// same error contract: decrypting something it did not produce fails.
type reversibleCodec struct{}

func (reversibleCodec) Encrypt(plaintext string) (string, error) {
	return "sealed:" + plaintext, nil
}

func (reversibleCodec) Decrypt(ciphertext string) (string, error) {
	if !strings.HasPrefix(ciphertext, "sealed:") {
		return "", errors.New("codec: cannot decrypt ciphertext")
	}
	return strings.TrimPrefix(ciphertext, "sealed:"), nil
}

// recordingRooms captures room broadcasts in order.
type recordingRooms struct {
	mu       sync.Mutex
	payloads map[string][][]byte
}

func newRecordingRooms() *recordingRooms {
	return &recordingRooms{payloads: make(map[string][][]byte)}
}

func (r *recordingRooms) Broadcast(conversationID string, payload []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads[conversationID] = append(r.payloads[conversationID], payload)
	return 1
}

func (r *recordingRooms) broadcasts(conversationID string) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.payloads[conversationID]...)
}

// memCache implements the cache port over a map.
type memCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemCache() *memCache { return &memCache{values: make(map[string]string)} }

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", errors.New("cache: miss")
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memCache) Del(_ context.Context, keys ...string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := c.values[k]; ok {
			delete(c.values, k)
			n++
		}
	}
	return n, nil
}

func (c *memCache) Ping(context.Context) error { return nil }
func (c *memCache) Close() error               { return nil }
