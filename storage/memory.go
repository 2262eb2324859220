package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"spurchat/model"
)

// MemoryStore is an in-process Store. Nothing survives a restart.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]model.Conversation
	messages      map[string][]model.Message
	seq           map[string]int
	next          int
	now           func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]model.Conversation),
		messages:      make(map[string][]model.Message),
		seq:           make(map[string]int),
		now:           utcNow,
	}
}

func (s *MemoryStore) CreateConversation(ctx context.Context) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	conv := model.Conversation{ID: newID(), CreatedAt: now, UpdatedAt: now}
	s.conversations[conv.ID] = conv
	s.next++
	s.seq[conv.ID] = s.next
	return &conv, nil
}

func (s *MemoryStore) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return &conv, nil
}

func (s *MemoryStore) AddMessage(ctx context.Context, conversationID string, sender model.Sender, text string) (*model.Message, error) {
	if !sender.Valid() {
		return nil, fmt.Errorf("invalid sender %q", sender)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}

	now := s.now()
	msg := model.Message{
		ID:             newID(),
		ConversationID: conversationID,
		Sender:         sender,
		Text:           text,
		Timestamp:      now,
	}
	s.messages[conversationID] = append(s.messages[conversationID], msg)

	if now.After(conv.UpdatedAt) {
		conv.UpdatedAt = now
	}
	s.conversations[conversationID] = conv
	return &msg, nil
}

func (s *MemoryStore) GetMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedMessages(conversationID), nil
}

func (s *MemoryStore) GetRecentMessages(ctx context.Context, conversationID string, limit int) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.sortedMessages(conversationID)
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

// sortedMessages copies a conversation's turns in timestamp order. The sort
// is stable so equal timestamps keep insertion order. Caller holds mu.
func (s *MemoryStore) sortedMessages(conversationID string) []model.Message {
	msgs := make([]model.Message, len(s.messages[conversationID]))
	copy(msgs, s.messages[conversationID])
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs
}

func (s *MemoryStore) ListConversations(ctx context.Context, limit int) ([]model.ConversationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]model.ConversationSummary, 0, len(s.conversations))
	for id, conv := range s.conversations {
		sum := model.ConversationSummary{Conversation: conv}
		msgs := s.sortedMessages(id)
		sum.MessageCount = len(msgs)
		for _, m := range msgs {
			if m.Sender == model.SenderUser {
				sum.FirstMessage = m.Text
				break
			}
		}
		summaries = append(summaries, sum)
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return s.seq[a.ID] > s.seq[b.ID]
	})

	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

func (s *MemoryStore) DeleteConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return ErrConversationNotFound
	}
	delete(s.conversations, id)
	delete(s.messages, id)
	delete(s.seq, id)
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) (ClearStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := ClearStats{Conversations: int64(len(s.conversations))}
	for _, msgs := range s.messages {
		stats.Messages += int64(len(msgs))
	}
	s.conversations = make(map[string]model.Conversation)
	s.messages = make(map[string][]model.Message)
	s.seq = make(map[string]int)
	return stats, nil
}

func (s *MemoryStore) Close() error { return nil }
