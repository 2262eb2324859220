// Package storage persists conversations and their messages.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"spurchat/model"
)

// ErrConversationNotFound is returned when a conversation ID does not resolve.
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationStore is the persistence port used by the chat service.
type ConversationStore interface {
	CreateConversation(ctx context.Context) (*model.Conversation, error)
	// GetConversation returns ErrConversationNotFound when id is unknown.
	GetConversation(ctx context.Context, id string) (*model.Conversation, error)
	// AddMessage appends a turn and refreshes the conversation's UpdatedAt.
	AddMessage(ctx context.Context, conversationID string, sender model.Sender, text string) (*model.Message, error)
	// GetMessages returns turns by timestamp, ties in insertion order.
	GetMessages(ctx context.Context, conversationID string) ([]model.Message, error)
}

// ClearStats reports how many rows Clear removed.
type ClearStats struct {
	Conversations int64
	Messages      int64
}

// Store adds the administrative operations used by the CLI.
type Store interface {
	ConversationStore
	// ListConversations returns summaries, most recently updated first.
	// A non-positive limit returns all.
	ListConversations(ctx context.Context, limit int) ([]model.ConversationSummary, error)
	// GetRecentMessages returns the last limit turns in chronological order.
	GetRecentMessages(ctx context.Context, conversationID string, limit int) ([]model.Message, error)
	// DeleteConversation removes a conversation and, by cascade, its turns.
	DeleteConversation(ctx context.Context, id string) error
	// Clear deletes every conversation and message.
	Clear(ctx context.Context) (ClearStats, error)
	Close() error
}

func newID() string {
	return uuid.NewString()
}

func utcNow() time.Time {
	return time.Now().UTC()
}
