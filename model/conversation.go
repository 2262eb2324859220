package model

import "time"

// Conversation is a keyed thread of messages. UpdatedAt is refreshed every
// time a message is appended and is never earlier than CreatedAt.
type Conversation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ConversationSummary is a lightweight listing entry used by the sessions
// command and exports.
type ConversationSummary struct {
	Conversation
	MessageCount int    `json:"messageCount"`
	FirstMessage string `json:"firstMessage,omitempty"`
}
