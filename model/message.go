package model

import "time"

// Sender identifies who authored a conversation turn.
type Sender string

const (
	SenderUser Sender = "user"
	// SenderAI is the assistant. It is serialized as "ai" on the wire and in storage.
	SenderAI Sender = "ai"
)

// Valid reports whether s is one of the two known senders.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAI
}

// Message represents one persisted turn of a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Sender         Sender    `json:"sender"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
}
