package testutil

import (
	"fmt"
	"time"

	"spurchat/model"
)

// TestHistory returns a short support conversation for testing
func TestHistory(conversationID string) []model.Message {
	base := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	return []model.Message{
		{
			ID:             "m1",
			ConversationID: conversationID,
			Sender:         model.SenderUser,
			Text:           "Hi, do you ship to Canada?",
			Timestamp:      base,
		},
		{
			ID:             "m2",
			ConversationID: conversationID,
			Sender:         model.SenderAI,
			Text:           "Yes! Standard shipping takes 5-7 business days.",
			Timestamp:      base.Add(time.Second),
		},
		{
			ID:             "m3",
			ConversationID: conversationID,
			Sender:         model.SenderUser,
			Text:           "And express?",
			Timestamp:      base.Add(2 * time.Second),
		},
	}
}

// LongHistory returns n alternating turns numbered from 1.
func LongHistory(conversationID string, n int) []model.Message {
	base := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	out := make([]model.Message, n)
	for i := range out {
		sender := model.SenderUser
		if i%2 == 1 {
			sender = model.SenderAI
		}
		out[i] = model.Message{
			ID:             fmt.Sprintf("m%d", i+1),
			ConversationID: conversationID,
			Sender:         sender,
			Text:           fmt.Sprintf("turn %d", i+1),
			Timestamp:      base.Add(time.Duration(i) * time.Second),
		}
	}
	return out
}
