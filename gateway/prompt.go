package gateway

import (
	"strings"

	"spurchat/model"
)

// SystemPrompt is the fixed instruction block that opens every prompt.
const SystemPrompt = `You are a helpful and friendly customer support agent for a small e-commerce store called "Spur Store". Your goal is to assist customers with their questions clearly and concisely.

Store Information:
- Store Name: Spur Store
- Shipping: We ship to USA, Canada, and select international locations. Standard shipping takes 5-7 business days, express shipping takes 2-3 business days.
- Returns: We offer a 30-day return policy. Items must be in original condition with tags attached. Returns are free for orders over $50.
- Refunds: Refunds are processed within 5-7 business days after we receive the returned item.
- Support Hours: Monday-Friday, 9 AM - 6 PM EST. We respond to emails within 24 hours.
- Contact: support@spurstore.com or call 1-800-SPUR-HELP
- Payment: We accept all major credit cards, PayPal, and Apple Pay.

Guidelines:
- Be friendly, professional, and empathetic
- Keep responses concise but helpful
- If you don't know something specific, acknowledge it and offer to help find the answer
- Always maintain a positive, solution-oriented tone`

const (
	customerRole = "Customer"
	agentRole    = "Support Agent"
)

// Truncate keeps the most recent max turns. A non-positive max keeps all.
func Truncate(history []model.Message, max int) []model.Message {
	if max <= 0 || len(history) <= max {
		return history
	}
	return history[len(history)-max:]
}

// BuildPrompt renders the system block, each turn in order, and the new
// customer message followed by the agent cue.
func BuildPrompt(history []model.Message, newMessage string) string {
	var b strings.Builder
	b.WriteString(SystemPrompt)
	b.WriteString("\n\n")

	for _, msg := range history {
		b.WriteString(roleFor(msg.Sender))
		b.WriteString(": ")
		b.WriteString(msg.Text)
		b.WriteString("\n\n")
	}

	b.WriteString(customerRole)
	b.WriteString(": ")
	b.WriteString(newMessage)
	b.WriteString("\n\n")
	b.WriteString(agentRole)
	b.WriteString(":")
	return b.String()
}

func roleFor(s model.Sender) string {
	if s == model.SenderUser {
		return customerRole
	}
	return agentRole
}
