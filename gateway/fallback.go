package gateway

import "strings"

const (
	ReturnsAnswer = "We offer a 30-day return policy. Items must be in original condition with tags attached. Returns are free for orders over $50. Refunds are processed within 5-7 business days after we receive the returned item. If you need help with a return, please contact us at support@spurstore.com or call 1-800-SPUR-HELP."

	ShippingAnswer = "We ship to USA, Canada, and select international locations. Standard shipping takes 5-7 business days, and express shipping takes 2-3 business days. For more specific shipping information, please contact us at support@spurstore.com."

	SupportAnswer = "Our support hours are Monday-Friday, 9 AM - 6 PM EST. We respond to emails within 24 hours. You can reach us at support@spurstore.com or call 1-800-SPUR-HELP."

	PaymentAnswer = "We accept all major credit cards, PayPal, and Apple Pay. If you have questions about payment methods, please contact us at support@spurstore.com."

	HighDemandAnswer = "I'm currently experiencing high demand, but I'm here to help! For immediate assistance, please contact our support team at support@spurstore.com or call 1-800-SPUR-HELP. Our support hours are Monday-Friday, 9 AM - 6 PM EST."
)

var keywordAnswers = []struct {
	keywords []string
	answer   string
}{
	{[]string{"return", "refund"}, ReturnsAnswer},
	{[]string{"ship", "shipping", "delivery"}, ShippingAnswer},
	{[]string{"support", "hours", "contact"}, SupportAnswer},
	{[]string{"payment", "pay", "card"}, PaymentAnswer},
}

// FallbackAnswer picks a canned answer by topic keyword. First match wins.
func FallbackAnswer(message string) string {
	lower := strings.ToLower(message)
	for _, ka := range keywordAnswers {
		for _, kw := range ka.keywords {
			if strings.Contains(lower, kw) {
				return ka.answer
			}
		}
	}
	return HighDemandAnswer
}
