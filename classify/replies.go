package classify

const (
	EmptyReply     = "It seems like you sent an empty message. How can I help you today?"
	EmojiReply     = "I love emojis too! 😊 How can I assist you with your spur store shopping?"
	GibberishReply = "I'm not sure I understood that. Could you please rephrase your question? I'm here to help with shipping, returns, and product info!"
)

// CannedReply returns the fixed reply for a short-circuit category.
// ok is false for Normal.
func CannedReply(c Category) (reply string, ok bool) {
	switch c {
	case Empty:
		return EmptyReply, true
	case EmojiOnly:
		return EmojiReply, true
	case Gibberish:
		return GibberishReply, true
	default:
		return "", false
	}
}
