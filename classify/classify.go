// Package classify flags user messages that do not need an LLM round trip.
//
// The checks are deliberately literal heuristics: a fixed set of pictographic
// code points for emoji-only text and two shape rules for gibberish. Messages
// that fall into one of the short-circuit categories get a canned reply.
package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Category is the outcome of classifying a message.
type Category int

const (
	Normal Category = iota
	Empty
	EmojiOnly
	Gibberish
)

func (c Category) String() string {
	switch c {
	case Empty:
		return "empty"
	case EmojiOnly:
		return "emoji_only"
	case Gibberish:
		return "gibberish"
	default:
		return "normal"
	}
}

const (
	minGibberishLength = 4
	maxRepeatedRun     = 4
	maxTokenLength     = 20
)

// emojiOnly matches text made entirely of the recognized pictographic and
// symbol code points plus whitespace. Astral-plane code points are accepted
// wholesale, which also covers regional indicator pairs and the enclosed
// alphanumeric supplement.
var emojiOnly = regexp.MustCompile(`^(?:` +
	`[\x{2700}-\x{27BF}]` +
	`|[\x{10000}-\x{10FFFF}]` +
	`|[\x{0023}-\x{0039}]\x{FE0F}?\x{20E3}` +
	`|[\x{3299}\x{3297}\x{303D}\x{3030}\x{24C2}\x{203C}\x{2049}\x{25AA}\x{25AB}\x{25B6}\x{25C0}\x{25FB}-\x{25FE}` +
	`\x{00A9}\x{00AE}\x{2122}\x{2139}\x{2600}-\x{26FF}\x{2B05}\x{2B06}\x{2B07}\x{2B1B}\x{2B1C}\x{2B50}\x{2B55}` +
	`\x{231A}\x{231B}\x{2328}\x{23CF}\x{23E9}-\x{23F3}\x{23F8}-\x{23FA}\x{2934}\x{2935}\x{2190}-\x{21FF}]` +
	`|[\t\n\v\f\r\p{Zs}\x{2028}\x{2029}\x{FEFF}]` +
	`)+$`)

// Message classifies text. Checks run in order: empty, emoji-only, gibberish.
func Message(text string) Category {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Empty
	}
	if IsEmojiOnly(text) {
		return EmojiOnly
	}
	if IsGibberish(text) {
		return Gibberish
	}
	return Normal
}

// IsEmojiOnly reports whether every code point of text is a recognized
// pictograph, keycap sequence or whitespace.
func IsEmojiOnly(text string) bool {
	return emojiOnly.MatchString(text)
}

// IsGibberish reports whether the trimmed text is at least four characters
// long and either repeats one character four or more times in a row or has
// a whitespace-delimited token longer than twenty characters.
func IsGibberish(text string) bool {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < minGibberishLength {
		return false
	}
	if hasRepeatedRun(trimmed, maxRepeatedRun) {
		return true
	}
	for _, token := range strings.Fields(trimmed) {
		if utf8.RuneCountInString(token) > maxTokenLength {
			return true
		}
	}
	return false
}

// hasRepeatedRun reports whether s contains n consecutive identical runes.
// Line terminators never count towards a run.
func hasRepeatedRun(s string, n int) bool {
	var prev rune = -1
	run := 0
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029' {
			prev, run = -1, 0
			continue
		}
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run >= n {
			return true
		}
	}
	return false
}
