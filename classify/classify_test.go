package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Category
	}{
		{name: "empty string", text: "", want: Empty},
		{name: "whitespace only", text: "  \t\n ", want: Empty},
		{name: "three grinning faces", text: "😀😀😀", want: EmojiOnly},
		{name: "emoji with spaces", text: " 👍 🎉 ", want: EmojiOnly},
		{name: "dingbat", text: "✅", want: EmojiOnly},
		{name: "flag pair", text: "🇺🇸", want: EmojiOnly},
		{name: "keycap", text: "1️⃣", want: EmojiOnly},
		{name: "misc symbols", text: "☀ ⭐ ©", want: EmojiOnly},
		{name: "repeated emoji stays emoji", text: "😀😀😀😀😀", want: EmojiOnly},
		{name: "repeated letter", text: "aaaaaaaaaa", want: Gibberish},
		{name: "long token", text: "asdkjashdkjashdkjashdkjashdkjashd", want: Gibberish},
		{name: "long token among words", text: "hello supercalifragilisticexpialidocious", want: Gibberish},
		{name: "question", text: "What is your return policy?", want: Normal},
		{name: "emoji with text", text: "thanks 😀", want: Normal},
		{name: "short repeated", text: "aaa", want: Normal},
		{name: "exactly four repeated", text: "zzzz", want: Gibberish},
		{name: "run split by newline", text: "aa\naa", want: Normal},
		{name: "twenty char token", text: strings.Repeat("ab", 10), want: Normal},
		{name: "twenty one char token", text: strings.Repeat("ab", 10) + "c", want: Gibberish},
		{name: "digits", text: "12345", want: Normal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.text), "Message(%q)", tt.text)
		})
	}
}

// Runs and token lengths are measured in code points, so an astral emoji is
// one character, not a surrogate pair.
func TestIsGibberish_AstralRunesCountOnce(t *testing.T) {
	assert.Equal(t, Gibberish, Message("hi 😀😀😀😀"))
	assert.Equal(t, Normal, Message("hi 😀😀😀"))
	assert.Equal(t, Normal, Message("ok "+strings.Repeat("😀🎉", 5)+"a"))
}

func TestIsGibberish_ShortInputsNeverFlagged(t *testing.T) {
	for _, s := range []string{"a", "!!!", "   zzz   ", "ééé"} {
		assert.False(t, IsGibberish(s), "IsGibberish(%q)", s)
	}
}

func TestIsGibberish_CountsCharactersNotBytes(t *testing.T) {
	// 4 runes, 8 bytes
	assert.True(t, IsGibberish("éééé"))
	// 20 runes of a two-byte letter is still within the token limit
	assert.False(t, IsGibberish(strings.Repeat("éa", 10)))
}

func TestCannedReply(t *testing.T) {
	tests := []struct {
		category Category
		want     string
		ok       bool
	}{
		{Empty, EmptyReply, true},
		{EmojiOnly, EmojiReply, true},
		{Gibberish, GibberishReply, true},
		{Normal, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			got, ok := CannedReply(tt.category)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
