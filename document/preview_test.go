package document

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func textDoc(parts ...string) Document {
	doc := Document{}
	for _, p := range parts {
		doc.Ops = append(doc.Ops, Op{Text: p})
	}
	return doc
}

func TestExtractPreview_ShortTextIsTrimmed(t *testing.T) {
	doc := Document{Ops: []Op{
		{Text: "  Hello "},
		{Text: "world", Attributes: Attributes{Bold: true}},
		{Embed: &Embed{Kind: EmbedImage, Value: "https://example.com/a.png"}},
		{Text: "!\n"},
	}}

	assert.Equal(t, "Hello world!", ExtractPreview(doc))
}

func TestExtractPreview_TruncatesAt120Characters(t *testing.T) {
	text := strings.Repeat("abcdefghij", 15)
	preview := ExtractPreview(textDoc(text))

	assert.Equal(t, text[:120]+"...", preview)
	assert.Len(t, preview, 123)
}

func TestExtractPreview_ExactlyAtLimitIsUnchanged(t *testing.T) {
	text := strings.Repeat("x", PreviewLimit)
	assert.Equal(t, text, ExtractPreview(textDoc(text)))
}

func TestExtractPreview_CountsCharactersNotBytes(t *testing.T) {
	text := strings.Repeat("é", 130)
	preview := ExtractPreview(textDoc(text))

	assert.Equal(t, strings.Repeat("é", 120)+Ellipsis, preview)
	assert.Equal(t, 123, utf8.RuneCountInString(preview))
}

func TestExtractPreview_MalformedBodyGivesFallbackSentence(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, FallbackPreview, ExtractPreview(ParseDocument("not json")))
	}
	assert.Equal(t, FallbackPreview, ExtractPreview(ParseDocument("")))
	assert.Equal(t, FallbackPreview, ExtractPreview(Document{}))
}

func TestExtractPreview_WhitespaceOnlyBodyIsNotFallback(t *testing.T) {
	assert.Equal(t, "", ExtractPreview(textDoc("   \n")))
}

func TestExtractPreview_LengthBoundHolds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("ab cd\n\tçø✓")

	for i := 0; i < 200; i++ {
		var ops []Op
		for n := rng.Intn(8); n >= 0; n-- {
			if rng.Intn(5) == 0 {
				ops = append(ops, Op{Embed: &Embed{Kind: EmbedImage, Value: "x"}})
				continue
			}
			runes := make([]rune, rng.Intn(60))
			for j := range runes {
				runes[j] = alphabet[rng.Intn(len(alphabet))]
			}
			ops = append(ops, Op{Text: string(runes)})
		}
		doc := Document{Ops: ops}

		preview := ExtractPreview(doc)
		assert.LessOrEqual(t, utf8.RuneCountInString(preview), PreviewLimit+len(Ellipsis))

		trimmed := []rune(strings.TrimSpace(PlainText(doc)))
		if len(trimmed) > PreviewLimit {
			assert.Equal(t, string(trimmed[:PreviewLimit])+Ellipsis, preview)
		}
		assert.Equal(t, preview, ExtractPreview(doc))
	}
}
