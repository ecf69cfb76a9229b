package document

import (
	"strings"
	"unicode/utf8"
)

const (
	// PreviewLimit is the number of characters kept before truncation.
	PreviewLimit = 120
	// Ellipsis marks a truncated preview.
	Ellipsis = "..."
	// FallbackPreview stands in for the summary of an empty or unreadable body.
	FallbackPreview = "Fresh stories, ideas and voices from our writers. Open the article to start reading."
)

// PlainText concatenates the text inserts of d in order, skipping embeds.
func PlainText(d Document) string {
	var sb strings.Builder
	for _, op := range d.Ops {
		if op.IsEmbed() {
			continue
		}
		sb.WriteString(op.Text)
	}
	return sb.String()
}

// ExtractPreview returns the short plain-text summary shown in listings.
// Length is counted in characters, not bytes.
func ExtractPreview(d Document) string {
	if d.IsEmpty() {
		return FallbackPreview
	}
	text := strings.TrimSpace(PlainText(d))
	if utf8.RuneCountInString(text) <= PreviewLimit {
		return text
	}
	return string([]rune(text)[:PreviewLimit]) + Ellipsis
}
