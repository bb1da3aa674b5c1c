package course

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxLen is the safe payload ceiling for one outbound text message.
// Telegram caps messages at 4096 characters; the margin leaves room for
// markup added around the content.
const DefaultMaxLen = 3500

// SplitText breaks text into parts of at most maxLen characters each.
//
// Paragraphs (blank-line separated) are accumulated greedily; the +2 in the
// size check pays for the blank line restored between rejoined paragraphs.
// A single paragraph longer than maxLen is hard-sliced into fixed-size
// windows, losing its internal layout. Lengths are counted in runes, not
// bytes, since the transport limit is a character limit.
func SplitText(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	if utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	current := ""
	for _, para := range strings.Split(text, "\n\n") {
		switch {
		case current == "":
			current = para
		case utf8.RuneCountInString(current)+2+utf8.RuneCountInString(para) <= maxLen:
			current += "\n\n" + para
		default:
			parts = append(parts, current)
			current = para
		}
	}
	if current != "" {
		parts = append(parts, current)
	}

	final := make([]string, 0, len(parts))
	for _, part := range parts {
		if utf8.RuneCountInString(part) <= maxLen {
			final = append(final, part)
			continue
		}
		runes := []rune(part)
		for i := 0; i < len(runes); i += maxLen {
			end := min(i+maxLen, len(runes))
			final = append(final, string(runes[i:end]))
		}
	}
	return final
}
