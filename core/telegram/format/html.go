package format

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML escapes the characters Telegram's HTML parse mode treats as
// markup. Quotes do not need escaping outside of attributes, and the bot
// never emits attributes.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// Bold wraps already-escaped text in bold tags.
func Bold(text string) string {
	return "<b>" + text + "</b>"
}
