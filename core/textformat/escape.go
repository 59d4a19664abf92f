package textformat

import (
	"regexp"
	"strings"
)

var (
	sanitizer = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"'", "&apos;",
		`"`, "&quot;",
	)
	escaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	regexSpecial = regexp.MustCompile(`[-/\\^$*+?.()|[\]{}]`)
)

// SanitizeHTML escapes text so it renders literally inside element content.
func SanitizeHTML(text string) string {
	return sanitizer.Replace(text)
}

// EscapeHTML escapes text for element content and attribute values.
func EscapeHTML(text string) string {
	return escaper.Replace(text)
}

// EscapeRegex escapes the characters that are special in a regular
// expression. The result is valid for both regexp and regexp2.
func EscapeRegex(text string) string {
	return regexSpecial.ReplaceAllString(text, `\$0`)
}
