// Package urlutil holds the URL checks shared by the markdown renderer.
package urlutil

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	schemePattern  = regexp.MustCompile(`(?i)^([a-z0-9+.-]+):`)
	nonSchemeChars = regexp.MustCompile(`[^\w:]`)
)

// unsafeSchemes are rejected at the start of an href.
var unsafeSchemes = []string{"javascript:", "vbscript:", "data:"}

// GetScheme returns the scheme of rawURL without the trailing colon.
// The second result is false when rawURL has no scheme.
func GetScheme(rawURL string) (string, bool) {
	m := schemePattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsURLSafe reports whether rawURL may be placed into an href attribute.
// Percent-encoding is decoded and every character that cannot be part of a
// scheme is dropped before comparing, so "java\tscript:" and
// "%6Aavascript:" are both caught.
func IsURLSafe(rawURL string) bool {
	unescaped, err := url.PathUnescape(rawURL)
	if err != nil {
		unescaped = rawURL
	}
	unescaped = strings.ToLower(nonSchemeChars.ReplaceAllString(unescaped, ""))

	for _, scheme := range unsafeSchemes {
		if strings.HasPrefix(unescaped, scheme) {
			return false
		}
	}
	return true
}

// UnescapeHTMLEntities decodes named and numeric character references.
func UnescapeHTMLEntities(s string) string {
	return html.UnescapeString(s)
}
