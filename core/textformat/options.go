// Package textformat formats the text runs of a chat message: mentions,
// emoji, hashtags and search-term highlighting. Formatting works on
// HTML-escaped text and substitutes markup through an ordered token map so
// that later passes never match inside earlier markup.
package textformat

import "github.com/dlclark/regexp2"

// Options configures one render pass. The zero value renders plain block
// Markdown with emoticons, hashtags and mention highlighting enabled.
type Options struct {
	// Singleline renders inline: no block paragraphs and no line breaks.
	Singleline bool

	// SearchPatterns are terms to highlight. Nil disables search highlighting.
	SearchPatterns []SearchPattern

	ProxyImages bool

	// AutolinkedURLSchemes lists the lowercase schemes a bare autolink may
	// use. Nil means the list is not configured and every scheme is allowed.
	AutolinkedURLSchemes []string

	// SiteURL is used to classify links as internal. Empty when unknown.
	SiteURL string

	// ManagedResourcePaths are path prefixes served by another service, so
	// internal links under them must open in a new tab.
	ManagedResourcePaths []string

	AtMentions              bool
	MentionKeys             []MentionKey
	DisableMentionHighlight bool

	// ChannelNamesMap maps a channel name to its display name. Channel
	// mentions are only linked when the map is set.
	ChannelNamesMap map[string]string
	Team            string

	DisableHashtags      bool
	MinimumHashtagLength int

	DisableEmoticons bool
}

// SearchPattern is a compiled search term. Pattern is expected to capture
// the text before the term in group 1 and the term itself in group 2.
type SearchPattern struct {
	Pattern *regexp2.Regexp
	Term    string
}

// MentionKey is a word that mentions the current user.
type MentionKey struct {
	Key           string `json:"key" yaml:"key"`
	CaseSensitive bool   `json:"caseSensitive,omitempty" yaml:"case_sensitive"`
}

// EmojiMap reports whether an emoji short name is known.
type EmojiMap interface {
	Has(name string) bool
}

const defaultMinimumHashtagLength = 3

func (o Options) minimumHashtagLength() int {
	if o.MinimumHashtagLength <= 0 {
		return defaultMinimumHashtagLength
	}
	return o.MinimumHashtagLength
}
