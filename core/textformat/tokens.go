package textformat

import (
	"regexp"
	"strconv"
	"strings"
)

// Aliases and entity placeholders are spelled with private-use runes so
// that no later pass, which only looks for word characters and
// punctuation, can match inside them. Input is stripped of the whole
// range before formatting.
const (
	aliasOpen   = '\uE000'
	aliasClose  = '\uE001'
	entityOpen  = '\uE002'
	entityClose = '\uE003'
	markerDigit = '\uE010'
)

var markerPattern = regexp.MustCompile(`[\x{E000}-\x{E01F}]`)

// Token is a piece of markup stashed out of the text under an alias.
type Token struct {
	Kind         string
	Alias        string
	Value        string
	OriginalText string
}

// Tokens is an insertion-ordered map from alias to Token.
type Tokens struct {
	entries []Token
}

// NewTokens returns an empty token map.
func NewTokens() *Tokens {
	return &Tokens{}
}

// Len returns the number of tokens.
func (t *Tokens) Len() int {
	return len(t.entries)
}

// All returns the tokens in insertion order.
func (t *Tokens) All() []Token {
	return t.entries
}

// Add stores value under a fresh alias of the given kind and returns the alias.
func (t *Tokens) Add(kind, value, originalText string) string {
	alias := tokenAlias(len(t.entries))
	t.entries = append(t.entries, Token{Kind: kind, Alias: alias, Value: value, OriginalText: originalText})
	return alias
}

func (t *Tokens) append(tokens []Token) {
	t.entries = append(t.entries, tokens...)
}

func tokenAlias(index int) string {
	return marker(aliasOpen, index, aliasClose)
}

// marker spells index between open and end with one private-use rune
// per decimal digit.
func marker(open rune, index int, end rune) string {
	var b strings.Builder
	b.WriteRune(open)
	for _, d := range strconv.Itoa(index) {
		b.WriteRune(markerDigit + (d - '0'))
	}
	b.WriteRune(end)
	return b.String()
}

// RemoveMarkers drops the runes reserved for aliases from s, so user text
// can never collide with a stashed token.
func RemoveMarkers(s string) string {
	if !strings.ContainsFunc(s, isMarkerRune) {
		return s
	}
	return markerPattern.ReplaceAllString(s, "")
}

func isMarkerRune(r rune) bool {
	return r >= aliasOpen && r <= markerDigit+0xF
}

var entityPattern = regexp.MustCompile(`&(?:[a-zA-Z][a-zA-Z0-9]*|#[0-9]+|#[xX][0-9a-fA-F]+);`)

// protectEntities swaps character references in escaped text for
// placeholders, so word patterns cannot match "amp" in "&amp;". The
// returned func puts them back.
func protectEntities(text string) (string, func(string) string) {
	var entities []string
	out := entityPattern.ReplaceAllStringFunc(text, func(e string) string {
		entities = append(entities, e)
		return marker(entityOpen, len(entities)-1, entityClose)
	})
	if len(entities) == 0 {
		return text, func(s string) string { return s }
	}
	return out, func(s string) string {
		for i, e := range entities {
			s = strings.Replace(s, marker(entityOpen, i, entityClose), e, 1)
		}
		return s
	}
}

// ReplaceTokens substitutes every alias in text with its value. Aliases are
// replaced newest first because later tokens may wrap earlier aliases.
func ReplaceTokens(text string, tokens *Tokens) string {
	if tokens == nil {
		return text
	}
	output := text
	for i := len(tokens.entries) - 1; i >= 0; i-- {
		token := tokens.entries[i]
		output = strings.Replace(output, token.Alias, token.Value, 1)
	}
	return output
}

// replaceAllSubmatchFunc is ReplaceAllStringFunc with access to the capture
// groups. Groups that did not participate are empty.
func replaceAllSubmatchFunc(re *regexp.Regexp, s string, fn func(groups []string) string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}

	var b strings.Builder
	last := 0
	for _, loc := range matches {
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = s[loc[2*i]:loc[2*i+1]]
			}
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(fn(groups))
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
