package textformat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

const searchHighlightClass = "search-highlight"

var (
	cjkPattern       = regexp.MustCompile(`[\x{3000}-\x{303f}\x{3040}-\x{309f}\x{30a0}-\x{30ff}\x{ff00}-\x{ff9f}\x{4e00}-\x{9faf}\x{3400}-\x{4dbf}\x{ac00}-\x{d7a3}]`)
	trailingWildcard = regexp.MustCompile(`[^\s][*]$`)
)

// BuildSearchPattern compiles a search term into a case-insensitive,
// ECMAScript-compatible pattern. Terms in CJK scripts match anywhere, a
// trailing "*" makes a prefix search and "@"/"#" terms accept any non-word
// character before them.
func BuildSearchPattern(term string) (SearchPattern, error) {
	term = RemoveMarkers(term)
	var expr string
	switch {
	case cjkPattern.MatchString(term):
		expr = `()(` + EscapeRegex(strings.ReplaceAll(term, "*", "")) + `)`
	case trailingWildcard.MatchString(term):
		expr = `\b()(` + EscapeRegex(term[:len(term)-1]) + `)`
	case strings.HasPrefix(term, "@") || strings.HasPrefix(term, "#"):
		expr = `(\W|^)(` + EscapeRegex(term) + `)\b`
	default:
		expr = `\b()(` + EscapeRegex(term) + `)\b`
	}

	re, err := regexp2.Compile(expr, regexp2.IgnoreCase|regexp2.ECMAScript)
	if err != nil {
		return SearchPattern{}, fmt.Errorf("compile search term %q: %w", term, err)
	}
	return SearchPattern{Pattern: re, Term: term}, nil
}

// BuildSearchPatterns compiles every non-blank term. It returns nil when no
// term is left so that search highlighting stays disabled.
func BuildSearchPatterns(terms []string) ([]SearchPattern, error) {
	var patterns []SearchPattern
	for _, term := range terms {
		term = strings.TrimSpace(strings.Trim(strings.TrimSpace(term), `"`))
		if term == "" {
			continue
		}
		p, err := BuildSearchPattern(term)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// MatchesAny reports whether any pattern matches s.
func MatchesAny(patterns []SearchPattern, s string) bool {
	for _, p := range patterns {
		if p.matches(s) {
			return true
		}
	}
	return false
}

func (p SearchPattern) matches(s string) bool {
	if p.Pattern == nil {
		return false
	}
	ok, err := p.Pattern.MatchString(s)
	return err == nil && ok
}

// HighlightSearchTerms marks search hits in text with aliases stored in
// tokens. Existing tokens whose original text is a hit are wrapped as a
// whole; the remaining text is then searched directly.
func HighlightSearchTerms(text string, tokens *Tokens, patterns []SearchPattern) string {
	if len(patterns) == 0 {
		return text
	}

	output := text
	var wrapped []Token
	for _, token := range tokens.All() {
		for _, p := range patterns {
			if p.matches(token.OriginalText) {
				alias := tokenAlias(tokens.Len() + len(wrapped))
				wrapped = append(wrapped, Token{
					Kind:         "SEARCHTERM",
					Alias:        alias,
					Value:        `<span class="` + searchHighlightClass + `">` + token.Alias + `</span>`,
					OriginalText: token.OriginalText,
				})
				output = strings.Replace(output, token.Alias, alias, 1)
				break
			}
		}
	}
	tokens.append(wrapped)

	output, restore := protectEntities(output)
	for _, p := range patterns {
		if p.Pattern == nil {
			continue
		}
		replaced, err := p.Pattern.ReplaceFunc(output, func(m regexp2.Match) string {
			prefix, word := searchGroups(&m)
			alias := tokens.Add("SEARCHTERM", `<span class="`+searchHighlightClass+`">`+word+`</span>`, word)
			return prefix + alias
		}, -1, -1)
		if err != nil {
			continue
		}
		output = replaced
	}
	return restore(output)
}

// searchGroups returns the prefix and the matched term. Patterns without the
// two expected groups highlight the whole match.
func searchGroups(m *regexp2.Match) (string, string) {
	if m.GroupCount() < 3 {
		return "", m.String()
	}
	return m.GroupByNumber(1).String(), m.GroupByNumber(2).String()
}
