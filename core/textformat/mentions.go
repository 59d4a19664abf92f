package textformat

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

var (
	atMentionPattern      = regexp.MustCompile(`(?i)\B@(([a-z0-9_.-]*[a-z0-9_])[.-]*)`)
	channelMentionPattern = regexp.MustCompile(`(?i)\B(~([a-z0-9.\-_]*))`)
)

const mentionHighlightClass = "mention--highlight"

// autolinkAtMentions replaces @username with a mention span. Trailing dots
// and dashes are kept outside the mention.
func autolinkAtMentions(text string, tokens *Tokens) string {
	return replaceAllSubmatchFunc(atMentionPattern, text, func(groups []string) string {
		withPunctuation, username := groups[1], groups[2]
		suffix := withPunctuation[len(username):]
		alias := tokens.Add("ATMENTION",
			`<span data-mention="`+username+`">@`+username+`</span>`,
			"@"+username)
		return alias + suffix
	})
}

// autolinkChannelMentions links ~channel-name when the channel is known.
// Unknown names are retried with trailing punctuation removed.
func autolinkChannelMentions(text string, tokens *Tokens, channels map[string]string, team string) string {
	addToken := func(name, mention string) string {
		href := "#"
		if team != "" {
			href = "/" + EscapeHTML(url.PathEscape(team)) + "/channels/" + name
		}
		return tokens.Add("CHANNELMENTION",
			`<a class="mention-link" href="`+href+`" data-channel-mention="`+name+`">~`+EscapeHTML(channels[name])+`</a>`,
			mention)
	}

	return replaceAllSubmatchFunc(channelMentionPattern, text, func(groups []string) string {
		fullMatch, mention := groups[0], groups[1]
		name := strings.ToLower(groups[2])
		if _, ok := channels[name]; ok {
			return addToken(name, mention)
		}

		original := name
		for c := len(name); c > 0; c-- {
			r := rune(name[c-1])
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				break
			}
			name = name[:c-1]
			if _, ok := channels[name]; ok {
				return addToken(name, "~"+name) + original[c-1:]
			}
		}
		return fullMatch
	})
}

// highlightMentions wraps the user's mention keys, both in the text and in
// tokens produced by earlier passes.
func highlightMentions(text string, tokens *Tokens, keys []MentionKey) string {
	output := text

	var wrapped []Token
	for _, token := range tokens.All() {
		for _, key := range keys {
			if key.Key != "" && strings.EqualFold(key.Key, token.OriginalText) {
				alias := tokenAlias(tokens.Len() + len(wrapped))
				wrapped = append(wrapped, Token{
					Kind:         "SELFMENTION",
					Alias:        alias,
					Value:        `<span class="` + mentionHighlightClass + `">` + token.Alias + `</span>`,
					OriginalText: token.OriginalText,
				})
				output = strings.Replace(output, token.Alias, alias, 1)
				break
			}
		}
	}
	tokens.append(wrapped)

	output, restore := protectEntities(output)
	for _, key := range keys {
		if key.Key == "" {
			continue
		}
		re := mentionKeyPattern(key)
		output = replaceAllSubmatchFunc(re, output, func(groups []string) string {
			prefix, mention, suffix := groups[1], groups[2], groups[3]
			alias := tokens.Add("SELFMENTION",
				`<span class="`+mentionHighlightClass+`">`+mention+`</span>`,
				mention)
			return prefix + alias + suffix
		})
	}
	return restore(output)
}

func mentionKeyPattern(key MentionKey) *regexp.Regexp {
	flags := ""
	if !key.CaseSensitive {
		flags = "(?i)"
	}
	if cjkPattern.MatchString(key.Key) {
		return regexp.MustCompile(flags + `()(` + regexp.QuoteMeta(key.Key) + `)()`)
	}
	return regexp.MustCompile(flags + `(^|\W)(` + regexp.QuoteMeta(key.Key) + `)(\b|_+\b)`)
}
