package textformat

import (
	"regexp"
	"unicode/utf8"
)

var hashtagPattern = regexp.MustCompile(`(^|\W)(#\pL[\pL\d\-_.]*[\pL\d])`)

// autolinkHashtags turns #tags into search links. Tags shorter than
// minLength characters after the "#" are left alone.
func autolinkHashtags(text string, tokens *Tokens, minLength int) string {
	return replaceAllSubmatchFunc(hashtagPattern, text, func(groups []string) string {
		prefix, tag := groups[1], groups[2]
		if utf8.RuneCountInString(tag) < minLength+1 {
			return groups[0]
		}
		alias := tokens.Add("HASHTAG",
			`<a class="mention-link" href="#" data-hashtag="`+tag+`">`+tag+`</a>`,
			tag)
		return prefix + alias
	})
}
