package textformat

import "regexp"

type emoticon struct {
	name    string
	pattern *regexp.Regexp
}

// emoticons are matched in this order; text is already HTML-escaped, which
// is why the heart patterns also accept "&lt;".
var emoticons = []emoticon{
	{"slightly_smiling_face", regexp.MustCompile(`(^|\B)(:-?\))($|\B)`)},
	{"wink", regexp.MustCompile(`(^|\B)(;-?\))($|\B)`)},
	{"open_mouth", regexp.MustCompile(`(?i)(^|\B)(:o)($|\b)`)},
	{"scream", regexp.MustCompile(`(?i)(^|\B)(:-o)($|\b)`)},
	{"smirk", regexp.MustCompile(`(^|\B)(:-?\])($|\B)`)},
	{"smile", regexp.MustCompile(`(?i)(^|\B)(:-?d)($|\b)`)},
	{"stuck_out_tongue_closed_eyes", regexp.MustCompile(`(?i)(^|\b)(x-d)($|\b)`)},
	{"stuck_out_tongue", regexp.MustCompile(`(?i)(^|\B)(:-?p)($|\b)`)},
	{"rage", regexp.MustCompile(`(^|\B)(:-?[\[@])($|\B)`)},
	{"slightly_frowning_face", regexp.MustCompile(`(^|\B)(:-?\()($|\B)`)},
	{"cry", regexp.MustCompile("(^|\\B)(:[`'’]-?\\(|:&#x27;\\(|:&#39;\\()($|\\B)")},
	{"confused", regexp.MustCompile(`(^|\B)(:-?/)($|\B)`)},
	{"confounded", regexp.MustCompile(`(?i)(^|\B)(:-?s)($|\b)`)},
	{"neutral_face", regexp.MustCompile(`(^|\B)(:-?\|)($|\B)`)},
	{"flushed", regexp.MustCompile(`(^|\B)(:-?\$)($|\B)`)},
	{"mask", regexp.MustCompile(`(?i)(^|\B)(:-x)($|\b)`)},
	{"heart", regexp.MustCompile(`(^|\B)(<3|&lt;3)($|\b)`)},
	{"broken_heart", regexp.MustCompile(`(^|\B)(</3|&lt;/3|&lt;&#x2F;3)($|\b)`)},
}

var namedEmojiPattern = regexp.MustCompile(`(^|\s)(:([a-zA-Z0-9_+-]+):)`)

// handleEmoticons replaces :name: for emoji known to emojis, then the text
// smileys such as ":)". The suffix group is zero width in practice and is
// written back unchanged.
func handleEmoticons(text string, tokens *Tokens, emojis EmojiMap) string {
	output := replaceAllSubmatchFunc(namedEmojiPattern, text, func(groups []string) string {
		prefix, matchText, name := groups[1], groups[2], groups[3]
		if emojis == nil || !emojis.Has(name) {
			return groups[0]
		}
		return prefix + tokens.Add("EMOTICON", renderEmoticon(name, matchText), groups[0])
	})

	for _, e := range emoticons {
		output = replaceAllSubmatchFunc(e.pattern, output, func(groups []string) string {
			prefix, matchText, suffix := groups[1], groups[2], groups[3]
			return prefix + tokens.Add("EMOTICON", renderEmoticon(e.name, matchText), groups[0]) + suffix
		})
	}
	return output
}

func renderEmoticon(name, matchText string) string {
	return `<span data-emoticon="` + name + `">` + matchText + `</span>`
}
