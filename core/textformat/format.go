package textformat

// Formatter is the default text pipeline used by the markdown renderer.
type Formatter struct{}

// FormatText formats one run of HTML-escaped text. Passes run in a fixed
// order and each one stores its markup as tokens, which are substituted
// back only at the end.
func (Formatter) FormatText(text string, opts Options, emojis EmojiMap) string {
	tokens := NewTokens()
	output := RemoveMarkers(text)

	if opts.AtMentions {
		output = autolinkAtMentions(output, tokens)
	}
	if opts.ChannelNamesMap != nil {
		output = autolinkChannelMentions(output, tokens, opts.ChannelNamesMap, opts.Team)
	}
	if !opts.DisableEmoticons {
		output = handleEmoticons(output, tokens, emojis)
	}
	if opts.SearchPatterns != nil {
		output = HighlightSearchTerms(output, tokens, opts.SearchPatterns)
	}
	if !opts.DisableMentionHighlight && len(opts.MentionKeys) > 0 {
		output = highlightMentions(output, tokens, opts.MentionKeys)
	}
	if !opts.DisableHashtags {
		output = autolinkHashtags(output, tokens, opts.minimumHashtagLength())
	}

	return ReplaceTokens(output, tokens)
}
