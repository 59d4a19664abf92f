package textformat

// Settings is the wire form of Options, as sent by clients that cannot build
// compiled search patterns themselves.
type Settings struct {
	Singleline  bool     `json:"singleline,omitempty" yaml:"singleline"`
	SearchTerms []string `json:"searchTerms,omitempty" yaml:"search_terms"`
	ProxyImages bool     `json:"proxyImages,omitempty" yaml:"proxy_images"`

	AutolinkedURLSchemes []string `json:"autolinkedUrlSchemes,omitempty" yaml:"autolinked_url_schemes"`
	SiteURL              string   `json:"siteUrl,omitempty" yaml:"site_url"`
	ManagedResourcePaths []string `json:"managedResourcePaths,omitempty" yaml:"managed_resource_paths"`

	AtMentions              bool              `json:"atMentions,omitempty" yaml:"at_mentions"`
	MentionKeys             []MentionKey      `json:"mentionKeys,omitempty" yaml:"mention_keys"`
	DisableMentionHighlight bool              `json:"disableMentionHighlight,omitempty" yaml:"disable_mention_highlight"`
	ChannelNames            map[string]string `json:"channelNames,omitempty" yaml:"channel_names"`
	Team                    string            `json:"team,omitempty" yaml:"team"`

	DisableHashtags      bool `json:"disableHashtags,omitempty" yaml:"disable_hashtags"`
	MinimumHashtagLength int  `json:"minimumHashtagLength,omitempty" yaml:"minimum_hashtag_length"`
	DisableEmoticons     bool `json:"disableEmoticons,omitempty" yaml:"disable_emoticons"`
}

// Options compiles s. Blank search terms are ignored; an empty term list
// leaves search highlighting disabled.
func (s Settings) Options() (Options, error) {
	patterns, err := BuildSearchPatterns(s.SearchTerms)
	if err != nil {
		return Options{}, err
	}

	return Options{
		Singleline:              s.Singleline,
		SearchPatterns:          patterns,
		ProxyImages:             s.ProxyImages,
		AutolinkedURLSchemes:    s.AutolinkedURLSchemes,
		SiteURL:                 s.SiteURL,
		ManagedResourcePaths:    s.ManagedResourcePaths,
		AtMentions:              s.AtMentions,
		MentionKeys:             s.MentionKeys,
		DisableMentionHighlight: s.DisableMentionHighlight,
		ChannelNamesMap:         s.ChannelNames,
		Team:                    s.Team,
		DisableHashtags:         s.DisableHashtags,
		MinimumHashtagLength:    s.MinimumHashtagLength,
		DisableEmoticons:        s.DisableEmoticons,
	}, nil
}
