package markdown

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/jun/chatmark/core/highlight"
	"github.com/jun/chatmark/core/imageproxy"
	"github.com/jun/chatmark/core/textformat"
	"github.com/jun/chatmark/core/urlutil"
)

// Highlighter renders fenced code.
type Highlighter interface {
	CanHighlight(lang string) bool
	LanguageName(lang string) string
	RenderLineNumbers(code string) string
	Highlight(lang, code string) string
}

// TextFormatter formats an escaped text run.
type TextFormatter interface {
	FormatText(text string, opts textformat.Options, emojis textformat.EmojiMap) string
}

// ImageSrcFunc rewrites an image source, routing it through an image proxy
// when proxy is set.
type ImageSrcFunc func(src string, proxy bool) string

var defaultHighlighter = highlight.New()

var (
	anchorTag        = regexp.MustCompile(`</?a(?:\s[^>]*)?>`)
	taskListItem     = regexp.MustCompile(`^\[([ xX])\] `)
	numberedBullet   = regexp.MustCompile(`^(\d+)[.)]$`)
	imageWidth       = regexp.MustCompile(`^\d+$`)
	imageHeight      = regexp.MustCompile(`^(\d+|auto)$`)
	defaultUnhandled = []string{"plugins", "files"}
)

// ChatRenderer renders the chat dialect of Markdown: highlighted code,
// guarded links, sized images, task lists and formatted text runs.
type ChatRenderer struct {
	base        BaseHandler
	opts        textformat.Options
	emojis      textformat.EmojiMap
	highlighter Highlighter
	formatter   TextFormatter
	imageSrc    ImageSrcFunc
	unhandled   *regexp.Regexp
}

var _ NodeHandler = (*ChatRenderer)(nil)

// ChatOption configures a ChatRenderer.
type ChatOption func(*ChatRenderer)

// WithHighlighter replaces the code block highlighter.
func WithHighlighter(h Highlighter) ChatOption {
	return func(r *ChatRenderer) { r.highlighter = h }
}

// WithTextFormatter replaces the formatter applied to text runs.
func WithTextFormatter(f TextFormatter) ChatOption {
	return func(r *ChatRenderer) { r.formatter = f }
}

// WithImageSrc replaces the image source rewriter.
func WithImageSrc(fn ImageSrcFunc) ChatOption {
	return func(r *ChatRenderer) { r.imageSrc = fn }
}

// NewChatRenderer creates a ChatRenderer for one set of options. emojis may
// be nil when named emoji should not be recognised.
func NewChatRenderer(opts textformat.Options, emojis textformat.EmojiMap, options ...ChatOption) *ChatRenderer {
	r := &ChatRenderer{
		opts:        opts,
		emojis:      emojis,
		highlighter: defaultHighlighter,
		formatter:   textformat.Formatter{},
		imageSrc:    imageproxy.New(opts.SiteURL).ImageSrc,
		unhandled:   unhandledPathPattern(opts.ManagedResourcePaths),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// unhandledPathPattern matches site paths the chat client does not route
// itself.
func unhandledPathPattern(managed []string) *regexp.Regexp {
	parts := make([]string, 0, len(defaultUnhandled)+len(managed))
	parts = append(parts, defaultUnhandled...)
	for _, p := range managed {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p != "" {
			parts = append(parts, textformat.EscapeRegex(p))
		}
	}
	return regexp.MustCompile(`^/(` + strings.Join(parts, "|") + `)\b`)
}

// Code renders a fenced or indented code block, with a search overlay
// when any search term hits the code.
func (r *ChatRenderer) Code(code, language string) string {
	lang := strings.ToLower(language)
	if lang == "tex" || lang == "latex" {
		return `<div data-latex="` + textformat.EscapeHTML(code) + `"></div>`
	}
	if lang == "html" {
		lang = "xml"
	}

	className := "post-code"
	if lang == "" {
		className += " post-code--wrap"
	}

	var header, lineNumbers string
	if r.highlighter.CanHighlight(lang) {
		header = `<span class="post-code__language">` + textformat.EscapeHTML(r.highlighter.LanguageName(lang)) + `</span>`
		lineNumbers = `<div class="post-code__line-numbers">` + r.highlighter.RenderLineNumbers(code) + `</div>`
	}

	content := r.highlighter.Highlight(lang, code)

	var searched string
	if r.opts.SearchPatterns != nil {
		tokens := textformat.NewTokens()
		escaped := textformat.SanitizeHTML(textformat.RemoveMarkers(code))
		text := textformat.HighlightSearchTerms(escaped, tokens, r.opts.SearchPatterns)
		if tokens.Len() > 0 {
			searched = `<div class="post-code__search-highlighting">` + textformat.ReplaceTokens(text, tokens) + `</div>`
		}
	}

	return `<div class="` + className + `">` + header +
		`<code class="hljs">` + lineNumbers + searched + content + `</code></div>`
}

// Codespan renders inline code with search hits highlighted.
func (r *ChatRenderer) Codespan(text string) string {
	out := text
	if r.opts.SearchPatterns != nil {
		tokens := textformat.NewTokens()
		out = textformat.HighlightSearchTerms(textformat.RemoveMarkers(text), tokens, r.opts.SearchPatterns)
		out = textformat.ReplaceTokens(out, tokens)
	}
	return `<span class="codespan__pre-wrap">` + r.base.Codespan(out) + `</span>`
}

// Br renders a hard line break, or a space in single-line mode.
func (r *ChatRenderer) Br() string {
	if r.opts.Singleline {
		return " "
	}
	return r.base.Br()
}

// Image renders an inline image. href may carry a " =WxH" size suffix.
func (r *ChatRenderer) Image(href, title, text string) string {
	src, dims := splitImageDimensions(href)

	var b strings.Builder
	b.WriteString(`<img src="`)
	b.WriteString(textformat.EscapeHTML(r.imageSrc(src, r.opts.ProxyImages)))
	b.WriteString(`" alt="`)
	b.WriteString(text)
	b.WriteByte('"')
	if title != "" {
		b.WriteString(` title="` + title + `"`)
	}
	if dims[0] != "" {
		b.WriteString(` width="` + dims[0] + `"`)
	}
	if dims[1] != "" && dims[1] != "auto" {
		b.WriteString(` height="` + dims[1] + `"`)
	}
	b.WriteString(` class="markdown-inline-img">`)
	return b.String()
}

// splitImageDimensions separates a trailing " =WxH" suffix from href. A
// suffix that is not a valid size is dropped and yields no dimensions.
func splitImageDimensions(href string) (string, [2]string) {
	var dims [2]string
	i := strings.LastIndexByte(href, ' ')
	if i < 0 {
		return href, dims
	}
	suffix := href[i+1:]
	if !strings.HasPrefix(suffix, "=") {
		return href, dims
	}
	src := strings.TrimRight(href[:i], " ")

	width, height, found := strings.Cut(suffix[1:], "x")
	if found && height == "" {
		height = "auto"
	}
	if !imageWidth.MatchString(width) || (found && !imageHeight.MatchString(height)) {
		return src, dims
	}
	dims[0], dims[1] = width, height
	return src, dims
}

// Heading renders a heading of the given level.
func (r *ChatRenderer) Heading(text string, level int) string {
	tag := "h" + strconv.Itoa(level)
	return "<" + tag + ` class="markdown__heading">` + text + "</" + tag + ">"
}

// Link renders an anchor, or just text when href is unsafe or an
// autolinked URL uses a scheme that is not allowed.
func (r *ChatRenderer) Link(href, title, text string, isURL bool) string {
	outHref := href
	if !strings.HasPrefix(href, "/") {
		scheme, ok := urlutil.GetScheme(href)
		if !ok {
			outHref = "http://" + outHref
		} else if isURL && r.opts.AutolinkedURLSchemes != nil &&
			!slices.Contains(r.opts.AutolinkedURLSchemes, strings.ToLower(scheme)) {
			return text
		}
	}

	if !urlutil.IsURLSafe(urlutil.UnescapeHTMLEntities(href)) {
		return text
	}

	var b strings.Builder
	b.WriteString(`<a class="theme markdown__link`)
	if textformat.MatchesAny(r.opts.SearchPatterns, href) {
		b.WriteString(" search-highlight")
	}
	b.WriteString(`" href="` + textformat.EscapeHTML(outHref) + `" rel="noreferrer"`)

	siteURL := r.opts.SiteURL
	onSite := siteURL != "" && hasSitePrefix(outHref, siteURL)
	internal := strings.HasPrefix(outHref, "/") || onSite

	openInNewTab := true
	if internal && siteURL != "" {
		path := outHref
		if onSite {
			path = outHref[len(siteURL):]
		}
		openInNewTab = r.unhandled.MatchString(path)
	}

	if openInNewTab || siteURL == "" {
		b.WriteString(` target="_blank"`)
	} else {
		b.WriteString(` data-link="` + textformat.EscapeHTML(strings.Replace(outHref, siteURL, "", 1)) + `"`)
	}

	if title != "" {
		b.WriteString(` title="` + title + `"`)
	}

	b.WriteByte('>')
	b.WriteString(anchorTag.ReplaceAllString(text, ""))
	b.WriteString("</a>")
	return b.String()
}

// hasSitePrefix reports whether href is siteURL itself or a URL below it.
func hasSitePrefix(href, siteURL string) bool {
	if !strings.HasPrefix(href, siteURL) {
		return false
	}
	rest := href[len(siteURL):]
	return rest == "" || strings.HasSuffix(siteURL, "/") || strings.ContainsAny(rest[:1], "/?#")
}

// Paragraph renders a paragraph. Single-line mode uses an inline class.
func (r *ChatRenderer) Paragraph(text string) string {
	if r.opts.Singleline {
		class := "markdown__paragraph-inline"
		if strings.Contains(text, `class="markdown-inline-img"`) {
			return `<div class="` + class + `">` + text + "</div>"
		}
		return `<p class="` + class + `">` + text + "</p>"
	}
	return r.base.Paragraph(text)
}

// Table renders a table inside a responsive wrapper.
func (r *ChatRenderer) Table(header, body string) string {
	return `<div class="table-responsive"><table class="markdown__table"><thead>` + header +
		"</thead><tbody>" + body + "</tbody></table></div>"
}

// TableRow renders one table row.
func (r *ChatRenderer) TableRow(content string) string {
	return "<tr>" + content + "</tr>"
}

// TableCell renders one cell, trimmed.
func (r *ChatRenderer) TableCell(content string, flags CellFlags) string {
	return strings.TrimSpace(r.base.TableCell(content, flags))
}

// List renders an ordered or unordered list. Ordered lists not starting
// at 1 reset the CSS counter.
func (r *ChatRenderer) List(content string, ordered bool, start int) string {
	tag := "ul"
	if ordered {
		tag = "ol"
	}
	out := "<" + tag + ` class="markdown__list"`
	if ordered && start != 1 {
		out += ` style="counter-reset: list ` + strconv.Itoa(start-1) + `"`
	}
	return out + ">\n" + content + "</" + tag + ">"
}

// ListItem renders a list item, as a disabled checkbox for task items.
func (r *ChatRenderer) ListItem(text, bullet string) string {
	if m := taskListItem.FindStringSubmatch(text); m != nil {
		checked := ""
		if m[1] != " " {
			checked = `checked="checked" `
		}
		return `<li class="list-item--task-list"><input type="checkbox" disabled="disabled" ` +
			checked + "/> " + text[len(m[0]):] + "</li>"
	}

	if m := numberedBullet.FindStringSubmatch(bullet); m != nil {
		return `<li value="` + m[1] + `"><span>` + text + "</span></li>"
	}

	return "<li><span>" + text + "</span></li>"
}

// Text runs the text formatter over an escaped text run.
func (r *ChatRenderer) Text(text string) string {
	return r.formatter.FormatText(text, r.opts, r.emojis)
}

// Hr renders a thematic break.
func (r *ChatRenderer) Hr() string { return r.base.Hr() }

// Blockquote renders a block quote.
func (r *ChatRenderer) Blockquote(q string) string { return r.base.Blockquote(q) }

// Strong renders strong emphasis.
func (r *ChatRenderer) Strong(text string) string { return r.base.Strong(text) }

// Em renders emphasis.
func (r *ChatRenderer) Em(text string) string { return r.base.Em(text) }

// Del renders strikethrough text.
func (r *ChatRenderer) Del(text string) string { return r.base.Del(text) }

// HTML renders raw HTML as escaped text.
func (r *ChatRenderer) HTML(raw string) string { return r.base.HTML(raw) }
