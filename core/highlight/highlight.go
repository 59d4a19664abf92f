// Package highlight renders syntax-highlighted code with chroma.
package highlight

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/jun/chatmark/core/textformat"
)

const DefaultStyle = "github"

var lineBreak = regexp.MustCompile(`\r\n|\n|\r`)

// Highlighter renders code with class-based markup; the colours come from
// the stylesheet written by WriteCSS.
type Highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// Option configures a Highlighter.
type Option func(*config)

type config struct {
	style    string
	tabWidth int
}

// WithStyle selects the chroma style used by WriteCSS.
func WithStyle(name string) Option {
	return func(c *config) { c.style = name }
}

// WithTabWidth sets how many spaces a tab expands to.
func WithTabWidth(n int) Option {
	return func(c *config) { c.tabWidth = n }
}

// New creates a Highlighter.
func New(opts ...Option) *Highlighter {
	cfg := config{style: DefaultStyle, tabWidth: 4}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Highlighter{
		style: styles.Get(cfg.style),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
			chromahtml.TabWidth(cfg.tabWidth),
		),
	}
}

func lexerFor(lang string) chroma.Lexer {
	if lang == "" {
		return nil
	}
	lexer := lexers.Get(lang)
	if lexer == nil || lexer.Config().Name == "plaintext" {
		return nil
	}
	return lexer
}

// CanHighlight reports whether lang names a known grammar.
func (h *Highlighter) CanHighlight(lang string) bool {
	return lexerFor(lang) != nil
}

// LanguageName returns the display name of lang, or "" when unknown.
func (h *Highlighter) LanguageName(lang string) string {
	lexer := lexerFor(lang)
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}

// RenderLineNumbers returns "1\n2\n…" with one number per line of code.
func (h *Highlighter) RenderLineNumbers(code string) string {
	n := len(lineBreak.Split(code, -1))
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

// Highlight returns code as highlighted HTML. Code in an unknown language,
// or code the lexer rejects, is only escaped.
func (h *Highlighter) Highlight(lang, code string) string {
	lexer := lexerFor(lang)
	if lexer == nil {
		return textformat.SanitizeHTML(code)
	}

	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return textformat.SanitizeHTML(code)
	}

	var b strings.Builder
	if err := h.formatter.Format(&b, h.style, iterator); err != nil {
		return textformat.SanitizeHTML(code)
	}
	return b.String()
}

// WriteCSS writes the stylesheet for the configured style.
func (h *Highlighter) WriteCSS(w io.Writer) error {
	if err := h.formatter.WriteCSS(w, h.style); err != nil {
		return fmt.Errorf("write highlight css: %w", err)
	}
	return nil
}
