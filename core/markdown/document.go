package markdown

import (
	"bytes"
	"fmt"
	"regexp"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/jun/chatmark/core/highlight"
)

// DocumentRenderer renders long-form Markdown (GFM with heading anchors and
// highlighted code) through goldmark's own HTML renderer, then sanitizes the
// output. Raw HTML is allowed in the source and filtered by the policy.
type DocumentRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

var classNames = regexp.MustCompile(`^[\w\- ]+$`)

// NewDocumentRenderer creates a DocumentRenderer. style names the chroma
// style; empty selects the default.
func NewDocumentRenderer(style string) *DocumentRenderer {
	if style == "" {
		style = highlight.DefaultStyle
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)

	return &DocumentRenderer{
		md:     md,
		policy: documentPolicy(),
	}
}

func documentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(classNames).OnElements("pre", "code", "span", "div")
	p.AllowElements("input")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	return p
}

// Render converts Markdown to sanitized HTML.
func (r *DocumentRenderer) Render(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return r.policy.SanitizeBytes(buf.Bytes()), nil
}
