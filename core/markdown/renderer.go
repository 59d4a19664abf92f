// Package markdown renders chat Markdown to HTML. Renderer parses the source
// with goldmark and hands every node to a NodeHandler, children first, so the
// handler decides the markup for each construct.
package markdown

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/jun/chatmark/core/textformat"
	"github.com/jun/chatmark/core/urlutil"
)

// ErrSourceTooLarge is returned when the source exceeds the configured limit.
var ErrSourceTooLarge = errors.New("markdown source too large")

// Renderer parses Markdown and drives a NodeHandler over the result.
// It is safe for concurrent use.
type Renderer struct {
	md             goldmark.Markdown
	maxSourceBytes int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMaxSourceBytes rejects sources longer than n bytes. Zero disables the
// limit.
func WithMaxSourceBytes(n int) Option {
	return func(r *Renderer) { r.maxSourceBytes = n }
}

// NewRenderer creates a Renderer for CommonMark with tables,
// strikethrough and bare-URL autolinks.
func NewRenderer(opts ...Option) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.Linkify,
		),
	)

	r := &Renderer{md: md}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render converts Markdown to HTML using h for every node.
func (r *Renderer) Render(source []byte, h NodeHandler) ([]byte, error) {
	if r.maxSourceBytes > 0 && len(source) > r.maxSourceBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrSourceTooLarge, len(source), r.maxSourceBytes)
	}

	source = normalizeImageDimensions(source)
	doc := r.md.Parser().Parse(text.NewReader(source))

	w := &walker{source: source, h: h}
	return []byte(w.blocks(doc)), nil
}

var defaultRenderer = NewRenderer()

// FormatMessage renders a chat message with a ChatRenderer built from opts.
func FormatMessage(message string, opts textformat.Options, emojis textformat.EmojiMap, options ...ChatOption) (string, error) {
	out, err := defaultRenderer.Render([]byte(message), NewChatRenderer(opts, emojis, options...))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

type walker struct {
	source []byte
	h      NodeHandler
}

func (w *walker) blocks(parent ast.Node) string {
	var b strings.Builder
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		b.WriteString(w.block(n))
	}
	return b.String()
}

func (w *walker) block(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Paragraph:
		return w.h.Paragraph(w.inlines(n))
	case *ast.TextBlock:
		return w.inlines(n)
	case *ast.Heading:
		return w.h.Heading(w.inlines(n), n.Level)
	case *ast.ThematicBreak:
		return w.h.Hr()
	case *ast.FencedCodeBlock:
		return w.h.Code(w.lines(n), string(n.Language(w.source)))
	case *ast.CodeBlock:
		return w.h.Code(w.lines(n), "")
	case *ast.Blockquote:
		return w.h.Blockquote(w.blocks(n))
	case *ast.List:
		return w.list(n)
	case *ast.HTMLBlock:
		raw := w.lines(n)
		if n.HasClosure() {
			raw += "\n" + string(n.ClosureLine.Value(w.source))
		}
		return w.h.HTML(raw)
	case *extast.Table:
		return w.table(n)
	default:
		if n.Type() == ast.TypeInline {
			return w.inline(n)
		}
		return w.blocks(n)
	}
}

// lines joins the raw lines of a block without the final newline.
func (w *walker) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.source))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (w *walker) list(n *ast.List) string {
	ordered := n.IsOrdered()
	start := 1
	if ordered {
		start = n.Start
	}

	var items strings.Builder
	i := 0
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		bullet := ""
		if ordered {
			bullet = strconv.Itoa(start+i) + "."
		}
		items.WriteString(w.h.ListItem(w.blocks(item), bullet))
		i++
	}
	return w.h.List(items.String(), ordered, start)
}

func (w *walker) table(n *extast.Table) string {
	var header, body strings.Builder
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		_, isHeader := row.(*extast.TableHeader)

		var cells strings.Builder
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			flags := CellFlags{Header: isHeader}
			if cell, ok := c.(*extast.TableCell); ok {
				flags.Align = alignment(cell.Alignment)
			}
			cells.WriteString(w.h.TableCell(w.inlines(c), flags))
		}

		if isHeader {
			header.WriteString(w.h.TableRow(cells.String()))
		} else {
			body.WriteString(w.h.TableRow(cells.String()))
		}
	}
	return w.h.Table(header.String(), body.String())
}

func alignment(a extast.Alignment) Alignment {
	switch a {
	case extast.AlignLeft:
		return AlignLeft
	case extast.AlignCenter:
		return AlignCenter
	case extast.AlignRight:
		return AlignRight
	default:
		return AlignNone
	}
}

// inlines renders the children of n. Adjacent text is merged into a single
// Text call; line breaks end the run.
func (w *walker) inlines(parent ast.Node) string {
	var b, run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			b.WriteString(w.h.Text(run.String()))
			run.Reset()
		}
	}

	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Text:
			run.WriteString(escapeText(n.Segment.Value(w.source)))
			if n.HardLineBreak() || n.SoftLineBreak() {
				flush()
				b.WriteString(w.h.Br())
			}
		case *ast.String:
			run.WriteString(escapeText(n.Value))
		default:
			flush()
			b.WriteString(w.inline(n))
		}
	}
	flush()
	return b.String()
}

func (w *walker) inline(n ast.Node) string {
	switch n := n.(type) {
	case *ast.CodeSpan:
		return w.h.Codespan(textformat.EscapeHTML(w.codeSpan(n)))
	case *ast.Emphasis:
		if n.Level >= 2 {
			return w.h.Strong(w.inlines(n))
		}
		return w.h.Em(w.inlines(n))
	case *ast.Link:
		return w.h.Link(destination(n.Destination), escapeText(n.Title), w.inlines(n), false)
	case *ast.Image:
		return w.h.Image(destination(n.Destination), escapeText(n.Title), textformat.EscapeHTML(w.plainText(n)))
	case *ast.AutoLink:
		url := string(n.URL(w.source))
		if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(url), "mailto:") {
			url = "mailto:" + url
		}
		return w.h.Link(url, "", escapeText(n.Label(w.source)), true)
	case *ast.RawHTML:
		var b strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(w.source))
		}
		return w.h.HTML(b.String())
	case *extast.Strikethrough:
		return w.h.Del(w.inlines(n))
	default:
		return w.inlines(n)
	}
}

func (w *walker) codeSpan(n *ast.CodeSpan) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			value := c.Segment.Value(w.source)
			if len(value) > 0 && value[len(value)-1] == '\n' {
				b.Write(value[:len(value)-1])
				b.WriteByte(' ')
			} else {
				b.Write(value)
			}
		case *ast.String:
			b.Write(c.Value)
		}
	}
	return b.String()
}

// plainText returns the unescaped text content of n, used for image alt text.
func (w *walker) plainText(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.Write(resolve(c.Segment.Value(w.source)))
		case *ast.String:
			b.Write(resolve(c.Value))
		case *ast.CodeSpan:
			b.WriteString(w.codeSpan(c))
		default:
			b.WriteString(w.plainText(c))
		}
	}
	return b.String()
}

func resolve(b []byte) []byte {
	return util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(b)))
}

func escapeText(b []byte) string {
	return textformat.EscapeHTML(string(resolve(b)))
}

func destination(b []byte) string {
	return urlutil.UnescapeHTMLEntities(string(b))
}
