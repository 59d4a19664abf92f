package markdown

import (
	"strconv"
	"strings"

	"github.com/jun/chatmark/core/textformat"
)

// BaseHandler renders plain Markdown HTML with no chat-specific behaviour.
// Raw HTML is escaped rather than passed through.
type BaseHandler struct{}

var _ NodeHandler = BaseHandler{}

func (BaseHandler) Code(code, language string) string {
	escaped := textformat.EscapeHTML(code)
	if language == "" {
		return "<pre><code>" + escaped + "</code></pre>\n"
	}
	return `<pre><code class="language-` + textformat.EscapeHTML(language) + `">` + escaped + "</code></pre>\n"
}

func (BaseHandler) Codespan(text string) string {
	return "<code>" + text + "</code>"
}

func (BaseHandler) Br() string {
	return "<br>"
}

func (BaseHandler) Image(href, title, text string) string {
	out := `<img src="` + textformat.EscapeHTML(href) + `" alt="` + text + `"`
	if title != "" {
		out += ` title="` + title + `"`
	}
	return out + ">"
}

func (BaseHandler) Heading(text string, level int) string {
	tag := "h" + strconv.Itoa(level)
	return "<" + tag + ">" + text + "</" + tag + ">\n"
}

func (BaseHandler) Link(href, title, text string, _ bool) string {
	out := `<a href="` + textformat.EscapeHTML(href) + `"`
	if title != "" {
		out += ` title="` + title + `"`
	}
	return out + ">" + text + "</a>"
}

func (BaseHandler) Paragraph(text string) string {
	return "<p>" + text + "</p>\n"
}

func (BaseHandler) Table(header, body string) string {
	var b strings.Builder
	b.WriteString("<table>\n<thead>\n")
	b.WriteString(header)
	b.WriteString("</thead>\n")
	if body != "" {
		b.WriteString("<tbody>")
		b.WriteString(body)
		b.WriteString("</tbody>")
	}
	b.WriteString("</table>\n")
	return b.String()
}

func (BaseHandler) TableRow(content string) string {
	return "<tr>\n" + content + "</tr>\n"
}

func (BaseHandler) TableCell(content string, flags CellFlags) string {
	tag := "td"
	if flags.Header {
		tag = "th"
	}
	open := "<" + tag + ">"
	if flags.Align != AlignNone {
		open = "<" + tag + ` style="text-align:` + string(flags.Align) + `">`
	}
	return open + content + "</" + tag + ">\n"
}

func (BaseHandler) List(content string, ordered bool, start int) string {
	if !ordered {
		return "<ul>\n" + content + "</ul>\n"
	}
	if start != 1 {
		return `<ol start="` + strconv.Itoa(start) + `">` + "\n" + content + "</ol>\n"
	}
	return "<ol>\n" + content + "</ol>\n"
}

func (BaseHandler) ListItem(text, _ string) string {
	return "<li>" + text + "</li>\n"
}

func (BaseHandler) Text(text string) string {
	return text
}

func (BaseHandler) Hr() string {
	return "<hr>\n"
}

func (BaseHandler) Blockquote(quote string) string {
	return "<blockquote>\n" + quote + "</blockquote>\n"
}

func (BaseHandler) Strong(text string) string {
	return "<strong>" + text + "</strong>"
}

func (BaseHandler) Em(text string) string {
	return "<em>" + text + "</em>"
}

func (BaseHandler) Del(text string) string {
	return "<del>" + text + "</del>"
}

func (BaseHandler) HTML(raw string) string {
	return textformat.EscapeHTML(raw)
}
