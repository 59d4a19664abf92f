package markdown

// NodeHandler turns one parsed Markdown node into an HTML fragment.
//
// Arguments named text, content, title, header or body are HTML that is
// already escaped (children are rendered first and passed in). code and href
// are raw and must be escaped by the handler.
type NodeHandler interface {
	Code(code, language string) string
	Codespan(text string) string
	Br() string
	Image(href, title, text string) string
	Heading(text string, level int) string
	Link(href, title, text string, isURL bool) string
	Paragraph(text string) string
	Table(header, body string) string
	TableRow(content string) string
	TableCell(content string, flags CellFlags) string
	List(content string, ordered bool, start int) string
	ListItem(text, bullet string) string
	Text(text string) string
	Hr() string
	Blockquote(quote string) string
	Strong(text string) string
	Em(text string) string
	Del(text string) string
	HTML(raw string) string
}

// Alignment is the alignment of a table column.
type Alignment string

const (
	AlignNone   Alignment = ""
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// CellFlags describes a table cell.
type CellFlags struct {
	Header bool
	Align  Alignment
}
