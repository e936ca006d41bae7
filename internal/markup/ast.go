// Package markup converts CommonMark documents to a closed, XML-like tag
// vocabulary and back. The tagged form is what gets sent to the translation
// provider: structure lives in tags, translatable text lives in character
// data, and verbatim spans sit inside tags the provider is told to ignore.
package markup

// Document is the root of a parsed CommonMark document.
// A Document is built per call and is not safe for concurrent modification.
type Document struct {
	Blocks []Block
}

// Block is a block-level node. The set of implementations is closed.
type Block interface {
	block()
}

// Inline is an inline node. The set of implementations is closed.
type Inline interface {
	inline()
}

// Alignment is the alignment of a table column.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

type Paragraph struct {
	Inlines []Inline
}

type Heading struct {
	Level   int
	Inlines []Inline
}

// List is an ordered or bullet list. Marker is the bullet character for
// bullet lists or the delimiter ('.' or ')') for ordered lists; zero means
// the default ('-' or '.').
type List struct {
	Ordered bool
	Start   int
	Tight   bool
	Marker  byte
	Items   []*ListItem
}

type ListItem struct {
	Blocks []Block
}

type BlockQuote struct {
	Blocks []Block
}

// CodeBlock holds the literal content of a fenced or indented code block,
// including the trailing newline of its last line.
type CodeBlock struct {
	Info    string
	Literal string
}

type Table struct {
	Align []Alignment
	Rows  []*TableRow
}

type TableRow struct {
	Cells []*TableCell
}

type TableCell struct {
	Header  bool
	Inlines []Inline
}

type ThematicBreak struct{}

type RawHTMLBlock struct {
	Literal string
}

func (*Paragraph) block()     {}
func (*Heading) block()       {}
func (*List) block()          {}
func (*ListItem) block()      {}
func (*BlockQuote) block()    {}
func (*CodeBlock) block()     {}
func (*Table) block()         {}
func (*TableRow) block()      {}
func (*TableCell) block()     {}
func (*ThematicBreak) block() {}
func (*RawHTMLBlock) block()  {}

// Text is a run of literal text, kept in its source form (backslash escapes
// and entity references are not resolved).
type Text struct {
	Content string
}

type Emphasis struct {
	Inlines []Inline
}

type Strong struct {
	Inlines []Inline
}

type Strikethrough struct {
	Inlines []Inline
}

// Link is an inline link. Autolink marks the <scheme:...> form, which has no
// separate link text.
type Link struct {
	Destination string
	Title       string
	Autolink    bool
	Inlines     []Inline
}

type Image struct {
	Destination string
	Title       string
	Alt         []Inline
}

type CodeSpan struct {
	Literal string
}

type RawHTMLInline struct {
	Literal string
}

type SoftBreak struct{}

type LineBreak struct{}

func (*Text) inline()          {}
func (*Emphasis) inline()      {}
func (*Strong) inline()        {}
func (*Strikethrough) inline() {}
func (*Link) inline()          {}
func (*Image) inline()         {}
func (*CodeSpan) inline()      {}
func (*RawHTMLInline) inline() {}
func (*SoftBreak) inline()     {}
func (*LineBreak) inline()     {}

// Verbatim reports whether n carries literal text that must never reach the
// translation payload.
func Verbatim(n any) bool {
	switch n.(type) {
	case *CodeBlock, *CodeSpan, *RawHTMLBlock, *RawHTMLInline:
		return true
	}
	return false
}
