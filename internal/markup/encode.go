package markup

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Encode parses markdown and serializes it as tagged markup. With wrapRoot
// the result is a single well-formed element.
func Encode(markdown string, wrapRoot bool) string {
	if markdown == "" && !wrapRoot {
		return ""
	}
	return Marshal(Parse([]byte(markdown)), wrapRoot)
}

// Marshal serializes doc depth-first. Each block element is followed by a
// newline so the payload stays readable in logs; the decoder ignores
// whitespace between blocks.
func Marshal(doc *Document, wrapRoot bool) string {
	e := &encoder{}
	if wrapRoot {
		e.open(TagDocument)
	}
	e.blocks(doc.Blocks)
	if wrapRoot {
		e.close(TagDocument)
	}
	return e.buf.String()
}

type encoder struct {
	buf strings.Builder
}

func (e *encoder) open(tag string, attrs ...string) {
	e.buf.WriteByte('<')
	e.buf.WriteString(tag)
	e.attrs(attrs)
	e.buf.WriteByte('>')
}

func (e *encoder) void(tag string, attrs ...string) {
	e.buf.WriteByte('<')
	e.buf.WriteString(tag)
	e.attrs(attrs)
	e.buf.WriteString("/>")
}

// attrs writes name/value pairs; empty values are omitted.
func (e *encoder) attrs(kv []string) {
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		e.buf.WriteByte(' ')
		e.buf.WriteString(kv[i])
		e.buf.WriteString(`="`)
		e.buf.WriteString(escapeAttr(kv[i+1]))
		e.buf.WriteByte('"')
	}
}

func (e *encoder) close(tag string) {
	e.buf.WriteString("</")
	e.buf.WriteString(tag)
	e.buf.WriteByte('>')
}

// text writes character data. Characters XML cannot carry become
// <ctl code="..."/> elements.
func (e *encoder) text(s string) {
	for s != "" {
		i := illegalIndex(s)
		if i < 0 {
			e.buf.WriteString(EscapeText(s))
			return
		}
		e.buf.WriteString(EscapeText(s[:i]))
		code, size := controlCode(s[i:])
		e.void(TagControl, "code", code)
		s = s[i+size:]
	}
}

func illegalIndex(s string) int {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				return i
			}
		}
		if !xmlChar(r) {
			return i
		}
	}
	return -1
}

func (e *encoder) blocks(blocks []Block) {
	for _, b := range blocks {
		e.block(b)
		e.buf.WriteByte('\n')
	}
}

func (e *encoder) block(b Block) {
	switch b := b.(type) {
	case *Paragraph:
		e.open(TagParagraph)
		e.inlines(b.Inlines)
		e.close(TagParagraph)
	case *Heading:
		e.open(TagHeading, "level", strconv.Itoa(b.Level))
		e.inlines(b.Inlines)
		e.close(TagHeading)
	case *List:
		attrs := []string{"ordered", strconv.FormatBool(b.Ordered)}
		if b.Ordered {
			attrs = append(attrs, "start", strconv.Itoa(b.Start))
		}
		attrs = append(attrs, "tight", strconv.FormatBool(b.Tight))
		if b.Marker != 0 {
			attrs = append(attrs, "marker", string(b.Marker))
		}
		e.open(TagList, attrs...)
		for _, item := range b.Items {
			e.block(item)
		}
		e.close(TagList)
	case *ListItem:
		e.open(TagListItem)
		e.blocks(b.Blocks)
		e.close(TagListItem)
	case *BlockQuote:
		e.open(TagBlockQuote)
		e.blocks(b.Blocks)
		e.close(TagBlockQuote)
	case *CodeBlock:
		e.open(TagCodeBlock, "info", b.Info)
		e.text(b.Literal)
		e.close(TagCodeBlock)
	case *Table:
		e.open(TagTable, "align", formatAlign(b.Align))
		for _, row := range b.Rows {
			e.block(row)
		}
		e.close(TagTable)
	case *TableRow:
		e.open(TagTableRow)
		for _, cell := range b.Cells {
			e.block(cell)
		}
		e.close(TagTableRow)
	case *TableCell:
		header := ""
		if b.Header {
			header = "true"
		}
		e.open(TagTableCell, "header", header)
		e.inlines(b.Inlines)
		e.close(TagTableCell)
	case *ThematicBreak:
		e.void(TagThematicBreak)
	case *RawHTMLBlock:
		e.open(TagHTMLBlock)
		e.text(b.Literal)
		e.close(TagHTMLBlock)
	}
}

func (e *encoder) inlines(inlines []Inline) {
	for _, in := range inlines {
		e.inline(in)
	}
}

func (e *encoder) inline(in Inline) {
	switch in := in.(type) {
	case *Text:
		e.text(in.Content)
	case *Emphasis:
		e.open(TagEmphasis)
		e.inlines(in.Inlines)
		e.close(TagEmphasis)
	case *Strong:
		e.open(TagStrong)
		e.inlines(in.Inlines)
		e.close(TagStrong)
	case *Strikethrough:
		e.open(TagStrikethrough)
		e.inlines(in.Inlines)
		e.close(TagStrikethrough)
	case *Link:
		if in.Autolink {
			e.void(TagLink, "href", in.Destination, "autolink", "true")
			return
		}
		e.open(TagLink, "href", in.Destination, "title", in.Title)
		e.inlines(in.Inlines)
		e.close(TagLink)
	case *Image:
		e.open(TagImage, "src", in.Destination, "title", in.Title)
		e.inlines(in.Alt)
		e.close(TagImage)
	case *CodeSpan:
		e.open(TagCodeSpan)
		e.text(in.Literal)
		e.close(TagCodeSpan)
	case *RawHTMLInline:
		e.open(TagHTMLInline)
		e.text(in.Literal)
		e.close(TagHTMLInline)
	case *SoftBreak:
		e.void(TagSoftBreak)
	case *LineBreak:
		e.void(TagLineBreak)
	}
}

var alignNames = map[Alignment]string{
	AlignNone:   "none",
	AlignLeft:   "left",
	AlignCenter: "center",
	AlignRight:  "right",
}

func formatAlign(align []Alignment) string {
	names := make([]string, len(align))
	for i, a := range align {
		names[i] = alignNames[a]
	}
	return strings.Join(names, ",")
}

// TranslatableText returns the text a translation provider would see:
// character data of every non-verbatim node, one line per block.
func TranslatableText(doc *Document) string {
	var buf strings.Builder
	var walkInlines func([]Inline)
	walkInlines = func(inlines []Inline) {
		for _, in := range inlines {
			switch in := in.(type) {
			case *Text:
				buf.WriteString(in.Content)
			case *Emphasis:
				walkInlines(in.Inlines)
			case *Strong:
				walkInlines(in.Inlines)
			case *Strikethrough:
				walkInlines(in.Inlines)
			case *Link:
				walkInlines(in.Inlines)
			case *Image:
				walkInlines(in.Alt)
			case *SoftBreak, *LineBreak:
				buf.WriteByte(' ')
			}
		}
	}
	var walkBlocks func([]Block)
	walkBlocks = func(blocks []Block) {
		for _, b := range blocks {
			switch b := b.(type) {
			case *Paragraph:
				walkInlines(b.Inlines)
				buf.WriteByte('\n')
			case *Heading:
				walkInlines(b.Inlines)
				buf.WriteByte('\n')
			case *List:
				for _, item := range b.Items {
					walkBlocks(item.Blocks)
				}
			case *ListItem:
				walkBlocks(b.Blocks)
			case *BlockQuote:
				walkBlocks(b.Blocks)
			case *Table:
				for _, row := range b.Rows {
					for _, cell := range row.Cells {
						walkInlines(cell.Inlines)
						buf.WriteByte('\n')
					}
				}
			}
		}
	}
	walkBlocks(doc.Blocks)
	return buf.String()
}
