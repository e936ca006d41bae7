package markup

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// The engine holds no per-document state, so one instance serves every call.
var engine = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Strikethrough,
	),
)

// Parse parses CommonMark source into a Document. Parsing never fails:
// constructs outside the supported subset degrade to raw HTML passthrough.
func Parse(src []byte) *Document {
	root := engine.Parser().Parse(text.NewReader(src))
	b := &builder{source: src}
	return &Document{Blocks: b.blocks(root)}
}

type builder struct {
	source []byte
}

func (b *builder) blocks(parent ast.Node) []Block {
	var out []Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if blk := b.block(n); blk != nil {
			out = append(out, blk)
		}
	}
	return out
}

func (b *builder) block(n ast.Node) Block {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		// Link reference definitions leave an empty paragraph behind.
		if n.Lines().Len() == 0 && !n.HasChildren() {
			return nil
		}
		return &Paragraph{Inlines: b.inlines(n)}
	case *ast.Heading:
		return &Heading{Level: n.Level, Inlines: b.inlines(n)}
	case *ast.ThematicBreak:
		return &ThematicBreak{}
	case *ast.FencedCodeBlock:
		info := ""
		if n.Info != nil {
			info = string(n.Info.Segment.Value(b.source))
		}
		return &CodeBlock{Info: info, Literal: b.lines(n.Lines())}
	case *ast.CodeBlock:
		return &CodeBlock{Literal: b.lines(n.Lines())}
	case *ast.Blockquote:
		return &BlockQuote{Blocks: b.blocks(n)}
	case *ast.List:
		l := &List{
			Ordered: n.IsOrdered(),
			Tight:   n.IsTight,
			Marker:  n.Marker,
		}
		if l.Ordered {
			l.Start = n.Start
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			l.Items = append(l.Items, &ListItem{Blocks: b.blocks(c)})
		}
		return l
	case *ast.HTMLBlock:
		literal := b.lines(n.Lines())
		if n.HasClosure() {
			literal += string(n.ClosureLine.Value(b.source))
		}
		return &RawHTMLBlock{Literal: literal}
	case *east.Table:
		t := &Table{}
		for _, a := range n.Alignments {
			t.Align = append(t.Align, alignment(a))
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			_, header := c.(*east.TableHeader)
			row := &TableRow{}
			for cell := c.FirstChild(); cell != nil; cell = cell.NextSibling() {
				row.Cells = append(row.Cells, &TableCell{Header: header, Inlines: b.inlines(cell)})
			}
			t.Rows = append(t.Rows, row)
		}
		return t
	}

	// Anything else is carried through untouched.
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return &RawHTMLBlock{Literal: b.lines(n.Lines())}
	}
	if n.HasChildren() {
		return &Paragraph{Inlines: b.inlines(n)}
	}
	return nil
}

func alignment(a east.Alignment) Alignment {
	switch a {
	case east.AlignLeft:
		return AlignLeft
	case east.AlignCenter:
		return AlignCenter
	case east.AlignRight:
		return AlignRight
	}
	return AlignNone
}

func (b *builder) lines(segs *text.Segments) string {
	var buf bytes.Buffer
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		buf.Write(seg.Value(b.source))
	}
	return buf.String()
}

// inlines converts the inline children of parent. Adjacent text nodes are
// merged; goldmark splits text at every delimiter candidate.
func (b *builder) inlines(parent ast.Node) []Inline {
	var (
		out []Inline
		run strings.Builder
	)
	flush := func() {
		if run.Len() > 0 {
			out = append(out, &Text{Content: run.String()})
			run.Reset()
		}
	}

	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Text:
			value := string(n.Segment.Value(b.source))
			switch {
			case n.HardLineBreak():
				run.WriteString(trimHardBreak(value))
				flush()
				out = append(out, &LineBreak{})
			case n.SoftLineBreak():
				run.WriteString(strings.TrimRight(value, " \t"))
				flush()
				out = append(out, &SoftBreak{})
			default:
				run.WriteString(value)
			}
			continue
		case *ast.String:
			run.WriteString(string(n.Value))
			continue
		}

		flush()
		if in := b.inline(n); in != nil {
			out = append(out, in)
		}
	}
	flush()
	return out
}

// trimHardBreak drops the break marker (a lone trailing backslash or
// trailing spaces) if goldmark left it in the segment.
func trimHardBreak(s string) string {
	s = strings.TrimRight(s, " \t")
	if strings.HasSuffix(s, `\`) && !strings.HasSuffix(s, `\\`) {
		s = s[:len(s)-1]
	}
	return s
}

func (b *builder) inline(n ast.Node) Inline {
	switch n := n.(type) {
	case *ast.Emphasis:
		if n.Level >= 2 {
			return &Strong{Inlines: b.inlines(n)}
		}
		return &Emphasis{Inlines: b.inlines(n)}
	case *east.Strikethrough:
		return &Strikethrough{Inlines: b.inlines(n)}
	case *ast.Link:
		return &Link{
			Destination: string(n.Destination),
			Title:       string(n.Title),
			Inlines:     b.inlines(n),
		}
	case *ast.Image:
		return &Image{
			Destination: string(n.Destination),
			Title:       string(n.Title),
			Alt:         b.inlines(n),
		}
	case *ast.AutoLink:
		return &Link{Destination: string(n.Label(b.source)), Autolink: true}
	case *ast.CodeSpan:
		var buf bytes.Buffer
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			t, ok := c.(*ast.Text)
			if !ok {
				continue
			}
			value := t.Segment.Value(b.source)
			if bytes.HasSuffix(value, []byte("\n")) {
				buf.Write(value[:len(value)-1])
				buf.WriteByte(' ')
				continue
			}
			buf.Write(value)
		}
		return &CodeSpan{Literal: buf.String()}
	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(b.source))
		}
		return &RawHTMLInline{Literal: buf.String()}
	}

	//nolint:staticcheck // Text is the only generic accessor for unknown inlines.
	if raw := n.Text(b.source); len(raw) > 0 {
		return &RawHTMLInline{Literal: string(raw)}
	}
	return nil
}
