package markup

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Decode parses tagged markup and renders it back to CommonMark.
func Decode(markup string, unwrapRoot bool) (string, error) {
	doc, err := Unmarshal(markup, unwrapRoot)
	if err != nil {
		return "", err
	}
	return Render(doc), nil
}

// Unmarshal parses tagged markup into a Document. With unwrapRoot the
// markup must be a single root element as produced by Marshal(doc, true);
// otherwise it is a sequence of block elements.
func Unmarshal(markup string, unwrapRoot bool) (*Document, error) {
	if strings.TrimSpace(markup) == "" {
		return &Document{}, nil
	}

	src := markup
	if !unwrapRoot {
		src = "<" + TagDocument + ">" + markup + "</" + TagDocument + ">"
	}

	if err := checkWellFormed(src); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}

	root, err := xmlquery.Parse(strings.NewReader(src))
	if err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}

	var top *xmlquery.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode:
			if top != nil {
				return nil, malformed("", "more than one root element")
			}
			top = c
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if strings.TrimSpace(c.Data) != "" {
				return nil, malformed("", "text outside the root element")
			}
		}
	}
	if top == nil {
		return nil, malformed("", "no root element")
	}
	if top.Data != TagDocument {
		return nil, malformed("", "root element is <%s>, want <%s>", top.Data, TagDocument)
	}

	blocks, err := decodeBlocks(top, TagDocument)
	if err != nil {
		return nil, err
	}
	return &Document{Blocks: blocks}, nil
}

// checkWellFormed runs the token stream once so unbalanced or truncated
// markup is reported before tree assembly.
func checkWellFormed(src string) error {
	dec := xml.NewDecoder(strings.NewReader(src))
	dec.Entity = map[string]string{}
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// verbatim returns the literal text of a verbatim element with control
// elements expanded. Other markup inside it contributes only its text.
func verbatim(n *xmlquery.Node, path string) (string, error) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case isText(c):
			b.WriteString(c.Data)
		case c.Type == xmlquery.ElementNode && c.Data == TagControl:
			s, err := control(c, path)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case c.Type == xmlquery.ElementNode:
			s, err := verbatim(c, path)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
	}
	return b.String(), nil
}

func control(n *xmlquery.Node, path string) (string, error) {
	s, err := parseControl(n.SelectAttr("code"))
	if err != nil {
		return "", malformed(path, "<%s>: %v", TagControl, err)
	}
	return s, nil
}

func isText(n *xmlquery.Node) bool {
	return n.Type == xmlquery.TextNode || n.Type == xmlquery.CharDataNode
}

func childPath(path, tag string, i int) string {
	return fmt.Sprintf("%s/%s[%d]", path, tag, i)
}

// decodeBlocks decodes the children of a block container. Stray text and
// inline elements are collected into an implicit paragraph.
func decodeBlocks(parent *xmlquery.Node, path string) ([]Block, error) {
	var (
		out   []Block
		stray []*xmlquery.Node
	)
	flush := func() error {
		if len(stray) == 0 {
			return nil
		}
		inlines, err := decodeInlineNodes(stray, path)
		stray = nil
		if err != nil {
			return err
		}
		if last, ok := lastText(inlines); ok {
			last.Content = strings.TrimRight(last.Content, " \t\r\n")
			if last.Content == "" {
				inlines = inlines[:len(inlines)-1]
			}
		}
		if len(inlines) > 0 {
			out = append(out, &Paragraph{Inlines: inlines})
		}
		return nil
	}

	i := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case isText(c):
			if strings.TrimSpace(c.Data) == "" && len(stray) == 0 {
				continue
			}
			stray = append(stray, c)
		case c.Type == xmlquery.ElementNode && isInlineTag(c.Data):
			stray = append(stray, c)
		case c.Type == xmlquery.ElementNode:
			if err := flush(); err != nil {
				return nil, err
			}
			b, err := decodeBlock(c, childPath(path, c.Data, i))
			if err != nil {
				return nil, err
			}
			out = append(out, b)
			i++
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

func isInlineTag(tag string) bool {
	for _, t := range inlineTags {
		if t == tag {
			return true
		}
	}
	return false
}

func isBlockTag(tag string) bool {
	for _, t := range blockTags {
		if t == tag {
			return true
		}
	}
	return tag == TagDocument
}

func decodeBlock(n *xmlquery.Node, path string) (Block, error) {
	switch n.Data {
	case TagParagraph:
		inlines, err := decodeInlines(n, path)
		if err != nil {
			return nil, err
		}
		return &Paragraph{Inlines: inlines}, nil

	case TagHeading:
		level, err := strconv.Atoi(n.SelectAttr("level"))
		if err != nil || level < 1 || level > 6 {
			return nil, malformed(path, "invalid heading level %q", n.SelectAttr("level"))
		}
		inlines, err := decodeInlines(n, path)
		if err != nil {
			return nil, err
		}
		return &Heading{Level: level, Inlines: inlines}, nil

	case TagList:
		return decodeList(n, path)

	case TagBlockQuote:
		blocks, err := decodeBlocks(n, path)
		if err != nil {
			return nil, err
		}
		return &BlockQuote{Blocks: blocks}, nil

	case TagCodeBlock:
		literal, err := verbatim(n, path)
		if err != nil {
			return nil, err
		}
		return &CodeBlock{Info: n.SelectAttr("info"), Literal: literal}, nil

	case TagTable:
		return decodeTable(n, path)

	case TagThematicBreak:
		return &ThematicBreak{}, nil

	case TagHTMLBlock:
		literal, err := verbatim(n, path)
		if err != nil {
			return nil, err
		}
		return &RawHTMLBlock{Literal: literal}, nil

	case TagListItem, TagTableRow, TagTableCell, TagDocument:
		return nil, malformed(path, "<%s> is not allowed here", n.Data)
	}
	return nil, &DecodeError{Path: path, Err: fmt.Errorf("%w <%s>", ErrUnknownTag, n.Data)}
}

func boolAttr(n *xmlquery.Node, name string, def bool, path string) (bool, error) {
	v := n.SelectAttr(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, malformed(path, "invalid %s=%q", name, v)
	}
	return b, nil
}

// childElements returns the element children of n, rejecting any
// non-whitespace text between them.
func childElements(n *xmlquery.Node, path string) ([]*xmlquery.Node, error) {
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case isText(c):
			if strings.TrimSpace(c.Data) != "" {
				return nil, malformed(path, "unexpected text in <%s>", n.Data)
			}
		case c.Type == xmlquery.ElementNode:
			out = append(out, c)
		}
	}
	return out, nil
}

func expectTag(n *xmlquery.Node, tag, path string) error {
	if n.Data == tag {
		return nil
	}
	if !isBlockTag(n.Data) && !isInlineTag(n.Data) {
		return &DecodeError{Path: path, Err: fmt.Errorf("%w <%s>", ErrUnknownTag, n.Data)}
	}
	return malformed(path, "<%s> is not allowed here, want <%s>", n.Data, tag)
}

func decodeList(n *xmlquery.Node, path string) (Block, error) {
	ordered, err := boolAttr(n, "ordered", false, path)
	if err != nil {
		return nil, err
	}
	tight, err := boolAttr(n, "tight", true, path)
	if err != nil {
		return nil, err
	}
	l := &List{Ordered: ordered, Tight: tight}

	if ordered {
		l.Start = 1
		if s := n.SelectAttr("start"); s != "" {
			start, err := strconv.Atoi(s)
			if err != nil || start < 0 {
				return nil, malformed(path, "invalid start=%q", s)
			}
			l.Start = start
		}
	}
	if m := n.SelectAttr("marker"); m != "" {
		if len(m) != 1 || !validMarker(ordered, m[0]) {
			return nil, malformed(path, "invalid marker=%q", m)
		}
		l.Marker = m[0]
	}

	items, err := childElements(n, path)
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		itemPath := childPath(path, item.Data, i)
		if err := expectTag(item, TagListItem, itemPath); err != nil {
			return nil, err
		}
		blocks, err := decodeBlocks(item, itemPath)
		if err != nil {
			return nil, err
		}
		l.Items = append(l.Items, &ListItem{Blocks: blocks})
	}
	return l, nil
}

func validMarker(ordered bool, m byte) bool {
	if ordered {
		return m == '.' || m == ')'
	}
	return m == '-' || m == '+' || m == '*'
}

func decodeTable(n *xmlquery.Node, path string) (Block, error) {
	t := &Table{}
	if a := n.SelectAttr("align"); a != "" {
		for _, name := range strings.Split(a, ",") {
			align, ok := parseAlign(strings.TrimSpace(name))
			if !ok {
				return nil, malformed(path, "invalid align=%q", a)
			}
			t.Align = append(t.Align, align)
		}
	}

	rows, err := childElements(n, path)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		rowPath := childPath(path, row.Data, i)
		if err := expectTag(row, TagTableRow, rowPath); err != nil {
			return nil, err
		}
		cells, err := childElements(row, rowPath)
		if err != nil {
			return nil, err
		}
		r := &TableRow{}
		for j, cell := range cells {
			cellPath := childPath(rowPath, cell.Data, j)
			if err := expectTag(cell, TagTableCell, cellPath); err != nil {
				return nil, err
			}
			header, err := boolAttr(cell, "header", false, cellPath)
			if err != nil {
				return nil, err
			}
			inlines, err := decodeInlines(cell, cellPath)
			if err != nil {
				return nil, err
			}
			r.Cells = append(r.Cells, &TableCell{Header: header, Inlines: inlines})
		}
		t.Rows = append(t.Rows, r)
	}
	return t, nil
}

func parseAlign(name string) (Alignment, bool) {
	for a, n := range alignNames {
		if n == name {
			return a, true
		}
	}
	return AlignNone, false
}

func decodeInlines(parent *xmlquery.Node, path string) ([]Inline, error) {
	var nodes []*xmlquery.Node
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		nodes = append(nodes, c)
	}
	return decodeInlineNodes(nodes, path)
}

func decodeInlineNodes(nodes []*xmlquery.Node, path string) ([]Inline, error) {
	var out []Inline
	appendText := func(s string) {
		if s == "" {
			return
		}
		if last, ok := lastText(out); ok {
			last.Content += s
			return
		}
		out = append(out, &Text{Content: s})
	}

	for _, n := range nodes {
		if isText(n) {
			appendText(n.Data)
			continue
		}
		if n.Type != xmlquery.ElementNode {
			continue
		}

		in, err := decodeInline(n, path)
		if err != nil {
			return nil, err
		}
		for _, x := range in {
			if t, ok := x.(*Text); ok {
				appendText(t.Content)
				continue
			}
			out = append(out, x)
		}
	}
	return out, nil
}

func lastText(inlines []Inline) (*Text, bool) {
	if len(inlines) == 0 {
		return nil, false
	}
	t, ok := inlines[len(inlines)-1].(*Text)
	return t, ok
}

// decodeInline returns a slice so that unknown inline elements can be
// flattened into their children.
func decodeInline(n *xmlquery.Node, path string) ([]Inline, error) {
	children := func() ([]Inline, error) { return decodeInlines(n, path) }

	switch n.Data {
	case TagEmphasis:
		inlines, err := children()
		if err != nil {
			return nil, err
		}
		return []Inline{&Emphasis{Inlines: inlines}}, nil
	case TagStrong:
		inlines, err := children()
		if err != nil {
			return nil, err
		}
		return []Inline{&Strong{Inlines: inlines}}, nil
	case TagStrikethrough:
		inlines, err := children()
		if err != nil {
			return nil, err
		}
		return []Inline{&Strikethrough{Inlines: inlines}}, nil
	case TagLink:
		autolink, err := boolAttr(n, "autolink", false, path)
		if err != nil {
			return nil, err
		}
		if autolink {
			return []Inline{&Link{Destination: n.SelectAttr("href"), Autolink: true}}, nil
		}
		inlines, err := children()
		if err != nil {
			return nil, err
		}
		return []Inline{&Link{
			Destination: n.SelectAttr("href"),
			Title:       n.SelectAttr("title"),
			Inlines:     inlines,
		}}, nil
	case TagImage:
		alt, err := children()
		if err != nil {
			return nil, err
		}
		return []Inline{&Image{
			Destination: n.SelectAttr("src"),
			Title:       n.SelectAttr("title"),
			Alt:         alt,
		}}, nil
	case TagCodeSpan:
		literal, err := verbatim(n, path)
		if err != nil {
			return nil, err
		}
		return []Inline{&CodeSpan{Literal: literal}}, nil
	case TagHTMLInline:
		literal, err := verbatim(n, path)
		if err != nil {
			return nil, err
		}
		return []Inline{&RawHTMLInline{Literal: literal}}, nil
	case TagControl:
		c, err := control(n, path)
		if err != nil {
			return nil, err
		}
		return []Inline{&Text{Content: c}}, nil
	case TagSoftBreak:
		return []Inline{&SoftBreak{}}, nil
	case TagLineBreak:
		return []Inline{&LineBreak{}}, nil
	}

	if isBlockTag(n.Data) {
		return nil, malformed(path, "block element <%s> inside inline content", n.Data)
	}
	// Unknown inline markup: keep its content, drop the tag.
	return children()
}
