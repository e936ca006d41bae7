package markup

import (
	"strconv"
	"strings"
)

// Render writes doc as CommonMark. Blocks are separated by a blank line and
// the output carries no trailing newline.
//
// Rendering normalizes some source forms: setext headings become ATX,
// indented code becomes fenced, reference links become inline links and
// thematic breaks are written as "***". List items keep the source marker;
// ordered items are renumbered from the list start, so "1. a\n1. b"
// renders as "1. a\n2. b".
func Render(doc *Document) string {
	return renderBlocks(doc.Blocks, false)
}

func renderBlocks(blocks []Block, tight bool) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, renderBlock(b))
	}
	sep := "\n\n"
	if tight {
		sep = "\n"
	}
	return strings.Join(parts, sep)
}

func renderBlock(b Block) string {
	switch b := b.(type) {
	case *Paragraph:
		return renderInlines(b.Inlines, false)
	case *Heading:
		marks := strings.Repeat("#", b.Level)
		content := strings.TrimSpace(renderInlines(b.Inlines, true))
		if content == "" {
			return marks
		}
		return marks + " " + content
	case *ThematicBreak:
		return "***"
	case *CodeBlock:
		return renderCodeBlock(b)
	case *RawHTMLBlock:
		return strings.TrimSuffix(b.Literal, "\n")
	case *List:
		return renderList(b)
	case *ListItem:
		return renderBlocks(b.Blocks, false)
	case *BlockQuote:
		return prefixLines(renderBlocks(b.Blocks, false), "> ", "> ", ">")
	case *Table:
		return renderTable(b)
	}
	return ""
}

func renderCodeBlock(b *CodeBlock) string {
	fenceChar := "`"
	if strings.Contains(b.Info, "`") {
		fenceChar = "~"
	}
	n := longestRun(b.Literal, fenceChar[0]) + 1
	if n < 3 {
		n = 3
	}
	fence := strings.Repeat(fenceChar, n)

	var buf strings.Builder
	buf.WriteString(fence)
	buf.WriteString(b.Info)
	buf.WriteByte('\n')
	buf.WriteString(b.Literal)
	if b.Literal != "" && !strings.HasSuffix(b.Literal, "\n") {
		buf.WriteByte('\n')
	}
	buf.WriteString(fence)
	return buf.String()
}

func renderList(l *List) string {
	items := make([]string, 0, len(l.Items))
	for i, item := range l.Items {
		marker := listMarker(l, i)
		indent := strings.Repeat(" ", len(marker)+1)
		content := renderBlocks(item.Blocks, l.Tight)
		if content == "" {
			items = append(items, marker)
			continue
		}
		items = append(items, prefixLines(content, marker+" ", indent, ""))
	}
	sep := "\n\n"
	if l.Tight {
		sep = "\n"
	}
	return strings.Join(items, sep)
}

func listMarker(l *List, i int) string {
	if !l.Ordered {
		if l.Marker != 0 {
			return string(l.Marker)
		}
		return "-"
	}
	delim := byte('.')
	if l.Marker != 0 {
		delim = l.Marker
	}
	return strconv.Itoa(l.Start+i) + string(delim)
}

// prefixLines prefixes the first line of s with first and every later line
// with rest. Blank lines get blank instead.
func prefixLines(s, first, rest, blank string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		switch {
		case i == 0:
			lines[i] = first + line
		case line == "":
			lines[i] = blank
		default:
			lines[i] = rest + line
		}
	}
	return strings.Join(lines, "\n")
}

func renderTable(t *Table) string {
	if len(t.Rows) == 0 {
		return ""
	}
	cols := len(t.Align)
	for _, row := range t.Rows {
		if len(row.Cells) > cols {
			cols = len(row.Cells)
		}
	}

	lines := make([]string, 0, len(t.Rows)+1)
	for i, row := range t.Rows {
		cells := make([]string, cols)
		for j, cell := range row.Cells {
			cells[j] = strings.TrimSpace(renderInlines(cell.Inlines, true))
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		if i == 0 {
			lines = append(lines, delimiterRow(t.Align, cols))
		}
	}
	return strings.Join(lines, "\n")
}

func delimiterRow(align []Alignment, cols int) string {
	cells := make([]string, cols)
	for i := range cells {
		a := AlignNone
		if i < len(align) {
			a = align[i]
		}
		switch a {
		case AlignLeft:
			cells[i] = ":---"
		case AlignCenter:
			cells[i] = ":---:"
		case AlignRight:
			cells[i] = "---:"
		default:
			cells[i] = "---"
		}
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

// renderInlines writes inline content. singleLine is set for headings and
// table cells, where a line break would end the block.
func renderInlines(inlines []Inline, singleLine bool) string {
	var buf strings.Builder
	for _, in := range inlines {
		renderInline(&buf, in, singleLine)
	}
	return buf.String()
}

func renderInline(buf *strings.Builder, in Inline, singleLine bool) {
	switch in := in.(type) {
	case *Text:
		if singleLine {
			buf.WriteString(strings.ReplaceAll(in.Content, "\n", " "))
			return
		}
		buf.WriteString(in.Content)
	case *Emphasis:
		buf.WriteString("*" + renderInlines(in.Inlines, singleLine) + "*")
	case *Strong:
		buf.WriteString("**" + renderInlines(in.Inlines, singleLine) + "**")
	case *Strikethrough:
		buf.WriteString("~~" + renderInlines(in.Inlines, singleLine) + "~~")
	case *Link:
		if in.Autolink {
			buf.WriteString("<" + in.Destination + ">")
			return
		}
		buf.WriteString("[" + renderInlines(in.Inlines, singleLine) + "]")
		buf.WriteString(linkTarget(in.Destination, in.Title))
	case *Image:
		buf.WriteString("![" + renderInlines(in.Alt, singleLine) + "]")
		buf.WriteString(linkTarget(in.Destination, in.Title))
	case *CodeSpan:
		buf.WriteString(renderCodeSpan(in.Literal))
	case *RawHTMLInline:
		buf.WriteString(in.Literal)
	case *SoftBreak:
		if singleLine {
			buf.WriteByte(' ')
			return
		}
		buf.WriteByte('\n')
	case *LineBreak:
		if singleLine {
			buf.WriteByte(' ')
			return
		}
		buf.WriteString("\\\n")
	}
}

func linkTarget(dest, title string) string {
	out := "(" + formatDestination(dest)
	if title != "" {
		out += " " + formatTitle(title)
	}
	return out + ")"
}

func formatDestination(dest string) string {
	if dest != "" && !needsAngleBrackets(dest) {
		return dest
	}
	r := strings.NewReplacer("<", `\<`, ">", `\>`)
	return "<" + r.Replace(dest) + ">"
}

func needsAngleBrackets(dest string) bool {
	depth := 0
	for i := 0; i < len(dest); i++ {
		c := dest[i]
		switch {
		case c <= ' ' || c == 0x7f:
			return true
		case c == '\\':
			i++
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return true
			}
		}
	}
	return depth != 0
}

func formatTitle(title string) string {
	switch {
	case !hasUnescaped(title, '"'):
		return `"` + title + `"`
	case !hasUnescaped(title, '\''):
		return "'" + title + "'"
	case !hasUnescaped(title, '(') && !hasUnescaped(title, ')'):
		return "(" + title + ")"
	}
	var buf strings.Builder
	buf.WriteByte('"')
	for i := 0; i < len(title); i++ {
		c := title[i]
		if c == '\\' && i+1 < len(title) {
			buf.WriteByte(c)
			buf.WriteByte(title[i+1])
			i++
			continue
		}
		if c == '"' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(c)
	}
	buf.WriteByte('"')
	return buf.String()
}

func hasUnescaped(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case c:
			return true
		}
	}
	return false
}

// renderCodeSpan picks the shortest backtick run not present in the
// literal and pads with a space where the content would otherwise be
// stripped or merged with the delimiters.
func renderCodeSpan(literal string) string {
	n := 1
	for hasRun(literal, '`', n) {
		n++
	}
	ticks := strings.Repeat("`", n)

	pad := strings.HasPrefix(literal, "`") || strings.HasSuffix(literal, "`")
	if len(literal) >= 2 && literal[0] == ' ' && literal[len(literal)-1] == ' ' &&
		strings.Trim(literal, " ") != "" {
		pad = true
	}
	if pad {
		return ticks + " " + literal + " " + ticks
	}
	return ticks + literal + ticks
}

// hasRun reports whether s contains a run of exactly n copies of c.
func hasRun(s string, c byte, n int) bool {
	run := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] == c {
			run++
			continue
		}
		if run == n {
			return true
		}
		run = 0
	}
	return false
}

func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	return longest
}
