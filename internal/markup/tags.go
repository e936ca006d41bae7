package markup

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Tag names of the markup vocabulary.
const (
	TagDocument      = "doc"
	TagParagraph     = "p"
	TagHeading       = "h"
	TagList          = "list"
	TagListItem      = "li"
	TagBlockQuote    = "blockquote"
	TagCodeBlock     = "pre"
	TagTable         = "table"
	TagTableRow      = "tr"
	TagTableCell     = "td"
	TagThematicBreak = "hr"
	TagHTMLBlock     = "html-block"

	TagEmphasis      = "em"
	TagStrong        = "strong"
	TagStrikethrough = "del"
	TagLink          = "a"
	TagImage         = "img"
	TagCodeSpan      = "code"
	TagHTMLInline    = "html-inline"
	TagSoftBreak     = "softbreak"
	TagLineBreak     = "linebreak"

	// TagControl stands for one character XML cannot carry, such as ESC in
	// captured terminal output. Its code attribute is the hex code point.
	TagControl = "ctl"

	// TagIgnore marks phrases the provider must leave alone. It is not part
	// of the vocabulary and is removed before decoding.
	TagIgnore = "ignore-tag"
)

var blockTags = []string{
	TagParagraph, TagHeading, TagList, TagListItem, TagBlockQuote,
	TagCodeBlock, TagTable, TagTableRow, TagTableCell, TagThematicBreak,
	TagHTMLBlock,
}

var inlineTags = []string{
	TagEmphasis, TagStrong, TagStrikethrough, TagLink, TagImage,
	TagCodeSpan, TagHTMLInline, TagSoftBreak, TagLineBreak, TagControl,
}

// verbatimTags hold literal text the provider must not touch.
var verbatimTags = map[string]bool{
	TagCodeBlock:  true,
	TagCodeSpan:   true,
	TagHTMLBlock:  true,
	TagHTMLInline: true,
}

// Vocabulary returns every tag name the decoder understands.
func Vocabulary() []string {
	out := []string{TagDocument}
	out = append(out, blockTags...)
	return append(out, inlineTags...)
}

// TagOptions configures the provider's tag-handling mode.
type TagOptions struct {
	IgnoreTags       []string
	SplittingTags    []string
	NonSplittingTags []string
}

// ProviderTagOptions returns the tag-handling options matching the
// vocabulary: verbatim elements and ignore markers are skipped, block
// elements split sentences, inline elements do not.
func ProviderTagOptions() TagOptions {
	return TagOptions{
		IgnoreTags:       []string{TagCodeBlock, TagCodeSpan, TagHTMLBlock, TagHTMLInline, TagIgnore, TagControl},
		SplittingTags:    []string{TagParagraph, TagHeading, TagListItem, TagBlockQuote, TagTableCell},
		NonSplittingTags: []string{TagEmphasis, TagStrong, TagStrikethrough, TagLink, TagImage, TagSoftBreak, TagLineBreak},
	}
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#xA;", "\r", "&#xD;", "\t", "&#x9;")
)

// EscapeText escapes the three markup metacharacters in s.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// xmlChar reports whether r may appear in XML 1.0 character data.
func xmlChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// controlCode returns the code attribute for the character at the start
// of s and its width in bytes. Bytes of invalid UTF-8 are written as their
// byte value; codes 0x80-0xFF never name a rune since those are legal XML.
func controlCode(s string) (string, int) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size == 1 {
		return strconv.FormatUint(uint64(s[0]), 16), 1
	}
	return strconv.FormatUint(uint64(r), 16), size
}

// parseControl turns a code attribute back into the text it replaced.
func parseControl(code string) (string, error) {
	v, err := strconv.ParseUint(code, 16, 32)
	if err != nil {
		return "", fmt.Errorf("invalid code=%q", code)
	}
	switch {
	case v < 0x80:
		return string(rune(v)), nil
	case v <= 0xFF:
		return string([]byte{byte(v)}), nil
	case v > utf8.MaxRune:
		return "", fmt.Errorf("invalid code=%q", code)
	}
	return string(rune(v)), nil
}
