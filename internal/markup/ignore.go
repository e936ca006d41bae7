package markup

import (
	"regexp"
	"sort"
	"strings"
)

const (
	ignoreOpen  = "<" + TagIgnore + ">"
	ignoreClose = "</" + TagIgnore + ">"
)

var entityPattern = regexp.MustCompile(`&[#A-Za-z0-9]+;`)

// IgnoreMatcher wraps configured phrases in ignore markers. It is built
// once per project and safe for concurrent use.
type IgnoreMatcher struct {
	re *regexp.Regexp
}

// NewIgnoreMatcher compiles phrases into a single case-insensitive
// alternation. Longer phrases come first so they win over their own
// prefixes at the same position. Blank phrases are dropped.
func NewIgnoreMatcher(phrases []string) *IgnoreMatcher {
	seen := make(map[string]bool, len(phrases))
	var list []string
	for _, p := range phrases {
		if strings.TrimSpace(p) == "" {
			continue
		}
		key := strings.ToLower(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		list = append(list, p)
	}
	if len(list) == 0 {
		return &IgnoreMatcher{}
	}

	sort.SliceStable(list, func(i, j int) bool { return len(list[i]) > len(list[j]) })
	alts := make([]string, len(list))
	for i, p := range list {
		// Phrases are matched against escaped markup text.
		alts[i] = regexp.QuoteMeta(EscapeText(p))
	}
	return &IgnoreMatcher{re: regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`)}
}

// ApplyIgnoreList is a convenience for NewIgnoreMatcher(phrases).Apply(markup).
func ApplyIgnoreList(markup string, phrases []string) string {
	return NewIgnoreMatcher(phrases).Apply(markup)
}

// Apply wraps every occurrence of a phrase in translatable text. Tags,
// attribute values, verbatim elements and spans already inside ignore
// markers are left alone.
func (m *IgnoreMatcher) Apply(markup string) string {
	if m == nil || m.re == nil || markup == "" {
		return markup
	}

	var (
		out      strings.Builder
		verbatim int
		ignored  int
	)
	out.Grow(len(markup))

	for pos := 0; pos < len(markup); {
		if markup[pos] != '<' {
			end := strings.IndexByte(markup[pos:], '<')
			if end < 0 {
				end = len(markup)
			} else {
				end += pos
			}
			seg := markup[pos:end]
			if verbatim > 0 || ignored > 0 {
				out.WriteString(seg)
			} else {
				out.WriteString(m.wrap(seg))
			}
			pos = end
			continue
		}

		end := tagEnd(markup, pos)
		tag := markup[pos:end]
		name, closing, selfClosing := tagName(tag)
		switch {
		case selfClosing:
		case name == TagIgnore && closing:
			ignored--
		case name == TagIgnore:
			ignored++
		case verbatimTags[name] && closing:
			verbatim--
		case verbatimTags[name]:
			verbatim++
		}
		out.WriteString(tag)
		pos = end
	}
	return out.String()
}

// wrap marks matches in one text segment, skipping any that would cut
// through a character reference.
func (m *IgnoreMatcher) wrap(seg string) string {
	matches := m.re.FindAllStringIndex(seg, -1)
	if len(matches) == 0 {
		return seg
	}
	entities := entityPattern.FindAllStringIndex(seg, -1)

	var out strings.Builder
	last := 0
	for _, mt := range matches {
		if splitsEntity(mt, entities) {
			continue
		}
		out.WriteString(seg[last:mt[0]])
		out.WriteString(ignoreOpen)
		out.WriteString(seg[mt[0]:mt[1]])
		out.WriteString(ignoreClose)
		last = mt[1]
	}
	out.WriteString(seg[last:])
	return out.String()
}

func splitsEntity(match []int, entities [][]int) bool {
	for _, e := range entities {
		if match[0] > e[0] && match[0] < e[1] {
			return true
		}
		if match[1] > e[0] && match[1] < e[1] {
			return true
		}
	}
	return false
}

// tagEnd returns the index just past the '>' closing the tag at pos,
// honouring quoted attribute values.
func tagEnd(s string, pos int) int {
	var quote byte
	for i := pos + 1; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i + 1
		}
	}
	return len(s)
}

func tagName(tag string) (name string, closing, selfClosing bool) {
	body := strings.TrimSuffix(strings.TrimPrefix(tag, "<"), ">")
	if strings.HasPrefix(body, "/") {
		closing = true
		body = body[1:]
	}
	if strings.HasSuffix(body, "/") {
		selfClosing = true
		body = body[:len(body)-1]
	}
	if i := strings.IndexAny(body, " \t\r\n"); i >= 0 {
		body = body[:i]
	}
	return body, closing, selfClosing
}

// StripIgnoreMarkers removes ignore markers and keeps their content.
func StripIgnoreMarkers(markup string) string {
	if !strings.Contains(markup, ignoreOpen) && !strings.Contains(markup, ignoreClose) {
		return markup
	}
	return strings.NewReplacer(ignoreOpen, "", ignoreClose, "").Replace(markup)
}
