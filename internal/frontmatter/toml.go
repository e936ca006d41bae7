package frontmatter

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// TranslateTOML translates the selected string values of TOML front
// matter. Values are rewritten in place so every other line keeps its
// original formatting; if a value cannot be rewritten in place the whole
// table is re-encoded.
func TranslateTOML(ctx context.Context, fm string, translate TranslateFunc) (string, error) {
	var doc map[string]interface{}
	if _, err := toml.Decode(fm, &doc); err != nil {
		return "", fmt.Errorf("parse toml front matter: %w", err)
	}

	var keys, texts []string
	for _, k := range Keys {
		if v, ok := lookup(doc, k); ok {
			if s, ok := v.(string); ok && s != "" {
				keys = append(keys, k)
				texts = append(texts, s)
			}
		}
	}
	if len(texts) == 0 {
		return fm, nil
	}

	out, err := callTranslate(ctx, translate, texts)
	if err != nil {
		return "", err
	}
	values := make(map[string]string, len(keys))
	for i, k := range keys {
		values[k] = out[i]
	}

	if rewritten, ok := rewriteTOML(fm, values); ok && verifyTOML(rewritten, values) {
		return rewritten, nil
	}

	for k, v := range values {
		setTOML(doc, k, v)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return "", fmt.Errorf("encode toml front matter: %w", err)
	}
	return buf.String(), nil
}

// rewriteTOML replaces single-line string values of the given dotted keys.
// It reports false if any key was not found in that form.
func rewriteTOML(fm string, values map[string]string) (string, bool) {
	pending := make(map[string]string, len(values))
	for k, v := range values {
		pending[k] = v
	}

	lines := strings.SplitAfter(fm, "\n")
	table := ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasPrefix(trimmed, "[[") {
			// Arrays of tables never hold selected keys.
			table = "\x00"
			continue
		}
		if strings.HasPrefix(trimmed, "[") {
			table = normalizeKey(strings.Trim(trimmed, "[] \t"))
			continue
		}

		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key := normalizeKey(line[:eq])
		if table != "" {
			key = table + "." + key
		}
		v, ok := pending[key]
		if !ok {
			continue
		}

		start := eq + 1
		for start < len(line) && (line[start] == ' ' || line[start] == '\t') {
			start++
		}
		end := stringLiteralEnd(line[start:])
		if end < 0 {
			return "", false
		}
		lines[i] = line[:start] + quoteTOML(v) + line[start+end:]
		delete(pending, key)
	}
	if len(pending) > 0 {
		return "", false
	}
	return strings.Join(lines, ""), true
}

func verifyTOML(fm string, values map[string]string) bool {
	var doc map[string]interface{}
	if _, err := toml.Decode(fm, &doc); err != nil {
		return false
	}
	for k, want := range values {
		got, ok := lookup(doc, k)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// normalizeKey turns `extra . "time"` into `extra.time`.
func normalizeKey(raw string) string {
	parts := strings.Split(strings.TrimSpace(raw), ".")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) >= 2 && (p[0] == '"' || p[0] == '\'') && p[len(p)-1] == p[0] {
			p = p[1 : len(p)-1]
		}
		parts[i] = p
	}
	return strings.Join(parts, ".")
}

// stringLiteralEnd returns the length of the single-line TOML string at the
// start of s, or -1 if s does not start with one.
func stringLiteralEnd(s string) int {
	if s == "" || strings.HasPrefix(s, `"""`) || strings.HasPrefix(s, "'''") {
		return -1
	}
	switch s[0] {
	case '"':
		for i := 1; i < len(s); i++ {
			switch s[i] {
			case '\\':
				i++
			case '"':
				return i + 1
			case '\n':
				return -1
			}
		}
	case '\'':
		if i := strings.IndexAny(s[1:], "'\n"); i >= 0 && s[1+i] == '\'' {
			return i + 2
		}
	}
	return -1
}

func quoteTOML(s string) string {
	var buf strings.Builder
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&buf, `\u%04X`, r)
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
	return buf.String()
}

func setTOML(doc map[string]interface{}, path, value string) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]interface{})
		if !ok {
			return
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}
