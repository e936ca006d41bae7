// Package frontmatter splits documents into front matter and body and
// translates a fixed set of front matter fields.
package frontmatter

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// Delimiters of the supported front matter formats.
const (
	TOMLDelimiter = "+++"
	YAMLDelimiter = "---"
)

// Keys are the dotted paths of the front matter values that get translated.
var Keys = []string{"title", "description", "extra.time"}

// Parts is a document split at its front matter.
type Parts struct {
	// Delimiter is TOMLDelimiter or YAMLDelimiter, empty without front matter.
	Delimiter      string
	FrontMatter    string
	HasFrontMatter bool
	Body           string
}

// TranslateFunc translates texts, returning one result per input in order.
type TranslateFunc func(ctx context.Context, texts []string) ([]string, error)

// Split separates the front matter of src from its body. A document without
// front matter is returned whole as the body.
func Split(src []byte) (Parts, error) {
	var p Parts
	capture := func(delim string) frontmatter.UnmarshalFunc {
		return func(data []byte, _ interface{}) error {
			p.Delimiter = delim
			p.FrontMatter = string(data)
			p.HasFrontMatter = true
			return nil
		}
	}

	var sink struct{}
	body, err := frontmatter.Parse(bytes.NewReader(src), &sink,
		frontmatter.NewFormat(TOMLDelimiter, TOMLDelimiter, capture(TOMLDelimiter)),
		frontmatter.NewFormat(YAMLDelimiter, YAMLDelimiter, capture(YAMLDelimiter)),
	)
	if err != nil {
		return Parts{}, fmt.Errorf("split front matter: %w", err)
	}

	if !p.HasFrontMatter {
		p.Body = string(src)
		return p, nil
	}
	if p.FrontMatter != "" && !strings.HasSuffix(p.FrontMatter, "\n") {
		p.FrontMatter += "\n"
	}
	p.Body = string(body)
	return p, nil
}

// Translate translates the selected fields of p's front matter according to
// its delimiter. Front matter without any selected field comes back
// unchanged and translate is never called.
func Translate(ctx context.Context, p Parts, translate TranslateFunc) (string, error) {
	if !p.HasFrontMatter {
		return "", nil
	}
	switch p.Delimiter {
	case TOMLDelimiter:
		return TranslateTOML(ctx, p.FrontMatter, translate)
	case YAMLDelimiter:
		return TranslateYAML(ctx, p.FrontMatter, translate)
	}
	return "", fmt.Errorf("unsupported front matter delimiter %q", p.Delimiter)
}

func callTranslate(ctx context.Context, translate TranslateFunc, texts []string) ([]string, error) {
	out, err := translate(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("translate front matter: got %d values for %d fields", len(out), len(texts))
	}
	return out, nil
}

func lookup(m map[string]interface{}, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var cur interface{} = m
	for _, part := range parts {
		table, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = table[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
