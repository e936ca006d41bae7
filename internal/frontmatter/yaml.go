package frontmatter

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// TranslateYAML translates the selected string values of YAML front
// matter. The document is edited as a node tree so comments and key order
// survive.
func TranslateYAML(ctx context.Context, fm string, translate TranslateFunc) (string, error) {
	if strings.TrimSpace(fm) == "" {
		return fm, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(fm), &root); err != nil {
		return "", fmt.Errorf("parse yaml front matter: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fm, nil
	}

	var (
		targets []*yaml.Node
		texts   []string
	)
	for _, k := range Keys {
		n := yamlLookup(root.Content[0], strings.Split(k, "."))
		if n == nil || n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" || n.Value == "" {
			continue
		}
		targets = append(targets, n)
		texts = append(texts, n.Value)
	}
	if len(targets) == 0 {
		return fm, nil
	}

	out, err := callTranslate(ctx, translate, texts)
	if err != nil {
		return "", err
	}
	for i, n := range targets {
		n.Value = out[i]
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return "", fmt.Errorf("encode yaml front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode yaml front matter: %w", err)
	}
	return buf.String(), nil
}

func yamlLookup(n *yaml.Node, path []string) *yaml.Node {
	for _, key := range path {
		if n.Kind != yaml.MappingNode {
			return nil
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == key {
				next = n.Content[i+1]
				break
			}
		}
		if next == nil {
			return nil
		}
		n = next
	}
	return n
}
