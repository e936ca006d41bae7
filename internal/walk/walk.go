// Package walk discovers the documents to translate and where their
// translations go.
package walk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrModeMismatch is returned when one of input and output is a directory
// and the other is a file.
var ErrModeMismatch = errors.New("input and output must both be directories or both be files")

// Pair is one source document and the path of its translation.
type Pair struct {
	Source string
	Dest   string
}

// Options filter directory discovery.
type Options struct {
	// Extensions without the dot; empty matches every file.
	Extensions []string
	// MaxDepth limits recursion below the input directory; 0 is unlimited
	// and 1 only looks at the input directory itself.
	MaxDepth      int
	IncludeHidden bool
}

// Discover maps input to output. A file input yields a single pair; a
// directory input yields one pair per matching file, mirroring the
// directory layout below output, in lexical order.
func Discover(input, output string, opts Options) ([]Pair, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}

	outIsDir, err := isDirTarget(output)
	if err != nil {
		return nil, err
	}
	if info.IsDir() != outIsDir {
		return nil, fmt.Errorf("%w: %s -> %s", ErrModeMismatch, input, output)
	}

	if !info.IsDir() {
		return []Pair{{Source: input, Dest: output}}, nil
	}
	return scanDirectory(input, output, opts)
}

// isDirTarget decides whether output names a directory: an existing path
// by its type, a missing one by having no extension.
func isDirTarget(output string) (bool, error) {
	info, err := os.Stat(output)
	if err == nil {
		return info.IsDir(), nil
	}
	if !os.IsNotExist(err) {
		return false, err
	}
	return filepath.Ext(output) == "", nil
}

func scanDirectory(input, output string, opts Options) ([]Pair, error) {
	exts := make(map[string]bool, len(opts.Extensions))
	for _, e := range opts.Extensions {
		exts[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}

	absOut, err := filepath.Abs(output)
	if err != nil {
		return nil, err
	}

	var pairs []Pair
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == input {
			return nil
		}

		rel, err := filepath.Rel(input, path)
		if err != nil {
			return err
		}
		depth := strings.Count(rel, string(filepath.Separator)) + 1

		if !opts.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			// Never descend into our own output.
			if abs, err := filepath.Abs(path); err == nil && abs == absOut {
				return filepath.SkipDir
			}
			if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if len(exts) > 0 && !exts[strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))] {
			return nil
		}

		pairs = append(pairs, Pair{Source: path, Dest: filepath.Join(output, rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", input, err)
	}
	return pairs, nil
}
