package walk

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("# "+f), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDiscoverDirectory(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "content")
	out := filepath.Join(root, "ja")
	writeFiles(t, in,
		"a.md",
		"b.MD",
		"notes.txt",
		"post/c.md",
		"post/deep/d.md",
		".hidden/e.md",
		".f.md",
	)

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "md only",
			opts: Options{Extensions: []string{"md"}},
			want: []string{"a.md", "b.MD", "post/c.md", "post/deep/d.md"},
		},
		{
			name: "depth one",
			opts: Options{Extensions: []string{".md"}, MaxDepth: 1},
			want: []string{"a.md", "b.MD"},
		},
		{
			name: "depth two",
			opts: Options{Extensions: []string{"md"}, MaxDepth: 2},
			want: []string{"a.md", "b.MD", "post/c.md"},
		},
		{
			name: "hidden included",
			opts: Options{Extensions: []string{"md"}, IncludeHidden: true},
			want: []string{".f.md", ".hidden/e.md", "a.md", "b.MD", "post/c.md", "post/deep/d.md"},
		},
		{
			name: "any extension",
			opts: Options{},
			want: []string{"a.md", "b.MD", "notes.txt", "post/c.md", "post/deep/d.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs, err := Discover(in, out, tt.opts)
			if err != nil {
				t.Fatalf("Discover failed: %v", err)
			}
			var got []string
			for _, p := range pairs {
				rel, _ := filepath.Rel(in, p.Source)
				got = append(got, filepath.ToSlash(rel))
				if want := filepath.Join(out, rel); p.Dest != want {
					t.Errorf("Dest = %s, want %s", p.Dest, want)
				}
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("sources = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscoverSkipsNestedOutput(t *testing.T) {
	in := t.TempDir()
	writeFiles(t, in, "a.md", "translated/a.md")

	pairs, err := Discover(in, filepath.Join(in, "translated"), Options{Extensions: []string{"md"}})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(pairs) != 1 || filepath.Base(pairs[0].Source) != "a.md" || filepath.Dir(pairs[0].Source) != in {
		t.Errorf("unexpected pairs %+v", pairs)
	}
}

func TestDiscoverFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.md")
	src := filepath.Join(root, "a.md")

	pairs, err := Discover(src, filepath.Join(root, "a.ja.md"), Options{})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	want := []Pair{{Source: src, Dest: filepath.Join(root, "a.ja.md")}}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("pairs = %+v, want %+v", pairs, want)
	}
}

func TestDiscoverModeMismatch(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "in/a.md", "existing.md")

	tests := []struct {
		name   string
		input  string
		output string
	}{
		{"dir to file", filepath.Join(root, "in"), filepath.Join(root, "out.md")},
		{"dir to existing file", filepath.Join(root, "in"), filepath.Join(root, "existing.md")},
		{"file to dir", filepath.Join(root, "in", "a.md"), filepath.Join(root, "outdir")},
		{"file to existing dir", filepath.Join(root, "in", "a.md"), filepath.Join(root, "in")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Discover(tt.input, tt.output, Options{}); !errors.Is(err, ErrModeMismatch) {
				t.Errorf("expected ErrModeMismatch, got %v", err)
			}
		})
	}
}

func TestDiscoverMissingInput(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), "out", Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
