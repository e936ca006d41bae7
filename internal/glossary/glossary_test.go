package glossary

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestReadTOML(t *testing.T) {
	src := `
[glossaries.blog]
Kubernetes = "Kubernetes"
"pull request" = "プルリクエスト"

[glossaries.docs]
foo = "bar"
`
	got, err := ReadTOML(strings.NewReader(src), "blog")
	if err != nil {
		t.Fatalf("ReadTOML failed: %v", err)
	}
	want := []Entry{
		{Source: "Kubernetes", Target: "Kubernetes"},
		{Source: "pull request", Target: "プルリクエスト"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadTOML = %+v, want %+v", got, want)
	}

	if _, err := ReadTOML(strings.NewReader(src), "missing"); !errors.Is(err, ErrNoGlossary) {
		t.Errorf("expected ErrNoGlossary, got %v", err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	tsvPath := filepath.Join(dir, "terms.tsv")
	if err := os.WriteFile(tsvPath, []byte("Go\tGo\nlonely\nrust\tRust\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(tsvPath, "ignored")
	if err != nil {
		t.Fatalf("ReadFile(tsv) failed: %v", err)
	}
	want := []Entry{{Source: "Go", Target: "Go"}, {Source: "rust", Target: "Rust"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadFile(tsv) = %+v, want %+v", got, want)
	}

	tomlPath := filepath.Join(dir, "glossary.toml")
	if err := os.WriteFile(tomlPath, []byte("[glossaries.x]\na = \"b\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = ReadFile(tomlPath, "x")
	if err != nil {
		t.Fatalf("ReadFile(toml) failed: %v", err)
	}
	if !reflect.DeepEqual(got, []Entry{{Source: "a", Target: "b"}}) {
		t.Errorf("ReadFile(toml) = %+v", got)
	}

	if _, err := ReadFile(filepath.Join(dir, "nope.toml"), "x"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestTSV(t *testing.T) {
	entries := []Entry{
		{Source: " zeta ", Target: " Z "},
		{Source: "alpha", Target: "A"},
		{Source: "", Target: "dropped"},
		{Source: "blank", Target: "   "},
		{Source: "alpha", Target: "A2"},
		{Source: "alpha", Target: "A3"},
	}
	tsv, dups := TSV(entries)

	want := "alpha\tA\nalpha\tA2\nalpha\tA3\nzeta\tZ"
	if tsv != want {
		t.Errorf("TSV = %q, want %q", tsv, want)
	}
	if !reflect.DeepEqual(dups, []string{"alpha"}) {
		t.Errorf("duplicates = %v", dups)
	}
}

func TestTSVEmpty(t *testing.T) {
	tsv, dups := TSV(nil)
	if tsv != "" || dups != nil {
		t.Errorf("TSV(nil) = %q, %v", tsv, dups)
	}
}
