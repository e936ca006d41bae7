package diff

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUnified(t *testing.T) {
	if got := Unified("a.md", "same\n", "same\n"); got != "" {
		t.Errorf("equal texts should give no diff, got %q", got)
	}

	got := Unified("a.md", "# Hello\n\nWorld\n", "# Hallo\n\nWorld\n")
	for _, want := range []string{"--- a.md (current)", "+++ a.md (translated)", "-# Hello", "+# Hallo", " World"} {
		if !strings.Contains(got, want) {
			t.Errorf("diff missing %q:\n%s", want, got)
		}
	}
}

func TestPreview(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.md")

	t.Run("missing destination", func(t *testing.T) {
		got, err := Preview(dest, "Hallo\n", FormatPlain)
		if err != nil {
			t.Fatalf("Preview failed: %v", err)
		}
		if !strings.Contains(got, "+Hallo") {
			t.Errorf("expected addition, got:\n%s", got)
		}
	})

	if err := os.WriteFile(dest, []byte("Hallo\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("unchanged", func(t *testing.T) {
		got, err := Preview(dest, "Hallo\n", FormatTerminal)
		if err != nil {
			t.Fatalf("Preview failed: %v", err)
		}
		if got != "" {
			t.Errorf("expected empty preview, got %q", got)
		}
	})

	t.Run("terminal", func(t *testing.T) {
		got, err := Preview(dest, "Servus\n", FormatTerminal)
		if err != nil {
			t.Fatalf("Preview failed: %v", err)
		}
		if !strings.Contains(got, "Servus") {
			t.Errorf("rendered preview lost content:\n%s", got)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := Preview(dest, "x\n", Format(42)); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}
