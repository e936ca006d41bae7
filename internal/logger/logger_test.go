package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"error", log.ErrorLevel},
		{"", log.WarnLevel},
		{"chatty", log.WarnLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHelpersWriteKeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithLevel(&buf, log.DebugLevel)

	l.FileError("docs/a.md", errors.New("boom"))
	l.FileSkipped("docs/b.md", "unchanged")

	out := buf.String()
	for _, want := range []string{"file error", "docs/a.md", "boom", "file skipped", "unchanged"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithLevel(&buf, log.WarnLevel)
	l.FileSkipped("docs/b.md", "unchanged")
	if buf.Len() != 0 {
		t.Errorf("debug message written at warn level: %q", buf.String())
	}
}
