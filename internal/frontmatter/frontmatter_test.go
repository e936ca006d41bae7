package frontmatter

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// upper is a stand-in translator that records what it was asked.
type upper struct {
	calls [][]string
}

func (u *upper) translate(_ context.Context, texts []string) ([]string, error) {
	u.calls = append(u.calls, texts)
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = strings.ToUpper(t)
	}
	return out, nil
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Parts
	}{
		{
			name: "toml",
			src:  "+++\ntitle = \"Hello World\"\n+++\nThis is a test.",
			want: Parts{
				Delimiter:      TOMLDelimiter,
				FrontMatter:    "title = \"Hello World\"\n",
				HasFrontMatter: true,
				Body:           "This is a test.",
			},
		},
		{
			name: "yaml",
			src:  "---\ntitle: Hello\n---\n# Body\n",
			want: Parts{
				Delimiter:      YAMLDelimiter,
				FrontMatter:    "title: Hello\n",
				HasFrontMatter: true,
				Body:           "# Body\n",
			},
		},
		{
			name: "none",
			src:  "# Just a body\n\nText.",
			want: Parts{Body: "# Just a body\n\nText."},
		},
		{
			name: "empty",
			src:  "",
			want: Parts{Body: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split([]byte(tt.src))
			if err != nil {
				t.Fatalf("Split failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTranslateTOMLOnlyTitle(t *testing.T) {
	fm := "title = \"Hello World\"\ndate = 2023-01-01\ndraft = false\ntags = [\"a\", \"b\"]\n"
	u := &upper{}

	got, err := TranslateTOML(context.Background(), fm, u.translate)
	if err != nil {
		t.Fatalf("TranslateTOML failed: %v", err)
	}
	want := "title = \"HELLO WORLD\"\ndate = 2023-01-01\ndraft = false\ntags = [\"a\", \"b\"]\n"
	if got != want {
		t.Errorf("TranslateTOML =\n%s\nwant\n%s", got, want)
	}
	if len(u.calls) != 1 || !reflect.DeepEqual(u.calls[0], []string{"Hello World"}) {
		t.Errorf("translator calls = %q", u.calls)
	}
}

func TestTranslateTOMLSelectedKeys(t *testing.T) {
	fm := `title = 'Post'   # keep comment
description = "A \"quoted\" text"
author = "Jane"

[extra]
time = "5 min"
image = "cover.png"

[taxonomies]
title = "not selected"
`
	u := &upper{}
	got, err := TranslateTOML(context.Background(), fm, u.translate)
	if err != nil {
		t.Fatalf("TranslateTOML failed: %v", err)
	}
	want := `title = "POST"   # keep comment
description = "A \"QUOTED\" TEXT"
author = "Jane"

[extra]
time = "5 MIN"
image = "cover.png"

[taxonomies]
title = "not selected"
`
	if got != want {
		t.Errorf("TranslateTOML =\n%s\nwant\n%s", got, want)
	}
}

func TestTranslateTOMLDottedKey(t *testing.T) {
	fm := "extra.time = \"later\"\n"
	got, err := TranslateTOML(context.Background(), fm, (&upper{}).translate)
	if err != nil {
		t.Fatalf("TranslateTOML failed: %v", err)
	}
	if got != "extra.time = \"LATER\"\n" {
		t.Errorf("got %q", got)
	}
}

func TestTranslateTOMLMultilineFallsBack(t *testing.T) {
	fm := "title = \"\"\"\nLong\ntitle\"\"\"\nweight = 3\n"
	got, err := TranslateTOML(context.Background(), fm, (&upper{}).translate)
	if err != nil {
		t.Fatalf("TranslateTOML failed: %v", err)
	}
	if !strings.Contains(got, "LONG") || !strings.Contains(got, "weight = 3") {
		t.Errorf("fallback encoding lost data: %q", got)
	}
}

func TestTranslateTOMLNothingSelected(t *testing.T) {
	fm := "weight = 3\n"
	u := &upper{}
	got, err := TranslateTOML(context.Background(), fm, u.translate)
	if err != nil {
		t.Fatalf("TranslateTOML failed: %v", err)
	}
	if got != fm {
		t.Errorf("got %q, want unchanged", got)
	}
	if len(u.calls) != 0 {
		t.Error("translator should not be called")
	}
}

func TestTranslateTOMLErrors(t *testing.T) {
	if _, err := TranslateTOML(context.Background(), "title = ", (&upper{}).translate); err == nil {
		t.Error("expected parse error")
	}

	boom := errors.New("provider down")
	_, err := TranslateTOML(context.Background(), "title = \"x\"\n", func(context.Context, []string) ([]string, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected provider error, got %v", err)
	}

	_, err = TranslateTOML(context.Background(), "title = \"x\"\n", func(context.Context, []string) ([]string, error) {
		return nil, nil
	})
	if err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestTranslateYAML(t *testing.T) {
	fm := "title: Hello\n# a comment\ndescription: \"World\"\ncount: 3\nextra:\n  time: soon\n  other: keep\n"
	got, err := TranslateYAML(context.Background(), fm, (&upper{}).translate)
	if err != nil {
		t.Fatalf("TranslateYAML failed: %v", err)
	}
	for _, want := range []string{"title: HELLO", "# a comment", `description: "WORLD"`, "count: 3", "time: SOON", "other: keep"} {
		if !strings.Contains(got, want) {
			t.Errorf("TranslateYAML output missing %q:\n%s", want, got)
		}
	}
}

func TestTranslateYAMLNonString(t *testing.T) {
	fm := "title: 42\n"
	u := &upper{}
	got, err := TranslateYAML(context.Background(), fm, u.translate)
	if err != nil {
		t.Fatalf("TranslateYAML failed: %v", err)
	}
	if got != fm || len(u.calls) != 0 {
		t.Errorf("numeric title should be left alone, got %q", got)
	}
}

func TestTranslateDispatch(t *testing.T) {
	p, err := Split([]byte("+++\ntitle = \"a\"\n+++\nbody"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := Translate(context.Background(), p, (&upper{}).translate)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "title = \"A\"\n" {
		t.Errorf("got %q", got)
	}

	if got, err := Translate(context.Background(), Parts{Body: "x"}, (&upper{}).translate); err != nil || got != "" {
		t.Errorf("no front matter: got %q, %v", got, err)
	}
}
