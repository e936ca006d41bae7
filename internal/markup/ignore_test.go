package markup

import "testing"

func TestApplyIgnoreList(t *testing.T) {
	tests := []struct {
		name    string
		markup  string
		phrases []string
		want    string
	}{
		{
			name:    "longest match wins",
			markup:  "<p>New York City</p>",
			phrases: []string{"New", "New York"},
			want:    "<p><ignore-tag>New York</ignore-tag> City</p>",
		},
		{
			name:    "longest match wins regardless of order",
			markup:  "<p>New York City</p>",
			phrases: []string{"New York", "New"},
			want:    "<p><ignore-tag>New York</ignore-tag> City</p>",
		},
		{
			name:    "case insensitive keeps source case",
			markup:  "<p>the new york times</p>",
			phrases: []string{"New York"},
			want:    "<p>the <ignore-tag>new york</ignore-tag> times</p>",
		},
		{
			name:    "every occurrence",
			markup:  "<p>Go and Go</p>",
			phrases: []string{"Go"},
			want:    "<p><ignore-tag>Go</ignore-tag> and <ignore-tag>Go</ignore-tag></p>",
		},
		{
			name:    "skips verbatim elements",
			markup:  "<p>New <code>New</code></p>\n<pre>New\n</pre>",
			phrases: []string{"New"},
			want:    "<p><ignore-tag>New</ignore-tag> <code>New</code></p>\n<pre>New\n</pre>",
		},
		{
			name:    "skips attributes",
			markup:  `<p><a href="https://new.example/New">New</a></p>`,
			phrases: []string{"New"},
			want:    `<p><a href="https://new.example/New"><ignore-tag>New</ignore-tag></a></p>`,
		},
		{
			name:    "skips tag names",
			markup:  "<p>a<softbreak/>b</p>",
			phrases: []string{"softbreak", "p"},
			want:    "<p>a<softbreak/>b</p>",
		},
		{
			name:    "does not split entities",
			markup:  "<p>A &amp; B amp</p>",
			phrases: []string{"amp"},
			want:    "<p>A &amp; B <ignore-tag>amp</ignore-tag></p>",
		},
		{
			name:    "phrase with markup metacharacter",
			markup:  "<p>AT&amp;T rocks</p>",
			phrases: []string{"AT&T"},
			want:    "<p><ignore-tag>AT&amp;T</ignore-tag> rocks</p>",
		},
		{
			name:    "already marked",
			markup:  "<p><ignore-tag>Rust</ignore-tag></p>",
			phrases: []string{"Rust"},
			want:    "<p><ignore-tag>Rust</ignore-tag></p>",
		},
		{
			name:    "no phrases",
			markup:  "<p>unchanged</p>",
			phrases: nil,
			want:    "<p>unchanged</p>",
		},
		{
			name:    "blank phrases dropped",
			markup:  "<p>a b</p>",
			phrases: []string{"", "  "},
			want:    "<p>a b</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyIgnoreList(tt.markup, tt.phrases)
			if got != tt.want {
				t.Errorf("ApplyIgnoreList =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestStripIgnoreMarkers(t *testing.T) {
	got := StripIgnoreMarkers("<p><ignore-tag>Go</ignore-tag> <em>ist</em> toll</p>")
	want := "<p>Go <em>ist</em> toll</p>"
	if got != want {
		t.Errorf("StripIgnoreMarkers = %q, want %q", got, want)
	}
}

func TestIgnoreWrapStripIdempotent(t *testing.T) {
	markups := []string{
		"",
		"<p>New York City</p>",
		Encode("# New York\n\nI love **New York** and `New York`.\n\n- new\n- York", true),
		Encode("| New | York |\n| --- | --- |\n| a & b | <b>New</b> |", false),
	}
	phraseSets := [][]string{
		nil,
		{"New"},
		{"New", "New York", "york"},
		{"&", "a"},
	}

	for _, m := range markups {
		for _, phrases := range phraseSets {
			if got := StripIgnoreMarkers(ApplyIgnoreList(m, phrases)); got != m {
				t.Errorf("strip(apply(%q, %q)) = %q", m, phrases, got)
			}
		}
	}
}

func TestIgnorePipeline(t *testing.T) {
	input := "Deploy with **Kubernetes** on `kubectl apply`.\n\n> Kubernetes is great."
	matcher := NewIgnoreMatcher([]string{"kubernetes"})

	wrapped := matcher.Apply(Encode(input, true))
	got, err := Decode(StripIgnoreMarkers(wrapped), true)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got != input {
		t.Errorf("pipeline changed document: %q", got)
	}

	// The markers must survive decoding even if the provider returned them.
	got, err = Decode(wrapped, true)
	if err != nil {
		t.Fatalf("Decode with markers failed: %v", err)
	}
	if got != input {
		t.Errorf("decode with markers = %q", got)
	}
}

func TestNilMatcher(t *testing.T) {
	var m *IgnoreMatcher
	if got := m.Apply("<p>x</p>"); got != "<p>x</p>" {
		t.Errorf("nil matcher changed input: %q", got)
	}
}
