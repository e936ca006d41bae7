package deepl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gerunddev/mdtrans/internal/markup"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New("secret:fx", WithBaseURL(srv.URL+"/v2"), WithHTTPClient(srv.Client()))
}

func TestEndpointSelection(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"abc:fx", "https://api-free.deepl.com/v2/translate"},
		{"abc", "https://api.deepl.com/v2/translate"},
		{"fx", "https://api.deepl.com/v2/translate"},
	}
	for _, tt := range tests {
		if got := New(tt.key).Endpoint("translate"); got != tt.want {
			t.Errorf("Endpoint for key %q = %s, want %s", tt.key, got, tt.want)
		}
	}
}

func TestTranslateStrings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/translate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "DeepL-Auth-Key secret:fx" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm["text"]; !reflect.DeepEqual(got, []string{"Hello", "World"}) {
			t.Errorf("text = %q", got)
		}
		if got := r.PostForm.Get("source_lang"); got != "en" {
			t.Errorf("source_lang = %q", got)
		}
		if got := r.PostForm.Get("target_lang"); got != "de" {
			t.Errorf("target_lang = %q", got)
		}
		if got := r.PostForm.Get("formality"); got != "prefer_more" {
			t.Errorf("formality = %q", got)
		}
		if got := r.PostForm.Get("glossary_id"); got != "g-1" {
			t.Errorf("glossary_id = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"translations": []map[string]string{
				{"detected_source_language": "EN", "text": "Hallo"},
				{"detected_source_language": "EN", "text": "Welt"},
			},
		})
	})

	got, err := c.TranslateStrings(context.Background(), []string{"Hello", "World"}, Options{
		Source:     English,
		Target:     German,
		Formality:  FormalityFormal,
		GlossaryID: "g-1",
	})
	if err != nil {
		t.Fatalf("TranslateStrings failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Hallo", "Welt"}) {
		t.Errorf("got %q", got)
	}
}

func TestTranslateStringsCountMismatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"translations":[{"text":"only one"}]}`))
	})
	if _, err := c.TranslateStrings(context.Background(), []string{"a", "b"}, Options{Target: German}); err == nil {
		t.Error("expected error for short response")
	}
}

func TestTranslateMarkup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		want := map[string]string{
			"tag_handling":       "xml",
			"ignore_tags":        "pre,code,html-block,html-inline,ignore-tag",
			"splitting_tags":     "p,h,li,blockquote,td",
			"non_splitting_tags": "em,strong,del,a,img,softbreak,linebreak",
			"text":               "<doc><p>Hi</p></doc>",
		}
		for k, v := range want {
			if got := r.PostForm.Get(k); got != v {
				t.Errorf("%s = %q, want %q", k, got, v)
			}
		}
		_, _ = w.Write([]byte(`{"translations":[{"text":"<doc><p>Hallo</p></doc>"}]}`))
	})

	got, err := c.TranslateMarkup(context.Background(), "<doc><p>Hi</p></doc>", Options{Source: English, Target: German}, markup.ProviderTagOptions())
	if err != nil {
		t.Fatalf("TranslateMarkup failed: %v", err)
	}
	if got != "<doc><p>Hallo</p></doc>" {
		t.Errorf("got %q", got)
	}
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(456)
		_, _ = w.Write([]byte(`{"message":"Quota exceeded"}`))
	})

	_, err := c.Usage(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != 456 {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if apiErr.Body != `{"message":"Quota exceeded"}` {
		t.Errorf("Body = %q", apiErr.Body)
	}
}

func TestUsage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v2/usage" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"character_count":1200,"character_limit":500000}`))
	})

	u, err := c.Usage(context.Background())
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	if u.CharacterCount != 1200 || u.CharacterLimit != 500000 {
		t.Errorf("unexpected usage %+v", u)
	}
	if u.Remaining() != 498800 {
		t.Errorf("Remaining = %d", u.Remaining())
	}
}

func TestUsageRemaining(t *testing.T) {
	tests := []struct {
		name  string
		usage Usage
		want  int64
	}{
		{"no limit reported", Usage{CharacterCount: 100}, MaxTranslateLength - 100},
		{"exhausted", Usage{CharacterCount: 10, CharacterLimit: 10}, 0},
		{"over", Usage{CharacterCount: 20, CharacterLimit: 10}, 0},
	}
	for _, tt := range tests {
		if got := tt.usage.Remaining(); got != tt.want {
			t.Errorf("%s: Remaining = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestGlossaries(t *testing.T) {
	var deleted string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v2/glossaries":
			_, _ = w.Write([]byte(`{"glossaries":[{"glossary_id":"g-1","name":"blog","ready":true,"source_lang":"en","target_lang":"de","entry_count":2}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/v2/glossaries":
			if err := r.ParseForm(); err != nil {
				t.Fatal(err)
			}
			if got := r.PostForm.Get("entries_format"); got != "tsv" {
				t.Errorf("entries_format = %q", got)
			}
			if got := r.PostForm.Get("entries"); got != "Go\tGo" {
				t.Errorf("entries = %q", got)
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"glossary_id":"g-2","name":"blog","ready":true,"source_lang":"en","target_lang":"de","entry_count":1}`))
		case r.Method == http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})
	ctx := context.Background()

	list, err := c.ListGlossaries(ctx)
	if err != nil {
		t.Fatalf("ListGlossaries failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != "g-1" || list[0].EntryCount != 2 {
		t.Errorf("unexpected glossaries %+v", list)
	}

	g, err := c.RegisterGlossary(ctx, "blog", English, German, "Go\tGo")
	if err != nil {
		t.Fatalf("RegisterGlossary failed: %v", err)
	}
	if g.ID != "g-2" {
		t.Errorf("ID = %q", g.ID)
	}

	if err := c.DeleteGlossary(ctx, "g-2"); err != nil {
		t.Fatalf("DeleteGlossary failed: %v", err)
	}
	if deleted != "/v2/glossaries/g-2" {
		t.Errorf("deleted path = %q", deleted)
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in      string
		want    Language
		wantErr bool
	}{
		{"de", German, false},
		{"EN", English, false},
		{"pt", Portuguese, false},
		{"pt-BR", Portuguese, false},
		{"ja", Japanese, false},
		{"xx", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLanguage(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLanguage(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLanguageBase(t *testing.T) {
	if got := Portuguese.Base(); got != "pt" {
		t.Errorf("Portuguese.Base() = %q", got)
	}
	if got := Japanese.Base(); got != "ja" {
		t.Errorf("Japanese.Base() = %q", got)
	}
}

func TestParseFormality(t *testing.T) {
	tests := []struct {
		in      string
		param   string
		wantErr bool
	}{
		{"", "default", false},
		{"default", "default", false},
		{"Formal", "prefer_more", false},
		{"informal", "prefer_less", false},
		{"casual", "", true},
	}
	for _, tt := range tests {
		f, err := ParseFormality(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormality(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && f.Param() != tt.param {
			t.Errorf("ParseFormality(%q).Param() = %q, want %q", tt.in, f.Param(), tt.param)
		}
	}
}
