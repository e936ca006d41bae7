// Package deepl is a small client for the DeepL v2 REST API covering text
// and XML translation, usage and glossaries.
package deepl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gerunddev/mdtrans/internal/markup"
)

const (
	freeEndpoint = "https://api-free.deepl.com/v2/"
	proEndpoint  = "https://api.deepl.com/v2/"

	// MaxTranslateLength is the assumed character budget when the usage
	// response carries no limit.
	MaxTranslateLength = 500_000
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("deepl %s %s: %s", e.Method, e.Endpoint, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("deepl %s %s: %s: %s", e.Method, e.Endpoint, http.StatusText(e.StatusCode), body)
}

// Options are the per-request translation parameters.
type Options struct {
	Source     Language
	Target     Language
	Formality  Formality
	GlossaryID string
}

// Usage is the character accounting of the current billing period.
type Usage struct {
	CharacterCount int64 `json:"character_count"`
	CharacterLimit int64 `json:"character_limit"`
}

// Remaining returns the characters left in the period.
func (u Usage) Remaining() int64 {
	limit := u.CharacterLimit
	if limit <= 0 {
		limit = MaxTranslateLength
	}
	if u.CharacterCount >= limit {
		return 0
	}
	return limit - u.CharacterCount
}

// Glossary describes a glossary registered with DeepL.
type Glossary struct {
	ID           string `json:"glossary_id"`
	Name         string `json:"name"`
	Ready        bool   `json:"ready"`
	SourceLang   string `json:"source_lang"`
	TargetLang   string `json:"target_lang"`
	CreationTime string `json:"creation_time"`
	EntryCount   int    `json:"entry_count"`
}

// Client talks to one DeepL account.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the endpoint chosen from the key.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u == "" {
			return
		}
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		c.baseURL = u
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client. Keys ending in ":fx" use the free endpoint.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: proEndpoint,
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
	if IsFreeKey(apiKey) {
		c.baseURL = freeEndpoint
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsFreeKey reports whether apiKey belongs to the free plan.
func IsFreeKey(apiKey string) bool {
	return strings.HasSuffix(apiKey, ":fx")
}

// Endpoint returns the absolute URL of an API path such as "translate".
func (c *Client) Endpoint(api string) string {
	return c.baseURL + strings.TrimPrefix(api, "/")
}

type translateResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

func (o Options) values() url.Values {
	v := url.Values{}
	if o.Source != "" {
		v.Set("source_lang", o.Source.String())
	}
	v.Set("target_lang", o.Target.String())
	v.Set("preserve_formatting", "1")
	v.Set("formality", o.Formality.Param())
	if o.GlossaryID != "" {
		v.Set("glossary_id", o.GlossaryID)
	}
	return v
}

// TranslateStrings translates texts in one request. The result has the
// same length and order as texts.
func (c *Client) TranslateStrings(ctx context.Context, texts []string, opts Options) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	form := opts.values()
	for _, t := range texts {
		form.Add("text", t)
	}

	var resp translateResponse
	if err := c.do(ctx, http.MethodPost, "translate", form, &resp); err != nil {
		return nil, err
	}
	if len(resp.Translations) != len(texts) {
		return nil, fmt.Errorf("deepl translate: got %d translations for %d texts", len(resp.Translations), len(texts))
	}

	out := make([]string, len(resp.Translations))
	for i, t := range resp.Translations {
		out[i] = t.Text
	}
	return out, nil
}

// TranslateMarkup translates a tagged markup document using XML tag
// handling.
func (c *Client) TranslateMarkup(ctx context.Context, body string, opts Options, tags markup.TagOptions) (string, error) {
	form := opts.values()
	form.Set("tag_handling", "xml")
	form.Set("outline_detection", "0")
	form.Set("ignore_tags", strings.Join(tags.IgnoreTags, ","))
	form.Set("splitting_tags", strings.Join(tags.SplittingTags, ","))
	form.Set("non_splitting_tags", strings.Join(tags.NonSplittingTags, ","))
	form.Set("text", body)

	var resp translateResponse
	if err := c.do(ctx, http.MethodPost, "translate", form, &resp); err != nil {
		return "", err
	}
	if len(resp.Translations) == 0 {
		return "", nil
	}
	return resp.Translations[0].Text, nil
}

// Usage returns the account's character usage.
func (c *Client) Usage(ctx context.Context) (Usage, error) {
	var u Usage
	if err := c.do(ctx, http.MethodGet, "usage", nil, &u); err != nil {
		return Usage{}, err
	}
	return u, nil
}

// ListGlossaries returns every glossary of the account.
func (c *Client) ListGlossaries(ctx context.Context) ([]Glossary, error) {
	var resp struct {
		Glossaries []Glossary `json:"glossaries"`
	}
	if err := c.do(ctx, http.MethodGet, "glossaries", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Glossaries, nil
}

// RegisterGlossary creates a glossary from tab-separated entries.
func (c *Client) RegisterGlossary(ctx context.Context, name string, from, to Language, tsv string) (*Glossary, error) {
	form := url.Values{}
	form.Set("name", name)
	form.Set("source_lang", from.Base())
	form.Set("target_lang", to.Base())
	form.Set("entries_format", "tsv")
	form.Set("entries", tsv)

	var g Glossary
	if err := c.do(ctx, http.MethodPost, "glossaries", form, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// DeleteGlossary removes the glossary with the given id.
func (c *Client) DeleteGlossary(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "glossaries/"+url.PathEscape(id), nil, nil)
}

// do sends one request. A nil form sends no body; a nil out discards the
// response body.
func (c *Client) do(ctx context.Context, method, api string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Endpoint(api), body)
	if err != nil {
		return fmt.Errorf("deepl %s: %w", api, err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("deepl %s: %w", api, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			Method:     method,
			Endpoint:   api,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("deepl %s: failed to decode response: %w", api, err)
	}
	return nil
}
