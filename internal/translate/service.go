// Package translate runs one document through the translation pipeline:
// front matter split, markup encoding, ignore-phrase protection, provider
// call, decoding and output assembly.
package translate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gerunddev/mdtrans/internal/config"
	"github.com/gerunddev/mdtrans/internal/deepl"
	"github.com/gerunddev/mdtrans/internal/frontmatter"
	"github.com/gerunddev/mdtrans/internal/logger"
	"github.com/gerunddev/mdtrans/internal/markup"
	"github.com/gerunddev/mdtrans/internal/walk"
)

// Provider is the remote translation service.
type Provider interface {
	TranslateStrings(ctx context.Context, texts []string, opts deepl.Options) ([]string, error)
	TranslateMarkup(ctx context.Context, body string, opts deepl.Options, tags markup.TagOptions) (string, error)
	Usage(ctx context.Context) (deepl.Usage, error)
	ListGlossaries(ctx context.Context) ([]deepl.Glossary, error)
}

// Request selects languages and register for a run.
type Request struct {
	From      deepl.Language
	To        deepl.Language
	Formality deepl.Formality
}

// Result describes one written document.
type Result struct {
	Source   string
	Dest     string
	Chars    int
	Duration time.Duration
}

// Service translates documents. It holds only read-only configuration and
// a glossary cache, so one Service serves all batch workers.
type Service struct {
	provider Provider
	cfg      *config.Config
	ignore   *markup.IgnoreMatcher
	log      *logger.Logger

	mu         sync.Mutex
	glossaries map[string]string
}

// NewService builds a Service for the configured project.
func NewService(p Provider, cfg *config.Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		provider:   p,
		cfg:        cfg,
		ignore:     markup.NewIgnoreMatcher(cfg.Ignores()),
		log:        log,
		glossaries: make(map[string]string),
	}
}

// TranslateFile translates pair.Source and atomically writes pair.Dest.
func (s *Service) TranslateFile(ctx context.Context, pair walk.Pair, req Request) (*Result, error) {
	start := time.Now()

	src, err := os.ReadFile(pair.Source)
	if err != nil {
		return nil, fileErr("read", pair.Source, err)
	}

	out, err := s.TranslateDocument(ctx, pair.Source, src, req)
	if err != nil {
		return nil, fileErr("translate", pair.Source, err)
	}

	if err := WriteFileAtomic(pair.Dest, []byte(out), 0644); err != nil {
		return nil, fileErr("write", pair.Dest, err)
	}

	res := &Result{
		Source:   pair.Source,
		Dest:     pair.Dest,
		Chars:    utf8.RuneCount(src),
		Duration: time.Since(start),
	}
	s.log.FileTranslated(res.Source, res.Dest, res.Chars, res.Duration)
	return res, nil
}

// TranslateDocument returns the translated file text for src. Front matter
// of plain .md and .mdx files is kept as is.
func (s *Service) TranslateDocument(ctx context.Context, path string, src []byte, req Request) (string, error) {
	parts, err := frontmatter.Split(src)
	if err != nil {
		return "", err
	}

	fm := parts.FrontMatter
	if parts.HasFrontMatter && !keepFrontMatter(path) {
		fm, err = s.TranslateFrontMatter(ctx, parts, req)
		if err != nil {
			return "", err
		}
	}

	body, err := s.TranslateMarkdown(ctx, parts.Body, req)
	if err != nil {
		return "", err
	}

	return Assemble(parts, fm, body, s.cfg.BackupOriginalText), nil
}

func keepFrontMatter(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".mdx":
		return true
	}
	return false
}

// TranslateMarkdown translates a CommonMark body. A body with no
// translatable text is re-rendered without calling the provider.
func (s *Service) TranslateMarkdown(ctx context.Context, body string, req Request) (string, error) {
	doc := markup.Parse([]byte(body))
	if len(doc.Blocks) == 0 {
		return "", nil
	}

	needed := utf8.RuneCountInString(strings.TrimSpace(markup.TranslatableText(doc)))
	if needed == 0 {
		return markup.Render(doc), nil
	}

	encoded := markup.Marshal(doc, true)
	if _, err := markup.Unmarshal(encoded, true); err != nil {
		return "", fmt.Errorf("encode markup: %w", err)
	}
	if err := s.CheckQuota(ctx, needed); err != nil {
		return "", err
	}

	opts, err := s.options(ctx, req)
	if err != nil {
		return "", err
	}

	payload := s.ignore.Apply(encoded)
	s.log.Debug("markup payload", "bytes", len(payload))

	translated, err := s.provider.TranslateMarkup(ctx, payload, opts, markup.ProviderTagOptions())
	if err != nil {
		return "", fmt.Errorf("translate markup: %w", err)
	}

	return markup.Decode(markup.StripIgnoreMarkers(translated), true)
}

// TranslateFrontMatter translates the selected front matter fields.
func (s *Service) TranslateFrontMatter(ctx context.Context, parts frontmatter.Parts, req Request) (string, error) {
	return frontmatter.Translate(ctx, parts, func(ctx context.Context, texts []string) ([]string, error) {
		needed := 0
		for _, t := range texts {
			needed += utf8.RuneCountInString(t)
		}
		if err := s.CheckQuota(ctx, needed); err != nil {
			return nil, err
		}

		opts, err := s.options(ctx, req)
		if err != nil {
			return nil, err
		}
		out, err := s.provider.TranslateStrings(ctx, texts, opts)
		if err != nil {
			return nil, fmt.Errorf("translate front matter: %w", err)
		}
		return out, nil
	})
}

// CheckQuota fails with ErrQuotaExceeded when needed characters exceed
// what the account has left.
func (s *Service) CheckQuota(ctx context.Context, needed int) error {
	usage, err := s.provider.Usage(ctx)
	if err != nil {
		return fmt.Errorf("check usage: %w", err)
	}
	remaining := usage.Remaining()
	s.log.QuotaChecked(needed, remaining)
	if int64(needed) > remaining {
		return fmt.Errorf("%w: %d characters needed, %d of %d left",
			ErrQuotaExceeded, needed, remaining, usage.CharacterLimit)
	}
	return nil
}

func (s *Service) options(ctx context.Context, req Request) (deepl.Options, error) {
	id, err := s.GlossaryID(ctx, req.From, req.To)
	if err != nil {
		return deepl.Options{}, err
	}
	return deepl.Options{
		Source:     req.From,
		Target:     req.To,
		Formality:  req.Formality,
		GlossaryID: id,
	}, nil
}

// GlossaryID returns the glossary for a language pair: the id configured
// for the project and "{from}_{to}", else a provider glossary named after
// the project with the same languages. Lookups are cached per pair; an
// empty id means no glossary. The provider is queried without holding the
// cache lock, so concurrent cold lookups may each list glossaries once.
func (s *Service) GlossaryID(ctx context.Context, from, to deepl.Language) (string, error) {
	key := from.String() + "_" + to.String()
	if id, ok := s.cachedGlossary(key); ok {
		return id, nil
	}

	if id, ok := s.cfg.GlossaryID(from.String(), to.String()); ok {
		s.log.GlossaryUsed(id, "config")
		return s.storeGlossary(key, id), nil
	}

	list, err := s.provider.ListGlossaries(ctx)
	if err != nil {
		return "", fmt.Errorf("list glossaries: %w", err)
	}
	id := ""
	for _, g := range list {
		if g.Name == s.cfg.ProjectName &&
			strings.EqualFold(g.SourceLang, from.Base()) &&
			strings.EqualFold(g.TargetLang, to.Base()) {
			id = g.ID
			s.log.GlossaryUsed(id, "provider")
			break
		}
	}
	return s.storeGlossary(key, id), nil
}

func (s *Service) cachedGlossary(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.glossaries[key]
	return id, ok
}

// storeGlossary caches id unless another lookup got there first, and
// returns the cached value.
func (s *Service) storeGlossary(key, id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.glossaries[key]; ok {
		return cached
	}
	s.glossaries[key] = id
	return id
}

// Assemble builds the output file: front matter between its delimiters,
// the translated body and, with backup set, the original body inside an
// HTML comment. "-->" in the original is written as "-!->" so the comment
// cannot end early.
func Assemble(parts frontmatter.Parts, fm, body string, backup bool) string {
	var b strings.Builder
	if parts.HasFrontMatter {
		b.WriteString(parts.Delimiter)
		b.WriteByte('\n')
		b.WriteString(fm)
		if fm != "" && !strings.HasSuffix(fm, "\n") {
			b.WriteByte('\n')
		}
		b.WriteString(parts.Delimiter)
		b.WriteByte('\n')
	}
	b.WriteString(body)
	if backup {
		b.WriteString("\n<!---\n")
		b.WriteString(strings.ReplaceAll(parts.Body, "-->", "-!->"))
		b.WriteString("\n-->\n")
	}
	return b.String()
}
