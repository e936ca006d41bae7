package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/gerunddev/mdtrans/internal/batch"
	"github.com/gerunddev/mdtrans/internal/deepl"
	"github.com/gerunddev/mdtrans/internal/diff"
	"github.com/gerunddev/mdtrans/internal/state"
	"github.com/gerunddev/mdtrans/internal/styles"
	"github.com/gerunddev/mdtrans/internal/translate"
	"github.com/gerunddev/mdtrans/internal/tui"
	"github.com/gerunddev/mdtrans/internal/walk"
)

// TranslateCmd translates one document or a directory tree.
type TranslateCmd struct {
	Input  string `arg:"" help:"Source file or directory" type:"path"`
	Output string `arg:"" help:"Destination file or directory" type:"path"`

	From      string `short:"f" required:"" help:"Source language (de, es, en, fr, it, ja, nl, pt, pt-br, ru)"`
	To        string `short:"t" required:"" help:"Target language"`
	Formality string `default:"default" enum:"default,formal,informal" help:"Formality of the translation (default, formal, informal)"`
	Force     bool   `help:"Translate files even when unchanged since the last run"`
	DryRun    bool   `name:"dry-run" help:"Show a diff of what would be written without writing"`
	Plain     bool   `help:"Print dry-run diffs without terminal styling"`
	Progress  bool   `short:"p" help:"Show live progress"`
}

func (c *TranslateCmd) request() (translate.Request, error) {
	from, err := deepl.ParseLanguage(c.From)
	if err != nil {
		return translate.Request{}, fmt.Errorf("--from: %w", err)
	}
	to, err := deepl.ParseLanguage(c.To)
	if err != nil {
		return translate.Request{}, fmt.Errorf("--to: %w", err)
	}
	formality, err := deepl.ParseFormality(c.Formality)
	if err != nil {
		return translate.Request{}, fmt.Errorf("--formality: %w", err)
	}
	return translate.Request{From: from, To: to, Formality: formality}, nil
}

func (c *TranslateCmd) Run(g *Globals) error {
	req, err := c.request()
	if err != nil {
		return err
	}

	e, err := g.setup()
	if err != nil {
		return err
	}
	defer e.close()

	pairs, err := walk.Discover(c.Input, c.Output, walk.Options{
		Extensions:    e.cfg.Extensions(),
		MaxDepth:      e.cfg.MaxDepth,
		IncludeHidden: e.cfg.IncludeHidden,
	})
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		fmt.Fprintln(e.out, styles.DimStyle.Render("No files to translate"))
		return nil
	}

	ctx, cancel := notifyContext(context.Background())
	defer cancel()

	svc := translate.NewService(e.client, e.cfg, e.log)
	if c.DryRun {
		return c.dryRun(ctx, e, svc, pairs, req)
	}

	st, err := state.Load(e.cfg.StateFile)
	if err != nil {
		e.log.StateError("load", err)
		st = state.NewState()
	}

	opts := []batch.Option{batch.WithWorkers(e.cfg.Workers()), batch.WithForce(c.Force)}

	var result *batch.Result
	if c.Progress {
		result, err = tui.RunWithProgress(ctx, len(pairs), func(ctx context.Context, report func(batch.FileResult)) *batch.Result {
			return batch.NewRunner(svc, st, e.log, append(opts, batch.WithProgress(report))...).Run(ctx, pairs, req)
		})
		if err != nil {
			e.log.Warn("progress display", "err", err)
			fmt.Fprint(e.out, tui.Summary(result))
		}
	} else {
		result = batch.NewRunner(svc, st, e.log, opts...).Run(ctx, pairs, req)
		fmt.Fprint(e.out, tui.Summary(result))
	}

	if err := st.Save(e.cfg.StateFile); err != nil {
		e.log.StateError("save", err)
	}

	if err := result.Err(); err != nil {
		return fmt.Errorf("%d of %d file(s) failed: %w", result.Failed(), len(pairs), err)
	}
	return nil
}

// dryRun translates every document and prints the diff against the
// current destination. Nothing is written and state is left alone.
func (c *TranslateCmd) dryRun(ctx context.Context, e *env, svc *translate.Service, pairs []walk.Pair, req translate.Request) error {
	format := diff.FormatTerminal
	if c.Plain {
		format = diff.FormatPlain
	}

	failed := 0
	for _, p := range pairs {
		src, err := os.ReadFile(p.Source)
		if err != nil {
			e.log.FileError(p.Source, err)
			failed++
			continue
		}
		out, err := svc.TranslateDocument(ctx, p.Source, src, req)
		if err != nil {
			e.log.FileError(p.Source, err)
			failed++
			continue
		}
		preview, err := diff.Preview(p.Dest, out, format)
		if err != nil {
			e.log.FileError(p.Dest, err)
			failed++
			continue
		}

		fmt.Fprintln(e.out, styles.TitleStyle.Render(p.Source+" → "+p.Dest))
		if preview == "" {
			fmt.Fprintln(e.out, styles.DimStyle.Render("  no changes"))
			continue
		}
		fmt.Fprintln(e.out, preview)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(pairs))
	}
	return nil
}
