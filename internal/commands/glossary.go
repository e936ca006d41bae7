package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gerunddev/mdtrans/internal/deepl"
	"github.com/gerunddev/mdtrans/internal/glossary"
	"github.com/gerunddev/mdtrans/internal/styles"
)

// GlossaryCmd groups glossary management.
type GlossaryCmd struct {
	Register GlossaryRegisterCmd `cmd:"" help:"Register a glossary file with DeepL"`
	List     GlossaryListCmd     `cmd:"" help:"List registered glossaries"`
	Delete   GlossaryDeleteCmd   `cmd:"" help:"Delete a registered glossary"`
}

// GlossaryRegisterCmd uploads a glossary read from a TOML or TSV file.
type GlossaryRegisterCmd struct {
	File  string `arg:"" help:"Glossary file: .toml with [glossaries.<name>] tables, anything else tab-separated" type:"existingfile"`
	From  string `short:"f" required:"" help:"Source language"`
	To    string `short:"t" required:"" help:"Target language"`
	Name  string `help:"Glossary name (default: the project name)"`
	Table string `help:"Table under [glossaries] in a TOML file (default: the glossary name)"`
}

func (c *GlossaryRegisterCmd) Run(g *Globals) error {
	from, err := deepl.ParseLanguage(c.From)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := deepl.ParseLanguage(c.To)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	e, err := g.setup()
	if err != nil {
		return err
	}
	defer e.close()

	name := c.Name
	if name == "" {
		name = e.cfg.ProjectName
	}
	tableName := c.Table
	if tableName == "" {
		tableName = name
	}

	entries, err := glossary.ReadFile(c.File, tableName)
	if err != nil {
		return err
	}
	tsv, duplicates := glossary.TSV(entries)
	for _, d := range duplicates {
		e.log.Warn("duplicate glossary entry", "source", d)
	}
	if tsv == "" {
		return fmt.Errorf("%s: %w", c.File, glossary.ErrNoGlossary)
	}

	ctx, cancel := notifyContext(context.Background())
	defer cancel()

	created, err := e.client.RegisterGlossary(ctx, name, from, to, tsv)
	if err != nil {
		return fmt.Errorf("failed to register glossary: %w", err)
	}

	fmt.Fprintln(e.out, styles.SuccessStyle.Render(fmt.Sprintf("✓ Registered glossary %q with %d entries", created.Name, created.EntryCount)))
	fmt.Fprintln(e.out, styles.DimStyle.Render("  Add it to deepl.toml to pin it:"))
	fmt.Fprintln(e.out, styles.DimStyle.Render(fmt.Sprintf("  [glossaries.%s]\n  %s_%s = %q", e.cfg.ProjectName, from, to, created.ID)))
	return nil
}

// GlossaryListCmd lists the glossaries of the account.
type GlossaryListCmd struct{}

func (c *GlossaryListCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	defer e.close()

	ctx, cancel := notifyContext(context.Background())
	defer cancel()

	list, err := e.client.ListGlossaries(ctx)
	if err != nil {
		return fmt.Errorf("failed to list glossaries: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(e.out, styles.DimStyle.Render("No glossaries registered"))
		return nil
	}

	fmt.Fprintln(e.out, glossaryTable(list))
	return nil
}

func glossaryTable(list []deepl.Glossary) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(styles.Border))).
		Headers("ID", "NAME", "LANGUAGES", "ENTRIES", "READY").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.HeaderStyle.Padding(0, 1)
			}
			return styles.NormalTextStyle.Padding(0, 1)
		})
	for _, gl := range list {
		ready := "no"
		if gl.Ready {
			ready = "yes"
		}
		t.Row(gl.ID, gl.Name, gl.SourceLang+" → "+gl.TargetLang, strconv.Itoa(gl.EntryCount), ready)
	}
	return t.String()
}

// GlossaryDeleteCmd deletes a glossary by id.
type GlossaryDeleteCmd struct {
	ID string `arg:"" help:"Glossary id"`
}

func (c *GlossaryDeleteCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	defer e.close()

	ctx, cancel := notifyContext(context.Background())
	defer cancel()

	if err := e.client.DeleteGlossary(ctx, c.ID); err != nil {
		return fmt.Errorf("failed to delete glossary: %w", err)
	}
	fmt.Fprintln(e.out, styles.SuccessStyle.Render("✓ Deleted glossary "+c.ID))
	return nil
}

// UsageCmd prints the character usage of the configured key.
type UsageCmd struct{}

func (c *UsageCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	defer e.close()

	ctx, cancel := notifyContext(context.Background())
	defer cancel()

	u, err := e.client.Usage(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch usage: %w", err)
	}

	limit := u.CharacterLimit
	if limit == 0 {
		limit = deepl.MaxTranslateLength
	}
	plan := "pro"
	if e.cfg.IsFreeAPIKey() {
		plan = "free"
	}
	fmt.Fprintln(e.out, styles.TitleStyle.Render("DeepL usage")+" "+styles.DimStyle.Render("("+plan+" plan)"))
	fmt.Fprintln(e.out, "  "+styles.Quota(u.CharacterCount, limit))
	fmt.Fprintln(e.out, "  "+styles.InfoStyle.Render(fmt.Sprintf("%d characters remaining", u.Remaining())))
	return nil
}
