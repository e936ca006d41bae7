package commands

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gerunddev/mdtrans/internal/state"
	"github.com/gerunddev/mdtrans/internal/styles"
)

// StatusCmd lists the recorded translations and whether they are stale.
type StatusCmd struct {
	Pending bool `help:"Only list translations that need to be redone"`
}

func (c *StatusCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	defer e.close()

	st, err := state.Load(e.cfg.StateFile)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	rows, pending := statusRows(st, c.Pending)
	fmt.Fprintln(e.out, styles.TitleStyle.Render("Translation state")+" "+styles.DimStyle.Render(e.cfg.StateFile))
	if len(rows) == 0 {
		fmt.Fprintln(e.out, styles.DimStyle.Render("  Nothing recorded"))
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(styles.Border))).
		Headers("SOURCE", "DESTINATION", "PAIR", "TRANSLATED", "STATUS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.HeaderStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Rows(rows...)
	fmt.Fprintln(e.out, t.String())
	fmt.Fprintln(e.out, styles.DimStyle.Render(fmt.Sprintf("%d tracked, %d pending", len(st.Sources()), pending)))
	return nil
}

// statusRows checks every recorded source. Sources that can no longer be
// read are reported as pending with the error.
func statusRows(st *state.State, pendingOnly bool) ([][]string, int) {
	var rows [][]string
	pending := 0
	for _, src := range st.Sources() {
		fs, _ := st.Get(src)
		need, reason, err := st.NeedsTranslation(src, fs.Dest, fs.Pair)
		status := styles.SuccessStyle.Render("up to date")
		switch {
		case err != nil:
			need = true
			status = styles.ErrorStyle.Render(err.Error())
		case need:
			status = styles.WarningStyle.Render(reason)
		}
		if need {
			pending++
		} else if pendingOnly {
			continue
		}
		rows = append(rows, []string{src, fs.Dest, fs.Pair, fs.TranslatedAt.Local().Format(time.DateTime), status})
	}
	return rows, pending
}
