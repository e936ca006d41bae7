// Package tui renders live batch progress with Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/mdtrans/internal/batch"
	"github.com/gerunddev/mdtrans/internal/styles"
)

// recentLines is how many finished files stay on screen.
const recentLines = 5

// FileDoneMsg is sent when one document finishes.
type FileDoneMsg batch.FileResult

// DoneMsg is sent when the whole batch finishes.
type DoneMsg struct {
	Result *batch.Result
}

// progressModel is the Bubble Tea model for the translation progress display
type progressModel struct {
	spinner  spinner.Model
	total    int
	done     int
	failed   int
	skipped  int
	recent   []string
	complete bool
	aborted  bool
	result   *batch.Result
	cancel   context.CancelFunc
}

func newProgressModel(total int, cancel context.CancelFunc) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	return progressModel{
		spinner: s,
		total:   total,
		cancel:  cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// Stop feeding new documents; the batch still reports back.
			m.aborted = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}

	case FileDoneMsg:
		m.done++
		switch msg.Status {
		case batch.StatusFailed:
			m.failed++
		case batch.StatusSkipped:
			m.skipped++
		}
		m.recent = append(m.recent, fileLine(batch.FileResult(msg)))
		if len(m.recent) > recentLines {
			m.recent = m.recent[len(m.recent)-recentLines:]
		}
		return m, nil

	case DoneMsg:
		m.complete = true
		m.result = msg.Result
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m progressModel) View() string {
	if m.complete {
		return Summary(m.result)
	}

	var b strings.Builder
	status := fmt.Sprintf("Translating %s of %d file(s)",
		styles.HighlightStyle.Render(fmt.Sprint(m.done)), m.total)
	if m.aborted {
		status = "Cancelling, waiting for running requests..."
	}
	fmt.Fprintf(&b, "\n%s %s\n\n", m.spinner.View(), status)
	for _, line := range m.recent {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n" + styles.HelpStyle.Render("q: cancel") + "\n")
	return b.String()
}

func fileLine(fr batch.FileResult) string {
	line := styles.Mark(fr.Status.String()) + " " + filepath.Base(fr.Pair.Source)
	switch {
	case fr.Err != nil:
		line += " " + styles.ErrorStyle.Render(fr.Err.Error())
	case fr.Status == batch.StatusSkipped:
		line += " " + styles.DimStyle.Render(fr.Reason)
	}
	return line
}

// Summary renders the final report of a batch.
func Summary(r *batch.Result) string {
	if r == nil {
		return ""
	}
	took := styles.HelpStyle.Render(fmt.Sprintf("Completed in %v", r.EndTime.Sub(r.StartTime).Round(time.Millisecond)))

	if len(r.Files) == 0 {
		return styles.SuccessStyle.Render("✓ Nothing to translate") + "\n" + took + "\n"
	}

	msg := styles.SuccessStyle.Render(fmt.Sprintf("✓ Translated %d file(s)", r.Translated()))
	if n := r.Skipped(); n > 0 {
		msg += ", " + styles.WarningStyle.Render(fmt.Sprintf("%d unchanged", n))
	}
	if n := r.Failed(); n > 0 {
		msg += ", " + styles.ErrorStyle.Render(fmt.Sprintf("%d error(s)", n))
		for _, f := range r.Files {
			if f.Err != nil {
				msg += "\n  " + fileLine(f)
			}
		}
	}
	return msg + "\n" + took + "\n"
}

// RunWithProgress runs a batch while showing live progress. run receives a
// report function to pass to batch.WithProgress; cancelling from the UI
// cancels the context handed to run.
func RunWithProgress(ctx context.Context, total int, run func(ctx context.Context, report func(batch.FileResult)) *batch.Result) (*batch.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(total, cancel))

	resultCh := make(chan *batch.Result, 1)
	go func() {
		result := run(ctx, func(fr batch.FileResult) { p.Send(FileDoneMsg(fr)) })
		resultCh <- result
		p.Send(DoneMsg{Result: result})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		return <-resultCh, fmt.Errorf("progress display failed: %w", err)
	}
	return <-resultCh, nil
}
