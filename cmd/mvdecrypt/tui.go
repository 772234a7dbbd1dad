package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/mvdecrypt/pkg/batch"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(11)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)
)

type eventMsg batch.Event

type doneMsg struct{}

// progressModel renders a progress bar fed by batch events
type progressModel struct {
	bar     progress.Model
	title   string
	current string
	done    int
	total   int
	failed  int
	cancel  context.CancelFunc
}

func newProgressModel(title string, cancel context.CancelFunc) progressModel {
	return progressModel{
		bar:    progress.New(progress.WithDefaultGradient()),
		title:  title,
		cancel: cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 4
		if m.bar.Width > 80 {
			m.bar.Width = 80
		}
	case eventMsg:
		m.done = msg.Done
		m.total = msg.Total
		m.current = msg.Rel
		if msg.Status == batch.StatusFailed {
			m.failed++
		}
	case doneMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	percent := 0.0
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n\n")
	b.WriteString(m.bar.ViewAs(percent) + "\n")
	fmt.Fprintf(&b, "%d/%d", m.done, m.total)
	if m.failed > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("  %d failed", m.failed)))
	}
	b.WriteString("\n" + labelStyle.Render(m.current) + "\n")
	return b.String()
}

// runWithTUI executes fn while a progress bar is shown on out. fn gets
// the function that feeds events to the bar.
func runWithTUI(ctx context.Context, out io.Writer, title string, fn func(ctx context.Context, progress func(batch.Event))) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(newProgressModel(title, cancel), tea.WithOutput(out), tea.WithContext(ctx))

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		fn(ctx, func(e batch.Event) { prog.Send(eventMsg(e)) })
		prog.Send(doneMsg{})
	}()

	_, err := prog.Run()
	// Quitting early cancels ctx; wait for the run to drain
	cancel()
	<-finished
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// renderSummary formats a finished batch report
func renderSummary(r *batch.Report) string {
	row := func(label, value string) string {
		return labelStyle.Render(label) + value + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("mvdecrypt "+string(r.Mode)) + "\n")
	b.WriteString(row("run", r.RunID))
	b.WriteString(row("source", r.Source))
	b.WriteString(row("output", r.Dest))
	b.WriteString(row("processed", successStyle.Render(fmt.Sprintf("%d/%d", r.Processed, r.Total))))
	if r.Skipped > 0 {
		b.WriteString(row("skipped", warnStyle.Render(fmt.Sprint(r.Skipped))))
	}
	if r.Failed > 0 {
		b.WriteString(row("failed", errorStyle.Render(fmt.Sprint(r.Failed))))
		for _, e := range r.Errors {
			b.WriteString("  " + errorStyle.Render(e.Error()) + "\n")
		}
	}
	b.WriteString(row("duration", r.Duration.Round(time.Millisecond).String()))
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}
