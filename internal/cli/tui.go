package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/changetower/pkg/pipeline"
)

// progressBarWidth is the width of the bar in cells.
const progressBarWidth = 30

var (
	barFilledStyle = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// FetchModel - Interactive fetch progress
// =============================================================================

type (
	progressMsg pipeline.Progress
	resultsMsg  []pipeline.Result
	tickMsg     time.Time
)

// FetchModel is the bubbletea model showing FetchMany progress.
type FetchModel struct {
	Branch    string
	Progress  pipeline.Progress
	Results   []pipeline.Result
	Cancelled bool

	frame  int
	cancel context.CancelFunc
}

// NewFetchModel creates a progress model for total packages.
func NewFetchModel(branch string, total int, cancel context.CancelFunc) FetchModel {
	return FetchModel{
		Branch:   branch,
		Progress: pipeline.Progress{Total: total},
		cancel:   cancel,
	}
}

func tick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m FetchModel) Init() tea.Cmd {
	return tick()
}

func (m FetchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case progressMsg:
		m.Progress = pipeline.Progress(msg)
	case resultsMsg:
		m.Results = msg
		m.Progress.Loaded = m.Progress.Total
		m.Progress.Current = ""
		return m, tea.Quit
	case tickMsg:
		m.frame++
		return m, tick()
	}
	return m, nil
}

func (m FetchModel) View() string {
	if m.Results != nil || m.Cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(styleIconSpinner.Render(spinnerFrames[m.frame%len(spinnerFrames)]))
	b.WriteString(" ")
	b.WriteString(StyleTitle.Render("Loading changelogs"))
	b.WriteString(StyleDim.Render(" on " + m.Branch))
	b.WriteString("\n\n  ")
	b.WriteString(progressBar(m.Progress.Loaded, m.Progress.Total, progressBarWidth))
	b.WriteString(fmt.Sprintf("  %s/%d", StyleHighlight.Render(fmt.Sprint(m.Progress.Loaded)), m.Progress.Total))
	if m.Progress.Cached > 0 {
		b.WriteString(StyleDim.Render(fmt.Sprintf(" · %d cached", m.Progress.Cached)))
	}
	b.WriteString("\n")
	if m.Progress.Current != "" {
		b.WriteString(StyleDim.Render("  next: " + m.Progress.Current))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("  q quit"))
	b.WriteString("\n")
	return b.String()
}

// progressBar renders done/total as a bar of width cells.
func progressBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	filled = min(max(filled, 0), width)
	return barFilledStyle.Render(strings.Repeat("█", filled)) + barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// runFetchTUI runs FetchMany behind the progress view. Quitting the view
// cancels the fetch and returns context.Canceled.
func runFetchTUI(ctx context.Context, fetcher *pipeline.Fetcher, modules []string, branch string, force bool) ([]pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewFetchModel(branch, len(modules), cancel), tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	go func() {
		results := fetcher.FetchMany(ctx, modules, branch, force, func(pr pipeline.Progress) {
			p.Send(progressMsg(pr))
		})
		p.Send(resultsMsg(results))
	}()

	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	m := final.(FetchModel)
	if m.Cancelled {
		return nil, context.Canceled
	}
	return m.Results, nil
}
