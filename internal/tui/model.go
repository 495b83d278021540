// Package tui implements a bubbletea progress viewer for ensemble (Monte
// Carlo/historical) runs. Grounded on the teacher's internal/tui/model.go
// Model/Update/View split, reduced from the teacher's multi-scene
// navigation (home/scenarios/parameters/compare/optimize/results/help) down
// to the single progress scene this spec's ensemble run needs; the
// teacher's scenes/components/tuimsg packages and CalculationEngine
// wiring are dropped, since the new Model drives an orchestrator.Run call
// instead of the teacher's scenario comparison engine.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// ProgressMsg reports one completed run out of a total.
type ProgressMsg struct {
	Completed int
	Total     int
}

// DoneMsg carries the final success rate once every run has completed.
type DoneMsg struct {
	SuccessRate decimal.Decimal
}

// ErrMsg carries a fatal orchestration error.
type ErrMsg struct{ Err error }

// Model is the ensemble-progress viewer's state.
type Model struct {
	bar         progress.Model
	completed   int
	total       int
	done        bool
	successRate decimal.Decimal
	err         error
}

// New returns a ready-to-run progress Model for an ensemble of `total` runs.
func New(total int) Model {
	return Model{bar: progress.New(progress.WithDefaultGradient()), total: total}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 4
	case ProgressMsg:
		m.completed = msg.Completed
		m.total = msg.Total
	case DoneMsg:
		m.done = true
		m.successRate = msg.SuccessRate
		return m, tea.Quit
	case ErrMsg:
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func (m Model) View() string {
	if m.err != nil {
		return errStyle.Render(fmt.Sprintf("simulation failed: %v\n", m.err))
	}
	if m.done {
		return fmt.Sprintf("\n  done. success rate: %s%%\n\n", m.successRate.Mul(decimal.NewFromInt(100)).StringFixed(1))
	}
	frac := 0.0
	if m.total > 0 {
		frac = float64(m.completed) / float64(m.total)
	}
	return fmt.Sprintf(
		"%s\n\n  %s\n  %d/%d runs\n\n",
		titleStyle.Render("running ensemble simulation"),
		m.bar.ViewAs(frac),
		m.completed, m.total,
	)
}
