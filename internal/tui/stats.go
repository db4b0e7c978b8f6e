package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type statsModel struct {
	spinner spinner.Model
	config  Config
	count   int
	loaded  bool
	err     error
}

// statsMsg is sent after fetching the document count.
type statsMsg struct {
	count int
	err   error
}

func newStatsModel(cfg Config) statsModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle
	return statsModel{spinner: sp, config: cfg}
}

func fetchStats(cfg Config) tea.Cmd {
	return func() tea.Msg {
		count, err := cfg.Engine.Count(context.Background())
		return statsMsg{count: count, err: err}
	}
}

func (m statsModel) Update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		m.count = msg.count
		m.err = msg.err
		m.loaded = true
		return m, nil
	case spinner.TickMsg:
		if !m.loaded {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m statsModel) View(width, height int) string {
	s := "\n"
	s += titleStyle.Render("  Index statistics") + "\n\n"

	if !m.loaded {
		s += fmt.Sprintf("  %s %s\n", m.spinner.View(), dimStyle.Render("Counting documents..."))
		return s
	}
	if m.err != nil {
		s += errorStyle.Render("  Error: "+m.err.Error()) + "\n"
		return s
	}

	s += fmt.Sprintf("  Collection: %s\n", m.config.Collection)
	s += fmt.Sprintf("  Documents:  %d\n", m.count)
	if m.count == 0 {
		s += "\n" + dimStyle.Render("  The index is empty. Run 'wikirag load' to ingest articles.") + "\n"
	}
	s += "\n"
	s += helpStyle.Render("  esc: menu • q: quit") + "\n"
	return s
}
