package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wikirag/internal/index"
	"wikirag/internal/rag"
)

type searchModel struct {
	viewport    viewport.Model
	input       textinput.Model
	spinner     spinner.Model
	config      Config
	searching   bool
	width       int
	height      int
	initialized bool
}

// searchResultsMsg is sent when a similarity search completes.
type searchResultsMsg struct {
	query   string
	results []index.Result
	err     error
}

func newSearchModel(cfg Config) searchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	ti := textinput.New()
	ti.Placeholder = "Search the article corpus..."
	ti.CharLimit = 500
	ti.Focus()

	return searchModel{
		spinner: sp,
		input:   ti,
		config:  cfg,
	}
}

func (m *searchModel) initLayout(width, height int) {
	m.width = width
	m.height = height

	vpHeight := height - 3
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.viewport = viewport.New(width, vpHeight)
	m.viewport.SetContent(dimStyle.Render("Type a query and press Enter.\n\nEsc returns to the menu."))
	m.input.Width = width - 4
	m.initialized = true
}

func runSearch(cfg Config, query string) tea.Cmd {
	return func() tea.Msg {
		results, err := cfg.Engine.Search(context.Background(), query, cfg.NResults, nil)
		return searchResultsMsg{query: query, results: results, err: err}
	}
}

func (m searchModel) Update(msg tea.Msg) (searchModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.initLayout(msg.Width, msg.Height)
		return m, nil

	case searchResultsMsg:
		m.searching = false
		m.viewport.SetContent(m.renderResults(msg))
		m.viewport.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if m.searching {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.searching {
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			query := strings.TrimSpace(m.input.Value())
			if query == "" {
				return m, nil
			}
			m.input.Reset()
			m.searching = true
			return m, tea.Batch(m.spinner.Tick, runSearch(m.config, query))
		}
	}

	if !m.searching {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m searchModel) renderResults(msg searchResultsMsg) string {
	if msg.err != nil {
		if errors.Is(msg.err, rag.ErrEmptyCorpus) {
			return dimStyle.Render("The index is empty. Run 'wikirag load' first.")
		}
		return errorStyle.Render("Error: " + msg.err.Error())
	}
	if len(msg.results) == 0 {
		return dimStyle.Render(fmt.Sprintf("No matching articles for %q.", msg.query))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d matching articles for %q:\n\n", len(msg.results), msg.query)
	for i, r := range msg.results {
		title := r.Metadata["title"]
		if title == "" {
			title = r.ID
		}
		sb.WriteString(resultTitleStyle.Render(fmt.Sprintf("[%d] %s", i+1, title)) + "\n")
		fmt.Fprintf(&sb, "    Similarity: %.4f   Page ID: %s\n", 1-r.Distance, r.Metadata["page_id"])
		if url := r.Metadata["url"]; url != "" {
			sb.WriteString("    " + dimStyle.Render(url) + "\n")
		}
		if cats := r.Metadata["categories"]; cats != "" {
			sb.WriteString("    Categories: " + cats + "\n")
		}
		if summary := r.Metadata["summary"]; summary != "" {
			sb.WriteString("    " + clipRunes(summary, 150) + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func clipRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func (m searchModel) View() string {
	if !m.initialized {
		return ""
	}

	status := "esc: menu"
	if m.searching {
		status = m.spinner.View() + " searching..."
	}
	statusBar := statusBarStyle.
		Width(m.width).
		Render(" wikirag search • " + status)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		statusBar,
		m.input.View(),
	)
}
