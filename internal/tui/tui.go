// Package tui is the interactive demo surface: a menu offering similarity
// search, one-shot question answering, free-form chat, and index statistics.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"wikirag/internal/rag"
)

// ViewState represents which screen is active.
type ViewState int

const (
	ViewMenu ViewState = iota
	ViewSearch
	ViewAsk
	ViewChat
	ViewStats
)

// Config holds configuration passed from the CLI layer.
type Config struct {
	Engine      *rag.Engine
	Collection  string
	NResults    int
	Temperature float32
}

// Model is the top-level Bubble Tea model.
type Model struct {
	state  ViewState
	config Config
	width  int
	height int

	menu   menuModel
	search searchModel
	chat   chatModel
	stats  statsModel
}

// New creates a new TUI model with the given config.
func New(cfg Config) Model {
	return Model{
		state:  ViewMenu,
		config: cfg,
		menu:   newMenuModel(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.state == ViewSearch {
			var c tea.Cmd
			m.search, c = m.search.Update(msg)
			return m, c
		}
		if m.state == ViewAsk || m.state == ViewChat {
			var c tea.Cmd
			m.chat, c = m.chat.Update(msg)
			return m, c
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state == ViewMenu || m.state == ViewStats {
				return m, tea.Quit
			}
		case "esc":
			if m.state != ViewMenu && !m.busy() {
				m.state = ViewMenu
				return m, nil
			}
		}
	}

	var cmd tea.Cmd

	switch m.state {
	case ViewMenu:
		m.menu, cmd = m.menu.Update(msg)
		if cmd != nil {
			return m, cmd
		}
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
			return m.openMenuEntry()
		}

	case ViewSearch:
		m.search, cmd = m.search.Update(msg)
		return m, cmd

	case ViewAsk, ViewChat:
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case ViewStats:
		m.stats, cmd = m.stats.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) busy() bool {
	switch m.state {
	case ViewSearch:
		return m.search.searching
	case ViewAsk, ViewChat:
		return m.chat.state != chatIdle
	}
	return false
}

func (m Model) openMenuEntry() (tea.Model, tea.Cmd) {
	switch m.menu.selection() {
	case menuSearch:
		m.state = ViewSearch
		m.search = newSearchModel(m.config)
		m.search.initLayout(m.width, m.height)
		return m, nil
	case menuAsk:
		m.state = ViewAsk
		m.chat = newChatModel(m.config, true)
		m.chat.initLayout(m.width, m.height)
		return m, nil
	case menuChat:
		m.state = ViewChat
		m.chat = newChatModel(m.config, false)
		m.chat.initLayout(m.width, m.height)
		return m, nil
	case menuStats:
		m.state = ViewStats
		m.stats = newStatsModel(m.config)
		return m, tea.Batch(m.stats.spinner.Tick, fetchStats(m.config))
	case menuQuit:
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case ViewMenu:
		return m.menu.View(m.width, m.height)
	case ViewSearch:
		return m.search.View()
	case ViewAsk, ViewChat:
		return m.chat.View()
	case ViewStats:
		return m.stats.View(m.width, m.height)
	}
	return ""
}

// Run starts the TUI program.
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
