package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type chatState int

const (
	chatIdle chatState = iota
	chatGenerating
)

// chatModel drives both the one-shot question view and the free-form
// interactive chat; oneShot only changes the prompt text and whether the
// input stays focused after an answer.
type chatModel struct {
	viewport    viewport.Model
	input       textinput.Model
	spinner     spinner.Model
	renderer    *glamour.TermRenderer
	messages    []chatMessage
	config      Config
	state       chatState
	oneShot     bool
	width       int
	height      int
	initialized bool
}

type chatMessage struct {
	role    string
	content string
}

// answerMsg is sent when answer generation completes.
type answerMsg struct {
	answer string
	err    error
}

func newChatModel(cfg Config, oneShot bool) chatModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	ti := textinput.New()
	if oneShot {
		ti.Placeholder = "Ask a question about the corpus..."
	} else {
		ti.Placeholder = "Ask anything (esc returns to the menu)..."
	}
	ti.CharLimit = 2000
	ti.Focus()

	return chatModel{
		spinner: sp,
		input:   ti,
		config:  cfg,
		oneShot: oneShot,
		state:   chatIdle,
	}
}

func (m *chatModel) initLayout(width, height int) {
	m.width = width
	m.height = height

	vpHeight := height - 3
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.viewport = viewport.New(width, vpHeight)
	m.viewport.SetContent(dimStyle.Render("Answers are grounded in the indexed articles.\n\nEsc returns to the menu."))

	m.input.Width = width - 4

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err == nil {
		m.renderer = r
	}

	m.initialized = true
}

func generateAnswer(cfg Config, question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := cfg.Engine.GenerateAnswer(context.Background(), question, cfg.NResults, cfg.Temperature)
		return answerMsg{answer: answer, err: err}
	}
}

func (m chatModel) Update(msg tea.Msg) (chatModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.initLayout(msg.Width, msg.Height)
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		return m, nil

	case answerMsg:
		m.state = chatIdle
		if msg.err != nil {
			m.messages = append(m.messages, chatMessage{role: "error", content: msg.err.Error()})
		} else {
			m.messages = append(m.messages, chatMessage{role: "assistant", content: msg.answer})
		}
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if m.state != chatIdle {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.viewport.SetContent(m.renderMessages())
			m.viewport.GotoBottom()
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.state != chatIdle {
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.Reset()

			if m.oneShot {
				// A fresh question replaces the previous exchange.
				m.messages = nil
			}
			m.messages = append(m.messages, chatMessage{role: "user", content: question})
			m.state = chatGenerating
			m.viewport.SetContent(m.renderMessages())
			m.viewport.GotoBottom()

			return m, tea.Batch(m.spinner.Tick, generateAnswer(m.config, question))
		}
	}

	if m.state == chatIdle {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m chatModel) renderMarkdown(content string) string {
	if m.renderer == nil {
		return answerStyle.Render(content)
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return answerStyle.Render(content)
	}
	return strings.TrimRight(rendered, "\n")
}

func (m chatModel) renderMessages() string {
	var sb strings.Builder
	for _, msg := range m.messages {
		switch msg.role {
		case "user":
			sb.WriteString(userMsgStyle.Render("You: ") + msg.content + "\n\n")
		case "assistant":
			sb.WriteString(m.renderMarkdown(msg.content) + "\n\n")
		case "error":
			sb.WriteString(errorStyle.Render("Error: "+msg.content) + "\n\n")
		}
	}

	if m.state != chatIdle {
		sb.WriteString(m.spinner.View() + " " + dimStyle.Render("Generating answer...") + "\n")
	}

	return sb.String()
}

func (m chatModel) View() string {
	if !m.initialized {
		return ""
	}

	label := "wikirag chat"
	if m.oneShot {
		label = "wikirag Q&A"
	}
	status := "esc: menu"
	if m.state == chatGenerating {
		status = "generating..."
	}
	statusBar := statusBarStyle.
		Width(m.width).
		Render(" " + label + " • " + status)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		statusBar,
		m.input.View(),
	)
}
