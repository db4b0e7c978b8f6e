package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

type menuEntry int

const (
	menuSearch menuEntry = iota
	menuAsk
	menuChat
	menuStats
	menuQuit
)

var menuLabels = []string{
	"Similarity search",
	"Question answering",
	"Interactive chat",
	"Index statistics",
	"Quit",
}

type menuModel struct {
	cursor int
}

func newMenuModel() menuModel {
	return menuModel{}
}

func (m menuModel) selection() menuEntry {
	return menuEntry(m.cursor)
}

func (m menuModel) Update(msg tea.Msg) (menuModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(menuLabels)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m menuModel) View(width, height int) string {
	s := "\n"
	s += titleStyle.Render("  ◆ wikirag") + "\n"
	s += subtitleStyle.Render("  Question answering over a local article corpus") + "\n\n"

	for i, label := range menuLabels {
		cursor := "  "
		style := listItemStyle
		if i == m.cursor {
			cursor = "▸ "
			style = selectedStyle
		}
		s += fmt.Sprintf("  %s%s\n", cursor, style.Render(label))
	}

	s += "\n"
	s += helpStyle.Render("  ↑/↓ navigate • Enter select • q quit") + "\n"
	return s
}
