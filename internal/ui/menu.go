// Package ui provides the terminal prompts used by sshh: a single-choice
// selection menu, a one-line text input and coloured status messages.
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// menuModel is a vertical list with a cursor. It quits as soon as an option
// is picked or the user cancels.
type menuModel struct {
	prompt  string
	options []string
	cursor  int
	chosen  int
	aborted bool
	done    bool
}

func newMenu(prompt string, options []string) menuModel {
	return menuModel{prompt: prompt, options: options, chosen: -1}
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc", "q":
		m.aborted = true
		m.done = true
		return m, tea.Quit
	case "j", "down", "tab":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "k", "up", "shift+tab":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = len(m.options) - 1
	case "enter":
		m.chosen = m.cursor
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m menuModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(promptStyle.Render(m.prompt) + "\n")
	for i, opt := range m.options {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(fmt.Sprintf("> %s", opt)) + "\n")
			continue
		}
		b.WriteString(fmt.Sprintf("  %s\n", opt))
	}
	b.WriteString(hintStyle.Render("j/k or arrows to move, Enter to select, Esc to cancel") + "\n")
	return b.String()
}
