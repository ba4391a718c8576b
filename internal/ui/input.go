package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

// inputModel reads one line. Empty input is accepted only when a default
// value is present, in which case the default is returned.
type inputModel struct {
	prompt  string
	def     string
	field   textinput.Model
	value   string
	errMsg  string
	aborted bool
	done    bool
}

func newInput(prompt, def string) inputModel {
	ti := textinput.New()
	ti.Placeholder = def
	ti.CharLimit = 256
	ti.Width = 40
	ti.Focus()
	return inputModel{prompt: prompt, def: def, field: ti}
}

func (m inputModel) Init() tea.Cmd { return textinput.Blink }

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			m.done = true
			return m, tea.Quit
		case "enter":
			v := strings.TrimSpace(m.field.Value())
			if v == "" {
				v = m.def
			}
			if v == "" {
				m.errMsg = "a value is required"
				return m, nil
			}
			m.value = v
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.field, cmd = m.field.Update(msg)
	m.errMsg = ""
	return m, cmd
}

func (m inputModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(promptStyle.Render(m.prompt) + " " + m.field.View() + "\n")
	if m.errMsg != "" {
		b.WriteString(errStyle.Render("Error: "+m.errMsg) + "\n")
	}
	return b.String()
}
