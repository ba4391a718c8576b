package ui

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

var (
	// ErrAborted is returned when the user cancels a prompt. Callers treat it
	// as an abort of the whole invocation.
	ErrAborted = errors.New("aborted by user")
	// ErrNotInteractive is returned when stdin is not a terminal.
	ErrNotInteractive = errors.New("an interactive terminal is required")
)

// Chooser presents options and returns the index of the one picked.
type Chooser interface {
	Choose(prompt string, options []string) (int, error)
}

// Prompter reads a single line of text. def is returned on empty input.
type Prompter interface {
	Input(prompt, def string) (string, error)
}

// Terminal implements Chooser and Prompter with bubbletea programs running on
// the process terminal.
type Terminal struct {
	in  *os.File
	out io.Writer
}

// NewTerminal returns a Terminal reading from stdin and drawing on stdout.
func NewTerminal() *Terminal {
	return &Terminal{in: os.Stdin, out: os.Stdout}
}

func (t *Terminal) ensureInteractive() error {
	if !term.IsTerminal(int(t.in.Fd())) {
		return ErrNotInteractive
	}
	return nil
}

// Choose blocks until one option is picked. No timeout.
func (t *Terminal) Choose(prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("no options to choose from")
	}
	if err := t.ensureInteractive(); err != nil {
		return -1, err
	}
	final, err := tea.NewProgram(newMenu(prompt, options), tea.WithInput(t.in), tea.WithOutput(t.out)).Run()
	if err != nil {
		return -1, fmt.Errorf("run menu: %w", err)
	}
	m := final.(menuModel)
	if m.aborted || m.chosen < 0 {
		return -1, ErrAborted
	}
	return m.chosen, nil
}

// Input blocks until a line is entered.
func (t *Terminal) Input(prompt, def string) (string, error) {
	if err := t.ensureInteractive(); err != nil {
		return "", err
	}
	final, err := tea.NewProgram(newInput(prompt, def), tea.WithInput(t.in), tea.WithOutput(t.out)).Run()
	if err != nil {
		return "", fmt.Errorf("run input: %w", err)
	}
	m := final.(inputModel)
	if m.aborted {
		return "", ErrAborted
	}
	return m.value, nil
}

// Confirm asks a yes/no question through c.
func Confirm(c Chooser, prompt string) (bool, error) {
	i, err := c.Choose(prompt, []string{"yes", "no"})
	if err != nil {
		return false, err
	}
	return i == 0, nil
}
