package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes coloured one-line messages. Colour is dropped when w is
// not a terminal.
type Printer struct {
	w      io.Writer
	red    lipgloss.Style
	green  lipgloss.Style
	blue   lipgloss.Style
	yellow lipgloss.Style
}

func NewPrinter(w io.Writer) Printer {
	r := lipgloss.NewRenderer(w)
	return Printer{
		w:      w,
		red:    r.NewStyle().Foreground(lipgloss.Color("9")),
		green:  r.NewStyle().Foreground(lipgloss.Color("10")),
		blue:   r.NewStyle().Foreground(lipgloss.Color("12")),
		yellow: r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

func (p Printer) Error(format string, args ...any) {
	p.line(p.red, format, args...)
}

func (p Printer) Success(format string, args ...any) {
	p.line(p.green, format, args...)
}

func (p Printer) Info(format string, args ...any) {
	p.line(p.blue, format, args...)
}

func (p Printer) Warn(format string, args ...any) {
	p.line(p.yellow, format, args...)
}

// Plain writes an uncoloured line.
func (p Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Field writes "label value" with the label in blue.
func (p Printer) Field(label, value string) {
	fmt.Fprintf(p.w, "%s %s\n", p.blue.Render(label), value)
}

func (p Printer) line(style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(p.w, style.Render(fmt.Sprintf(format, args...)))
}
