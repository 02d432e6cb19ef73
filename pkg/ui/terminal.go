package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	cyan    = lipgloss.Color("36")
	yellow  = lipgloss.Color("33")
	red     = lipgloss.Color("31")
	green   = lipgloss.Color("32")
	magenta = lipgloss.Color("35")
)

// Printer writes human-facing status lines. Command output such as posts
// goes to stdout; Printer is meant for stderr.
type Printer struct {
	w     io.Writer
	color bool

	label     lipgloss.Style
	value     lipgloss.Style
	errStyle  lipgloss.Style
	warn      lipgloss.Style
	success   lipgloss.Style
	highlight lipgloss.Style
}

// NewPrinter creates a Printer on w. Color is used only when enabled.
func NewPrinter(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:         w,
		color:     color,
		label:     r.NewStyle().Foreground(cyan),
		value:     r.NewStyle().Foreground(yellow),
		errStyle:  r.NewStyle().Foreground(red).Bold(true),
		warn:      r.NewStyle().Foreground(yellow),
		success:   r.NewStyle().Foreground(green),
		highlight: r.NewStyle().Foreground(magenta).Bold(true),
	}
}

// Stderr returns a Printer on os.Stderr, colored when it is a terminal
func Stderr(noColor bool) *Printer {
	return NewPrinter(os.Stderr, !noColor && term.IsTerminal(int(os.Stderr.Fd())))
}

func (p *Printer) render(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// Error prints msg, followed by the first arg as detail when given
func (p *Printer) Error(msg string, args ...interface{}) {
	fmt.Fprintln(p.w, p.render(p.errStyle, withDetail(msg, args)))
}

// Warning prints msg, followed by the first arg as detail when given
func (p *Printer) Warning(msg string, args ...interface{}) {
	fmt.Fprintln(p.w, p.render(p.warn, withDetail(msg, args)))
}

func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.w, p.render(p.success, msg))
}

// Info prints a "label: value" pair
func (p *Printer) Info(label, value string) {
	fmt.Fprintf(p.w, "%s: %s\n", p.render(p.label, label), p.render(p.value, value))
}

func (p *Printer) Highlight(msg string) {
	fmt.Fprintln(p.w, p.render(p.highlight, msg))
}

// Writer exposes the underlying writer for free-form output
func (p *Printer) Writer() io.Writer {
	return p.w
}

func withDetail(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	detail := fmt.Sprintf("%v", args[0])
	if detail == "" {
		return msg
	}
	return msg + ": " + detail
}
