package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Printer writes human-facing results. Colors are applied only when enabled.
type Printer struct {
	w      io.Writer
	errW   io.Writer
	quiet  bool
	styles printerStyles
}

type printerStyles struct {
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Bold    lipgloss.Style
	Dim     lipgloss.Style
}

// NewPrinter creates a Printer writing results to w and problems to errW.
func NewPrinter(w, errW io.Writer, color, quiet bool) *Printer {
	styles := printerStyles{
		Error:   lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Bold:    lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
	}
	if color {
		styles.Error = styles.Error.Foreground(lipgloss.Color("9")).Bold(true) // Red
		styles.Success = styles.Success.Foreground(lipgloss.Color("10"))       // Green
		styles.Warning = styles.Warning.Foreground(lipgloss.Color("11"))       // Yellow
		styles.Bold = styles.Bold.Bold(true)
		styles.Dim = styles.Dim.Foreground(lipgloss.Color("8"))
	}
	return &Printer{w: w, errW: errW, quiet: quiet, styles: styles}
}

// Created reports a written file.
func (p *Printer) Created(path string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", p.styles.Success.Render("Created"), path)
}

// Summary reports the outcome of a build.
func (p *Printer) Summary(format string, args ...any) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.w, p.styles.Bold.Render(fmt.Sprintf(format, args...)))
}

// Detail writes a dimmed line, used for timing in verbose mode.
func (p *Printer) Detail(format string, args ...any) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.w, p.styles.Dim.Render(fmt.Sprintf(format, args...)))
}

// Warn writes a warning to the error writer.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintf(p.errW, "%s: %s\n", p.styles.Warning.Render("warning"), fmt.Sprintf(format, args...))
}

// Error writes an error to the error writer.
func (p *Printer) Error(err error) {
	fmt.Fprintf(p.errW, "%s: %v\n", p.styles.Error.Render("error"), err)
}

// resolveColor decides whether output is colorized: "always" and "never"
// force the choice, anything else follows the terminal.
func resolveColor(mode string, w io.Writer) bool {
	switch mode {
	case "never":
		return false
	case "always":
		return true
	default:
		return isTerminal(w)
	}
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newLogger returns a text logger on w. Verbose enables debug records,
// quiet keeps errors only.
func newLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
