// Package cli renders sync outcomes and cache notifications on the terminal.
package cli

import (
	"io"
	"os"

	"github.com/fatih/color"
)

// ColorSink prints one colorized line per notification.
type ColorSink struct {
	out     io.Writer
	success *color.Color
	info    *color.Color
	warning *color.Color
	failure *color.Color
}

// NewColorSink writes to out, or stdout when out is nil.
func NewColorSink(out io.Writer) *ColorSink {
	if out == nil {
		out = os.Stdout
	}
	return &ColorSink{
		out:     out,
		success: color.New(color.FgGreen),
		info:    color.New(color.FgCyan),
		warning: color.New(color.FgYellow),
		failure: color.New(color.FgRed),
	}
}

func (s *ColorSink) Success(message string) {
	_, _ = s.success.Fprintf(s.out, "✓ %s\n", message)
}

func (s *ColorSink) Info(message string) {
	_, _ = s.info.Fprintf(s.out, "ℹ %s\n", message)
}

func (s *ColorSink) Warning(message string) {
	_, _ = s.warning.Fprintf(s.out, "⚠ %s\n", message)
}

func (s *ColorSink) Error(message string) {
	_, _ = s.failure.Fprintf(s.out, "✗ %s\n", message)
}
