// Package logging builds the charmbracelet/log logger shared by the CLI.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// ParseLevel maps a config level name onto a log level. Unknown names
// fall back to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// New returns a text logger prefixed with "todo" writing to w.
func New(level string, w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(level),
		Formatter:       log.TextFormatter,
		ReportTimestamp: false,
		Prefix:          "todo",
	})
}

// Discard returns a logger that drops everything. Tests use it.
func Discard() *log.Logger {
	return New("error", io.Discard)
}
