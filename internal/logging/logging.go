// Package logging sets up the process logger.
package logging

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a timestamped logger writing to w at the given level
// (debug, info, warn, error). Unknown levels fall back to info.
func New(w io.Writer, level, prefix string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
}

// Setup builds a logger with New and installs it as the package default,
// which wish's logging middleware also writes through.
func Setup(w io.Writer, level, prefix string) *log.Logger {
	l := New(w, level, prefix)
	log.SetDefault(l)
	return l
}
