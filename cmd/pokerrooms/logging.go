package main

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the process logger at the given level. Unknown levels
// fall back to info; the configuration is validated before this runs.
func newLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
}
