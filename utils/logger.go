package utils

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// NewLogger builds the structured logger shared by every component
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, errors.Wrapf(err, "[NewLogger] unknown log level: %+v", level)
		}
		lvl = parsed
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "gol",
	}), nil
}
