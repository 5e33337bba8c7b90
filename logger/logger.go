// logger/logger.go
package logger

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/gewnthar/covidtesting/config"
)

// New builds the process logger from the log section of the configuration.
func New(cfg config.LogConfig) (*log.Logger, error) {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(cfg config.LogConfig, out io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	l := log.New()
	l.SetOutput(out)
	l.SetLevel(level)

	switch cfg.Format {
	case "json":
		l.SetFormatter(&log.JSONFormatter{})
	case "", "text":
		l.SetFormatter(&log.TextFormatter{QuoteEmptyFields: true, FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return l, nil
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}
