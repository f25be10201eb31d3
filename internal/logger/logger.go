// Package logger builds the logrus logger shared by every component.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Options controls where and how much is logged.
type Options struct {
	Level string // logrus level name; empty means info
	File  string // log file path; empty logs to Output
	// Output is used when File is empty. Defaults to stderr.
	Output io.Writer
}

// New creates a logger. When a file is configured it is opened for append
// and the returned close func releases it; otherwise close is a no-op.
func New(opts Options) (*logrus.Logger, func() error, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	log.SetLevel(level)

	closer := func() error { return nil }
	switch {
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		log.SetOutput(f)
		closer = f.Close
	case opts.Output != nil:
		log.SetOutput(opts.Output)
	default:
		log.SetOutput(os.Stderr)
	}

	return log, closer, nil
}

// ParseLevel accepts logrus level names; empty means info.
func ParseLevel(s string) (logrus.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return logrus.InfoLevel, nil
	}
	level, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}

// OrDiscard returns log, or a discarding logger when log is nil.
func OrDiscard(log *logrus.Logger) *logrus.Logger {
	if log == nil {
		return Discard()
	}
	return log
}
