package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup configures the global logrus logger. Without a file, logs go to
// stderr so stdout carries only the report. The returned closer releases the
// log file and is never nil.
func Setup(level, format, file string) (io.Closer, error) {
	logLevel, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nopCloser{}, fmt.Errorf("unknown log level %q", level)
	}
	logrus.SetLevel(logLevel)

	switch strings.ToLower(format) {
	case "", "text":
		logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nopCloser{}, fmt.Errorf("unknown log format %q", format)
	}

	if file == "" {
		logrus.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nopCloser{}, fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
