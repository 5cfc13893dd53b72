package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var levels = map[string]log.Level{
	"debug": log.DebugLevel,
	"info":  log.InfoLevel,
	"warn":  log.WarnLevel,
	"error": log.ErrorLevel,
	"fatal": log.FatalLevel,
}

func ParseLevel(level string) (log.Level, error) {
	l, ok := levels[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		return log.InfoLevel, fmt.Errorf("unknown log level (%s)", level)
	}
	return l, nil
}

// NewLogger logs to stderr, or to a rotated file when logFile is set.
func NewLogger(level string, logFile string) (*log.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var w io.Writer = os.Stderr
	opts := log.Options{
		Level:           l,
		ReportTimestamp: true,
		ReportCaller:    l == log.DebugLevel,
	}
	if logFile != "" {
		w = &lumberjack.Logger{
			Filename: logFile,
			MaxAge:   3,
		}
		opts.TimeFormat = "2006/01/02 15:04:05"
	}

	return log.NewWithOptions(w, opts), nil
}
