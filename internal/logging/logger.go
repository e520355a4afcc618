// Package logging builds the charmbracelet/log logger used by basefind.
// It is configured through environment variables.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Environment variables read by FromEnv.
const (
	EnvLevel  = "BASEFIND_LOG_LEVEL"
	EnvPrefix = "BASEFIND_LOG_PREFIX"
	EnvToFile = "BASEFIND_LOG_TO_FILE"
)

// Settings describe a logger.
type Settings struct {
	Level  log.Level
	Prefix string
	// ToFile sends output to a timestamped file in the working directory.
	ToFile bool
}

// FromEnv reads Settings from the environment.
//
//	BASEFIND_LOG_LEVEL: debug, info, warn, error (default: info)
//	BASEFIND_LOG_PREFIX: prefix for log messages (default: "basefind ")
//	BASEFIND_LOG_TO_FILE: "1" logs to basefind-<timestamp>-debug.log
func FromEnv() Settings {
	prefix, ok := os.LookupEnv(EnvPrefix)
	if !ok {
		prefix = "basefind "
	}
	return Settings{
		Level:  ParseLevel(os.Getenv(EnvLevel)),
		Prefix: prefix,
		ToFile: os.Getenv(EnvToFile) == "1",
	}
}

// ParseLevel maps a level name to a log level, defaulting to info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(s) {
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

// LoggerCloser is a logger that owns its output.
type LoggerCloser struct {
	*log.Logger
	closer io.Closer
}

// Close closes the underlying writer if the logger owns one.
func (lc *LoggerCloser) Close() error {
	if lc.closer != nil {
		return lc.closer.Close()
	}
	return nil
}

// NewLoggerWithWriter creates a logger writing to w.
func NewLoggerWithWriter(w io.Writer, s Settings) *LoggerCloser {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           s.Level,
		Prefix:          strings.TrimSpace(s.Prefix),
	})

	var closer io.Closer
	if c, ok := w.(io.Closer); ok && w != os.Stderr && w != os.Stdout {
		closer = c
	}
	return &LoggerCloser{Logger: lg, closer: closer}
}

// NewLogger creates a logger from the environment. If the log file cannot be
// created it falls back to stderr.
func NewLogger() *LoggerCloser {
	s := FromEnv()
	output := io.Writer(os.Stderr)
	if s.ToFile {
		name := fmt.Sprintf("basefind-%s-debug.log", time.Now().Format("20060102-150405"))
		if f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644); err == nil {
			output = f
		}
	}
	return NewLoggerWithWriter(output, s)
}

// IsDebug reports whether the environment asks for debug logging.
func IsDebug() bool {
	return FromEnv().Level == log.DebugLevel
}
