// Package log installs the process-wide slog logger.
package log

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"

	"basefind/internal/logging"
)

var (
	initOnce    sync.Once
	initialized atomic.Bool
	closer      func() error
)

// Setup routes slog through the charm logger. The debug flag overrides the
// level from the environment. Only the first call has an effect.
func Setup(debug bool) {
	initOnce.Do(func() {
		lg := newLogger(debug)
		slog.SetDefault(slog.New(lg.Logger))
		closer = lg.Close
		initialized.Store(true)
	})
}

// newLogger builds the process logger. Debug output, whether asked for by
// flag or by environment, also reports the caller.
func newLogger(debug bool) *logging.LoggerCloser {
	lg := logging.NewLogger()
	if debug || logging.IsDebug() {
		lg.SetLevel(charmlog.DebugLevel)
		lg.SetReportCaller(true)
	}
	return lg
}

func Initialized() bool {
	return initialized.Load()
}

// Close flushes and closes a log file opened by Setup.
func Close() error {
	if closer == nil {
		return nil
	}
	return closer()
}

func RecoverPanic(name string, cleanup func()) {
	if r := recover(); r != nil {
		if Initialized() {
			slog.Error(fmt.Sprintf("Panic in %s", name),
				"panic", r,
				"stack", string(debug.Stack()))
		}
		if cleanup != nil {
			cleanup()
		}
	}
}
