package log

import (
	"log/slog"
	"testing"

	charmlog "github.com/charmbracelet/log"

	"basefind/internal/logging"
)

func TestSetupInstallsDebugLogger(t *testing.T) {
	t.Setenv("BASEFIND_LOG_TO_FILE", "")
	Setup(true)
	Setup(false)
	if !Initialized() {
		t.Fatal("expected logger to be initialized")
	}
	if !slog.Default().Enabled(t.Context(), slog.LevelDebug) {
		t.Fatal("debug level should be enabled after Setup(true)")
	}
}

func TestNewLoggerLevel(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		debug bool
		want  charmlog.Level
	}{
		{name: "default", want: charmlog.InfoLevel},
		{name: "flag", debug: true, want: charmlog.DebugLevel},
		{name: "environment", env: "debug", want: charmlog.DebugLevel},
		{name: "environment warn", env: "warn", want: charmlog.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(logging.EnvLevel, tt.env)
			t.Setenv(logging.EnvToFile, "")
			lg := newLogger(tt.debug)
			if got := lg.GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecoverPanicRunsCleanup(t *testing.T) {
	called := false
	func() {
		defer RecoverPanic("test", func() { called = true })
		panic("boom")
	}()
	if !called {
		t.Fatal("cleanup was not called")
	}
}

func TestRecoverPanicWithoutPanic(t *testing.T) {
	called := false
	func() {
		defer RecoverPanic("test", func() { called = true })
	}()
	if called {
		t.Fatal("cleanup must only run on panic")
	}
}
