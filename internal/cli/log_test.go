package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/devflow/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		log   func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("resolved", "package", "serilog") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("cache miss") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("cache miss") }, true},
		{"warn at debug", log.DebugLevel, func(l *log.Logger) { l.Warn("skipping invalid version") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("fetched registration")

	if !strings.Contains(buf.String(), "fetched registration") {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("loggerFromContext without a logger should fall back to a default")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	got := loggerFromContext(withLogger(context.Background(), custom))
	if got != custom {
		t.Fatal("loggerFromContext should return the stored logger")
	}
	got.Info("hello")
	if buf.Len() == 0 {
		t.Error("stored logger should write to its buffer")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.DebugLevel)
	t.Cleanup(observability.Reset)

	installLogHooks(logger)
	ctx := context.Background()
	observability.HTTP().OnRequest(ctx, "GET", "api.nuget.org", "/v3/registration5-gz-semver2/serilog/index.json")
	observability.HTTP().OnError(ctx, "GET", "api.nuget.org", "/v3/index.json", errors.New("connection reset"))
	observability.Cache().OnCacheHit(ctx, "nuget")

	out := buf.String()
	for _, want := range []string{"api.nuget.org", "connection reset", "cache hit", "nuget"} {
		if !strings.Contains(out, want) {
			t.Errorf("hook output missing %q:\n%s", want, out)
		}
	}
}

func TestSetLogLevelInstallsHooksAtDebug(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	c := New(&buf, log.InfoLevel)
	c.SetLogLevel(log.InfoLevel)
	if _, ok := observability.HTTP().(*logHooks); ok {
		t.Fatal("hooks should not be installed at info level")
	}

	c.SetLogLevel(log.DebugLevel)
	if _, ok := observability.HTTP().(*logHooks); !ok {
		t.Error("hooks should be installed at debug level")
	}
}
