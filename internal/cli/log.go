// Package cli implements the devflow command-line interface.
//
// Every command is a thin shell over [service.Service]: it builds the service
// from configuration, calls one operation and prints the envelope either as
// styled terminal output or, with --json, as the raw result. The CLI is built
// using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - versions, compatible, deps, vulns, metadata: NuGet registry lookups
//   - check, check-maven, fallback: search-backed compatibility evidence
//   - graph: print the framework compatibility graph
//   - serve: run the HTTP API
//   - history: list recent evidence checks
//   - cache: manage the registry response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. At debug
// level, outgoing registry requests and cache hits are logged as well.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/devflow/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Resolved 42 versions (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, falling back to log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Debug Hooks
// =============================================================================

// logHooks writes registry traffic and cache activity at debug level.
type logHooks struct {
	logger *log.Logger
}

func installLogHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetHTTPHooks(h)
	observability.SetCacheHooks(h)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "host", host, "path", path,
		"status", status, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("request failed", "method", method, "host", host, "path", path, "error", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, namespace string) {
	h.logger.Debug("cache hit", "namespace", namespace)
}

func (h *logHooks) OnCacheMiss(_ context.Context, namespace string) {
	h.logger.Debug("cache miss", "namespace", namespace)
}

func (h *logHooks) OnCacheSet(_ context.Context, namespace string, size int) {
	h.logger.Debug("cache set", "namespace", namespace, "bytes", size)
}
