// Package service is the boundary between callers (the CLI, the HTTP API or
// an orchestration agent) and the resolver and evidence packages.
//
// Every public method returns a result embedding an [Envelope] and never an
// error: input validation failures, transport errors, timeouts and even
// panics are converted to {"status": "error", "message": ..., "code": ...}.
// A package the registry does not know is a successful, empty answer so
// callers can chain to the search fallback.
package service

import (
	"context"
	"errors"
	"io"
	"runtime/debug"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	dferrors "github.com/matzehuels/devflow/pkg/errors"
	"github.com/matzehuels/devflow/pkg/evidence"
	"github.com/matzehuels/devflow/pkg/integrations"
	"github.com/matzehuels/devflow/pkg/integrations/search"
	"github.com/matzehuels/devflow/pkg/observability"
	"github.com/matzehuels/devflow/pkg/resolver"
	"github.com/matzehuels/devflow/pkg/store"
)

// Status values of an Envelope.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// DefaultTimeout bounds a single operation.
const DefaultTimeout = 30 * time.Second

// Envelope is the uniform status block of every result.
type Envelope struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Code    dferrors.Code `json:"code,omitempty"`
}

// OK reports whether the operation succeeded.
func (e Envelope) OK() bool { return e.Status == StatusSuccess }

func success() Envelope { return Envelope{Status: StatusSuccess} }

func failure(err error) Envelope {
	return Envelope{Status: StatusError, Message: message(err), Code: Classify(err)}
}

// message renders err without the code prefix of structured errors.
func message(err error) string {
	var e *dferrors.Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Service runs resolver and evidence operations behind the envelope.
type Service struct {
	Resolver *resolver.Resolver
	Checker  *evidence.Checker // Nil when search credentials are not configured
	History  store.Store
	Logger   *log.Logger

	// Timeout bounds each operation. Zero disables the deadline.
	Timeout time.Duration

	// Fallback makes GetCompatibleVersions consult the evidence checker when
	// the registry reports no compatible version.
	Fallback bool
}

// New creates a service with the default timeout and the fallback enabled.
// A nil checker disables evidence operations; a nil history discards checks.
func New(r *resolver.Resolver, checker *evidence.Checker, history store.Store, logger *log.Logger) *Service {
	if history == nil {
		history = store.NullStore{}
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Service{
		Resolver: r,
		Checker:  checker,
		History:  history,
		Logger:   logger,
		Timeout:  DefaultTimeout,
		Fallback: true,
	}
}

// run executes fn under the operation deadline, reporting to the resolver
// hooks. fn returns the number of results it produced.
func (s *Service) run(ctx context.Context, op, subject string, fn func(ctx context.Context) (int, error)) (env Envelope) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	hooks := observability.Resolver()
	start := time.Now()
	hooks.OnResolveStart(ctx, op, subject)

	defer func() {
		if r := recover(); r != nil {
			err := dferrors.New(dferrors.ErrCodeInternal, "internal error in %s: %v", op, r)
			s.Logger.Error("operation panicked", "op", op, "subject", subject, "panic", r, "stack", string(debug.Stack()))
			hooks.OnResolveComplete(ctx, op, subject, 0, time.Since(start), err)
			env = failure(err)
		}
	}()

	n, err := fn(ctx)
	hooks.OnResolveComplete(ctx, op, subject, n, time.Since(start), err)
	if err != nil {
		s.Logger.Warn("operation failed", "op", op, "subject", subject, "error", err)
		return failure(err)
	}
	s.Logger.Debug("operation complete", "op", op, "subject", subject, "results", n, "duration", time.Since(start))
	return success()
}

// Classify maps an error to the code reported in the envelope.
func Classify(err error) dferrors.Code {
	if code := dferrors.GetCode(err); code != "" {
		return code
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dferrors.ErrCodeTimeout
	case errors.Is(err, integrations.ErrRateLimited):
		return dferrors.ErrCodeRateLimited
	case errors.Is(err, integrations.ErrMalformed):
		return dferrors.ErrCodeMalformedData
	case errors.Is(err, integrations.ErrNotFound):
		return dferrors.ErrCodeNotFound
	case errors.Is(err, integrations.ErrNetwork):
		return dferrors.ErrCodeNetwork
	case errors.Is(err, search.ErrMissingCredentials):
		return dferrors.ErrCodeConfiguration
	default:
		return dferrors.ErrCodeInternal
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, integrations.ErrNotFound)
}

func (s *Service) checker() (*evidence.Checker, error) {
	if s.Checker == nil {
		return nil, dferrors.Wrap(dferrors.ErrCodeConfiguration, search.ErrMissingCredentials,
			"search-based checks are not configured")
	}
	return s.Checker, nil
}

func (s *Service) record(ctx context.Context, rec *store.Record) string {
	if err := s.History.Add(ctx, rec); err != nil {
		s.Logger.Warn("failed to record check", "id", rec.ID, "error", err)
		return ""
	}
	return rec.ID
}

func clean(s string) string { return strings.TrimSpace(s) }

func validateOptionalVersion(v string) error {
	if v == "" {
		return nil
	}
	return dferrors.ValidateVersionString(v)
}

func subject(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "@")
}
