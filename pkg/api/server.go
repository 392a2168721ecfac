// Package api exposes the service operations over HTTP.
//
// Every endpoint is a GET returning the uniform result envelope as JSON.
// Errors map to HTTP status codes by error code (400 for invalid input,
// 502 for upstream failures, 504 for timeouts), and the envelope body is
// returned either way. Each response carries an X-Request-ID header.
//
// Routes:
//
//	GET /healthz
//	GET /v1/packages/{id}/versions
//	GET /v1/packages/{id}/compatible?target=net48&current=1.2.0&fallback=false
//	GET /v1/packages/{id}/versions/{version}/dependencies?target=net48
//	GET /v1/packages/{id}/versions/{version}/vulnerabilities
//	GET /v1/packages/{id}/versions/{version}/metadata
//	GET /v1/evidence/nuget?package=&version=&target=
//	GET /v1/evidence/maven?group=&artifact=&version=&runtime=
//	GET /v1/evidence/gradle?group=&artifact=&version=&runtime=
//	GET /v1/evidence/fallback?package=&target=
//	GET /v1/frameworks/{family}?chain=net48
//	GET /v1/history?limit=20
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	dferrors "github.com/matzehuels/devflow/pkg/errors"
	"github.com/matzehuels/devflow/pkg/observability"
	"github.com/matzehuels/devflow/pkg/service"
)

// RequestIDHeader is set on every response.
const RequestIDHeader = "X-Request-ID"

const shutdownTimeout = 10 * time.Second

// Server serves the HTTP API.
type Server struct {
	svc    *service.Service
	logger *log.Logger
	stats  *observability.Stats
	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithStats publishes st at GET /v1/stats.
func WithStats(st *observability.Stats) Option {
	return func(s *Server) { s.stats = st }
}

// New builds the router for svc.
func New(svc *service.Service, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{svc: svc, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/packages/{id}", func(r chi.Router) {
			r.Get("/versions", s.handleVersions)
			r.Get("/compatible", s.handleCompatible)
			r.Route("/versions/{version}", func(r chi.Router) {
				r.Get("/dependencies", s.handleDependencies)
				r.Get("/vulnerabilities", s.handleVulnerabilities)
				r.Get("/metadata", s.handleMetadata)
			})
		})
		r.Route("/evidence", func(r chi.Router) {
			r.Get("/nuget", s.handleCheckNuGet)
			r.Get("/maven", s.handleCheckMaven)
			r.Get("/gradle", s.handleCheckGradle)
			r.Get("/fallback", s.handleFallback)
		})
		r.Get("/frameworks/{family}", s.handleFrameworks)
		r.Get("/history", s.handleHistory)
		if s.stats != nil {
			r.Get("/stats", s.handleStats)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, service.Envelope{
			Status:  service.StatusError,
			Message: "no route for " + r.URL.Path,
			Code:    dferrors.ErrCodeNotFound,
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type ctxKey int

const requestIDKey ctxKey = 0

// requestID assigns a uuid to each request, keeping a well-formed incoming
// X-Request-ID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestIDFromContext returns the request id assigned by the server.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", RequestIDFromContext(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
