package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/devflow/pkg/buildinfo"
	dferrors "github.com/matzehuels/devflow/pkg/errors"
	"github.com/matzehuels/devflow/pkg/framework"
	"github.com/matzehuels/devflow/pkg/service"
)

// respond writes result with 200 on success and the status of its error
// code otherwise.
func respond(w http.ResponseWriter, env service.Envelope, result any) {
	status := http.StatusOK
	if !env.OK() {
		status = dferrors.HTTPStatus(env.Code)
	}
	writeJSON(w, status, result)
}

func badRequest(w http.ResponseWriter, code dferrors.Code, msg string) {
	writeJSON(w, http.StatusBadRequest, service.Envelope{Status: service.StatusError, Message: msg, Code: code})
}

func query(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  service.StatusSuccess,
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	res := s.svc.GetVersions(r.Context(), chi.URLParam(r, "id"))
	respond(w, res.Envelope, res)
}

func (s *Server) handleCompatible(w http.ResponseWriter, r *http.Request) {
	opts := service.CompatibleOptions{CurrentVersion: query(r, "current")}
	if raw := query(r, "fallback"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(w, dferrors.ErrCodeInvalidInput, "fallback must be a boolean")
			return
		}
		opts.NoFallback = !enabled
	}
	res := s.svc.GetCompatibleVersions(r.Context(), chi.URLParam(r, "id"), query(r, "target"), opts)
	respond(w, res.Envelope, res)
}

func (s *Server) handleDependencies(w http.ResponseWriter, r *http.Request) {
	res := s.svc.GetDependencies(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "version"), query(r, "target"))
	respond(w, res.Envelope, res)
}

func (s *Server) handleVulnerabilities(w http.ResponseWriter, r *http.Request) {
	res := s.svc.GetVulnerabilities(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "version"))
	respond(w, res.Envelope, res)
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	res := s.svc.GetMetadata(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "version"))
	respond(w, res.Envelope, res)
}

func (s *Server) handleCheckNuGet(w http.ResponseWriter, r *http.Request) {
	res := s.svc.CheckCompatibility(r.Context(), query(r, "package"), query(r, "version"), query(r, "target"))
	respond(w, res.Envelope, res)
}

func (s *Server) handleCheckMaven(w http.ResponseWriter, r *http.Request) {
	res := s.svc.CheckMavenCompatibility(r.Context(),
		query(r, "group"), query(r, "artifact"), query(r, "version"), query(r, "runtime"))
	respond(w, res.Envelope, res)
}

func (s *Server) handleCheckGradle(w http.ResponseWriter, r *http.Request) {
	res := s.svc.CheckGradleCompatibility(r.Context(),
		query(r, "group"), query(r, "artifact"), query(r, "version"), query(r, "runtime"))
	respond(w, res.Envelope, res)
}

func (s *Server) handleFallback(w http.ResponseWriter, r *http.Request) {
	res := s.svc.CompatibleVersionsFallback(r.Context(), query(r, "package"), query(r, "target"))
	respond(w, res.Envelope, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := query(r, "limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(w, dferrors.ErrCodeInvalidInput, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	res := s.svc.RecentChecks(r.Context(), limit)
	respond(w, res.Envelope, res)
}

// frameworksResponse lists the compatibility chains of one family.
type frameworksResponse struct {
	service.Envelope
	Family string                          `json:"family"`
	Chains map[framework.ID][]framework.ID `json:"chains"`
}

func (s *Server) handleFrameworks(w http.ResponseWriter, r *http.Request) {
	g, ok := framework.GraphFor(chi.URLParam(r, "family"))
	if !ok {
		writeJSON(w, http.StatusNotFound, service.Envelope{
			Status:  service.StatusError,
			Message: "unknown framework family " + chi.URLParam(r, "family"),
			Code:    dferrors.ErrCodeNotFound,
		})
		return
	}

	resp := frameworksResponse{
		Envelope: service.Envelope{Status: service.StatusSuccess},
		Family:   g.Family().Name,
		Chains:   make(map[framework.ID][]framework.ID),
	}
	if raw := query(r, "chain"); raw != "" {
		id := g.Normalize(raw)
		if !g.Has(id) {
			writeJSON(w, http.StatusNotFound, service.Envelope{
				Status:  service.StatusError,
				Message: "unknown identifier " + string(id),
				Code:    dferrors.ErrCodeInvalidFramework,
			})
			return
		}
		resp.Chains[id] = g.Chain(id)
	} else {
		for _, k := range g.Keys() {
			resp.Chains[k] = g.Chain(k)
		}
	}
	respond(w, resp.Envelope, resp)
}
