// Package httpapi exposes the pipeline over HTTP: a health check for
// load balancers and a run endpoint that accepts a GeoJSON exchange
// document, runs the pipeline on it, and returns the recorded run, backed by the same
// pipeline.Runner and store.Store the CLI uses.
//
// No example in the retrieved corpus runs an HTTP server (the pack's
// only net/http usage is client-side, against httptest servers in
// tests — see DESIGN.md), so routing follows go-chi/chi/v5's own
// documented router+middleware shape rather than a grounded pattern.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/transitdraw/transitmap/pkg/loom"
	"github.com/transitdraw/transitmap/pkg/pipeline"
	"github.com/transitdraw/transitmap/pkg/pipelineerr"
	"github.com/transitdraw/transitmap/pkg/store"
)

// Server wires the pipeline runner and run-history store behind an
// HTTP mux.
type Server struct {
	runner  *pipeline.Runner
	history store.Store
	logger  *log.Logger
	mux     *chi.Mux
}

// New builds a Server. history may be nil, in which case run records
// are not persisted.
func New(runner *pipeline.Runner, history store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, history: history, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/healthz", s.handleHealthz)
	r.Post("/runs", s.handleCreateRun)
	r.Get("/runs/{id}", s.handleGetRun)
	r.Get("/runs", s.handleListRuns)
	s.mux = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// logRequests is a chi middleware that logs each request's method,
// path, status, and duration through the server's structured logger.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createRunRequest is the wire shape of POST /runs.
type createRunRequest struct {
	Exchange string `json:"exchange"` // GeoJSON exchange document
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, pipelineerr.New(pipelineerr.CodeMalformedInput, "decode request body: %v", err))
		return
	}
	opts := optionsFromQuery(r.URL.Query())

	id, err := store.NewID()
	if err != nil {
		writeError(w, pipelineerr.Wrap(pipelineerr.CodeInvariantViolated, err, "generate run id"))
		return
	}

	run := &store.Run{ID: id, Status: store.StatusRunning, CreatedAt: time.Now()}
	s.saveRun(r.Context(), run)

	start := time.Now()
	result, err := s.runner.Execute(r.Context(), strings.NewReader(req.Exchange), opts)
	run.DurationMS = time.Since(start).Milliseconds()
	run.CompletedAt = time.Now()

	if err != nil {
		run.Status = store.StatusFailed
		run.ErrorCode = string(pipelineerr.GetCode(err))
		run.ErrorMsg = pipelineerr.UserMessage(err)
		s.saveRun(r.Context(), run)
		writeError(w, err)
		return
	}

	run.Status = store.StatusSucceeded
	run.NetworkHash = result.NetworkHash
	run.NodeCount = result.Stats.NodeCount
	run.EdgeCount = result.Stats.EdgeCount
	run.Stages = map[string]int64{
		"parse":      result.Stats.ParseTime.Milliseconds(),
		"topology":   result.Stats.TopologyTime.Milliseconds(),
		"contract":   result.Stats.ContractTime.Milliseconds(),
		"order":      result.Stats.OrderTime.Milliseconds(),
		"schematize": result.Stats.SchematizeTime.Milliseconds(),
	}
	s.saveRun(r.Context(), run)

	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, pipelineerr.New(pipelineerr.CodeInvalidConfig, "run history is not configured"))
		return
	}
	id := chi.URLParam(r, "id")
	run, err := s.history.Get(r.Context(), id)
	if err == store.ErrNotFound {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeError(w, pipelineerr.Wrap(pipelineerr.CodeInvariantViolated, err, "get run %s", id))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, []*store.Run{})
		return
	}
	runs, err := s.history.List(r.Context(), 50)
	if err != nil {
		writeError(w, pipelineerr.Wrap(pipelineerr.CodeInvariantViolated, err, "list runs"))
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) saveRun(ctx context.Context, run *store.Run) {
	if s.history == nil {
		return
	}
	if err := s.history.Put(ctx, run); err != nil {
		s.logger.Warn("save run history failed", "run", run.ID, "err", err)
	}
}

// optionsFromQuery builds pipeline.Options from request query params:
// ?quality=fast|balanced|optimal and ?refresh=true bypass the runner's
// default and cache behavior respectively.
func optionsFromQuery(q url.Values) pipeline.Options {
	var opts pipeline.Options
	switch q.Get("quality") {
	case "fast":
		opts.Quality = loom.QualityFast
	case "optimal":
		opts.Quality = loom.QualityOptimal
	default:
		opts.Quality = loom.QualityBalanced
	}
	opts.Refresh = q.Get("refresh") == "true"
	return opts
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch pipelineerr.ExitCode(err) {
	case 1:
		status = http.StatusBadRequest
	case 2:
		status = http.StatusUnprocessableEntity
	case 3:
		status = http.StatusGatewayTimeout
	}
	writeJSON(w, status, map[string]string{
		"code":    string(pipelineerr.GetCode(err)),
		"message": pipelineerr.UserMessage(err),
	})
}
