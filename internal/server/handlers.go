package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidx/internal/formatter"
	"github.com/desertthunder/vidx/internal/models"
	"github.com/desertthunder/vidx/internal/shared"
	"github.com/desertthunder/vidx/internal/tasks"
	"golang.org/x/sync/semaphore"
)

const (
	maxRequestBody  = 1 << 20
	defaultJobLimit = 50
	maxJobLimit     = 500
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// ProcessingOptions configures a [ProcessingHandler].
type ProcessingOptions struct {
	MaxConcurrent int           // In-flight pipelines; zero is unlimited
	Timeout       time.Duration // Per-request deadline; zero is none
	Logger        *log.Logger
}

// ProcessingHandler serves /process and /batch.
type ProcessingHandler struct {
	engine  tasks.Engine
	slots   *semaphore.Weighted
	timeout time.Duration
	logger  *log.Logger
}

// NewProcessingHandler creates a handler running requests on engine.
func NewProcessingHandler(engine tasks.Engine, opts ProcessingOptions) *ProcessingHandler {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	h := &ProcessingHandler{engine: engine, timeout: opts.Timeout, logger: opts.Logger}
	if opts.MaxConcurrent > 0 {
		h.slots = semaphore.NewWeighted(int64(opts.MaxConcurrent))
	}
	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *ProcessingHandler) Routes() []string {
	return []string{"/process", "/batch"}
}

func (h *ProcessingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)

	var run func(ctx context.Context) *tasks.Response
	switch r.URL.Path {
	case "/process":
		var req tasks.ProcessRequest
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		run = func(ctx context.Context) *tasks.Response { return h.engine.Process(ctx, req, nil) }
	case "/batch":
		var req tasks.BatchRequest
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		run = func(ctx context.Context) *tasks.Response { return h.engine.Batch(ctx, req, nil) }
	default:
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	if h.slots != nil {
		if err := h.slots.Acquire(ctx, 1); err != nil {
			h.logger.Warn("gave up waiting for a pipeline slot", "path", r.URL.Path, "err", err)
			writeError(w, http.StatusServiceUnavailable, "server busy")
			return
		}
		defer h.slots.Release(1)
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	writeJSON(w, http.StatusOK, run(ctx))
}

// Prober reports the transcoder version. [ffmpeg.Invoker] satisfies it.
type Prober interface {
	Version(ctx context.Context) (string, error)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status          string `json:"status"`
	FFmpegAvailable bool   `json:"ffmpeg_available"`
	Version         string `json:"version,omitempty"`
}

// HealthHandler serves /health.
type HealthHandler struct {
	prober Prober
}

// NewHealthHandler creates a health handler. A nil prober reports ffmpeg as unavailable.
func NewHealthHandler(prober Prober) *HealthHandler {
	return &HealthHandler{prober: prober}
}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"/health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := HealthResponse{Status: "healthy"}
	if h.prober != nil {
		if version, err := h.prober.Version(r.Context()); err == nil {
			resp.FFmpegAvailable = true
			resp.Version = version
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// JobStore is the read side of the job history.
type JobStore interface {
	Get(id string) (*models.Job, error)
	List(criteria map[string]any) ([]*models.Job, error)
}

// JobsHandler serves /jobs and /jobs/{id}.
type JobsHandler struct {
	store JobStore
}

// NewJobsHandler creates a handler reading from store.
func NewJobsHandler(store JobStore) *JobsHandler {
	return &JobsHandler{store: store}
}

// Routes returns the HTTP routes this handler serves.
func (h *JobsHandler) Routes() []string {
	return []string{"/jobs", "/jobs/"}
}

func (h *JobsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/jobs"), "/")
	if id == "" {
		h.list(w, r)
		return
	}

	job, err := h.store.Get(id)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		writeError(w, http.StatusNotFound, "job not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, formatter.ToJobView(job))
	}
}

func (h *JobsHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := map[string]any{"limit": defaultJobLimit}

	if s := q.Get("status"); s != "" {
		status, err := models.ParseJobStatus(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		criteria["status"] = string(status)
	}
	if op := q.Get("operation"); op != "" {
		criteria["operation"] = op
	}
	if l := q.Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		criteria["limit"] = min(limit, maxJobLimit)
	}

	jobs, err := h.store.List(criteria)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, formatter.ToJobViews(jobs))
}
