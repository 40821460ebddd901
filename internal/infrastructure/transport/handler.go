package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"iacforge/app/usecase"
	"iacforge/internal/domain/entity"
)

type Handler struct {
	jobService usecase.JobUsecase
	generation *usecase.GenerationService
	scans      *usecase.ScanService
	logger     *slog.Logger
	upgrader   websocket.Upgrader

	reqDuration *prometheus.HistogramVec
	reqCount    *prometheus.CounterVec
	errCount    *prometheus.CounterVec
}

func NewHandler(
	jobService usecase.JobUsecase,
	generation *usecase.GenerationService,
	scans *usecase.ScanService,
	logger *slog.Logger,
) *Handler {

	reqDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	reqCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path"},
	)

	errCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of HTTP request errors.",
		},
		[]string{"method", "path", "status"},
	)

	prometheus.MustRegister(reqDuration, reqCount, errCount)

	return &Handler{
		jobService: jobService,
		generation: generation,
		scans:      scans,
		logger:     logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		reqDuration: reqDuration,
		reqCount:    reqCount,
		errCount:    errCount,
	}
}

func (h *Handler) withMetrics(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := r.URL.Path
		method := r.Method

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)

		duration := time.Since(start).Seconds()
		statusStr := strconv.Itoa(rw.status)

		h.reqCount.WithLabelValues(method, path).Inc()
		h.reqDuration.WithLabelValues(method, path, statusStr).Observe(duration)

		if rw.status >= 400 {
			h.errCount.WithLabelValues(method, path, statusStr).Inc()
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/generate", h.withMetrics(h.handleGenerate)).Methods(http.MethodPost)
	api.HandleFunc("/validate", h.withMetrics(h.handleValidate)).Methods(http.MethodPost)
	api.HandleFunc("/diagnose", h.withMetrics(h.handleDiagnose)).Methods(http.MethodPost)
	api.HandleFunc("/llm/status", h.withMetrics(h.handleLLMStatus)).Methods(http.MethodGet)

	api.HandleFunc("/jobs", h.withMetrics(h.handleCreateJob)).Methods(http.MethodPost)
	api.HandleFunc("/jobs", h.withMetrics(h.handleListJobs)).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{id}", h.withMetrics(h.handleGetJob)).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{id}", h.withMetrics(h.handleDeleteJob)).Methods(http.MethodDelete)
	api.HandleFunc("/jobs/{id}/cancel", h.withMetrics(h.handleCancelJob)).Methods(http.MethodPost)
	api.HandleFunc("/jobs/{id}/result", h.withMetrics(h.handleGetResult)).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{id}/ws", h.handleJobStream).Methods(http.MethodGet)

	api.HandleFunc("/generations/{id}/scan", h.withMetrics(h.handleScan)).Methods(http.MethodPost)

	api.HandleFunc("/health", h.withMetrics(h.handleHealth)).Methods(http.MethodGet)

	// Prometheus
	r.Handle("/metrics", promhttp.Handler())
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// POST /api/v1/generate
// Synchronous generation. Queue through /jobs instead for long-running work.
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req entity.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad request body: %w", err))
		return
	}
	if req.Requirements == "" {
		writeError(w, http.StatusBadRequest, errors.New("requirements are required"))
		return
	}
	if !req.Provider.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown provider %q", req.Provider))
		return
	}

	resp := h.generation.GenerateIaC(r.Context(), req)
	if !resp.Success {
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/v1/validate
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req entity.ValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad request body: %w", err))
		return
	}
	if req.IaCCode == "" {
		writeError(w, http.StatusBadRequest, errors.New("iac_code is required"))
		return
	}
	if req.Format == "" {
		req.Format = entity.FormatTerraform
	}

	writeJSON(w, http.StatusOK, h.generation.ValidateIaC(r.Context(), req))
}

type diagnoseReq struct {
	ErrorLogs     string         `json:"error_logs"`
	Config        map[string]any `json:"config,omitempty"`
	State         map[string]any `json:"state,omitempty"`
	PreviousFixes []string       `json:"previous_fixes,omitempty"`
}

// POST /api/v1/diagnose
func (h *Handler) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	var req diagnoseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad request body: %w", err))
		return
	}
	if req.ErrorLogs == "" {
		writeError(w, http.StatusBadRequest, errors.New("error_logs are required"))
		return
	}

	diagnosis, backend, err := h.generation.Diagnose(r.Context(), req.ErrorLogs, req.Config, req.State, req.PreviousFixes)
	if err != nil {
		h.logger.Error("diagnosis failed", "err", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"diagnosis": diagnosis, "backend": backend})
}

// GET /api/v1/llm/status
func (h *Handler) handleLLMStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.generation.BackendStatus(r.Context()))
}

// POST /api/v1/jobs
func (h *Handler) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req entity.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad request body: %w", err))
		return
	}

	job, err := h.jobService.CreateJob(r.Context(), req)
	if err != nil {
		h.logger.Error("create job failed", "err", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusCreated, job)
}

// GET /api/v1/jobs
func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobService.ListJobs(r.Context())
	if err != nil {
		h.logger.Error("list jobs failed", "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// GET /api/v1/jobs/{id}
func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("id required"))
		return
	}
	job, err := h.jobService.GetJob(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// DELETE /api/v1/jobs/{id}
func (h *Handler) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("id required"))
		return
	}
	if err := h.jobService.DeleteJob(r.Context(), id); err != nil {
		h.logger.Error("delete job failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// POST /api/v1/jobs/{id}/cancel
func (h *Handler) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.jobService.CancelJob(r.Context(), id); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"job_id": id, "status": string(entity.JobStatusCanceled)})
}

// GET /api/v1/jobs/{id}/result
func (h *Handler) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	result, err := h.jobService.GetResult(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// POST /api/v1/generations/{id}/scan
func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	report, err := h.scans.ScanGeneration(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GET /api/v1/jobs/{id}/ws
// Streams job status transitions until the job reaches a terminal state.
func (h *Handler) handleJobStream(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.jobService.GetJob(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastStatus entity.JobStatus
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			job, err := h.jobService.GetJob(r.Context(), id)
			if err != nil {
				_ = conn.WriteJSON(map[string]string{"error": err.Error()})
				return
			}
			if job.Status == lastStatus {
				continue
			}
			lastStatus = job.Status

			if err := conn.WriteJSON(job); err != nil {
				return
			}
			if job.Terminal() {
				return
			}
		}
	}
}

// GET /api/v1/health
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"ok": true,
		"ts": time.Now().UTC(),
	}
	writeJSON(w, http.StatusOK, status)
}
