package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Generations
	GenerationsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iacforge_generations_total",
			Help: "Generation runs started, by target provider",
		},
		[]string{"provider"},
	)
	GenerationResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iacforge_generation_results_total",
			Help: "Generation run outcomes",
		},
		[]string{"provider", "result"}, // result: success|failure
	)
	GenerationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "iacforge_generation_duration_seconds",
			Help:    "Histogram of end-to-end generation durations",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"provider"},
	)

	// Jobs
	JobsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "iacforge_jobs_created_total",
			Help: "Total number of generation jobs created",
		},
	)
	JobStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iacforge_job_status_changes_total",
			Help: "Number of job status transitions",
		},
		[]string{"from", "to"},
	)
	ActiveJobs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "iacforge_jobs_active",
			Help: "Current number of running jobs",
		},
	)

	// Validation
	ValidationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iacforge_validation_runs_total",
			Help: "Validation runs by stage and result",
		},
		[]string{"stage", "result"}, // stage: static|terraform|security, result: pass|fail|skip
	)
	ValidationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "iacforge_validation_duration_seconds",
			Help:    "Duration of validation stages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// Security scans
	ScanRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iacforge_security_scans_total",
			Help: "External security scans by kind and result",
		},
		[]string{"kind", "result"}, // kind: secrets|static|dependencies
	)

	// LLM
	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iacforge_llm_requests_total",
			Help: "Language-model requests by backend and operation",
		},
		[]string{"backend", "operation"},
	)
	LLMFailovers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iacforge_llm_failovers_total",
			Help: "Failovers away from a backend, by backend that failed",
		},
		[]string{"backend"},
	)

	// Storage ops
	StoreOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iacforge_store_ops_total",
			Help: "Repository operations performed",
		},
		[]string{"op"}, // op: get|put|delete|list|count
	)

	// Errors
	Errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iacforge_errors_total",
			Help: "Errors encountered in components",
		},
		[]string{"component", "type"},
	)
)

func init() {
	prometheus.MustRegister(
		GenerationsStarted,
		GenerationResults,
		GenerationDurationSeconds,

		JobsCreated,
		JobStatusChanges,
		ActiveJobs,

		ValidationRuns,
		ValidationDurationSeconds,
		ScanRuns,

		LLMRequests,
		LLMFailovers,

		StoreOps,
		Errors,
	)
}

func StartMetricsServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())
	_ = http.ListenAndServe(addr, nil)
}

// Generations
func IncGenerationStarted(provider string) {
	GenerationsStarted.WithLabelValues(provider).Inc()
}

func IncGenerationResult(provider, result string) {
	GenerationResults.WithLabelValues(provider, result).Inc()
}

func ObserveGenerationDuration(provider string, d time.Duration) {
	GenerationDurationSeconds.WithLabelValues(provider).Observe(d.Seconds())
}

// Jobs
func IncJobsCreated() {
	JobsCreated.Inc()
}

func IncJobStatusChange(from, to string) {
	JobStatusChanges.WithLabelValues(from, to).Inc()
}

func SetActiveJobs(n int) {
	ActiveJobs.Set(float64(n))
}

// Validation
func IncValidationRun(stage, result string) {
	ValidationRuns.WithLabelValues(stage, result).Inc()
}

func ObserveValidationDuration(stage string, d time.Duration) {
	ValidationDurationSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// Scans
func IncScanRun(kind, result string) {
	ScanRuns.WithLabelValues(kind, result).Inc()
}

// LLM
func IncLLMRequest(backend, operation string) {
	LLMRequests.WithLabelValues(backend, operation).Inc()
}

func IncLLMFailover(backend string) {
	LLMFailovers.WithLabelValues(backend).Inc()
}

// Storage
func IncStoreOp(op string) {
	StoreOps.WithLabelValues(op).Inc()
}

// Errors
func IncError(component, typ string) {
	Errors.WithLabelValues(component, typ).Inc()
}
