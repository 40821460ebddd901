package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"iacforge/internal/domain/entity"
	"iacforge/internal/domain/repository"
	"iacforge/internal/infrastructure/metrics"
)

const pingTimeout = 5 * time.Second

// Orchestrator runs the high-level language-model operations over a fixed,
// ordered backend list. The list never changes after construction: the first
// entry is the primary and the rest are tried in order on failure, so
// concurrent callers always observe the same failover sequence.
type Orchestrator struct {
	backends []repository.Backend
	logger   *slog.Logger
}

// NewOrchestrator orders the given backends primary-first and freezes them.
// A backend tagged RolePrimary is moved to the front; otherwise the configured
// order stands.
func NewOrchestrator(backends []repository.Backend, logger *slog.Logger) (*Orchestrator, error) {
	if len(backends) == 0 {
		return nil, entity.ErrNoBackends
	}
	if logger == nil {
		logger = slog.Default()
	}

	ordered := make([]repository.Backend, 0, len(backends))
	for _, b := range backends {
		if b.Role() == repository.RolePrimary {
			ordered = append(ordered, b)
		}
	}
	for _, b := range backends {
		if b.Role() != repository.RolePrimary {
			ordered = append(ordered, b)
		}
	}

	return &Orchestrator{backends: ordered, logger: logger}, nil
}

// complete tries each backend in order until one returns a response. Every
// failed backend is recorded exactly once; when all fail the attempts come
// back wrapped in a BackendsExhaustedError.
func (o *Orchestrator) complete(ctx context.Context, operation, prompt string) (string, string, error) {
	attempts := make([]entity.BackendAttempt, 0, len(o.backends))

	for i, backend := range o.backends {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, entity.BackendAttempt{Backend: backend.Name(), Err: err.Error()})
			break
		}

		metrics.IncLLMRequest(backend.Name(), operation)
		text, err := backend.Complete(ctx, prompt)
		if err == nil {
			if i > 0 {
				o.logger.Info("llm fallback served request",
					"operation", operation, "backend", backend.Name(), "failed_attempts", i)
			}
			return text, backend.Name(), nil
		}

		o.logger.Warn("llm backend failed",
			"operation", operation, "backend", backend.Name(), "error", err)
		metrics.IncLLMFailover(backend.Name())
		attempts = append(attempts, entity.BackendAttempt{Backend: backend.Name(), Err: err.Error()})
	}

	return "", "", &entity.BackendsExhaustedError{Operation: operation, Attempts: attempts}
}

// AnalyzeRequirements turns free-form requirements into a structured
// specification. A backend reply that carries no parseable JSON degrades to
// the documented default specification instead of failing the run.
func (o *Orchestrator) AnalyzeRequirements(ctx context.Context, req entity.GenerationRequest, templates []string, constraints map[string]any) (entity.AnalyzedSpecification, string, error) {
	templatesJSON, _ := json.Marshal(templates)
	constraintsJSON, _ := json.Marshal(constraints)

	prompt := entity.AnalysisPrompt.Render(
		req.Requirements,
		string(req.Provider),
		req.Environment,
		req.ProjectName,
		string(templatesJSON),
		string(constraintsJSON),
	)

	text, used, err := o.complete(ctx, "analyze_requirements", prompt)
	if err != nil {
		return entity.AnalyzedSpecification{}, "", err
	}

	raw, extractErr := ExtractJSONObject(text)
	if extractErr == nil {
		spec, parseErr := entity.ParseAnalyzedSpecification([]byte(raw))
		if parseErr == nil {
			return spec, used, nil
		}
		extractErr = parseErr
	}

	o.logger.Warn("analysis response unparseable, using default specification",
		"backend", used, "error", &entity.MalformedResponseError{Backend: used, Raw: text, Cause: extractErr})
	return entity.DefaultAnalyzedSpecification(), used, nil
}

// GenerateCode produces IaC text from the analyzed specification and the
// adapter's base template. The raw response is unfenced here; judging whether
// the code is usable is the caller's concern.
func (o *Orchestrator) GenerateCode(ctx context.Context, spec entity.AnalyzedSpecification, baseTemplate string, req entity.GenerationRequest) (string, string, error) {
	analysisJSON, _ := json.Marshal(spec)

	prompt := entity.GenerationPrompt.Render(
		string(req.Format),
		string(req.Provider),
		req.Requirements,
		string(analysisJSON),
		req.ProjectName,
		req.Environment,
		baseTemplate,
	)
	if req.IncludeBestPractices {
		prompt += entity.BestPracticesAddendum
	}

	text, used, err := o.complete(ctx, "generate_code", prompt)
	if err != nil {
		return "", "", err
	}
	return ExtractCodeBlock(text), used, nil
}

// DiagnoseError analyzes failure logs into a structured diagnosis. Unlike
// analysis there is no safe default diagnosis, so a malformed reply is a hard
// failure for that backend and the next one is tried.
func (o *Orchestrator) DiagnoseError(ctx context.Context, errorLogs string, config map[string]any, state map[string]any, previousFixes []string) (entity.Diagnosis, string, error) {
	configJSON, _ := json.Marshal(config)
	stateJSON, _ := json.Marshal(state)
	fixesJSON, _ := json.Marshal(previousFixes)

	prompt := entity.DiagnosisPrompt.Render(
		errorLogs,
		string(configJSON),
		string(stateJSON),
		string(fixesJSON),
	)

	attempts := make([]entity.BackendAttempt, 0, len(o.backends))
	for _, backend := range o.backends {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, entity.BackendAttempt{Backend: backend.Name(), Err: err.Error()})
			break
		}

		metrics.IncLLMRequest(backend.Name(), "diagnose_error")
		text, err := backend.Complete(ctx, prompt)
		if err == nil {
			raw, extractErr := ExtractJSONObject(text)
			if extractErr == nil {
				var diag entity.Diagnosis
				parseErr := json.Unmarshal([]byte(raw), &diag)
				if parseErr == nil {
					return diag, backend.Name(), nil
				}
				extractErr = parseErr
			}
			err = &entity.MalformedResponseError{Backend: backend.Name(), Raw: text, Cause: extractErr}
		}

		o.logger.Warn("llm backend failed",
			"operation", "diagnose_error", "backend", backend.Name(), "error", err)
		metrics.IncLLMFailover(backend.Name())
		attempts = append(attempts, entity.BackendAttempt{Backend: backend.Name(), Err: err.Error()})
	}

	return entity.Diagnosis{}, "", &entity.BackendsExhaustedError{Operation: "diagnose_error", Attempts: attempts}
}

// ProviderStatus probes every backend concurrently. Each probe is bounded so
// one hung backend cannot stall the report.
func (o *Orchestrator) ProviderStatus(ctx context.Context) []repository.BackendStatus {
	statuses := make([]repository.BackendStatus, len(o.backends))

	var wg sync.WaitGroup
	for i, backend := range o.backends {
		wg.Add(1)
		go func(i int, backend repository.Backend) {
			defer wg.Done()

			probeCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			defer cancel()

			status := repository.BackendStatus{
				Name:     backend.Name(),
				Primary:  i == 0,
				Fallback: i > 0,
			}
			if err := backend.Ping(probeCtx); err != nil {
				status.Error = err.Error()
			} else {
				status.Available = true
			}
			statuses[i] = status
		}(i, backend)
	}
	wg.Wait()

	return statuses
}
