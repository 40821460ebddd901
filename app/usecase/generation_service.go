package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"iacforge/internal/domain/entity"
	"iacforge/internal/domain/repository"
	"iacforge/internal/infrastructure/cost"
	"iacforge/internal/infrastructure/generator"
	"iacforge/internal/infrastructure/metrics"
)

// GenerationService turns natural-language requirements into a complete IaC
// artifact bundle. GenerateIaC never returns a Go error: every failure mode
// is folded into the response so callers always get timing and call counts.
type GenerationService struct {
	orchestrator repository.Orchestrator
	registry     *generator.Registry
	validator    repository.IaCValidator
	estimator    *cost.Estimator
	logger       *slog.Logger
}

func NewGenerationService(
	orchestrator repository.Orchestrator,
	registry *generator.Registry,
	validator repository.IaCValidator,
	estimator *cost.Estimator,
	logger *slog.Logger,
) *GenerationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationService{
		orchestrator: orchestrator,
		registry:     registry,
		validator:    validator,
		estimator:    estimator,
		logger:       logger,
	}
}

func (s *GenerationService) GenerateIaC(ctx context.Context, req entity.GenerationRequest) (resp entity.GenerationResponse) {
	start := time.Now()
	llmCalls := 0

	req = normalizeRequest(req)
	metrics.IncGenerationStarted(string(req.Provider))

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("generation panicked", "panic", r)
			resp = s.failure(req, start, llmCalls, fmt.Errorf("internal error: %v", r), "panic")
		}
	}()

	s.logger.Info("starting iac generation",
		"provider", req.Provider, "format", req.Format, "project", req.ProjectName)

	// Stage 1: requirement analysis. Exhausting every backend here is fatal
	// for the run; a malformed reply already degraded inside the orchestrator.
	analysis, _, err := s.orchestrator.AnalyzeRequirements(ctx, req, nil, nil)
	llmCalls++
	if err != nil {
		return s.failure(req, start, llmCalls, err, "analysis")
	}

	adapter := s.registry.Adapter(req.Provider)
	baseTemplate := adapter.GenerateInfrastructureCode(req, analysis)

	// Stage 2: code generation. Backend failure or unusable output falls
	// back to the adapter's deterministic template instead of failing.
	code, _, err := s.orchestrator.GenerateCode(ctx, analysis, baseTemplate, req)
	llmCalls++
	if err != nil || !usableIaC(code) {
		if err != nil {
			s.logger.Warn("code generation failed, using deterministic template", "error", err)
		} else {
			s.logger.Warn("generated code unusable, using deterministic template")
		}
		code = baseTemplate
	}

	// Stage 3: companion artifacts, all deterministic.
	configFiles := map[string]string{
		"variables.tf":             adapter.GenerateVariablesFile(req),
		"outputs.tf":               adapter.GenerateOutputsFile(req),
		"terraform.tfvars.example": generator.TFVarsExample(req),
	}
	scripts := map[string]string{
		"deploy.sh":  generator.DeployScript(req),
		"cleanup.sh": generator.CleanupScript(req),
	}

	// Stage 4: resource extraction. The adapter owns the rule set, so the
	// provider on every resource is the request's provider.
	resources := adapter.ExtractResources(code)

	// Stage 5: validation, gated by the request flag.
	validation := entity.SkippedValidationResult()
	if req.EnableValidation {
		validation = s.validator.Validate(ctx, code, req.Format, req.Provider)
	}

	// Stage 6: cost estimation, gated by the optimization flag.
	var estimate *entity.CostEstimate
	if req.EnableOptimization {
		adapter.EstimateMonthlyCost(resources)
		e := s.estimator.Estimate(resources, req.Provider)
		estimate = &e
	}

	elapsed := time.Since(start)
	result := &entity.GenerationResult{
		GenerationID: uuid.New().String(),
		Provider:     req.Provider,
		Format:       req.Format,

		IaCCode:            code,
		ConfigurationFiles: configFiles,
		Scripts:            scripts,
		Resources:          resources,

		ValidationResult: validation,
		CostEstimate:     estimate,

		Readme:                 generator.Readme(req),
		DeploymentInstructions: generator.DeploymentInstructions(req),

		TemplateUsed:         req.TemplateID,
		RequirementsAnalyzed: req.Requirements,
		GenerationTime:       elapsed,
		CreatedAt:            time.Now(),
	}

	metrics.IncGenerationResult(string(req.Provider), "success")
	metrics.ObserveGenerationDuration(string(req.Provider), elapsed)
	s.logger.Info("iac generation finished",
		"generation_id", result.GenerationID, "provider", req.Provider,
		"resources", len(resources), "duration", elapsed, "llm_calls", llmCalls)

	return entity.GenerationResponse{
		Success:        true,
		Result:         result,
		ProcessingTime: elapsed,
		LLMCalls:       llmCalls,
	}
}

// ValidateIaC validates caller-supplied code without running generation.
func (s *GenerationService) ValidateIaC(ctx context.Context, req entity.ValidationRequest) entity.ValidationResponse {
	start := time.Now()

	validation := s.validator.Validate(ctx, req.IaCCode, req.Format, req.Provider)

	var estimate *entity.CostEstimate
	if req.CheckCosts {
		adapter := s.registry.Adapter(req.Provider)
		resources := adapter.ExtractResources(req.IaCCode)
		e := s.estimator.Estimate(resources, req.Provider)
		estimate = &e
	}

	return entity.ValidationResponse{
		ValidationResult: validation,
		CostEstimate:     estimate,
		ProcessingTime:   time.Since(start),
	}
}

// Diagnose forwards failure logs to the language-model layer for a structured
// root-cause analysis.
func (s *GenerationService) Diagnose(ctx context.Context, errorLogs string, config, state map[string]any, previousFixes []string) (entity.Diagnosis, string, error) {
	return s.orchestrator.DiagnoseError(ctx, errorLogs, config, state, previousFixes)
}

// BackendStatus reports the health of every configured language-model backend.
func (s *GenerationService) BackendStatus(ctx context.Context) []repository.BackendStatus {
	return s.orchestrator.ProviderStatus(ctx)
}

func (s *GenerationService) failure(req entity.GenerationRequest, start time.Time, llmCalls int, err error, stage string) entity.GenerationResponse {
	elapsed := time.Since(start)
	metrics.IncGenerationResult(string(req.Provider), "failure")
	metrics.ObserveGenerationDuration(string(req.Provider), elapsed)
	s.logger.Error("iac generation failed", "stage", stage, "error", err, "duration", elapsed)

	return entity.GenerationResponse{
		Success:        false,
		Error:          err.Error(),
		ErrorDetails:   map[string]string{"stage": stage},
		ProcessingTime: elapsed,
		LLMCalls:       llmCalls,
	}
}

func normalizeRequest(req entity.GenerationRequest) entity.GenerationRequest {
	if req.Format == "" {
		req.Format = entity.FormatTerraform
	}
	if req.Environment == "" {
		req.Environment = "development"
	}
	if req.ProjectName == "" {
		req.ProjectName = "project"
	}
	return req
}

// usableIaC rejects model output that clearly is not a configuration: empty
// text or text without a single block.
func usableIaC(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	return strings.Contains(code, "resource") || strings.Contains(code, "terraform") || strings.Contains(code, "provider")
}
