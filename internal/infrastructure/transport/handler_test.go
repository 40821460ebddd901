package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iacforge/app/usecase"
	"iacforge/internal/domain/entity"
	"iacforge/internal/domain/repository"
	"iacforge/internal/infrastructure/cost"
	"iacforge/internal/infrastructure/generator"
	"iacforge/internal/infrastructure/store/filesystem"
	"iacforge/internal/infrastructure/store/memory"
	"iacforge/internal/infrastructure/validator"
)

type stubOrchestrator struct{}

var _ repository.Orchestrator = stubOrchestrator{}

func (stubOrchestrator) AnalyzeRequirements(ctx context.Context, req entity.GenerationRequest, templates []string, constraints map[string]any) (entity.AnalyzedSpecification, string, error) {
	return entity.DefaultAnalyzedSpecification(), "stub", nil
}

func (stubOrchestrator) GenerateCode(ctx context.Context, spec entity.AnalyzedSpecification, baseTemplate string, req entity.GenerationRequest) (string, string, error) {
	return `resource "aws_instance" "web" {}`, "stub", nil
}

func (stubOrchestrator) DiagnoseError(ctx context.Context, errorLogs string, config, state map[string]any, previousFixes []string) (entity.Diagnosis, string, error) {
	return entity.Diagnosis{RootCause: "quota exceeded", Severity: "high"}, "stub", nil
}

func (stubOrchestrator) ProviderStatus(ctx context.Context) []repository.BackendStatus {
	return []repository.BackendStatus{{Name: "stub", Available: true, Primary: true}}
}

type stubValidator struct{}

func (stubValidator) Validate(ctx context.Context, code string, format entity.Format, provider entity.Provider) entity.ValidationResult {
	return entity.NewValidationResult(nil, true, true, true)
}

// NewHandler registers prometheus collectors, so the router is built once and
// shared across tests.
var (
	routerOnce sync.Once
	testRouter *mux.Router
)

func router(t *testing.T) *mux.Router {
	t.Helper()
	routerOnce.Do(func() {
		logger := slog.Default()

		dir, err := os.MkdirTemp("", "iacforge-transport-test-*")
		require.NoError(t, err)
		bundles, err := filesystem.NewBundleRepository(dir)
		require.NoError(t, err)

		jobs := memory.NewJobRepo()
		results := memory.NewResultRepo()

		generation := usecase.NewGenerationService(
			stubOrchestrator{}, generator.NewRegistry(logger), stubValidator{}, cost.NewEstimator(logger), logger)
		jobSvc := usecase.NewJobService(jobs, results, &bundles, logger)
		scanSvc := usecase.NewScanService(validator.NewScanner(validator.ExecRunner{}, logger), &bundles, logger)

		testRouter = mux.NewRouter()
		NewHandler(jobSvc, generation, scanSvc, logger).RegisterRoutes(testRouter)
	})
	return testRouter
}

func doJSON(t *testing.T, r *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJobLifecycleOverHTTP(t *testing.T) {
	r := router(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/jobs", entity.GenerationRequest{
		Requirements: "two web servers",
		Provider:     entity.ProviderAWS,
		Format:       entity.FormatTerraform,
		ProjectName:  "shop",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var job entity.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, entity.JobStatusPending, job.Status)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/jobs/"+job.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/jobs", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/jobs/"+job.ID+"/cancel", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/api/v1/jobs/"+job.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/jobs/"+job.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateJobRejectsInvalidRequest(t *testing.T) {
	r := router(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/jobs", entity.GenerationRequest{
		Requirements: "a vm",
		Provider:     "digitalocean",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateEndpoint(t *testing.T) {
	r := router(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/generate", entity.GenerationRequest{
		Requirements:       "a web server",
		Provider:           entity.ProviderAWS,
		Format:             entity.FormatTerraform,
		ProjectName:        "shop",
		EnableValidation:   true,
		EnableOptimization: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp entity.GenerationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.NotEmpty(t, resp.Result.IaCCode)
	assert.NotNil(t, resp.Result.CostEstimate)
}

func TestGenerateEndpointRejectsEmptyRequirements(t *testing.T) {
	r := router(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/generate", entity.GenerationRequest{
		Provider: entity.ProviderAWS,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateEndpoint(t *testing.T) {
	r := router(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/validate", entity.ValidationRequest{
		IaCCode:    `resource "aws_instance" "web" {}`,
		Provider:   entity.ProviderAWS,
		CheckCosts: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp entity.ValidationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.ValidationResult.Valid)
	require.NotNil(t, resp.CostEstimate)
}

func TestDiagnoseEndpoint(t *testing.T) {
	r := router(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/diagnose", map[string]any{
		"error_logs": "Error: creating EC2 Instance: VcpuLimitExceeded",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "quota exceeded")
}

func TestLLMStatusEndpoint(t *testing.T) {
	r := router(t)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/llm/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var statuses []repository.BackendStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statuses))
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Primary)
}

func TestScanEndpointUnknownGeneration(t *testing.T) {
	r := router(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/generations/nope/scan", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	r := router(t)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)
}
