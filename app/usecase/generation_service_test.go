package usecase

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iacforge/internal/domain/entity"
	"iacforge/internal/domain/repository"
	"iacforge/internal/infrastructure/cost"
	"iacforge/internal/infrastructure/generator"
)

type fakeOrchestrator struct {
	analysis    entity.AnalyzedSpecification
	analysisErr error

	code    string
	codeErr error

	analyzeCalls  int
	generateCalls int
}

var _ repository.Orchestrator = (*fakeOrchestrator)(nil)

func (f *fakeOrchestrator) AnalyzeRequirements(ctx context.Context, req entity.GenerationRequest, templates []string, constraints map[string]any) (entity.AnalyzedSpecification, string, error) {
	f.analyzeCalls++
	if f.analysisErr != nil {
		return entity.AnalyzedSpecification{}, "", f.analysisErr
	}
	return f.analysis, "fake", nil
}

func (f *fakeOrchestrator) GenerateCode(ctx context.Context, spec entity.AnalyzedSpecification, baseTemplate string, req entity.GenerationRequest) (string, string, error) {
	f.generateCalls++
	if f.codeErr != nil {
		return "", "", f.codeErr
	}
	return f.code, "fake", nil
}

func (f *fakeOrchestrator) DiagnoseError(ctx context.Context, errorLogs string, config, state map[string]any, previousFixes []string) (entity.Diagnosis, string, error) {
	return entity.Diagnosis{RootCause: "unknown"}, "fake", nil
}

func (f *fakeOrchestrator) ProviderStatus(ctx context.Context) []repository.BackendStatus {
	return []repository.BackendStatus{{Name: "fake", Available: true, Primary: true}}
}

type fakeValidator struct {
	calls  int
	result entity.ValidationResult
}

func (f *fakeValidator) Validate(ctx context.Context, code string, format entity.Format, provider entity.Provider) entity.ValidationResult {
	f.calls++
	return f.result
}

func newService(orch repository.Orchestrator, val *fakeValidator) *GenerationService {
	logger := slog.Default()
	return NewGenerationService(
		orch,
		generator.NewRegistry(logger),
		val,
		cost.NewEstimator(logger),
		logger,
	)
}

func awsRequest() entity.GenerationRequest {
	return entity.GenerationRequest{
		Requirements: "a web server with a public IP",
		Provider:     entity.ProviderAWS,
		Format:       entity.FormatTerraform,
		ProjectName:  "shop",
		Environment:  "production",
	}
}

func TestGenerateIaCSuccess(t *testing.T) {
	orch := &fakeOrchestrator{
		analysis: entity.DefaultAnalyzedSpecification(),
		code: `resource "aws_instance" "shop-vm-production" {
  instance_type = "t3.micro"
}`,
	}
	val := &fakeValidator{result: entity.NewValidationResult(nil, true, true, true)}
	svc := newService(orch, val)

	req := awsRequest()
	req.EnableValidation = true
	req.EnableOptimization = true

	resp := svc.GenerateIaC(context.Background(), req)

	require.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 2, resp.LLMCalls)
	assert.Equal(t, 1, val.calls)
	assert.NotEmpty(t, resp.Result.GenerationID)
	assert.Equal(t, orch.code, resp.Result.IaCCode)

	require.Len(t, resp.Result.Resources, 1)
	assert.Equal(t, entity.ProviderAWS, resp.Result.Resources[0].Provider)
	assert.Equal(t, "aws_instance", resp.Result.Resources[0].Type)

	assert.True(t, resp.Result.ValidationResult.Performed)
	require.NotNil(t, resp.Result.CostEstimate)
	assert.InDelta(t, 10.0, resp.Result.CostEstimate.MonthlyCost, 0.001)

	assert.Contains(t, resp.Result.ConfigurationFiles, "variables.tf")
	assert.Contains(t, resp.Result.ConfigurationFiles, "outputs.tf")
	assert.Contains(t, resp.Result.ConfigurationFiles, "terraform.tfvars.example")
	assert.Contains(t, resp.Result.Scripts, "deploy.sh")
	assert.Contains(t, resp.Result.Scripts, "cleanup.sh")
	assert.NotEmpty(t, resp.Result.Readme)
	assert.NotEmpty(t, resp.Result.DeploymentInstructions)
}

func TestGenerateIaCFailsWhenAnalysisExhausted(t *testing.T) {
	orch := &fakeOrchestrator{
		analysisErr: &entity.BackendsExhaustedError{
			Attempts: []entity.BackendAttempt{{Backend: "openai", Err: "request timed out"}},
		},
	}
	val := &fakeValidator{}
	svc := newService(orch, val)

	resp := svc.GenerateIaC(context.Background(), awsRequest())

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Result)
	assert.Equal(t, 1, resp.LLMCalls)
	assert.Equal(t, "analysis", resp.ErrorDetails["stage"])
	assert.NotEmpty(t, resp.Error)
	assert.Zero(t, val.calls)
}

func TestGenerateIaCFallsBackToTemplateOnCodegenFailure(t *testing.T) {
	orch := &fakeOrchestrator{
		analysis: entity.DefaultAnalyzedSpecification(),
		codeErr: &entity.BackendsExhaustedError{
			Attempts: []entity.BackendAttempt{{Backend: "openai", Err: "request timed out"}},
		},
	}
	svc := newService(orch, &fakeValidator{})

	req := awsRequest()
	resp := svc.GenerateIaC(context.Background(), req)

	require.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 2, resp.LLMCalls)

	expected := generator.NewAWSAdapter().GenerateInfrastructureCode(req, orch.analysis)
	assert.Equal(t, expected, resp.Result.IaCCode)
	assert.NotEmpty(t, resp.Result.Resources)
}

func TestGenerateIaCRejectsUnusableOutput(t *testing.T) {
	orch := &fakeOrchestrator{
		analysis: entity.DefaultAnalyzedSpecification(),
		code:     "I am sorry, I cannot do that.",
	}
	svc := newService(orch, &fakeValidator{})

	req := awsRequest()
	resp := svc.GenerateIaC(context.Background(), req)

	require.True(t, resp.Success)
	expected := generator.NewAWSAdapter().GenerateInfrastructureCode(req, orch.analysis)
	assert.Equal(t, expected, resp.Result.IaCCode)
}

func TestGenerateIaCSkipsGatedStages(t *testing.T) {
	orch := &fakeOrchestrator{
		analysis: entity.DefaultAnalyzedSpecification(),
		code:     `resource "aws_instance" "web" {}`,
	}
	val := &fakeValidator{}
	svc := newService(orch, val)

	resp := svc.GenerateIaC(context.Background(), awsRequest())

	require.True(t, resp.Success)
	assert.Zero(t, val.calls)
	assert.False(t, resp.Result.ValidationResult.Performed)
	assert.Nil(t, resp.Result.CostEstimate)
}

func TestGenerateIaCDefaultsRequestFields(t *testing.T) {
	orch := &fakeOrchestrator{
		analysis: entity.DefaultAnalyzedSpecification(),
		code:     `resource "proxmox_vm_qemu" "vm" {}`,
	}
	svc := newService(orch, &fakeValidator{})

	resp := svc.GenerateIaC(context.Background(), entity.GenerationRequest{
		Requirements: "a vm",
		Provider:     entity.ProviderProxmox,
	})

	require.True(t, resp.Success)
	assert.Equal(t, entity.FormatTerraform, resp.Result.Format)
}

func TestValidateIaCWithCosts(t *testing.T) {
	val := &fakeValidator{result: entity.NewValidationResult(nil, true, true, true)}
	svc := newService(&fakeOrchestrator{}, val)

	resp := svc.ValidateIaC(context.Background(), entity.ValidationRequest{
		IaCCode:    `resource "aws_instance" "web" {}`,
		Format:     entity.FormatTerraform,
		Provider:   entity.ProviderAWS,
		CheckCosts: true,
	})

	assert.Equal(t, 1, val.calls)
	assert.True(t, resp.ValidationResult.Valid)
	require.NotNil(t, resp.CostEstimate)
	assert.InDelta(t, 10.0, resp.CostEstimate.MonthlyCost, 0.001)
}

func TestValidateIaCWithoutCosts(t *testing.T) {
	val := &fakeValidator{result: entity.NewValidationResult(nil, true, true, true)}
	svc := newService(&fakeOrchestrator{}, val)

	resp := svc.ValidateIaC(context.Background(), entity.ValidationRequest{
		IaCCode:  `resource "aws_instance" "web" {}`,
		Format:   entity.FormatTerraform,
		Provider: entity.ProviderAWS,
	})

	assert.Nil(t, resp.CostEstimate)
}
