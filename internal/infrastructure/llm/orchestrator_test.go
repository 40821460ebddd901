package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iacforge/internal/domain/entity"
	"iacforge/internal/domain/repository"
)

type fakeBackend struct {
	name     string
	role     repository.BackendRole
	response string
	err      error
	pingErr  error
	calls    int
}

func (f *fakeBackend) Name() string                 { return f.name }
func (f *fakeBackend) Role() repository.BackendRole { return f.role }

func (f *fakeBackend) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeBackend) Ping(ctx context.Context) error { return f.pingErr }

func analysisJSON() string {
	return `{"resources":["vm","database"],"networking":{"basic":true},` +
		`"security":{"hardened":true},"performance":{"high_cpu":true},` +
		`"storage":{"large_storage":true},"estimated_complexity":7}`
}

func testRequest() entity.GenerationRequest {
	return entity.GenerationRequest{
		Requirements: "postgres cluster with two app servers",
		Provider:     entity.ProviderAWS,
		Format:       entity.FormatTerraform,
		ProjectName:  "shop",
		Environment:  "staging",
	}
}

func TestNewOrchestratorRequiresBackends(t *testing.T) {
	_, err := NewOrchestrator(nil, nil)
	assert.ErrorIs(t, err, entity.ErrNoBackends)
}

func TestNewOrchestratorMovesPrimaryFirst(t *testing.T) {
	a := &fakeBackend{name: "a", role: repository.RoleFallback, response: analysisJSON()}
	b := &fakeBackend{name: "b", role: repository.RolePrimary, response: analysisJSON()}

	orch, err := NewOrchestrator([]repository.Backend{a, b}, nil)
	require.NoError(t, err)

	_, used, err := orch.AnalyzeRequirements(context.Background(), testRequest(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "b", used)
	assert.Equal(t, 0, a.calls)
}

func TestAnalyzeRequirementsFailsOverInOrder(t *testing.T) {
	primary := &fakeBackend{name: "openai", err: errors.New("connection refused")}
	fallback := &fakeBackend{name: "ollama", response: analysisJSON()}

	orch, err := NewOrchestrator([]repository.Backend{primary, fallback}, nil)
	require.NoError(t, err)

	spec, used, err := orch.AnalyzeRequirements(context.Background(), testRequest(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ollama", used)
	assert.Equal(t, []string{"vm", "database"}, spec.Resources)
	assert.Equal(t, 7, spec.EstimatedComplexity)
	assert.True(t, spec.Performance.HighCPU)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestAnalyzeRequirementsExhaustionListsEveryBackendOnce(t *testing.T) {
	first := &fakeBackend{name: "openai", err: errors.New("rate limited")}
	second := &fakeBackend{name: "anthropic", err: errors.New("timeout")}
	third := &fakeBackend{name: "ollama", err: errors.New("daemon down")}

	orch, err := NewOrchestrator([]repository.Backend{first, second, third}, nil)
	require.NoError(t, err)

	_, _, err = orch.AnalyzeRequirements(context.Background(), testRequest(), nil, nil)
	require.Error(t, err)

	var exhausted *entity.BackendsExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Len(t, exhausted.Attempts, 3)
	assert.Equal(t, "openai", exhausted.Attempts[0].Backend)
	assert.Equal(t, "anthropic", exhausted.Attempts[1].Backend)
	assert.Equal(t, "ollama", exhausted.Attempts[2].Backend)
	assert.Contains(t, err.Error(), "openai, anthropic, ollama")
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 1, third.calls)
}

func TestAnalyzeRequirementsDegradesOnMalformedOutput(t *testing.T) {
	backend := &fakeBackend{name: "openai", response: "I cannot help with that."}

	orch, err := NewOrchestrator([]repository.Backend{backend}, nil)
	require.NoError(t, err)

	spec, used, err := orch.AnalyzeRequirements(context.Background(), testRequest(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", used)
	assert.Equal(t, entity.DefaultAnalyzedSpecification(), spec)
}

func TestAnalyzeRequirementsParsesFencedJSON(t *testing.T) {
	backend := &fakeBackend{name: "openai", response: "```json\n" + analysisJSON() + "\n```"}

	orch, err := NewOrchestrator([]repository.Backend{backend}, nil)
	require.NoError(t, err)

	spec, _, err := orch.AnalyzeRequirements(context.Background(), testRequest(), nil, nil)
	require.NoError(t, err)
	assert.True(t, spec.Security.Hardened)
	assert.True(t, spec.Storage.LargeStorage)
}

func TestGenerateCodeUnfencesResponse(t *testing.T) {
	backend := &fakeBackend{
		name:     "openai",
		response: "Here is your configuration:\n```hcl\nresource \"aws_instance\" \"web\" {}\n```",
	}

	orch, err := NewOrchestrator([]repository.Backend{backend}, nil)
	require.NoError(t, err)

	code, used, err := orch.GenerateCode(context.Background(), entity.DefaultAnalyzedSpecification(), "", testRequest())
	require.NoError(t, err)
	assert.Equal(t, "openai", used)
	assert.Equal(t, `resource "aws_instance" "web" {}`, code)
}

func TestDiagnoseErrorFailsOverOnMalformedReply(t *testing.T) {
	primary := &fakeBackend{name: "openai", response: "not json"}
	fallback := &fakeBackend{
		name: "ollama",
		response: `{"root_cause":"quota exceeded","severity":"high",` +
			`"suggested_fixes":["request quota increase"],"prevention_steps":["alert on usage"],"confidence":0.9}`,
	}

	orch, err := NewOrchestrator([]repository.Backend{primary, fallback}, nil)
	require.NoError(t, err)

	diag, used, err := orch.DiagnoseError(context.Background(), "Error: VcpuLimitExceeded", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ollama", used)
	assert.Equal(t, "quota exceeded", diag.RootCause)
	assert.Equal(t, "high", diag.Severity)
	assert.InDelta(t, 0.9, diag.Confidence, 1e-9)
}

func TestProviderStatusReportsEveryBackend(t *testing.T) {
	healthy := &fakeBackend{name: "openai"}
	broken := &fakeBackend{name: "ollama", pingErr: errors.New("connection refused")}

	orch, err := NewOrchestrator([]repository.Backend{healthy, broken}, nil)
	require.NoError(t, err)

	statuses := orch.ProviderStatus(context.Background())
	require.Len(t, statuses, 2)

	assert.Equal(t, "openai", statuses[0].Name)
	assert.True(t, statuses[0].Available)
	assert.True(t, statuses[0].Primary)
	assert.False(t, statuses[0].Fallback)

	assert.Equal(t, "ollama", statuses[1].Name)
	assert.False(t, statuses[1].Available)
	assert.True(t, statuses[1].Fallback)
	assert.Equal(t, "connection refused", statuses[1].Error)
}
