package validator

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iacforge/internal/domain/entity"
)

// fakeRunner answers per-command without touching the filesystem tools.
type fakeRunner struct {
	mu      sync.Mutex
	results map[string]fakeResult
	calls   []string
}

type fakeResult struct {
	stdout string
	stderr string
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	key := name
	if len(args) > 0 {
		key = name + " " + args[0]
	}
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	res := f.results[key]
	return res.stdout, res.stderr, res.err
}

func happyRunner() *fakeRunner {
	return &fakeRunner{results: map[string]fakeResult{
		"terraform init":     {},
		"terraform validate": {},
	}}
}

const validCode = `terraform {
  required_providers {
    proxmox = {
      source  = "telmate/proxmox"
      version = "2.9.14"
    }
  }
}

resource "proxmox_vm_qemu" "main" {
  name  = var.vm_name
  cores = 2
}
`

func TestValidateCleanCode(t *testing.T) {
	p := NewPipeline(happyRunner(), nil)

	result := p.Validate(context.Background(), validCode, entity.FormatTerraform, entity.ProviderProxmox)

	assert.True(t, result.Valid)
	assert.True(t, result.SyntaxValid)
	assert.True(t, result.SecurityValid)
	assert.True(t, result.Performed)
	assert.Zero(t, result.ErrorCount)
}

func TestValidateHardcodedPasswordLineNumber(t *testing.T) {
	code := "resource \"proxmox_vm_qemu\" \"main\" {\n  name = \"vm\"\n  password = \"hunter2\"\n}\n"
	p := NewPipeline(happyRunner(), nil)

	result := p.Validate(context.Background(), code, entity.FormatTerraform, entity.ProviderProxmox)

	assert.False(t, result.Valid)
	assert.True(t, result.SyntaxValid)
	assert.False(t, result.SecurityValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "hardcoded_secrets", result.Errors[0].Rule)
	assert.Equal(t, "Hardcoded password detected", result.Errors[0].Message)
	assert.Equal(t, 3, result.Errors[0].Line)
	assert.NotEmpty(t, result.Errors[0].Suggestion)
}

func TestValidateInsecureConfigWarnings(t *testing.T) {
	code := "pm_tls_insecure = true\ncidr_blocks = [\"0.0.0.0/0\"]\n"
	p := NewPipeline(happyRunner(), nil)

	result := p.Validate(context.Background(), code, entity.FormatTerraform, entity.ProviderProxmox)

	assert.True(t, result.SecurityValid)
	rules := make(map[string]int)
	for _, w := range result.Warnings {
		rules[w.Rule]++
	}
	assert.GreaterOrEqual(t, rules["insecure_config"], 2)
}

func TestValidateMissingTerraformIsWarning(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"terraform init": {err: exec.ErrNotFound},
	}}
	p := NewPipeline(runner, nil)

	result := p.Validate(context.Background(), validCode, entity.FormatTerraform, entity.ProviderProxmox)

	assert.True(t, result.SyntaxValid)
	assert.True(t, result.Valid)
	found := false
	for _, w := range result.Warnings {
		if w.Rule == "terraform_missing" {
			found = true
		}
	}
	assert.True(t, found, "expected terraform_missing warning")
}

func TestValidateTimeoutIsError(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"terraform init":     {},
		"terraform validate": {err: context.DeadlineExceeded},
	}}
	p := NewPipeline(runner, nil)

	result := p.Validate(context.Background(), validCode, entity.FormatTerraform, entity.ProviderProxmox)

	assert.False(t, result.SyntaxValid)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "timeout", result.Errors[0].Rule)
}

func TestValidateFailedValidateCarriesStderr(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"terraform init":     {},
		"terraform validate": {stderr: "Error: Reference to undeclared input variable", err: errors.New("exit status 1")},
	}}
	p := NewPipeline(runner, nil)

	result := p.Validate(context.Background(), validCode, entity.FormatTerraform, entity.ProviderProxmox)

	assert.False(t, result.SyntaxValid)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "terraform_validate", result.Errors[0].Rule)
	assert.Contains(t, result.Errors[0].Message, "undeclared input variable")
}

func TestValidateStaticCatchesBrokenHCL(t *testing.T) {
	runner := happyRunner()
	p := NewPipeline(runner, nil)

	result := p.Validate(context.Background(), "resource \"x\" {{{", entity.FormatTerraform, entity.ProviderProxmox)

	assert.False(t, result.SyntaxValid)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestValidateNonDeclarativeSkipsToolchain(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{}}
	p := NewPipeline(runner, nil)

	result := p.Validate(context.Background(), "const x = 1;", entity.FormatPulumi, entity.ProviderAWS)

	assert.Empty(t, runner.calls, "terraform must not run for non-declarative formats")
	assert.True(t, result.SyntaxValid)
	assert.True(t, result.Performed)
}

func TestValidateIdempotent(t *testing.T) {
	code := "password = \"oops\"\npm_tls_insecure = true\n"
	p := NewPipeline(happyRunner(), nil)

	first := p.Validate(context.Background(), code, entity.FormatTerraform, entity.ProviderProxmox)
	second := p.Validate(context.Background(), code, entity.FormatTerraform, entity.ProviderProxmox)

	assert.Equal(t, first, second)
}

func TestStaticAnalyzeMissingVersionConstraint(t *testing.T) {
	code := `terraform {
  required_providers {
    aws = {
      source = "hashicorp/aws"
    }
  }
}
`
	issues := staticAnalyze(code)

	found := false
	for _, issue := range issues {
		if issue.Severity == entity.SeverityWarning && issue.Rule == "hcl_syntax" {
			found = true
		}
	}
	assert.True(t, found, "expected a missing version constraint warning")
}
