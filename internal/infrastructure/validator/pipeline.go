package validator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"iacforge/internal/domain/entity"
	"iacforge/internal/infrastructure/metrics"
)

const (
	initTimeout     = 30 * time.Second
	validateTimeout = 30 * time.Second
)

// Pipeline runs the three validation stages: static HCL analysis, the
// terraform toolchain, and the regex security scan. Degraded environments
// (missing binary, timeout) become issues in the result, never errors.
type Pipeline struct {
	runner CommandRunner
	logger *slog.Logger
}

func NewPipeline(runner CommandRunner, logger *slog.Logger) *Pipeline {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{runner: runner, logger: logger}
}

func (p *Pipeline) Validate(ctx context.Context, code string, format entity.Format, provider entity.Provider) entity.ValidationResult {
	var issues []entity.ValidationIssue
	syntaxValid := true

	if format.Declarative() {
		staticIssues := p.runStage("static", func() []entity.ValidationIssue {
			return staticAnalyze(code)
		})
		issues = append(issues, staticIssues...)
		if hasErrors(staticIssues) {
			syntaxValid = false
		}

		tfIssues := p.runStage("terraform", func() []entity.ValidationIssue {
			return p.runTerraform(ctx, code)
		})
		issues = append(issues, tfIssues...)
		if hasErrors(tfIssues) {
			syntaxValid = false
		}
	}

	securityIssues := p.runStage("security", func() []entity.ValidationIssue {
		return runSecurityRules(code)
	})
	issues = append(issues, securityIssues...)
	securityValid := !hasErrors(securityIssues)

	result := entity.NewValidationResult(issues, syntaxValid, securityValid, true)
	p.logger.Info("validation finished",
		"format", format, "provider", provider,
		"valid", result.Valid, "errors", result.ErrorCount, "warnings", result.WarningCount)
	return result
}

// runTerraform writes the code into a scratch directory and runs init and
// validate with separate deadlines. The directory is always removed.
func (p *Pipeline) runTerraform(ctx context.Context, code string) []entity.ValidationIssue {
	dir, err := os.MkdirTemp("", "iacforge-validate-*")
	if err != nil {
		return []entity.ValidationIssue{internalIssue(fmt.Errorf("create scratch dir: %w", err))}
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, "main.tf"), []byte(code), 0o644); err != nil {
		return []entity.ValidationIssue{internalIssue(fmt.Errorf("write main.tf: %w", err))}
	}

	initCtx, cancelInit := context.WithTimeout(ctx, initTimeout)
	defer cancelInit()
	_, stderr, err := p.runner.Run(initCtx, dir, "terraform", "init", "-input=false", "-backend=false")
	if err != nil {
		return []entity.ValidationIssue{p.toolIssue("terraform init", "terraform_init", stderr, err)}
	}

	validateCtx, cancelValidate := context.WithTimeout(ctx, validateTimeout)
	defer cancelValidate()
	_, stderr, err = p.runner.Run(validateCtx, dir, "terraform", "validate", "-no-color")
	if err != nil {
		return []entity.ValidationIssue{p.toolIssue("terraform validate", "terraform_validate", stderr, err)}
	}

	return nil
}

// toolIssue maps a failed invocation onto the documented issue taxonomy:
// missing binary is survivable, a timeout or nonzero exit is not.
func (p *Pipeline) toolIssue(operation, rule, stderr string, err error) entity.ValidationIssue {
	switch {
	case errors.Is(err, exec.ErrNotFound):
		p.logger.Warn("terraform not installed, skipping syntax validation")
		return entity.ValidationIssue{
			Severity: entity.SeverityWarning,
			Message:  "Terraform not installed, skipping syntax validation",
			Rule:     "terraform_missing",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return entity.ValidationIssue{
			Severity: entity.SeverityError,
			Message:  fmt.Sprintf("%s timed out", operation),
			Rule:     "timeout",
		}
	default:
		return entity.ValidationIssue{
			Severity: entity.SeverityError,
			Message:  fmt.Sprintf("%s failed: %s", operation, stderr),
			Rule:     rule,
		}
	}
}

func internalIssue(err error) entity.ValidationIssue {
	return entity.ValidationIssue{
		Severity: entity.SeverityError,
		Message:  fmt.Sprintf("Validation error: %v", err),
		Rule:     "internal_error",
	}
}

func (p *Pipeline) runStage(stage string, fn func() []entity.ValidationIssue) []entity.ValidationIssue {
	start := time.Now()
	issues := fn()
	metrics.ObserveValidationDuration(stage, time.Since(start))
	if hasErrors(issues) {
		metrics.IncValidationRun(stage, "fail")
	} else {
		metrics.IncValidationRun(stage, "pass")
	}
	return issues
}

func hasErrors(issues []entity.ValidationIssue) bool {
	for _, issue := range issues {
		if issue.Severity == entity.SeverityError {
			return true
		}
	}
	return false
}
