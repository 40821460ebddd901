package repository

import (
	"context"

	"iacforge/internal/domain/entity"
)

// BackendRole tags a backend's position in the failover order.
type BackendRole string

const (
	RolePrimary  BackendRole = "primary"
	RoleFallback BackendRole = "fallback"
	RoleNone     BackendRole = ""
)

// Backend is one interchangeable language-model connection.
type Backend interface {
	Name() string
	Role() BackendRole
	// Complete sends a formatted prompt and returns the raw response text.
	Complete(ctx context.Context, prompt string) (string, error)
	// Ping checks reachability without making an inference call where the
	// backend's API allows it.
	Ping(ctx context.Context) error
}

// BackendStatus is the health report for one configured backend.
type BackendStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Primary   bool   `json:"primary"`
	Fallback  bool   `json:"fallback"`
	Error     string `json:"error,omitempty"`
}

// Orchestrator exposes the high-level language-model operations over a fixed
// backend registry with ordered failover.
type Orchestrator interface {
	AnalyzeRequirements(ctx context.Context, req entity.GenerationRequest, templates []string, constraints map[string]any) (entity.AnalyzedSpecification, string, error)
	GenerateCode(ctx context.Context, spec entity.AnalyzedSpecification, baseTemplate string, req entity.GenerationRequest) (string, string, error)
	DiagnoseError(ctx context.Context, errorLogs string, config map[string]any, state map[string]any, previousFixes []string) (entity.Diagnosis, string, error)
	ProviderStatus(ctx context.Context) []BackendStatus
}
