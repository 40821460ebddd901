package entity

import (
	"time"
)

// Provider is a target deployment platform.
type Provider string

const (
	ProviderProxmox Provider = "proxmox"
	ProviderAWS     Provider = "aws"
	ProviderAzure   Provider = "azure"
	ProviderGCP     Provider = "gcp"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderProxmox, ProviderAWS, ProviderAzure, ProviderGCP:
		return true
	}
	return false
}

// SelfHosted reports whether the provider has no metered billing.
func (p Provider) SelfHosted() bool {
	return p == ProviderProxmox
}

// Format is a supported IaC output format.
type Format string

const (
	FormatTerraform Format = "terraform"
	FormatOpenTofu  Format = "opentofu"
	FormatPulumi    Format = "pulumi"
	FormatCDK       Format = "cdk"
)

// Declarative reports whether the format is plain declarative HCL that the
// external toolchain can syntax-check.
func (f Format) Declarative() bool {
	return f == FormatTerraform || f == FormatOpenTofu
}

// GenerationRequest is the immutable input of one generation run.
type GenerationRequest struct {
	TemplateID   string `json:"template_id,omitempty" bson:"template_id,omitempty"`
	Requirements string `json:"requirements" bson:"requirements"`

	Provider Provider `json:"provider" bson:"provider"`
	Format   Format   `json:"format" bson:"format"`

	EnableValidation     bool `json:"enable_validation" bson:"enable_validation"`
	EnableOptimization   bool `json:"enable_optimization" bson:"enable_optimization"`
	IncludeBestPractices bool `json:"include_best_practices" bson:"include_best_practices"`

	ProjectName string            `json:"project_name" bson:"project_name"`
	Environment string            `json:"environment" bson:"environment"`
	Tags        map[string]string `json:"tags,omitempty" bson:"tags,omitempty"`
}

// ValidationRequest asks for validation of caller-supplied IaC text without
// running generation.
type ValidationRequest struct {
	IaCCode    string   `json:"iac_code"`
	Format     Format   `json:"format"`
	Provider   Provider `json:"provider"`
	CheckCosts bool     `json:"check_costs"`
}

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ValidationIssue is a single validation finding.
type ValidationIssue struct {
	Severity   Severity `json:"severity" bson:"severity"`
	Message    string   `json:"message" bson:"message"`
	Line       int      `json:"line,omitempty" bson:"line,omitempty"`
	Column     int      `json:"column,omitempty" bson:"column,omitempty"`
	Rule       string   `json:"rule,omitempty" bson:"rule,omitempty"`
	Suggestion string   `json:"suggestion,omitempty" bson:"suggestion,omitempty"`
}

// ValidationResult aggregates issues by severity. Build it through
// NewValidationResult so the counters always match the issue lists.
type ValidationResult struct {
	Valid         bool `json:"valid" bson:"valid"`
	SyntaxValid   bool `json:"syntax_valid" bson:"syntax_valid"`
	SecurityValid bool `json:"security_valid" bson:"security_valid"`

	Errors   []ValidationIssue `json:"errors" bson:"errors"`
	Warnings []ValidationIssue `json:"warnings" bson:"warnings"`
	Info     []ValidationIssue `json:"info" bson:"info"`

	TotalIssues  int `json:"total_issues" bson:"total_issues"`
	ErrorCount   int `json:"error_count" bson:"error_count"`
	WarningCount int `json:"warning_count" bson:"warning_count"`

	// Performed distinguishes "validated and clean" from "validation skipped".
	Performed bool `json:"performed" bson:"performed"`
}

// NewValidationResult buckets issues by severity and derives all counters.
// syntaxValid and securityValid are supplied by the pipeline because they
// depend on which stage produced each error, not only on severities.
func NewValidationResult(issues []ValidationIssue, syntaxValid, securityValid, performed bool) ValidationResult {
	res := ValidationResult{
		SyntaxValid:   syntaxValid,
		SecurityValid: securityValid,
		Valid:         syntaxValid && securityValid,
		Errors:        []ValidationIssue{},
		Warnings:      []ValidationIssue{},
		Info:          []ValidationIssue{},
		Performed:     performed,
	}
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			res.Errors = append(res.Errors, issue)
		case SeverityWarning:
			res.Warnings = append(res.Warnings, issue)
		default:
			res.Info = append(res.Info, issue)
		}
	}
	res.ErrorCount = len(res.Errors)
	res.WarningCount = len(res.Warnings)
	res.TotalIssues = len(res.Errors) + len(res.Warnings) + len(res.Info)
	return res
}

// SkippedValidationResult is the well-formed "not performed" placeholder used
// when a request disables validation.
func SkippedValidationResult() ValidationResult {
	return NewValidationResult(nil, true, true, false)
}

// GeneratedResource is one resource recovered from generated IaC text.
type GeneratedResource struct {
	Name          string         `json:"name" bson:"name"`
	Type          string         `json:"type" bson:"type"`
	Provider      Provider       `json:"provider" bson:"provider"`
	Configuration map[string]any `json:"configuration" bson:"configuration"`
	Dependencies  []string       `json:"dependencies" bson:"dependencies"`

	EstimatedMonthlyCost *float64 `json:"estimated_monthly_cost,omitempty" bson:"estimated_monthly_cost,omitempty"`
}

// CostEstimate is a deterministic cost breakdown for a resource list.
type CostEstimate struct {
	MonthlyCost float64 `json:"monthly_cost" bson:"monthly_cost"`
	AnnualCost  float64 `json:"annual_cost" bson:"annual_cost"`

	ComputeCost float64 `json:"compute_cost" bson:"compute_cost"`
	StorageCost float64 `json:"storage_cost" bson:"storage_cost"`
	NetworkCost float64 `json:"network_cost" bson:"network_cost"`
	OtherCost   float64 `json:"other_cost" bson:"other_cost"`

	ResourceCosts map[string]float64 `json:"resource_costs" bson:"resource_costs"`

	OptimizationOpportunities []string `json:"optimization_opportunities" bson:"optimization_opportunities"`
	PotentialSavings          float64  `json:"potential_savings" bson:"potential_savings"`
}

// GenerationResult is the terminal artifact of one successful run.
type GenerationResult struct {
	GenerationID string   `json:"generation_id" bson:"generation_id"`
	Provider     Provider `json:"provider" bson:"provider"`
	Format       Format   `json:"format" bson:"format"`

	IaCCode            string            `json:"iac_code" bson:"iac_code"`
	ConfigurationFiles map[string]string `json:"configuration_files" bson:"configuration_files"`
	Scripts            map[string]string `json:"scripts" bson:"scripts"`

	Resources []GeneratedResource `json:"resources" bson:"resources"`

	ValidationResult ValidationResult `json:"validation_result" bson:"validation_result"`
	CostEstimate     *CostEstimate    `json:"cost_estimate,omitempty" bson:"cost_estimate,omitempty"`

	Readme                 string `json:"readme" bson:"readme"`
	DeploymentInstructions string `json:"deployment_instructions" bson:"deployment_instructions"`

	TemplateUsed         string        `json:"template_used,omitempty" bson:"template_used,omitempty"`
	RequirementsAnalyzed string        `json:"requirements_analyzed" bson:"requirements_analyzed"`
	GenerationTime       time.Duration `json:"generation_time" bson:"generation_time"`
	CreatedAt            time.Time     `json:"created_at" bson:"created_at"`
}

/// GenerationResponse is always well-formed: callers never see a raw error.
type GenerationResponse struct {
	Success        bool              `json:"success"`
	Result         *GenerationResult `json:"result,omitempty"`
	Error          string            `json:"error,omitempty"`
	ErrorDetails   map[string]string `json:"error_details,omitempty"`
	ProcessingTime time.Duration     `json:"processing_time"`
	LLMCalls       int               `json:"llm_calls"`
}

// ValidationResponse is the read-only validation variant's reply.
type ValidationResponse struct {
	ValidationResult ValidationResult `json:"validation_result"`
	CostEstimate     *CostEstimate    `json:"cost_estimate,omitempty"`
	ProcessingTime   time.Duration    `json:"processing_time"`
}
