package entity

import "fmt"

// Prompt is a fixed template for one orchestrator operation. Variables are
// substituted positionally via Render, so the template text stays data.
type Prompt struct {
	ID   string
	Text string
}

// Render substitutes the supplied variables into the template.
func (p Prompt) Render(args ...any) string {
	return fmt.Sprintf(p.Text, args...)
}

// AnalysisPrompt expects: requirements, provider, environment, project name,
// available templates (JSON), resource constraints (JSON).
var AnalysisPrompt = Prompt{
	ID: "requirement_analysis",
	Text: `You are an expert infrastructure architect analyzing deployment requirements.

Requirements: %s
Target Provider: %s
Target Environment: %s
Project: %s

Available Service Templates:
%s

Resource Constraints:
%s

Extract and return a single JSON object with:
- "resources": list of infrastructure resources needed
- "networking": {"basic": bool, "custom_network": bool, "load_balancer": bool}
- "security": {"basic": bool, "hardened": bool, "public_endpoints": bool}
- "performance": {"basic": bool, "high_cpu": bool, "high_memory": bool}
- "storage": {"basic": bool, "medium_storage": bool, "large_storage": bool, "additional_storage": bool}
- "estimated_complexity": integer from 1 to 10

Focus on provider-specific resources and configurations.
Provide only the JSON response, no additional text or explanations.`,
}

// GenerationPrompt expects: format, provider, requirements, analysis (JSON),
// project name, environment, base template.
var GenerationPrompt = Prompt{
	ID: "iac_generation",
	Text: `You are an expert DevOps engineer generating Infrastructure as Code.

Generate %s code for %s based on:

Requirements: %s
Analysis: %s
Project: %s
Environment: %s

Base template to modify:
%s

Generate complete, syntactically correct code inside a single fenced code
block. Include proper resource naming, tags, and dependencies. Declare every
variable that is referenced and supply sensible defaults.`,
}

// BestPracticesAddendum is appended to GenerationPrompt when the request asks
// for hardened output.
const BestPracticesAddendum = "\nApply security and performance best practices: least privilege access, encrypted storage, restrictive network rules."

// DiagnosisPrompt expects: error logs, deployment config (JSON), system state
// (JSON), previous fixes (JSON).
var DiagnosisPrompt = Prompt{
	ID: "error_diagnosis",
	Text: `You are an expert DevOps troubleshooter analyzing deployment failures.

Error Logs:
%s

Deployment Configuration:
%s

System State:
%s

Previous Fix Attempts:
%s

Provide a structured analysis as a single JSON object with:
- "root_cause": detailed explanation of the underlying issue
- "severity": one of critical, high, medium, low
- "suggested_fixes": ordered list of actionable fixes
- "prevention_steps": how to prevent recurrence
- "confidence": number from 0.0 to 1.0

Provide only the JSON response.`,
}
