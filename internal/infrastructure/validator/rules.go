package validator

import (
	"regexp"
	"strings"

	"iacforge/internal/domain/entity"
)

// securityRule is one pattern in the regex security scan. Adding a rule means
// appending here; the scan loop never changes.
type securityRule struct {
	Pattern    *regexp.Regexp
	Severity   entity.Severity
	Message    string
	Rule       string
	Suggestion string
}

var securityRules = []securityRule{
	{
		Pattern:    regexp.MustCompile(`(?i)password\s*=\s*["'][^"']+["']`),
		Severity:   entity.SeverityError,
		Message:    "Hardcoded password detected",
		Rule:       "hardcoded_secrets",
		Suggestion: "Use variables or secret management systems",
	},
	{
		Pattern:    regexp.MustCompile(`(?i)api_key\s*=\s*["'][^"']+["']`),
		Severity:   entity.SeverityError,
		Message:    "Hardcoded API key detected",
		Rule:       "hardcoded_secrets",
		Suggestion: "Use variables or secret management systems",
	},
	{
		Pattern:    regexp.MustCompile(`(?i)secret\s*=\s*["'][^"']+["']`),
		Severity:   entity.SeverityError,
		Message:    "Hardcoded secret detected",
		Rule:       "hardcoded_secrets",
		Suggestion: "Use variables or secret management systems",
	},
	{
		Pattern:    regexp.MustCompile(`(?i)pm_tls_insecure\s*=\s*true`),
		Severity:   entity.SeverityWarning,
		Message:    "TLS verification disabled",
		Rule:       "insecure_config",
		Suggestion: "Review security implications",
	},
	{
		Pattern:    regexp.MustCompile(`0\.0\.0\.0/0`),
		Severity:   entity.SeverityWarning,
		Message:    "Overly permissive network access",
		Rule:       "insecure_config",
		Suggestion: "Review security implications",
	},
}

// runSecurityRules applies every rule to the code. The reported line is the
// number of newlines before the match plus one.
func runSecurityRules(code string) []entity.ValidationIssue {
	var issues []entity.ValidationIssue

	for _, rule := range securityRules {
		for _, loc := range rule.Pattern.FindAllStringIndex(code, -1) {
			issues = append(issues, entity.ValidationIssue{
				Severity:   rule.Severity,
				Message:    rule.Message,
				Line:       strings.Count(code[:loc[0]], "\n") + 1,
				Rule:       rule.Rule,
				Suggestion: rule.Suggestion,
			})
		}
	}

	return issues
}
