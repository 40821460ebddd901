package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerJoinsAllTools(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"gitleaks detect": {stdout: `[{"RuleID":"generic-api-key","Description":"Generic API Key","File":"main.tf","StartLine":12}]`},
		"tfsec .":         {stdout: `{"results":[{"rule_id":"aws-vpc-no-public-ingress-sgr","severity":"CRITICAL","description":"Security group rule allows ingress from public internet","location":{"filename":"main.tf","start_line":20}}]}`},
		"trivy fs":        {stdout: `{"Results":[{"Target":"main.tf","Vulnerabilities":[{"VulnerabilityID":"CVE-2024-0001","Severity":"HIGH","Title":"sample vuln"}]}]}`},
	}}
	s := NewScanner(runner, nil)

	report := s.RunAll(context.Background(), "/tmp/project")

	assert.Equal(t, []string{"dependencies", "secrets", "static"}, report.ToolsRun)
	assert.Empty(t, report.ToolsFailed)
	require.Len(t, report.Findings, 3)
	assert.Equal(t, "gitleaks", report.Findings[0].Tool)
	assert.Equal(t, 12, report.Findings[0].Line)
	assert.Equal(t, "tfsec", report.Findings[1].Tool)
	assert.Equal(t, "CRITICAL", report.Findings[1].Severity)
	assert.Equal(t, "trivy", report.Findings[2].Tool)
	assert.Equal(t, "CVE-2024-0001", report.Findings[2].RuleID)
}

func TestScannerToleratesPartialFailure(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"gitleaks detect": {err: errors.New("executable file not found")},
		"tfsec .":         {stdout: `{"results":[]}`},
		"trivy fs":        {stdout: `{"Results":[]}`},
	}}
	s := NewScanner(runner, nil)

	report := s.RunAll(context.Background(), "/tmp/project")

	assert.Equal(t, []string{"secrets"}, report.ToolsFailed)
	assert.Equal(t, []string{"dependencies", "static"}, report.ToolsRun)
	assert.Empty(t, report.Findings)
}

func TestScannerTreatsGarbageOutputAsZeroFindings(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"gitleaks detect": {stdout: "not json at all"},
		"tfsec .":         {stdout: "<html>proxy error</html>"},
		"trivy fs":        {stdout: ""},
	}}
	s := NewScanner(runner, nil)

	report := s.RunAll(context.Background(), "/tmp/project")

	assert.Empty(t, report.Findings)
	assert.Len(t, report.ToolsRun, 3)
	assert.Empty(t, report.ToolsFailed)
}
