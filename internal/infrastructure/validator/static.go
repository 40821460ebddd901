package validator

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"iacforge/internal/domain/entity"
)

// staticAnalyze parses the code as HCL without running any external tool.
// Parse failures come back as error issues with source positions; structural
// advice (missing provider version constraints) comes back as warnings.
func staticAnalyze(code string) []entity.ValidationIssue {
	var issues []entity.ValidationIssue

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL([]byte(code), "main.tf")
	issues = append(issues, diagnosticsToIssues(diags)...)
	if diags.HasErrors() || file == nil {
		return issues
	}

	issues = append(issues, diagnosticsToIssues(analyzeBody(file.Body))...)
	return issues
}

func analyzeBody(body hcl.Body) hcl.Diagnostics {
	schema := &hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "terraform"},
			{Type: "provider", LabelNames: []string{"name"}},
			{Type: "resource", LabelNames: []string{"type", "name"}},
			{Type: "data", LabelNames: []string{"type", "name"}},
			{Type: "variable", LabelNames: []string{"name"}},
			{Type: "output", LabelNames: []string{"name"}},
			{Type: "module", LabelNames: []string{"name"}},
		},
	}

	content, _, diags := body.PartialContent(schema)
	if content == nil {
		return diags
	}

	for _, block := range content.Blocks.OfType("terraform") {
		tfSchema := &hcl.BodySchema{
			Blocks: []hcl.BlockHeaderSchema{{Type: "required_providers"}},
		}
		tfContent, _, tfDiags := block.Body.PartialContent(tfSchema)
		diags = append(diags, tfDiags...)
		if tfContent == nil {
			continue
		}

		for _, rpBlock := range tfContent.Blocks.OfType("required_providers") {
			attrs, attrsDiags := rpBlock.Body.JustAttributes()
			diags = append(diags, attrsDiags...)

			for providerName, attr := range attrs {
				val, valDiags := attr.Expr.Value(nil)
				if valDiags.HasErrors() {
					continue
				}
				if !val.Type().IsObjectType() {
					diags = append(diags, &hcl.Diagnostic{
						Severity: hcl.DiagWarning,
						Summary:  fmt.Sprintf("Provider %s has non-object requirement", providerName),
						Subject:  &attr.Range,
					})
					continue
				}
				if _, hasVersion := val.AsValueMap()["version"]; !hasVersion {
					diags = append(diags, &hcl.Diagnostic{
						Severity: hcl.DiagWarning,
						Summary:  fmt.Sprintf("Provider %s missing version constraint", providerName),
						Subject:  &attr.Range,
					})
				}
			}
		}
	}

	return diags
}

func diagnosticsToIssues(diags hcl.Diagnostics) []entity.ValidationIssue {
	var issues []entity.ValidationIssue
	for _, diag := range diags {
		issue := entity.ValidationIssue{
			Message: diag.Summary,
			Rule:    "hcl_syntax",
		}
		if diag.Detail != "" {
			issue.Message = fmt.Sprintf("%s: %s", diag.Summary, diag.Detail)
		}
		if diag.Severity == hcl.DiagError {
			issue.Severity = entity.SeverityError
		} else {
			issue.Severity = entity.SeverityWarning
		}
		if diag.Subject != nil {
			issue.Line = diag.Subject.Start.Line
			issue.Column = diag.Subject.Start.Column
		}
		issues = append(issues, issue)
	}
	return issues
}
