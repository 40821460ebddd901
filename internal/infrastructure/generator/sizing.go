package generator

import (
	"fmt"
	"sort"
	"strings"

	"iacforge/internal/domain/entity"
)

// sizeTier orders machine classes from smallest to largest for a fixed set of
// hints. Larger complexity never selects a smaller tier.
type sizeTier int

const (
	tierSmall sizeTier = iota
	tierMedium
	tierMemory
	tierLarge
)

// tierFor maps the analysis onto a machine class. High CPU demand or very
// high complexity dominates, then memory pressure, then mid complexity.
func tierFor(analysis entity.AnalyzedSpecification) sizeTier {
	switch {
	case analysis.Performance.HighCPU || analysis.EstimatedComplexity > 8:
		return tierLarge
	case analysis.Performance.HighMemory:
		return tierMemory
	case analysis.EstimatedComplexity > 5:
		return tierMedium
	default:
		return tierSmall
	}
}

// machineTypes is a per-tier machine name table, indexed by sizeTier.
type machineTypes [4]string

func (m machineTypes) forAnalysis(analysis entity.AnalyzedSpecification) string {
	return m[tierFor(analysis)]
}

// diskSizeGB sizes the boot disk from the storage hints.
func diskSizeGB(analysis entity.AnalyzedSpecification) int {
	switch {
	case analysis.Storage.LargeStorage:
		return 100
	case analysis.Storage.MediumStorage:
		return 50
	default:
		return 20
	}
}

// resourceName follows the project-kind-environment naming convention.
func resourceName(req entity.GenerationRequest, kind string) string {
	return fmt.Sprintf("%s-%s-%s", req.ProjectName, kind, req.Environment)
}

// commonTags merges the standard tag set with request tags. Request tags win.
func commonTags(req entity.GenerationRequest) map[string]string {
	tags := map[string]string{
		"Project":     req.ProjectName,
		"Environment": req.Environment,
		"ManagedBy":   "iacforge",
	}
	for k, v := range req.Tags {
		tags[k] = v
	}
	return tags
}

// tagString renders tags as the comma-joined k=v list Proxmox expects, in
// sorted key order so output is stable.
func tagString(tags map[string]string) string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+tags[k])
	}
	return strings.Join(parts, ",")
}
