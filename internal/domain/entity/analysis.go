package entity

import "encoding/json"

// AnalyzedSpecification is the structured output of requirement analysis.
// It lives only for the duration of one generation run.
type AnalyzedSpecification struct {
	Resources           []string         `json:"resources"`
	Networking          NetworkingHints  `json:"networking"`
	Security            SecurityHints    `json:"security"`
	Performance         PerformanceHints `json:"performance"`
	Storage             StorageHints     `json:"storage"`
	EstimatedComplexity int              `json:"estimated_complexity"`
}

type NetworkingHints struct {
	Basic         bool `json:"basic"`
	CustomNetwork bool `json:"custom_network"`
	LoadBalancer  bool `json:"load_balancer"`
}

type SecurityHints struct {
	Basic           bool `json:"basic"`
	Hardened        bool `json:"hardened"`
	PublicEndpoints bool `json:"public_endpoints"`
}

type PerformanceHints struct {
	Basic      bool `json:"basic"`
	HighCPU    bool `json:"high_cpu"`
	HighMemory bool `json:"high_memory"`
}

type StorageHints struct {
	Basic             bool `json:"basic"`
	MediumStorage     bool `json:"medium_storage"`
	LargeStorage      bool `json:"large_storage"`
	AdditionalStorage bool `json:"additional_storage"`
}

// DefaultAnalyzedSpecification is the documented degraded-mode fallback used
// when the analysis response cannot be parsed: a single small VM.
func DefaultAnalyzedSpecification() AnalyzedSpecification {
	return AnalyzedSpecification{
		Resources:           []string{"vm"},
		Networking:          NetworkingHints{Basic: true},
		Security:            SecurityHints{Basic: true},
		Performance:         PerformanceHints{Basic: true},
		Storage:             StorageHints{Basic: true},
		EstimatedComplexity: 5,
	}
}

// ParseAnalyzedSpecification decodes a JSON analysis payload and clamps the
// complexity score into its 1..10 range. A decode error is returned as-is so
// the caller can decide between failing and degrading to the default.
func ParseAnalyzedSpecification(data []byte) (AnalyzedSpecification, error) {
	var spec AnalyzedSpecification
	if err := json.Unmarshal(data, &spec); err != nil {
		return AnalyzedSpecification{}, err
	}
	if spec.EstimatedComplexity < 1 {
		spec.EstimatedComplexity = 1
	}
	if spec.EstimatedComplexity > 10 {
		spec.EstimatedComplexity = 10
	}
	if len(spec.Resources) == 0 {
		spec.Resources = []string{"vm"}
	}
	return spec, nil
}

// Diagnosis is the structured output of the error-diagnosis operation.
type Diagnosis struct {
	RootCause       string   `json:"root_cause"`
	Severity        string   `json:"severity"`
	SuggestedFixes  []string `json:"suggested_fixes"`
	PreventionSteps []string `json:"prevention_steps"`
	Confidence      float64  `json:"confidence"`
}
