package generator

import (
	"log/slog"

	"iacforge/internal/domain/entity"
)

// Adapter emits deterministic IaC for one provider. Adapters are pure text
// producers: no I/O, no clock, no randomness, so the same request and
// analysis always yield the same artifacts.
type Adapter interface {
	Provider() entity.Provider
	// GenerateInfrastructureCode renders the main configuration. It doubles
	// as the base template handed to the language model and as the fallback
	// when the model's output is unusable.
	GenerateInfrastructureCode(req entity.GenerationRequest, analysis entity.AnalyzedSpecification) string
	GenerateVariablesFile(req entity.GenerationRequest) string
	GenerateOutputsFile(req entity.GenerationRequest) string
	// ExtractResources recovers resource blocks from IaC text with a
	// tolerant scan. Unknown blocks are skipped, never an error.
	ExtractResources(code string) []entity.GeneratedResource
	// EstimateMonthlyCost prices the resources in place, setting each
	// EstimatedMonthlyCost, and returns the total.
	EstimateMonthlyCost(resources []entity.GeneratedResource) float64
}

// Registry resolves providers to adapters. An unknown or empty provider
// resolves to proxmox, the platform's original target.
type Registry struct {
	adapters map[entity.Provider]Adapter
	fallback Adapter
	logger   *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	proxmox := NewProxmoxAdapter()
	r := &Registry{
		adapters: map[entity.Provider]Adapter{
			entity.ProviderProxmox: proxmox,
			entity.ProviderAWS:     NewAWSAdapter(),
			entity.ProviderAzure:   NewAzureAdapter(),
			entity.ProviderGCP:     NewGCPAdapter(),
		},
		fallback: proxmox,
		logger:   logger,
	}
	return r
}

func (r *Registry) Adapter(provider entity.Provider) Adapter {
	if adapter, ok := r.adapters[provider]; ok {
		return adapter
	}
	r.logger.Warn("unknown provider, falling back to proxmox", "provider", provider)
	return r.fallback
}

// Providers lists the registered providers.
func (r *Registry) Providers() []entity.Provider {
	return []entity.Provider{
		entity.ProviderProxmox,
		entity.ProviderAWS,
		entity.ProviderAzure,
		entity.ProviderGCP,
	}
}
