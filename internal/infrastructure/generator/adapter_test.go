package generator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iacforge/internal/domain/entity"
)

func request(provider entity.Provider) entity.GenerationRequest {
	return entity.GenerationRequest{
		Requirements: "web server with postgres",
		Provider:     provider,
		Format:       entity.FormatTerraform,
		ProjectName:  "shop",
		Environment:  "production",
	}
}

func analysisWith(complexity int, perf entity.PerformanceHints, storage entity.StorageHints) entity.AnalyzedSpecification {
	return entity.AnalyzedSpecification{
		Resources:           []string{"vm"},
		Performance:         perf,
		Storage:             storage,
		EstimatedComplexity: complexity,
	}
}

func TestRegistryFallsBackToProxmox(t *testing.T) {
	registry := NewRegistry(nil)

	adapter := registry.Adapter(entity.Provider("digitalocean"))
	assert.Equal(t, entity.ProviderProxmox, adapter.Provider())

	adapter = registry.Adapter(entity.ProviderGCP)
	assert.Equal(t, entity.ProviderGCP, adapter.Provider())
}

func TestSizingTiers(t *testing.T) {
	cases := []struct {
		name     string
		analysis entity.AnalyzedSpecification
		aws      string
		azure    string
		gcp      string
	}{
		{
			name:     "small",
			analysis: analysisWith(3, entity.PerformanceHints{Basic: true}, entity.StorageHints{}),
			aws:      "t3.micro", azure: "Standard_B1s", gcp: "e2-micro",
		},
		{
			name:     "medium complexity",
			analysis: analysisWith(6, entity.PerformanceHints{}, entity.StorageHints{}),
			aws:      "t3.medium", azure: "Standard_B2s", gcp: "e2-medium",
		},
		{
			name:     "high memory",
			analysis: analysisWith(4, entity.PerformanceHints{HighMemory: true}, entity.StorageHints{}),
			aws:      "r5.large", azure: "Standard_E2s_v3", gcp: "n2-highmem-2",
		},
		{
			name:     "high cpu",
			analysis: analysisWith(4, entity.PerformanceHints{HighCPU: true}, entity.StorageHints{}),
			aws:      "c5.large", azure: "Standard_D2s_v3", gcp: "n2-standard-2",
		},
		{
			name:     "very high complexity",
			analysis: analysisWith(9, entity.PerformanceHints{}, entity.StorageHints{}),
			aws:      "c5.large", azure: "Standard_D2s_v3", gcp: "n2-standard-2",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.aws, awsInstanceTypes.forAnalysis(tc.analysis))
			assert.Equal(t, tc.azure, azureVMSizes.forAnalysis(tc.analysis))
			assert.Equal(t, tc.gcp, gcpMachineTypes.forAnalysis(tc.analysis))
		})
	}
}

func TestSizingMonotonicInComplexity(t *testing.T) {
	previous := tierSmall
	for complexity := 1; complexity <= 10; complexity++ {
		tier := tierFor(analysisWith(complexity, entity.PerformanceHints{}, entity.StorageHints{}))
		assert.GreaterOrEqual(t, int(tier), int(previous),
			fmt.Sprintf("tier regressed at complexity %d", complexity))
		previous = tier
	}
}

func TestProxmoxSizing(t *testing.T) {
	adapter := NewProxmoxAdapter()

	small := analysisWith(3, entity.PerformanceHints{}, entity.StorageHints{})
	assert.Equal(t, 1, adapter.determineCores(small))
	assert.Equal(t, 2048, adapter.determineMemory(small))

	mid := analysisWith(6, entity.PerformanceHints{}, entity.StorageHints{})
	assert.Equal(t, 2, adapter.determineCores(mid))
	assert.Equal(t, 4096, adapter.determineMemory(mid))

	big := analysisWith(9, entity.PerformanceHints{}, entity.StorageHints{})
	assert.Equal(t, 4, adapter.determineCores(big))
	assert.Equal(t, 8192, adapter.determineMemory(big))

	mem := analysisWith(3, entity.PerformanceHints{HighMemory: true}, entity.StorageHints{})
	assert.Equal(t, 1, adapter.determineCores(mem))
	assert.Equal(t, 8192, adapter.determineMemory(mem))
}

func TestDiskSizeFollowsStorageHints(t *testing.T) {
	assert.Equal(t, 20, diskSizeGB(analysisWith(5, entity.PerformanceHints{}, entity.StorageHints{})))
	assert.Equal(t, 50, diskSizeGB(analysisWith(5, entity.PerformanceHints{}, entity.StorageHints{MediumStorage: true})))
	assert.Equal(t, 100, diskSizeGB(analysisWith(5, entity.PerformanceHints{}, entity.StorageHints{LargeStorage: true})))
}

func TestExtractionRoundTripsEmittedCode(t *testing.T) {
	analysis := analysisWith(6, entity.PerformanceHints{}, entity.StorageHints{})
	analysis.Networking.CustomNetwork = true
	analysis.Storage.AdditionalStorage = true

	for _, adapter := range []Adapter{NewProxmoxAdapter(), NewAWSAdapter(), NewAzureAdapter(), NewGCPAdapter()} {
		t.Run(string(adapter.Provider()), func(t *testing.T) {
			code := adapter.GenerateInfrastructureCode(request(adapter.Provider()), analysis)
			resources := adapter.ExtractResources(code)

			require.NotEmpty(t, resources)
			for _, res := range resources {
				assert.Equal(t, adapter.Provider(), res.Provider)
				assert.NotEmpty(t, res.Name)
				assert.NotEmpty(t, res.Type)
			}
		})
	}
}

func TestProxmoxExtractionRecoversSizing(t *testing.T) {
	adapter := NewProxmoxAdapter()
	analysis := analysisWith(6, entity.PerformanceHints{}, entity.StorageHints{})

	code := adapter.GenerateInfrastructureCode(request(entity.ProviderProxmox), analysis)
	resources := adapter.ExtractResources(code)

	require.Len(t, resources, 1)
	assert.Equal(t, "main", resources[0].Name)
	assert.Equal(t, "proxmox_vm_qemu", resources[0].Type)
	assert.Equal(t, 2, resources[0].Configuration["cores"])
	assert.Equal(t, 4096, resources[0].Configuration["memory"])
}

func TestExtractionSkipsUnknownBlocks(t *testing.T) {
	code := `resource "aws_instance" "web" {}
resource "random_pet" "name" {}
not even hcl at all {{{`

	resources := NewAWSAdapter().ExtractResources(code)
	require.Len(t, resources, 1)
	assert.Equal(t, "web", resources[0].Name)
}

func TestProxmoxCostIsZero(t *testing.T) {
	adapter := NewProxmoxAdapter()
	resources := []entity.GeneratedResource{
		{Name: "main", Type: "proxmox_vm_qemu"},
		{Name: "storage_vm", Type: "proxmox_vm_qemu"},
	}

	total := adapter.EstimateMonthlyCost(resources)
	assert.Zero(t, total)
	require.NotNil(t, resources[0].EstimatedMonthlyCost)
	assert.Zero(t, *resources[0].EstimatedMonthlyCost)
}

func TestAWSCostStampsResources(t *testing.T) {
	adapter := NewAWSAdapter()
	resources := []entity.GeneratedResource{
		{Name: "main", Type: "aws_instance"},
		{Name: "vpc", Type: "aws_vpc"},
		{Name: "pip", Type: "aws_eip"}, // unknown type, network default
	}

	total := adapter.EstimateMonthlyCost(resources)
	assert.InDelta(t, 11.0, total, 1e-9)
	require.NotNil(t, resources[0].EstimatedMonthlyCost)
	assert.InDelta(t, 10.0, *resources[0].EstimatedMonthlyCost, 1e-9)
	assert.Zero(t, *resources[1].EstimatedMonthlyCost)
	assert.InDelta(t, 1.0, *resources[2].EstimatedMonthlyCost, 1e-9)
}

func TestTagStringSortedAndMerged(t *testing.T) {
	req := request(entity.ProviderProxmox)
	req.Tags = map[string]string{"Team": "platform", "Environment": "override"}

	s := tagString(commonTags(req))
	assert.Equal(t, "Environment=override,ManagedBy=iacforge,Project=shop,Team=platform", s)
}

func TestVariablesFileCarriesRequestDefaults(t *testing.T) {
	for _, adapter := range []Adapter{NewProxmoxAdapter(), NewAWSAdapter(), NewAzureAdapter(), NewGCPAdapter()} {
		vars := adapter.GenerateVariablesFile(request(adapter.Provider()))
		assert.Contains(t, vars, `default     = "shop"`)
		assert.Contains(t, vars, `default     = "production"`)
	}
}
