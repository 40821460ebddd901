package cost

import (
	"strings"

	"github.com/shopspring/decimal"

	"iacforge/internal/domain/entity"
)

// Category buckets for the estimate breakdown.
const (
	CategoryCompute = "compute"
	CategoryStorage = "storage"
	CategoryNetwork = "network"
	CategoryOther   = "other"
)

// unitCosts holds flat monthly USD prices per resource type. Free network
// primitives are listed explicitly so they never fall through to the category
// default.
var unitCosts = map[entity.Provider]map[string]decimal.Decimal{
	entity.ProviderAWS: {
		"aws_instance":       decimal.NewFromInt(10),
		"aws_vpc":            decimal.Zero,
		"aws_security_group": decimal.Zero,
		"aws_subnet":         decimal.Zero,
		"aws_ebs_volume":     decimal.NewFromInt(2),
	},
	entity.ProviderAzure: {
		"azurerm_linux_virtual_machine":  decimal.NewFromInt(15),
		"azurerm_resource_group":         decimal.Zero,
		"azurerm_virtual_network":        decimal.Zero,
		"azurerm_subnet":                 decimal.Zero,
		"azurerm_network_security_group": decimal.Zero,
		"azurerm_public_ip":              decimal.NewFromInt(3),
		"azurerm_network_interface":      decimal.Zero,
	},
	entity.ProviderGCP: {
		"google_compute_instance":   decimal.NewFromInt(8),
		"google_compute_network":    decimal.Zero,
		"google_compute_subnetwork": decimal.Zero,
		"google_compute_firewall":   decimal.Zero,
		"google_compute_address":    decimal.NewFromInt(5),
	},
}

// defaultCategoryCosts prices resource types absent from the provider table.
var defaultCategoryCosts = map[string]decimal.Decimal{
	CategoryCompute: decimal.NewFromInt(10),
	CategoryStorage: decimal.NewFromInt(2),
	CategoryNetwork: decimal.NewFromInt(1),
	CategoryOther:   decimal.NewFromInt(5),
}

// Categorize maps a resource type name to a cost category. Storage wins over
// compute so volume types attached to instances classify correctly.
func Categorize(resourceType string) string {
	t := strings.ToLower(resourceType)
	switch {
	case containsAny(t, "volume", "disk", "storage", "bucket"):
		return CategoryStorage
	case containsAny(t, "instance", "virtual_machine", "vm"):
		return CategoryCompute
	case containsAny(t, "network", "vpc", "subnet", "ip", "firewall", "gateway", "route", "security", "interface"):
		return CategoryNetwork
	default:
		return CategoryOther
	}
}

// UnitCost returns the flat monthly price for one resource of the given type.
// Self-hosted providers are always zero regardless of type or table contents.
func UnitCost(provider entity.Provider, resourceType string) decimal.Decimal {
	if provider.SelfHosted() {
		return decimal.Zero
	}
	if table, ok := unitCosts[provider]; ok {
		if price, ok := table[resourceType]; ok {
			return price
		}
	}
	return defaultCategoryCosts[Categorize(resourceType)]
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
