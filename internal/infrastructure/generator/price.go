package generator

import (
	"github.com/shopspring/decimal"

	"iacforge/internal/domain/entity"
	"iacforge/internal/infrastructure/cost"
)

// priceResources stamps each resource with its unit cost and returns the
// total. Decimal accumulation keeps totals exact before the float boundary.
func priceResources(provider entity.Provider, resources []entity.GeneratedResource) float64 {
	total := decimal.Zero
	for i := range resources {
		price := cost.UnitCost(provider, resources[i].Type)
		value := price.InexactFloat64()
		resources[i].EstimatedMonthlyCost = &value
		total = total.Add(price)
	}
	return total.InexactFloat64()
}
