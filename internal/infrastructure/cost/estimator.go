package cost

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"iacforge/internal/domain/entity"
)

var savingsRate = decimal.NewFromFloat(0.3)

var optimizationOpportunities = []string{
	"Consider using spot instances for non-critical workloads",
	"Enable auto-scaling to optimize resource usage",
	"Use reserved instances for long-running workloads",
}

// Estimator prices resource lists against the static unit tables. All math is
// done in decimals and only converted to float64 at the entity boundary, so
// repeated estimates of the same list are bit-identical.
type Estimator struct {
	logger *slog.Logger
}

func NewEstimator(logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{logger: logger}
}

// Estimate produces the full monthly cost breakdown. An empty resource list
// or a self-hosted provider yields an all-zero estimate with no suggestions.
func (e *Estimator) Estimate(resources []entity.GeneratedResource, provider entity.Provider) entity.CostEstimate {
	monthly := decimal.Zero
	byCategory := map[string]decimal.Decimal{
		CategoryCompute: decimal.Zero,
		CategoryStorage: decimal.Zero,
		CategoryNetwork: decimal.Zero,
		CategoryOther:   decimal.Zero,
	}
	resourceCosts := make(map[string]float64, len(resources))

	for _, res := range resources {
		price := UnitCost(provider, res.Type)
		monthly = monthly.Add(price)
		category := Categorize(res.Type)
		byCategory[category] = byCategory[category].Add(price)
		resourceCosts[res.Name] = price.InexactFloat64()
	}

	estimate := entity.CostEstimate{
		MonthlyCost:   monthly.InexactFloat64(),
		AnnualCost:    monthly.Mul(decimal.NewFromInt(12)).InexactFloat64(),
		ComputeCost:   byCategory[CategoryCompute].InexactFloat64(),
		StorageCost:   byCategory[CategoryStorage].InexactFloat64(),
		NetworkCost:   byCategory[CategoryNetwork].InexactFloat64(),
		OtherCost:     byCategory[CategoryOther].InexactFloat64(),
		ResourceCosts: resourceCosts,

		OptimizationOpportunities: []string{},
		PotentialSavings:          monthly.Mul(savingsRate).InexactFloat64(),
	}

	if monthly.IsPositive() {
		estimate.OptimizationOpportunities = append(estimate.OptimizationOpportunities, optimizationOpportunities...)
	}

	e.logger.Debug("cost estimate computed",
		"provider", provider, "resources", len(resources), "monthly", estimate.MonthlyCost)
	return estimate
}
