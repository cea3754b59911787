package domain

import "github.com/shopspring/decimal"

// Result is the cost breakdown. Currency fields are rounded to cents and
// TotalCost is the exact sum of the four cost components.
type Result struct {
	MaterialKey     string
	MaterialFamily  string
	MaterialMatched bool
	UnitCost        decimal.Decimal
	SlabArea        decimal.Decimal
	WasteStrategy   WasteStrategy
	WasteFactor     decimal.Decimal
	EffectiveArea   decimal.Decimal
	SlabCount       int
	MaterialCost    decimal.Decimal
	FixtureCost     decimal.Decimal
	BacksplashCost  decimal.Decimal
	LaborCost       decimal.Decimal
	TotalCost       decimal.Decimal
}

// ComponentSum adds the four cost components.
func (r Result) ComponentSum() decimal.Decimal {
	return r.MaterialCost.Add(r.FixtureCost).Add(r.BacksplashCost).Add(r.LaborCost)
}
