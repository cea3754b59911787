package domain

import (
	"math"

	"countertop_quote_backend/internal/pricing"

	"github.com/shopspring/decimal"
)

// Catalog resolves a material key to its price. Lookup never fails; an
// unknown key yields a default entry and matched=false.
type Catalog interface {
	Lookup(key string) (entry pricing.PricingEntry, matched bool)
}

// Compute prices a countertop job. The only error it returns is an
// apperr InvalidRequest for bad input.
func Compute(req Request, catalog Catalog, policy Policy) (Result, error) {
	req, err := req.Normalize()
	if err != nil {
		return Result{}, err
	}

	var (
		entry   pricing.PricingEntry
		matched bool
	)
	if catalog != nil {
		entry, matched = catalog.Lookup(req.MaterialKey)
	} else {
		entry = pricing.DefaultEntry(req.MaterialKey)
	}

	area := decimal.NewFromFloat(req.AreaUnits)

	materialCost := area.Mul(entry.CostPerArea)
	if req.DemolitionRequired {
		materialCost = materialCost.Mul(policy.DemolitionMultiplier)
	}
	materialCost = materialCost.Mul(policy.EdgeMultiplier(req.EdgeDetailTier))

	fixtureCost := decimal.Zero
	for _, f := range req.Fixtures {
		fixtureCost = fixtureCost.Add(policy.FixtureUnitPrice(f.Kind, f.Tier).Mul(decimal.NewFromInt(int64(f.Quantity))))
	}

	backsplashCost := decimal.Zero
	if req.BacksplashRequested {
		rate := policy.BacksplashRate
		if req.BacksplashRate > 0 {
			rate = decimal.NewFromFloat(req.BacksplashRate)
		}
		backsplashCost = area.Mul(rate)
	}

	wasteFactor := policy.WasteFactor(req.WasteStrategy, area)
	effectiveArea := area.Mul(decimal.NewFromInt(1).Add(wasteFactor))
	slabCount := SlabCount(effectiveArea, entry.UnitsPerSlab)

	laborCost := area.Mul(policy.BaseLaborRate).Mul(policy.LaborMarkup(req.JobType))

	result := Result{
		MaterialKey:     entry.Key,
		MaterialFamily:  entry.Family,
		MaterialMatched: matched,
		UnitCost:        entry.CostPerArea,
		SlabArea:        entry.UnitsPerSlab,
		WasteStrategy:   req.WasteStrategy,
		WasteFactor:     wasteFactor,
		EffectiveArea:   effectiveArea,
		SlabCount:       slabCount,
		MaterialCost:    roundCents(materialCost),
		FixtureCost:     roundCents(fixtureCost),
		BacksplashCost:  roundCents(backsplashCost),
		LaborCost:       roundCents(laborCost),
	}
	result.TotalCost = result.ComponentSum()
	return result, nil
}

// SlabCount is ceil(effectiveArea / slabArea), never below 1 and saturating
// at math.MaxInt32. A non-positive slab area falls back to the default slab size.
func SlabCount(effectiveArea, slabArea decimal.Decimal) int {
	if !slabArea.IsPositive() {
		slabArea = pricing.DefaultUnitsPerSlab
	}
	quotient, remainder := effectiveArea.QuoRem(slabArea, 0)
	if quotient.GreaterThanOrEqual(maxSlabCount) {
		return math.MaxInt32
	}
	count := quotient.IntPart()
	if remainder.IsPositive() {
		count++
	}
	if count < 1 {
		return 1
	}
	return int(count)
}

var maxSlabCount = decimal.NewFromInt(math.MaxInt32)

// roundCents rounds half away from zero to two places.
func roundCents(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}
