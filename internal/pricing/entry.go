// Package pricing owns the countertop pricing catalog: parsing the published
// pricing sheet, holding an immutable snapshot of it and refreshing that
// snapshot without ever leaving callers without prices.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Default values used for unmatched keys and malformed cells.
var (
	DefaultCostPerArea  = decimal.NewFromInt(50)
	DefaultUnitsPerSlab = decimal.NewFromInt(55)
)

// PricingEntry is one priced material.
type PricingEntry struct {
	Key          string          `json:"key" yaml:"key"`
	Family       string          `json:"family,omitempty" yaml:"family"`
	CostPerArea  decimal.Decimal `json:"costPerArea" yaml:"costPerArea"`
	UnitsPerSlab decimal.Decimal `json:"unitsPerSlab" yaml:"unitsPerSlab"`
}

// DefaultEntry is returned for keys that are not in the catalog.
func DefaultEntry(key string) PricingEntry {
	normalized := NormalizeKey(key)
	return PricingEntry{
		Key:          normalized,
		Family:       DetectFamily(normalized),
		CostPerArea:  DefaultCostPerArea,
		UnitsPerSlab: DefaultUnitsPerSlab,
	}
}

// NormalizeKey lower-cases, trims and collapses inner whitespace.
func NormalizeKey(key string) string {
	return strings.Join(strings.Fields(strings.ToLower(key)), " ")
}
