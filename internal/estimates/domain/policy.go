package domain

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FixtureRate is the per-unit price of a fixture cut-out.
type FixtureRate struct {
	Standard decimal.Decimal `yaml:"standard"`
	Premium  decimal.Decimal `yaml:"premium"`
}

// WasteBracket applies Factor to areas strictly below Below.
type WasteBracket struct {
	Below  decimal.Decimal `yaml:"below"`
	Factor decimal.Decimal `yaml:"factor"`
}

// Policy holds every pricing constant the estimator uses.
type Policy struct {
	DemolitionMultiplier decimal.Decimal              `yaml:"demolitionMultiplier"`
	EdgeMultipliers      map[EdgeTier]decimal.Decimal `yaml:"edgeMultipliers"`
	FixtureRates         map[FixtureKind]FixtureRate  `yaml:"fixtureRates"`
	BacksplashRate       decimal.Decimal              `yaml:"backsplashRate"`
	FlatWaste            decimal.Decimal              `yaml:"flatWaste"`
	// TieredWaste brackets are checked in order; TieredWasteDefault applies
	// when no bracket matches.
	TieredWaste        []WasteBracket              `yaml:"tieredWaste"`
	TieredWasteDefault decimal.Decimal             `yaml:"tieredWasteDefault"`
	BaseLaborRate      decimal.Decimal             `yaml:"baseLaborRate"`
	LaborMarkups       map[JobType]decimal.Decimal `yaml:"laborMarkups"`
	DefaultLaborMarkup decimal.Decimal             `yaml:"defaultLaborMarkup"`
}

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// DefaultPolicy returns the standard shop rates.
func DefaultPolicy() Policy {
	return Policy{
		DemolitionMultiplier: d("1.10"),
		EdgeMultipliers: map[EdgeTier]decimal.Decimal{
			EdgeStandard: d("1.00"),
			EdgePremium:  d("1.05"),
			EdgeCustom:   d("1.10"),
		},
		FixtureRates: map[FixtureKind]FixtureRate{
			FixtureSink:    {Standard: d("100"), Premium: d("150")},
			FixtureCooktop: {Standard: d("120"), Premium: d("160")},
		},
		BacksplashRate: d("20"),
		FlatWaste:      d("0.20"),
		TieredWaste: []WasteBracket{
			{Below: d("20"), Factor: d("0.50")},
			{Below: d("40"), Factor: d("0.35")},
		},
		TieredWasteDefault: d("0.20"),
		BaseLaborRate:      d("45"),
		LaborMarkups: map[JobType]decimal.Decimal{
			JobSlabOnly: d("1.35"),
		},
		DefaultLaborMarkup: d("1.30"),
	}
}

// LoadPolicy overlays the YAML file at path onto DefaultPolicy. Keys absent
// from the file keep their default values.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read pricing policy: %w", err)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return Policy{}, fmt.Errorf("decode pricing policy: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}
	return policy, nil
}

// Validate rejects negative rates and unsorted waste brackets.
func (p Policy) Validate() error {
	checks := map[string]decimal.Decimal{
		"demolitionMultiplier": p.DemolitionMultiplier,
		"backsplashRate":       p.BacksplashRate,
		"flatWaste":            p.FlatWaste,
		"tieredWasteDefault":   p.TieredWasteDefault,
		"baseLaborRate":        p.BaseLaborRate,
		"defaultLaborMarkup":   p.DefaultLaborMarkup,
	}
	for tier, m := range p.EdgeMultipliers {
		checks["edgeMultipliers."+string(tier)] = m
	}
	for job, m := range p.LaborMarkups {
		checks["laborMarkups."+string(job)] = m
	}
	for kind, rate := range p.FixtureRates {
		checks["fixtureRates."+string(kind)+".standard"] = rate.Standard
		checks["fixtureRates."+string(kind)+".premium"] = rate.Premium
	}
	for name, value := range checks {
		if value.IsNegative() {
			return fmt.Errorf("pricing policy: %s must not be negative", name)
		}
	}

	for i := 1; i < len(p.TieredWaste); i++ {
		if !p.TieredWaste[i].Below.GreaterThan(p.TieredWaste[i-1].Below) {
			return fmt.Errorf("pricing policy: tieredWaste brackets must be in ascending order")
		}
	}
	for _, bracket := range p.TieredWaste {
		if bracket.Factor.IsNegative() {
			return fmt.Errorf("pricing policy: tieredWaste factor must not be negative")
		}
	}
	return nil
}

// WasteFactor returns the allowance for area under strategy.
func (p Policy) WasteFactor(strategy WasteStrategy, area decimal.Decimal) decimal.Decimal {
	if strategy != WasteTiered {
		return p.FlatWaste
	}
	for _, bracket := range p.TieredWaste {
		if area.LessThan(bracket.Below) {
			return bracket.Factor
		}
	}
	return p.TieredWasteDefault
}

// EdgeMultiplier returns the multiplier for tier, 1 when unknown.
func (p Policy) EdgeMultiplier(tier EdgeTier) decimal.Decimal {
	if m, ok := p.EdgeMultipliers[tier]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

// LaborMarkup returns the markup for job.
func (p Policy) LaborMarkup(job JobType) decimal.Decimal {
	if m, ok := p.LaborMarkups[job]; ok {
		return m
	}
	return p.DefaultLaborMarkup
}

// FixtureUnitPrice returns the per-unit price for a fixture.
func (p Policy) FixtureUnitPrice(kind FixtureKind, tier FixtureTier) decimal.Decimal {
	rate := p.FixtureRates[kind]
	if tier == FixturePremium {
		return rate.Premium
	}
	return rate.Standard
}
