// Package domain holds the countertop cost estimator. Everything here is
// pure: no I/O, no clocks, no randomness.
package domain

import (
	"math"
	"strconv"
	"strings"

	"countertop_quote_backend/platform/apperr"
)

type EdgeTier string

const (
	EdgeStandard EdgeTier = "standard"
	EdgePremium  EdgeTier = "premium"
	EdgeCustom   EdgeTier = "custom"
)

type FixtureKind string

const (
	FixtureSink    FixtureKind = "sink"
	FixtureCooktop FixtureKind = "cooktop"
)

type FixtureTier string

const (
	FixtureStandard FixtureTier = "standard"
	FixturePremium  FixtureTier = "premium"
)

type JobType string

const (
	JobInstall     JobType = "install"
	JobSlabOnly    JobType = "slab_only"
	JobReplacement JobType = "replacement"
	JobRepair      JobType = "repair"
)

type WasteStrategy string

const (
	// WasteFlat adds a fixed allowance regardless of area.
	WasteFlat WasteStrategy = "flat"
	// WasteTiered adds a larger allowance for small jobs.
	WasteTiered WasteStrategy = "tiered"
)

// Fixture is a cut-out priced per unit.
type Fixture struct {
	Kind     FixtureKind
	Tier     FixtureTier
	Quantity int
}

// MaxAreaUnits is the largest countertop area accepted, in square feet.
const MaxAreaUnits = 100000

// Request is the input to Compute.
type Request struct {
	AreaUnits           float64
	MaterialKey         string
	DemolitionRequired  bool
	EdgeDetailTier      EdgeTier
	Fixtures            []Fixture
	BacksplashRequested bool
	// BacksplashRate overrides the policy rate when > 0.
	BacksplashRate float64
	JobType        JobType
	WasteStrategy  WasteStrategy
}

// Normalize canonicalises enum spellings and fills defaults, then validates.
// The returned error is always an apperr InvalidRequest listing every
// offending field.
func (r Request) Normalize() (Request, error) {
	var violations []apperr.FieldViolation

	if math.IsNaN(r.AreaUnits) || math.IsInf(r.AreaUnits, 0) || r.AreaUnits <= 0 {
		violations = append(violations, apperr.FieldViolation{Field: "areaUnits", Rule: "must be a positive number"})
	} else if r.AreaUnits > MaxAreaUnits {
		violations = append(violations, apperr.FieldViolation{Field: "areaUnits", Rule: "must not exceed 100000"})
	}

	r.MaterialKey = strings.TrimSpace(r.MaterialKey)

	r.EdgeDetailTier = EdgeTier(normalizeWord(string(r.EdgeDetailTier)))
	switch r.EdgeDetailTier {
	case "":
		r.EdgeDetailTier = EdgeStandard
	case EdgeStandard, EdgePremium, EdgeCustom:
	default:
		violations = append(violations, apperr.FieldViolation{Field: "edgeDetailTier", Rule: "must be one of standard, premium, custom"})
	}

	r.JobType = NormalizeJobType(string(r.JobType))
	switch r.JobType {
	case JobInstall, JobSlabOnly, JobReplacement, JobRepair:
	default:
		violations = append(violations, apperr.FieldViolation{Field: "jobType", Rule: "must be one of install, slab_only, replacement, repair"})
	}

	r.WasteStrategy = WasteStrategy(normalizeWord(string(r.WasteStrategy)))
	switch r.WasteStrategy {
	case "":
		r.WasteStrategy = WasteFlat
	case WasteFlat, WasteTiered:
	default:
		violations = append(violations, apperr.FieldViolation{Field: "wasteStrategy", Rule: "must be one of flat, tiered"})
	}

	if math.IsNaN(r.BacksplashRate) || math.IsInf(r.BacksplashRate, 0) || r.BacksplashRate < 0 {
		violations = append(violations, apperr.FieldViolation{Field: "backsplashRate", Rule: "must not be negative"})
	}

	fixtures := make([]Fixture, 0, len(r.Fixtures))
	for i, f := range r.Fixtures {
		f.Kind = FixtureKind(normalizeWord(string(f.Kind)))
		f.Tier = FixtureTier(normalizeWord(string(f.Tier)))
		if f.Tier == "" {
			f.Tier = FixtureStandard
		}
		field := "fixtures[" + strconv.Itoa(i) + "]"
		if f.Kind != FixtureSink && f.Kind != FixtureCooktop {
			violations = append(violations, apperr.FieldViolation{Field: field + ".kind", Rule: "must be one of sink, cooktop"})
		}
		if f.Tier != FixtureStandard && f.Tier != FixturePremium {
			violations = append(violations, apperr.FieldViolation{Field: field + ".tier", Rule: "must be one of standard, premium"})
		}
		if f.Quantity < 0 {
			violations = append(violations, apperr.FieldViolation{Field: field + ".quantity", Rule: "must not be negative"})
		}
		fixtures = append(fixtures, f)
	}
	r.Fixtures = fixtures

	if len(violations) > 0 {
		return r, apperr.InvalidRequest("invalid estimate request", violations...)
	}
	return r, nil
}

// NormalizeJobType maps loose spellings ("Slab-Only", "slab only") onto the
// canonical values. Empty means install.
func NormalizeJobType(raw string) JobType {
	word := normalizeWord(raw)
	switch word {
	case "":
		return JobInstall
	case "slab_only", "slabonly", "slab":
		return JobSlabOnly
	}
	return JobType(word)
}

func normalizeWord(raw string) string {
	word := strings.ToLower(strings.TrimSpace(raw))
	word = strings.NewReplacer("-", "_", " ", "_").Replace(word)
	for strings.Contains(word, "__") {
		word = strings.ReplaceAll(word, "__", "_")
	}
	return word
}
