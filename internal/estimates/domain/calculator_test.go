package domain

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"countertop_quote_backend/internal/pricing"
	"countertop_quote_backend/platform/apperr"

	"github.com/shopspring/decimal"
)

func testCatalog() *pricing.Snapshot {
	return pricing.NewSnapshot("test", time.Time{}, []pricing.PricingEntry{
		{Key: "calacatta quartz", CostPerArea: decimal.NewFromInt(45), UnitsPerSlab: decimal.NewFromInt(55)},
		{Key: "absolute black granite", CostPerArea: decimal.NewFromInt(52), UnitsPerSlab: decimal.NewFromInt(20)},
	}, nil)
}

func mustCompute(t *testing.T, req Request) Result {
	t.Helper()
	result, err := Compute(req, testCatalog(), DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func assertMoney(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if got.StringFixed(2) != want {
		t.Fatalf("expected %s %s, got %s", name, want, got.StringFixed(2))
	}
}

func TestCompute_BaselineInstall(t *testing.T) {
	result := mustCompute(t, Request{
		AreaUnits:      30,
		MaterialKey:    "calacatta quartz",
		EdgeDetailTier: EdgeStandard,
		JobType:        JobInstall,
	})

	if !result.MaterialMatched {
		t.Fatalf("expected material to match")
	}
	assertMoney(t, "materialCost", result.MaterialCost, "1350.00")
	assertMoney(t, "fixtureCost", result.FixtureCost, "0.00")
	assertMoney(t, "backsplashCost", result.BacksplashCost, "0.00")
	assertMoney(t, "laborCost", result.LaborCost, "1755.00")
	assertMoney(t, "totalCost", result.TotalCost, "3105.00")
	if !result.EffectiveArea.Equal(decimal.NewFromInt(36)) {
		t.Fatalf("expected effectiveArea 36, got %s", result.EffectiveArea)
	}
	if result.SlabCount != 1 {
		t.Fatalf("expected 1 slab, got %d", result.SlabCount)
	}
	if result.WasteStrategy != WasteFlat {
		t.Fatalf("expected flat waste by default, got %s", result.WasteStrategy)
	}
}

func TestCompute_AllOptions(t *testing.T) {
	result := mustCompute(t, Request{
		AreaUnits:          30,
		MaterialKey:        "Calacatta Quartz",
		DemolitionRequired: true,
		EdgeDetailTier:     "Premium",
		Fixtures: []Fixture{
			{Kind: FixtureSink, Tier: FixturePremium, Quantity: 2},
			{Kind: FixtureCooktop, Quantity: 1},
		},
		BacksplashRequested: true,
		JobType:             "slab-only",
	})

	// 30 * 45 * 1.10 * 1.05
	assertMoney(t, "materialCost", result.MaterialCost, "1559.25")
	assertMoney(t, "fixtureCost", result.FixtureCost, "420.00")
	assertMoney(t, "backsplashCost", result.BacksplashCost, "600.00")
	assertMoney(t, "laborCost", result.LaborCost, "1822.50")
	assertMoney(t, "totalCost", result.TotalCost, "4401.75")
}

func TestCompute_BacksplashOverrideOnlyWhenRequested(t *testing.T) {
	with := mustCompute(t, Request{AreaUnits: 30, MaterialKey: "calacatta quartz", BacksplashRequested: true, BacksplashRate: 25.5})
	assertMoney(t, "backsplashCost", with.BacksplashCost, "765.00")

	without := mustCompute(t, Request{AreaUnits: 30, MaterialKey: "calacatta quartz", BacksplashRate: 25.5})
	assertMoney(t, "backsplashCost", without.BacksplashCost, "0.00")
}

func TestCompute_EdgeTiers(t *testing.T) {
	tests := []struct {
		tier EdgeTier
		want string
	}{
		{tier: "", want: "1350.00"},
		{tier: EdgeStandard, want: "1350.00"},
		{tier: EdgePremium, want: "1417.50"},
		{tier: EdgeCustom, want: "1485.00"},
	}
	for _, tt := range tests {
		result := mustCompute(t, Request{AreaUnits: 30, MaterialKey: "calacatta quartz", EdgeDetailTier: tt.tier})
		assertMoney(t, "materialCost["+string(tt.tier)+"]", result.MaterialCost, tt.want)
	}
}

func TestCompute_LaborMarkupByJobType(t *testing.T) {
	tests := []struct {
		job  JobType
		want string
	}{
		{job: JobInstall, want: "1755.00"},
		{job: JobReplacement, want: "1755.00"},
		{job: JobRepair, want: "1755.00"},
		{job: JobSlabOnly, want: "1822.50"},
		{job: "Slab Only", want: "1822.50"},
	}
	for _, tt := range tests {
		result := mustCompute(t, Request{AreaUnits: 30, JobType: tt.job})
		assertMoney(t, "laborCost["+string(tt.job)+"]", result.LaborCost, tt.want)
	}
}

func TestCompute_UnmatchedMaterialUsesDefaults(t *testing.T) {
	result := mustCompute(t, Request{AreaUnits: 10, MaterialKey: "unobtainium"})

	if result.MaterialMatched {
		t.Fatalf("expected matched=false")
	}
	assertMoney(t, "unitCost", result.UnitCost, "50.00")
	if !result.SlabArea.Equal(decimal.NewFromInt(55)) {
		t.Fatalf("expected default slab area 55, got %s", result.SlabArea)
	}
	assertMoney(t, "materialCost", result.MaterialCost, "500.00")
}

func TestCompute_NilCatalogUsesDefaults(t *testing.T) {
	result, err := Compute(Request{AreaUnits: 10, MaterialKey: "quartz"}, nil, DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MaterialMatched || result.MaterialFamily != "quartz" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCompute_TieredWasteBrackets(t *testing.T) {
	tests := []struct {
		area      float64
		factor    string
		effective string
		slabs     int
	}{
		{area: 15, factor: "0.5", effective: "22.5", slabs: 2},
		{area: 19.99, factor: "0.5", effective: "29.985", slabs: 2},
		{area: 20, factor: "0.35", effective: "27", slabs: 2},
		{area: 39, factor: "0.35", effective: "52.65", slabs: 3},
		{area: 40, factor: "0.2", effective: "48", slabs: 3},
	}
	for _, tt := range tests {
		result := mustCompute(t, Request{AreaUnits: tt.area, MaterialKey: "absolute black granite", WasteStrategy: WasteTiered})
		if !result.WasteFactor.Equal(decimal.RequireFromString(tt.factor)) {
			t.Fatalf("area %v: expected waste %s, got %s", tt.area, tt.factor, result.WasteFactor)
		}
		if !result.EffectiveArea.Equal(decimal.RequireFromString(tt.effective)) {
			t.Fatalf("area %v: expected effective area %s, got %s", tt.area, tt.effective, result.EffectiveArea)
		}
		if result.SlabCount != tt.slabs {
			t.Fatalf("area %v: expected %d slabs, got %d", tt.area, tt.slabs, result.SlabCount)
		}
	}
}

func TestCompute_RoundsEachComponentHalfAwayFromZero(t *testing.T) {
	result := mustCompute(t, Request{AreaUnits: 12.345, MaterialKey: "calacatta quartz"})

	// 12.345 * 45 = 555.525
	assertMoney(t, "materialCost", result.MaterialCost, "555.53")
	// 12.345 * 45 * 1.30 = 722.1825
	assertMoney(t, "laborCost", result.LaborCost, "722.18")
	assertMoney(t, "totalCost", result.TotalCost, "1277.71")
}

func TestCompute_TotalIsExactSumOfComponents(t *testing.T) {
	areas := []float64{0.01, 1, 7.77, 12.345, 33.333, 99.995, 250}
	for _, area := range areas {
		for _, strategy := range []WasteStrategy{WasteFlat, WasteTiered} {
			result := mustCompute(t, Request{
				AreaUnits:           area,
				MaterialKey:         "calacatta quartz",
				DemolitionRequired:  true,
				EdgeDetailTier:      EdgeCustom,
				Fixtures:            []Fixture{{Kind: FixtureSink, Tier: FixturePremium, Quantity: 3}},
				BacksplashRequested: true,
				BacksplashRate:      17.333,
				WasteStrategy:       strategy,
			})
			if !result.TotalCost.Equal(result.ComponentSum()) {
				t.Fatalf("area %v: total %s != components %s", area, result.TotalCost, result.ComponentSum())
			}
			if result.SlabCount < 1 {
				t.Fatalf("area %v: slab count %d below 1", area, result.SlabCount)
			}
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	req := Request{
		AreaUnits:           42.42,
		MaterialKey:         "absolute black granite",
		DemolitionRequired:  true,
		Fixtures:            []Fixture{{Kind: FixtureCooktop, Tier: FixturePremium, Quantity: 1}},
		BacksplashRequested: true,
	}
	first := mustCompute(t, req)
	for i := 0; i < 20; i++ {
		if again := mustCompute(t, req); !reflect.DeepEqual(first, again) {
			t.Fatalf("result changed between calls:\n%+v\n%+v", first, again)
		}
	}
}

func TestCompute_SlabCountMonotonicInArea(t *testing.T) {
	previous := 0
	for area := 0.5; area <= 400; area += 0.5 {
		result := mustCompute(t, Request{AreaUnits: area, MaterialKey: "absolute black granite"})
		if result.SlabCount < previous {
			t.Fatalf("slab count dropped from %d to %d at area %v", previous, result.SlabCount, area)
		}
		previous = result.SlabCount
	}
}

func TestCompute_MaximumAreaIsAccepted(t *testing.T) {
	result := mustCompute(t, Request{AreaUnits: MaxAreaUnits, MaterialKey: "absolute black granite"})
	// 100000 * 1.20 / 20
	if result.SlabCount != 6000 {
		t.Fatalf("expected 6000 slabs, got %d", result.SlabCount)
	}
}

func TestSlabCount_SaturatesInsteadOfOverflowing(t *testing.T) {
	slab := decimal.NewFromInt(55)
	previous := 0
	for _, area := range []string{"1e6", "1e12", "1e20", "1e22", "1e30"} {
		count := SlabCount(decimal.RequireFromString(area), slab)
		if count < previous {
			t.Fatalf("slab count dropped from %d to %d at area %s", previous, count, area)
		}
		previous = count
	}
	if previous != math.MaxInt32 {
		t.Fatalf("expected saturation at %d, got %d", math.MaxInt32, previous)
	}
}

func TestCompute_InvalidRequests(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{name: "zero area", req: Request{AreaUnits: 0}, field: "areaUnits"},
		{name: "negative area", req: Request{AreaUnits: -5}, field: "areaUnits"},
		{name: "area above maximum", req: Request{AreaUnits: MaxAreaUnits + 1}, field: "areaUnits"},
		{name: "huge area", req: Request{AreaUnits: 1e30}, field: "areaUnits"},
		{name: "negative quantity", req: Request{AreaUnits: 10, Fixtures: []Fixture{{Kind: FixtureSink, Quantity: -1}}}, field: "fixtures[0].quantity"},
		{name: "unknown fixture", req: Request{AreaUnits: 10, Fixtures: []Fixture{{Kind: "faucet", Quantity: 1}}}, field: "fixtures[0].kind"},
		{name: "negative backsplash rate", req: Request{AreaUnits: 10, BacksplashRate: -1}, field: "backsplashRate"},
		{name: "unknown edge", req: Request{AreaUnits: 10, EdgeDetailTier: "ogee"}, field: "edgeDetailTier"},
		{name: "unknown job", req: Request{AreaUnits: 10, JobType: "demolish"}, field: "jobType"},
		{name: "unknown waste", req: Request{AreaUnits: 10, WasteStrategy: "none"}, field: "wasteStrategy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.req, testCatalog(), DefaultPolicy())
			if !apperr.Is(err, apperr.KindInvalidRequest) {
				t.Fatalf("expected InvalidRequest, got %v", err)
			}
			var appErr *apperr.Error
			if !errors.As(err, &appErr) {
				t.Fatalf("expected *apperr.Error")
			}
			violations, _ := appErr.Details.([]apperr.FieldViolation)
			found := false
			for _, v := range violations {
				if v.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected violation on %s, got %+v", tt.field, appErr.Details)
			}
		})
	}
}
