package pricing

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSnapshotLookup_CaseInsensitiveAndTrimmed(t *testing.T) {
	s := NewSnapshot("test", time.Now(), []PricingEntry{
		{Key: "Calacatta  Quartz", CostPerArea: decimal.NewFromInt(45), UnitsPerSlab: decimal.NewFromInt(55)},
	}, nil)

	entry, matched := s.Lookup("  CALACATTA quartz ")
	if !matched {
		t.Fatalf("expected match")
	}
	if entry.Key != "calacatta quartz" || entry.Family != "quartz" {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestSnapshotLookup_UnmatchedReturnsDefault(t *testing.T) {
	s := NewSnapshot("test", time.Now(), nil, nil)

	entry, matched := s.Lookup("unobtainium")
	if matched {
		t.Fatalf("expected matched=false")
	}
	if entry.CostPerArea.StringFixed(2) != "50.00" || entry.UnitsPerSlab.String() != "55" {
		t.Fatalf("expected default 50.00/55, got %s/%s", entry.CostPerArea, entry.UnitsPerSlab)
	}

	var nilSnapshot *Snapshot
	if _, matched := nilSnapshot.Lookup("quartz"); matched {
		t.Fatalf("nil snapshot must not match")
	}
}

func TestStaticSnapshot_CoversMajorFamilies(t *testing.T) {
	s := StaticSnapshot()
	if !s.Fallback() || s.Source() != StaticSourceName {
		t.Fatalf("expected static fallback snapshot")
	}

	families := make(map[string]bool)
	for _, entry := range s.Entries() {
		families[entry.Family] = true
		if !entry.UnitsPerSlab.IsPositive() || entry.CostPerArea.IsNegative() {
			t.Fatalf("invalid static entry %+v", entry)
		}
	}
	for _, family := range []string{"quartz", "granite", "porcelain"} {
		if !families[family] {
			t.Fatalf("static table missing %s", family)
		}
		if _, matched := s.Lookup(family); !matched {
			t.Fatalf("static table missing generic %s row", family)
		}
	}

	entry, _ := s.Lookup("calacatta quartz")
	if entry.CostPerArea.StringFixed(2) != "45.00" || entry.UnitsPerSlab.String() != "55" {
		t.Fatalf("unexpected calacatta quartz entry %+v", entry)
	}
}

func TestDetectFamily_PrefersQuartzite(t *testing.T) {
	if got := DetectFamily("Taj Mahal Quartzite"); got != "quartzite" {
		t.Fatalf("expected quartzite, got %q", got)
	}
	if got := DetectFamily("walnut butcher block"); got != "" {
		t.Fatalf("expected no family, got %q", got)
	}
}

func TestSummary(t *testing.T) {
	s := NewSnapshot("test", time.Now(), []PricingEntry{
		{Key: "granite", CostPerArea: decimal.NewFromInt(40), UnitsPerSlab: decimal.NewFromInt(50)},
		{Key: "calacatta quartz", CostPerArea: decimal.RequireFromString("45.5"), UnitsPerSlab: decimal.NewFromInt(55)},
	}, nil)

	got := Summary(s)
	want := "calacatta quartz: $45.50/sq ft (slab 55 sq ft), granite: $40.00/sq ft (slab 50 sq ft)"
	if got != want {
		t.Fatalf("unexpected summary:\n got %q\nwant %q", got, want)
	}
	if !strings.Contains(Summary(StaticSnapshot()), "porcelain") {
		t.Fatalf("expected static summary to mention porcelain")
	}
}
