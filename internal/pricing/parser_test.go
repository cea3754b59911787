package pricing

import (
	"errors"
	"strings"
	"testing"
)

func TestParseCSV_DefaultsBadCellsWithoutAbortingRefresh(t *testing.T) {
	sheet := strings.Join([]string{
		"ColorName,Name,CostPerArea,UnitsPerSlab,Material",
		"Calacatta Quartz,,45,55,Quartz",
		",Black Galaxy,$48.50,50,Granite",
		"Mystery,,abc,-3,",
		"calacatta quartz,,99,99,Quartz",
		",,,,",
		"Negative,,-1,40,",
	}, "\n")

	entries, issues, err := ParseCSV(strings.NewReader(sheet), DefaultColumns())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	byKey := make(map[string]PricingEntry)
	for _, entry := range entries {
		byKey[entry.Key] = entry
	}

	calacatta := byKey["calacatta quartz"]
	if calacatta.CostPerArea.StringFixed(2) != "45.00" || calacatta.UnitsPerSlab.String() != "55" {
		t.Fatalf("duplicate row must not overwrite the first, got %+v", calacatta)
	}
	if calacatta.Family != "quartz" {
		t.Fatalf("expected quartz family, got %q", calacatta.Family)
	}

	galaxy, ok := byKey["black galaxy"]
	if !ok {
		t.Fatalf("expected Name column to be used when ColorName is blank")
	}
	if galaxy.CostPerArea.StringFixed(2) != "48.50" || galaxy.Family != "granite" {
		t.Fatalf("unexpected black galaxy entry %+v", galaxy)
	}

	mystery := byKey["mystery"]
	if !mystery.CostPerArea.Equal(DefaultCostPerArea) || !mystery.UnitsPerSlab.Equal(DefaultUnitsPerSlab) {
		t.Fatalf("expected defaults for malformed cells, got %+v", mystery)
	}
	if !byKey["negative"].CostPerArea.Equal(DefaultCostPerArea) {
		t.Fatalf("expected negative cost to default")
	}

	// mystery cost, mystery slab, duplicate, negative cost
	if len(issues) != 4 {
		t.Fatalf("expected 4 row issues, got %d: %+v", len(issues), issues)
	}
}

func TestParseCSV_HeaderMatchingIsCaseInsensitive(t *testing.T) {
	sheet := " colorname , costperarea ,UNITSPERSLAB\nWhite Quartz,40,55\n"

	entries, _, err := ParseCSV(strings.NewReader(sheet), DefaultColumns())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Key != "white quartz" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestParseCSV_StructuralFailures(t *testing.T) {
	tests := []struct {
		name  string
		sheet string
		want  error
	}{
		{name: "empty", sheet: "", want: ErrEmptySheet},
		{name: "no key column", sheet: "Foo,CostPerArea\nx,1\n", want: ErrMissingKeyColumn},
		{name: "header only", sheet: "ColorName,CostPerArea,UnitsPerSlab\n", want: ErrNoUsableRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseCSV(strings.NewReader(tt.sheet), DefaultColumns())
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseCSV_CustomColumns(t *testing.T) {
	sheet := "Product,Price,Slab\nSoapstone Classic,85,40\n"
	cols := Columns{Key: []string{"Product"}, Cost: "Price", Slab: "Slab"}

	entries, issues, err := ParseCSV(strings.NewReader(sheet), cols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
	if entries[0].CostPerArea.StringFixed(2) != "85.00" || entries[0].Family != "soapstone" {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
}
