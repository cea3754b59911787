package pricing

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed fallback_catalog.yaml
var fallbackCatalogYAML []byte

type fallbackFile struct {
	Entries []fallbackRow `yaml:"entries"`
}

type fallbackRow struct {
	Key          string `yaml:"key"`
	Family       string `yaml:"family"`
	CostPerArea  string `yaml:"costPerArea"`
	UnitsPerSlab string `yaml:"unitsPerSlab"`
}

// StaticSnapshot returns the embedded fallback table. The table is part of
// the binary, so a decode failure is a build defect and panics.
func StaticSnapshot() *Snapshot {
	snapshot, err := decodeStatic(fallbackCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("pricing: embedded fallback catalog: %v", err))
	}
	return snapshot
}

func decodeStatic(data []byte) (*Snapshot, error) {
	var file fallbackFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	entries := make([]PricingEntry, 0, len(file.Entries))
	for _, row := range file.Entries {
		cost, problem := parseAmount(row.CostPerArea)
		if problem != "" {
			return nil, fmt.Errorf("%s: costPerArea: %s", row.Key, problem)
		}
		slab, problem := parseAmount(row.UnitsPerSlab)
		if problem != "" || !slab.IsPositive() {
			return nil, fmt.Errorf("%s: unitsPerSlab must be positive", row.Key)
		}
		entries = append(entries, PricingEntry{
			Key:          row.Key,
			Family:       row.Family,
			CostPerArea:  cost,
			UnitsPerSlab: slab,
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries")
	}

	snapshot := NewSnapshot(StaticSourceName, time.Time{}, entries, nil)
	snapshot.fallback = true
	return snapshot, nil
}
