package pricing

import (
	"fmt"
	"strings"
)

// Summary renders the snapshot as a one-line price list for language-model
// context, e.g. "calacatta quartz: $45.00/sq ft (slab 55 sq ft), ...".
func Summary(s *Snapshot) string {
	entries := s.Entries()
	if len(entries) == 0 {
		return ""
	}

	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		parts = append(parts, fmt.Sprintf("%s: $%s/sq ft (slab %s sq ft)",
			entry.Key, entry.CostPerArea.StringFixed(2), entry.UnitsPerSlab.String()))
	}
	return strings.Join(parts, ", ")
}
