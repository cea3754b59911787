package pricing

import (
	"sort"
	"time"
)

// StaticSourceName identifies the embedded fallback table.
const StaticSourceName = "static"

// RowIssue records a non-fatal problem found while parsing one sheet row.
type RowIssue struct {
	Row     int    `json:"row"`
	Key     string `json:"key,omitempty"`
	Column  string `json:"column,omitempty"`
	Problem string `json:"problem"`
}

// Snapshot is an immutable view of the catalog. It is never modified after
// construction; a refresh builds and installs a new one.
type Snapshot struct {
	entries   map[string]PricingEntry
	ordered   []PricingEntry
	source    string
	fetchedAt time.Time
	fallback  bool
	issues    []RowIssue
}

// NewSnapshot builds a snapshot. Entries are keyed by their normalized key and
// the first occurrence of a key wins.
func NewSnapshot(source string, fetchedAt time.Time, entries []PricingEntry, issues []RowIssue) *Snapshot {
	s := &Snapshot{
		entries:   make(map[string]PricingEntry, len(entries)),
		ordered:   make([]PricingEntry, 0, len(entries)),
		source:    source,
		fetchedAt: fetchedAt.UTC(),
		issues:    append([]RowIssue(nil), issues...),
	}
	for _, entry := range entries {
		entry.Key = NormalizeKey(entry.Key)
		if entry.Key == "" {
			continue
		}
		if _, exists := s.entries[entry.Key]; exists {
			continue
		}
		if entry.Family == "" {
			entry.Family = DetectFamily(entry.Key)
		}
		s.entries[entry.Key] = entry
		s.ordered = append(s.ordered, entry)
	}
	sort.Slice(s.ordered, func(i, j int) bool {
		return s.ordered[i].Key < s.ordered[j].Key
	})
	return s
}

// Lookup resolves key case-insensitively. When the key is unknown it returns
// DefaultEntry(key) and matched=false.
func (s *Snapshot) Lookup(key string) (PricingEntry, bool) {
	normalized := NormalizeKey(key)
	if s != nil {
		if entry, ok := s.entries[normalized]; ok {
			return entry, true
		}
	}
	return DefaultEntry(normalized), false
}

// Entries returns a copy of all entries sorted by key.
func (s *Snapshot) Entries() []PricingEntry {
	if s == nil {
		return nil
	}
	return append([]PricingEntry(nil), s.ordered...)
}

// Keys returns all normalized keys sorted.
func (s *Snapshot) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, len(s.ordered))
	for i, entry := range s.ordered {
		keys[i] = entry.Key
	}
	return keys
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ordered)
}

// Source names where the snapshot came from.
func (s *Snapshot) Source() string { return s.source }

// FetchedAt is when the snapshot was built.
func (s *Snapshot) FetchedAt() time.Time { return s.fetchedAt }

// Fallback reports whether this is the embedded static table.
func (s *Snapshot) Fallback() bool { return s.fallback }

// Issues returns the row issues recorded while parsing.
func (s *Snapshot) Issues() []RowIssue {
	return append([]RowIssue(nil), s.issues...)
}
