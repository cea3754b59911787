package pricing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptySheet       = errors.New("pricing sheet has no header row")
	ErrMissingKeyColumn = errors.New("pricing sheet has no key column")
	ErrNoUsableRows     = errors.New("pricing sheet has no usable rows")
)

// Columns is the header contract of the pricing sheet.
type Columns struct {
	// Key columns are tried in order; the first non-blank cell names the row.
	Key      []string
	Cost     string
	Slab     string
	Material string
}

// DefaultColumns matches the published sheet layout.
func DefaultColumns() Columns {
	return Columns{
		Key:      []string{"ColorName", "Name"},
		Cost:     "CostPerArea",
		Slab:     "UnitsPerSlab",
		Material: "Material",
	}
}

type columnIndex struct {
	key      []int
	cost     int
	slab     int
	material int
}

// ParseCSV parses a pricing sheet. Bad cells degrade to defaults and are
// reported as RowIssues; only a missing header, a missing key column or a
// sheet without a single usable row is an error.
func ParseCSV(r io.Reader, cols Columns) ([]PricingEntry, []RowIssue, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptySheet
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	idx := indexColumns(header, cols)
	if len(idx.key) == 0 {
		return nil, nil, ErrMissingKeyColumn
	}

	var (
		entries []PricingEntry
		issues  []RowIssue
		seen    = make(map[string]int)
		row     = 1
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			issues = append(issues, RowIssue{Row: row, Problem: err.Error()})
			continue
		}

		key := NormalizeKey(firstCell(record, idx.key))
		if key == "" {
			if !blankRecord(record) {
				issues = append(issues, RowIssue{Row: row, Problem: "blank key"})
			}
			continue
		}
		if firstRow, dup := seen[key]; dup {
			issues = append(issues, RowIssue{Row: row, Key: key, Problem: fmt.Sprintf("duplicate of row %d", firstRow)})
			continue
		}
		seen[key] = row

		entry := PricingEntry{Key: key}

		cost, problem := parseAmount(cell(record, idx.cost))
		if problem != "" || cost.IsNegative() {
			if problem == "" {
				problem = "negative value"
			}
			issues = append(issues, RowIssue{Row: row, Key: key, Column: cols.Cost, Problem: problem})
			cost = DefaultCostPerArea
		}
		entry.CostPerArea = cost

		slab, problem := parseAmount(cell(record, idx.slab))
		if problem != "" || !slab.IsPositive() {
			if problem == "" {
				problem = "non-positive value"
			}
			issues = append(issues, RowIssue{Row: row, Key: key, Column: cols.Slab, Problem: problem})
			slab = DefaultUnitsPerSlab
		}
		entry.UnitsPerSlab = slab

		entry.Family = DetectFamily(cell(record, idx.material))
		if entry.Family == "" {
			entry.Family = DetectFamily(key)
		}

		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, issues, ErrNoUsableRows
	}
	return entries, issues, nil
}

func indexColumns(header []string, cols Columns) columnIndex {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, exists := positions[name]; !exists {
			positions[name] = i
		}
	}
	find := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := positions[strings.ToLower(strings.TrimSpace(name))]; ok {
			return i
		}
		return -1
	}

	idx := columnIndex{
		cost:     find(cols.Cost),
		slab:     find(cols.Slab),
		material: find(cols.Material),
	}
	for _, name := range cols.Key {
		if i := find(name); i >= 0 {
			idx.key = append(idx.key, i)
		}
	}
	return idx
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func firstCell(record []string, indexes []int) string {
	for _, i := range indexes {
		if value := cell(record, i); value != "" {
			return value
		}
	}
	return ""
}

func blankRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

// parseAmount accepts "45", "45.00", "$1,045.50". It returns a problem
// description instead of an error so callers can record it and move on.
func parseAmount(raw string) (decimal.Decimal, string) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	if cleaned == "" {
		return decimal.Zero, "missing value"
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Sprintf("malformed number %q", raw)
	}
	return value, ""
}
