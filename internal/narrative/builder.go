// Package narrative turns a computed estimate into a fixed-order prompt
// document and asks a language model to write the customer-facing prose.
package narrative

import (
	"fmt"
	"strings"

	"countertop_quote_backend/internal/estimates/domain"

	"github.com/shopspring/decimal"
)

// FailureMarker replaces the narrative when the writer fails.
const FailureMarker = "[narrative unavailable]"

const notProvided = "not provided"

// Field labels in document order.
const (
	LabelCustomer       = "Customer"
	LabelProject        = "Project"
	LabelLocation       = "Location"
	LabelJobType        = "Job Type"
	LabelMaterial       = "Material"
	LabelMatched        = "Material Matched"
	LabelArea           = "Area (sq ft)"
	LabelWasteStrategy  = "Waste Strategy"
	LabelWasteFactor    = "Waste Factor"
	LabelEffectiveArea  = "Effective Area (sq ft)"
	LabelSlabArea       = "Slab Area (sq ft)"
	LabelSlabCount      = "Slab Count"
	LabelDemolition     = "Demolition"
	LabelEdgeDetail     = "Edge Detail"
	LabelFixtures       = "Fixtures"
	LabelBacksplash     = "Backsplash"
	LabelUnitCost       = "Unit Cost"
	LabelMaterialCost   = "Material Cost"
	LabelFixtureCost    = "Fixture Cost"
	LabelBacksplashCost = "Backsplash Cost"
	LabelLaborCost      = "Labor Cost"
	LabelTotalCost      = "Total Cost"
	LabelNotes          = "Notes"
)

// CustomerMeta is the free-form job context supplied by the caller.
type CustomerMeta struct {
	Name     string `json:"name"`
	Project  string `json:"project"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// Field is one labelled line of the document.
type Field struct {
	Label string
	Value string
}

// PromptDocument is the structured narrative input. Every field is present
// in every document, zero values included.
type PromptDocument struct {
	Fields []Field
}

// Build assembles the document. req should be the normalized request.
func Build(req domain.Request, result domain.Result, meta CustomerMeta) PromptDocument {
	return PromptDocument{Fields: []Field{
		{LabelCustomer, orNotProvided(meta.Name)},
		{LabelProject, orNotProvided(meta.Project)},
		{LabelLocation, orNotProvided(meta.Location)},
		{LabelJobType, orNotProvided(string(req.JobType))},
		{LabelMaterial, orNotProvided(result.MaterialKey)},
		{LabelMatched, matchedLabel(result.MaterialMatched)},
		{LabelArea, decimal.NewFromFloat(req.AreaUnits).StringFixed(2)},
		{LabelWasteStrategy, orNotProvided(string(result.WasteStrategy))},
		{LabelWasteFactor, result.WasteFactor.Shift(2).StringFixed(0) + "%"},
		{LabelEffectiveArea, result.EffectiveArea.StringFixed(2)},
		{LabelSlabArea, result.SlabArea.StringFixed(2)},
		{LabelSlabCount, fmt.Sprintf("%d", result.SlabCount)},
		{LabelDemolition, yesNo(req.DemolitionRequired)},
		{LabelEdgeDetail, orNotProvided(string(req.EdgeDetailTier))},
		{LabelFixtures, fixturesLabel(req.Fixtures)},
		{LabelBacksplash, yesNo(req.BacksplashRequested)},
		{LabelUnitCost, money(result.UnitCost)},
		{LabelMaterialCost, money(result.MaterialCost)},
		{LabelFixtureCost, money(result.FixtureCost)},
		{LabelBacksplashCost, money(result.BacksplashCost)},
		{LabelLaborCost, money(result.LaborCost)},
		{LabelTotalCost, money(result.TotalCost)},
		{LabelNotes, orNotProvided(meta.Notes)},
	}}
}

// String renders "Label: Value" lines.
func (d PromptDocument) String() string {
	var b strings.Builder
	for i, field := range d.Fields {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(field.Label)
		b.WriteString(": ")
		b.WriteString(field.Value)
	}
	return b.String()
}

// Value returns the value for label.
func (d PromptDocument) Value(label string) (string, bool) {
	for _, field := range d.Fields {
		if field.Label == label {
			return field.Value, true
		}
	}
	return "", false
}

func money(value decimal.Decimal) string {
	return "$" + value.StringFixed(2)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func matchedLabel(matched bool) string {
	if matched {
		return "yes"
	}
	return "no (default pricing applied)"
}

func orNotProvided(value string) string {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return notProvided
	}
	return value
}

func fixturesLabel(fixtures []domain.Fixture) string {
	parts := make([]string, 0, len(fixtures))
	for _, f := range fixtures {
		if f.Quantity == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d x %s %s", f.Quantity, f.Tier, f.Kind))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
