package transport

import (
	"encoding/json"
	"strings"
	"time"

	"countertop_quote_backend/internal/estimates/domain"
	"countertop_quote_backend/internal/narrative"
	"countertop_quote_backend/platform/sanitize"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// FixtureRequest is one sink or cooktop cut-out.
type FixtureRequest struct {
	Kind     string `json:"kind" validate:"required,max=32"`
	Tier     string `json:"tier" validate:"omitempty,max=32"`
	Quantity int    `json:"quantity" validate:"gte=0,lte=50"`
}

// CustomerRequest carries optional job context for the narrative.
type CustomerRequest struct {
	Name     string `json:"name" validate:"max=200"`
	Project  string `json:"project" validate:"max=200"`
	Location string `json:"location" validate:"max=200"`
	Notes    string `json:"notes" validate:"max=2000"`
}

// EstimateRequest is the body of POST /api/estimate. Older clients send
// "sqft" instead of "areaUnits" and "material" or "color" instead of
// "materialKey"; the canonical name wins when both are present.
type EstimateRequest struct {
	AreaUnits           *float64         `json:"areaUnits"`
	Sqft                *float64         `json:"sqft"`
	MaterialKey         string           `json:"materialKey" validate:"max=200"`
	Material            string           `json:"material" validate:"max=200"`
	Color               string           `json:"color" validate:"max=200"`
	DemolitionRequired  bool             `json:"demolitionRequired"`
	EdgeDetailTier      string           `json:"edgeDetailTier" validate:"max=32"`
	Fixtures            []FixtureRequest `json:"fixtures" validate:"omitempty,max=20,dive"`
	BacksplashRequested bool             `json:"backsplashRequested"`
	BacksplashRate      float64          `json:"backsplashRate" validate:"gte=0"`
	JobType             string           `json:"jobType" validate:"max=32"`
	WasteStrategy       string           `json:"wasteStrategy" validate:"max=32"`
	Customer            CustomerRequest  `json:"customer"`
	Narrative           *bool            `json:"narrative"`
}

// ResolveArea returns areaUnits, falling back to sqft. Zero means missing.
func (r EstimateRequest) ResolveArea() float64 {
	if r.AreaUnits != nil {
		return *r.AreaUnits
	}
	if r.Sqft != nil {
		return *r.Sqft
	}
	return 0
}

// ResolveMaterialKey returns the first non-blank of materialKey, material, color.
func (r EstimateRequest) ResolveMaterialKey() string {
	for _, candidate := range []string{r.MaterialKey, r.Material, r.Color} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// WantsNarrative defaults to true.
func (r EstimateRequest) WantsNarrative() bool {
	return r.Narrative == nil || *r.Narrative
}

// ToDomain maps the body onto the estimator input.
func (r EstimateRequest) ToDomain() domain.Request {
	fixtures := make([]domain.Fixture, 0, len(r.Fixtures))
	for _, f := range r.Fixtures {
		fixtures = append(fixtures, domain.Fixture{
			Kind:     domain.FixtureKind(f.Kind),
			Tier:     domain.FixtureTier(f.Tier),
			Quantity: f.Quantity,
		})
	}
	return domain.Request{
		AreaUnits:           r.ResolveArea(),
		MaterialKey:         r.ResolveMaterialKey(),
		DemolitionRequired:  r.DemolitionRequired,
		EdgeDetailTier:      domain.EdgeTier(r.EdgeDetailTier),
		Fixtures:            fixtures,
		BacksplashRequested: r.BacksplashRequested,
		BacksplashRate:      r.BacksplashRate,
		JobType:             domain.JobType(r.JobType),
		WasteStrategy:       domain.WasteStrategy(r.WasteStrategy),
	}
}

// CustomerMeta maps the customer block.
func (r EstimateRequest) CustomerMeta() narrative.CustomerMeta {
	return narrative.CustomerMeta{
		Name:     sanitize.Line(r.Customer.Name),
		Project:  sanitize.Line(r.Customer.Project),
		Location: sanitize.Line(r.Customer.Location),
		Notes:    sanitize.Text(r.Customer.Notes),
	}
}

// ── Responses ─────────────────────────────────────────────────────────────────

// Money renders a currency amount as a JSON number with two decimals.
func Money(value decimal.Decimal) json.Number {
	return json.Number(value.StringFixed(2))
}

// Quantity renders a non-currency decimal as a JSON number.
func Quantity(value decimal.Decimal) json.Number {
	return json.Number(value.String())
}

// EstimateBreakdown is the numeric part of every estimate response.
type EstimateBreakdown struct {
	MaterialKey     string      `json:"materialKey"`
	MaterialFamily  string      `json:"materialFamily,omitempty"`
	MaterialMatched bool        `json:"materialMatched"`
	UnitCost        json.Number `json:"unitCost"`
	SlabArea        json.Number `json:"slabArea"`
	WasteStrategy   string      `json:"wasteStrategy"`
	WasteFactor     json.Number `json:"wasteFactor"`
	EffectiveArea   json.Number `json:"effectiveArea"`
	SlabCount       int         `json:"slabCount"`
	MaterialCost    json.Number `json:"materialCost"`
	FixtureCost     json.Number `json:"fixtureCost"`
	BacksplashCost  json.Number `json:"backsplashCost"`
	LaborCost       json.Number `json:"laborCost"`
	TotalCost       json.Number `json:"totalCost"`
}

// NewBreakdown converts a domain result.
func NewBreakdown(r domain.Result) EstimateBreakdown {
	return EstimateBreakdown{
		MaterialKey:     r.MaterialKey,
		MaterialFamily:  r.MaterialFamily,
		MaterialMatched: r.MaterialMatched,
		UnitCost:        Money(r.UnitCost),
		SlabArea:        Quantity(r.SlabArea),
		WasteStrategy:   string(r.WasteStrategy),
		WasteFactor:     Quantity(r.WasteFactor),
		EffectiveArea:   Quantity(r.EffectiveArea),
		SlabCount:       r.SlabCount,
		MaterialCost:    Money(r.MaterialCost),
		FixtureCost:     Money(r.FixtureCost),
		BacksplashCost:  Money(r.BacksplashCost),
		LaborCost:       Money(r.LaborCost),
		TotalCost:       Money(r.TotalCost),
	}
}

// CatalogInfo tells the caller which price list was used.
type CatalogInfo struct {
	Source   string `json:"source"`
	Fallback bool   `json:"fallback"`
}

// EstimateResponse is returned by POST /api/estimate.
type EstimateResponse struct {
	EstimateID      uuid.UUID         `json:"estimateId"`
	Estimate        EstimateBreakdown `json:"estimate"`
	Narrative       string            `json:"narrative"`
	NarrativeStatus string            `json:"narrativeStatus"`
	Catalog         CatalogInfo       `json:"catalog"`
}

// NarrativeJobResponse is returned by the job endpoints.
type NarrativeJobResponse struct {
	JobID           uuid.UUID         `json:"jobId"`
	Status          string            `json:"status"`
	Estimate        EstimateBreakdown `json:"estimate"`
	Narrative       string            `json:"narrative,omitempty"`
	NarrativeStatus string            `json:"narrativeStatus"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// HistoryRequest is the query of GET /api/estimate/history. Limit defaults to 20.
type HistoryRequest struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

// HistoryItem is one row of GET /api/estimate/history.
type HistoryItem struct {
	ID              uuid.UUID   `json:"id"`
	Source          string      `json:"source"`
	MaterialKey     string      `json:"materialKey"`
	MaterialMatched bool        `json:"materialMatched"`
	AreaUnits       float64     `json:"areaUnits"`
	WasteStrategy   string      `json:"wasteStrategy"`
	SlabCount       int         `json:"slabCount"`
	TotalCost       json.Number `json:"totalCost"`
	CatalogSource   string      `json:"catalogSource"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// PricingEntryResponse is one catalog row.
type PricingEntryResponse struct {
	Key          string      `json:"key"`
	Family       string      `json:"family,omitempty"`
	CostPerArea  json.Number `json:"costPerArea"`
	UnitsPerSlab json.Number `json:"unitsPerSlab"`
}

// RowIssueResponse is one parse problem.
type RowIssueResponse struct {
	Row     int    `json:"row"`
	Key     string `json:"key,omitempty"`
	Column  string `json:"column,omitempty"`
	Problem string `json:"problem"`
}

// PricingResponse describes the installed snapshot.
type PricingResponse struct {
	Source    string                 `json:"source"`
	FetchedAt *time.Time             `json:"fetchedAt,omitempty"`
	Fallback  bool                   `json:"fallback"`
	Count     int                    `json:"count"`
	Entries   []PricingEntryResponse `json:"entries,omitempty"`
	Issues    []RowIssueResponse     `json:"issues,omitempty"`
}
