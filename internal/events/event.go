// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"countertop_quote_backend/platform/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// Estimate sources.
const (
	SourceAPI  = "api"
	SourceChat = "chat"
	SourceJob  = "job"
)

// =============================================================================
// Estimate Domain Events
// =============================================================================

// EstimateCalculated is published after every successful cost computation.
type EstimateCalculated struct {
	BaseEvent
	EstimateID      uuid.UUID       `json:"estimateId"`
	Source          string          `json:"source"`
	MaterialKey     string          `json:"materialKey"`
	MaterialMatched bool            `json:"materialMatched"`
	AreaUnits       float64         `json:"areaUnits"`
	WasteStrategy   string          `json:"wasteStrategy"`
	SlabCount       int             `json:"slabCount"`
	MaterialCost    decimal.Decimal `json:"materialCost"`
	FixtureCost     decimal.Decimal `json:"fixtureCost"`
	BacksplashCost  decimal.Decimal `json:"backsplashCost"`
	LaborCost       decimal.Decimal `json:"laborCost"`
	TotalCost       decimal.Decimal `json:"totalCost"`
	CatalogSource   string          `json:"catalogSource"`
}

func (e EstimateCalculated) EventName() string { return "estimates.calculated" }

// NarrativeJobFinished is published when a queued narrative completes or fails.
type NarrativeJobFinished struct {
	BaseEvent
	JobID  uuid.UUID `json:"jobId"`
	Status string    `json:"status"`
}

func (e NarrativeJobFinished) EventName() string { return "estimates.narrative_job.finished" }
