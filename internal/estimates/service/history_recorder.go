package service

import (
	"context"

	"countertop_quote_backend/internal/estimates/repository"
	"countertop_quote_backend/internal/events"
)

// HistoryWriter persists estimate history.
type HistoryWriter interface {
	Insert(ctx context.Context, rec repository.HistoryRecord) error
}

// HistoryRecorder stores every EstimateCalculated event.
type HistoryRecorder struct {
	repo HistoryWriter
}

func NewHistoryRecorder(repo HistoryWriter) *HistoryRecorder {
	return &HistoryRecorder{repo: repo}
}

// Handle implements events.Handler.
func (h *HistoryRecorder) Handle(ctx context.Context, event events.Event) error {
	e, ok := event.(events.EstimateCalculated)
	if !ok {
		return nil
	}
	return h.repo.Insert(ctx, repository.HistoryRecord{
		ID:              e.EstimateID,
		Source:          e.Source,
		MaterialKey:     e.MaterialKey,
		MaterialMatched: e.MaterialMatched,
		AreaUnits:       e.AreaUnits,
		WasteStrategy:   e.WasteStrategy,
		SlabCount:       e.SlabCount,
		MaterialCost:    e.MaterialCost,
		FixtureCost:     e.FixtureCost,
		BacksplashCost:  e.BacksplashCost,
		LaborCost:       e.LaborCost,
		TotalCost:       e.TotalCost,
		CatalogSource:   e.CatalogSource,
		CreatedAt:       e.OccurredAt(),
	})
}

var _ events.Handler = (*HistoryRecorder)(nil)
