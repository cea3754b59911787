package service

import (
	"context"
	"time"

	"countertop_quote_backend/internal/estimates/domain"
	"countertop_quote_backend/internal/estimates/repository"
	"countertop_quote_backend/internal/events"
	"countertop_quote_backend/internal/narrative"
	"countertop_quote_backend/internal/pricing"
	"countertop_quote_backend/platform/apperr"
	"countertop_quote_backend/platform/logger"

	"github.com/google/uuid"
)

// CatalogProvider is the slice of pricing.Provider the service needs.
type CatalogProvider interface {
	Current(ctx context.Context) *pricing.Snapshot
	Refresh(ctx context.Context) *pricing.Snapshot
}

// JobRepository stores narrative jobs.
type JobRepository interface {
	Save(ctx context.Context, job repository.NarrativeJob) error
	Get(ctx context.Context, id uuid.UUID) (repository.NarrativeJob, error)
}

// JobQueue schedules background narrative generation.
type JobQueue interface {
	EnqueueNarrativeJob(ctx context.Context, jobID uuid.UUID) error
}

// HistoryReader lists persisted estimates.
type HistoryReader interface {
	ListRecent(ctx context.Context, limit int) ([]repository.HistoryRecord, error)
}

// Estimate is a computed estimate plus its narrative outcome.
type Estimate struct {
	ID              uuid.UUID
	Request         domain.Request
	Result          domain.Result
	CatalogSource   string
	CatalogFallback bool
	Narrative       string
	NarrativeStatus string
}

// Service provides estimate business logic
type Service struct {
	catalog  CatalogProvider
	policy   domain.Policy
	narrator narrative.Generator // nil means narratives are disabled
	jobs     JobRepository       // nil means async jobs are unavailable
	queue    JobQueue
	history  HistoryReader // optional
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new estimates service
func New(catalog CatalogProvider, policy domain.Policy, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		catalog: catalog,
		policy:  policy,
		log:     log,
		now:     time.Now,
	}
}

// SetNarrator injects the narrative writer.
func (s *Service) SetNarrator(gen narrative.Generator) {
	s.narrator = gen
}

// SetJobs injects the job store and queue used by EnqueueNarrative.
func (s *Service) SetJobs(jobs JobRepository, queue JobQueue) {
	s.jobs = jobs
	s.queue = queue
}

// SetHistory injects the estimate history reader.
func (s *Service) SetHistory(history HistoryReader) {
	s.history = history
}

// SetEventBus injects the event bus.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// Policy returns the pricing policy in effect.
func (s *Service) Policy() domain.Policy {
	return s.policy
}

// Calculate computes an estimate against the current catalog snapshot and
// publishes EstimateCalculated. source is one of the events.Source values.
func (s *Service) Calculate(ctx context.Context, req domain.Request, source string) (Estimate, error) {
	normalized, err := req.Normalize()
	if err != nil {
		return Estimate{}, err
	}

	snapshot := s.catalog.Current(ctx)
	result, err := domain.Compute(normalized, snapshot, s.policy)
	if err != nil {
		return Estimate{}, err
	}

	est := Estimate{
		ID:              uuid.New(),
		Request:         normalized,
		Result:          result,
		CatalogSource:   snapshot.Source(),
		CatalogFallback: snapshot.Fallback(),
	}
	s.publishCalculated(ctx, est, source)
	return est, nil
}

// Estimate computes an estimate and, when asked, its narrative. A narrative
// failure never fails the call; the numeric breakdown is always returned.
func (s *Service) Estimate(ctx context.Context, req domain.Request, meta narrative.CustomerMeta, withNarrative bool) (Estimate, error) {
	est, err := s.Calculate(ctx, req, events.SourceAPI)
	if err != nil {
		return Estimate{}, err
	}

	if !withNarrative {
		est.NarrativeStatus = narrative.StatusDisabled
		return est, nil
	}

	doc := narrative.Build(est.Request, est.Result, meta)
	est.Narrative, est.NarrativeStatus = narrative.Narrate(ctx, s.narrator, doc, s.log)
	return est, nil
}

// Snapshot returns the current catalog snapshot.
func (s *Service) Snapshot(ctx context.Context) *pricing.Snapshot {
	return s.catalog.Current(ctx)
}

// RefreshCatalog forces a catalog refresh.
func (s *Service) RefreshCatalog(ctx context.Context) *pricing.Snapshot {
	return s.catalog.Refresh(ctx)
}

// ListHistory returns recent persisted estimates.
func (s *Service) ListHistory(ctx context.Context, limit int) ([]repository.HistoryRecord, error) {
	if s.history == nil {
		return nil, apperr.Unavailable("estimate history is not configured")
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.history.ListRecent(ctx, limit)
}

func (s *Service) publishCalculated(ctx context.Context, est Estimate, source string) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(ctx, events.EstimateCalculated{
		BaseEvent:       events.NewBaseEvent(),
		EstimateID:      est.ID,
		Source:          source,
		MaterialKey:     est.Result.MaterialKey,
		MaterialMatched: est.Result.MaterialMatched,
		AreaUnits:       est.Request.AreaUnits,
		WasteStrategy:   string(est.Result.WasteStrategy),
		SlabCount:       est.Result.SlabCount,
		MaterialCost:    est.Result.MaterialCost,
		FixtureCost:     est.Result.FixtureCost,
		BacksplashCost:  est.Result.BacksplashCost,
		LaborCost:       est.Result.LaborCost,
		TotalCost:       est.Result.TotalCost,
		CatalogSource:   est.CatalogSource,
	})
}
