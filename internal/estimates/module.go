// Package estimates provides the countertop estimate module: the cost
// estimator over HTTP, queued narratives and estimate history.
package estimates

import (
	"countertop_quote_backend/internal/estimates/domain"
	"countertop_quote_backend/internal/estimates/handler"
	"countertop_quote_backend/internal/estimates/repository"
	"countertop_quote_backend/internal/estimates/service"
	"countertop_quote_backend/internal/events"
	apphttp "countertop_quote_backend/internal/http"
	"countertop_quote_backend/internal/narrative"
	"countertop_quote_backend/platform/logger"
	"countertop_quote_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the estimates domain module
type Module struct {
	handler        *handler.Handler
	pricingHandler *handler.PricingHandler
	service        *service.Service
}

// NewModule creates a new estimates module. pool may be nil, which disables
// estimate history.
func NewModule(catalog service.CatalogProvider, policy domain.Policy, pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(catalog, policy, log)
	svc.SetEventBus(eventBus)

	if pool != nil {
		history := repository.NewHistoryRepository(pool)
		svc.SetHistory(history)
		if eventBus != nil {
			eventBus.Subscribe(events.EstimateCalculated{}.EventName(), service.NewHistoryRecorder(history))
		}
	}

	return &Module{
		handler:        handler.New(svc, val),
		pricingHandler: handler.NewPricingHandler(svc),
		service:        svc,
	}
}

// SetNarrator enables narratives.
func (m *Module) SetNarrator(gen narrative.Generator) {
	m.service.SetNarrator(gen)
}

// SetJobs enables queued narratives.
func (m *Module) SetJobs(jobs service.JobRepository, queue service.JobQueue) {
	m.service.SetJobs(jobs, queue)
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "estimates"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.API.Group("/estimate"))
	m.pricingHandler.RegisterRoutes(ctx.API.Group("/pricing"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
