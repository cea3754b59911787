// Package countertops provides the countertop product catalog module.
package countertops

import (
	"countertop_quote_backend/internal/countertops/handler"
	"countertop_quote_backend/internal/countertops/repository"
	"countertop_quote_backend/internal/countertops/service"
	apphttp "countertop_quote_backend/internal/http"
	"countertop_quote_backend/platform/logger"
	"countertop_quote_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the countertop catalog module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the countertop module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "countertops"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts countertop routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.API.Group("/countertops")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.Get)
}

var _ apphttp.Module = (*Module)(nil)
