// Package chat provides the conversational estimator module.
package chat

import (
	"countertop_quote_backend/internal/chat/handler"
	"countertop_quote_backend/internal/chat/service"
	"countertop_quote_backend/internal/estimates/domain"
	"countertop_quote_backend/internal/events"
	apphttp "countertop_quote_backend/internal/http"
	"countertop_quote_backend/internal/narrative"
	"countertop_quote_backend/platform/logger"
	"countertop_quote_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Module wires the chat service and handler.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the chat module. Delegation and server-held sessions are
// enabled separately with SetCompleter and SetSessions.
func NewModule(catalog service.CatalogProvider, policy domain.Policy, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(catalog, service.NewDialogue(service.RegexSlotExtractor{}, policy), log)
	svc.SetEventBus(eventBus)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// SetCompleter enables delegated turns.
func (m *Module) SetCompleter(c narrative.Completer) {
	m.service.SetCompleter(c)
}

// SetSessions enables server-held conversation state.
func (m *Module) SetSessions(sessions service.SessionRepository) {
	m.service.SetSessions(sessions)
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "chat"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	var limit gin.HandlerFunc
	if ctx.ChatRateLimiter != nil {
		limit = ctx.ChatRateLimiter.RateLimit()
	}
	m.handler.RegisterRoutes(ctx.API.Group("/chat"), limit)
}

var _ apphttp.Module = (*Module)(nil)
