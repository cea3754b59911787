package handler

import (
	"countertop_quote_backend/internal/estimates/service"
	"countertop_quote_backend/internal/estimates/transport"
	"countertop_quote_backend/internal/pricing"
	"countertop_quote_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// PricingHandler exposes the pricing catalog snapshot.
type PricingHandler struct {
	svc *service.Service
}

// NewPricingHandler creates a pricing handler
func NewPricingHandler(svc *service.Service) *PricingHandler {
	return &PricingHandler{svc: svc}
}

// RegisterRoutes registers the pricing routes
func (h *PricingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Get)
	rg.POST("/refresh", h.Refresh)
}

// Get handles GET /api/pricing
func (h *PricingHandler) Get(c *gin.Context) {
	httpkit.OK(c, toPricingResponse(h.svc.Snapshot(c.Request.Context()), true))
}

// Refresh handles POST /api/pricing/refresh. The response never fails; a
// failed fetch shows up as the previous or fallback snapshot.
func (h *PricingHandler) Refresh(c *gin.Context) {
	httpkit.OK(c, toPricingResponse(h.svc.RefreshCatalog(c.Request.Context()), false))
}

func toPricingResponse(s *pricing.Snapshot, withEntries bool) transport.PricingResponse {
	resp := transport.PricingResponse{
		Source:   s.Source(),
		Fallback: s.Fallback(),
		Count:    s.Len(),
	}
	if fetchedAt := s.FetchedAt(); !fetchedAt.IsZero() {
		resp.FetchedAt = &fetchedAt
	}
	for _, issue := range s.Issues() {
		resp.Issues = append(resp.Issues, transport.RowIssueResponse{
			Row:     issue.Row,
			Key:     issue.Key,
			Column:  issue.Column,
			Problem: issue.Problem,
		})
	}
	if withEntries {
		for _, entry := range s.Entries() {
			resp.Entries = append(resp.Entries, transport.PricingEntryResponse{
				Key:          entry.Key,
				Family:       entry.Family,
				CostPerArea:  transport.Money(entry.CostPerArea),
				UnitsPerSlab: transport.Quantity(entry.UnitsPerSlab),
			})
		}
	}
	return resp
}
