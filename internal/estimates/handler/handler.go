package handler

import (
	"net/http"

	"countertop_quote_backend/internal/estimates/repository"
	"countertop_quote_backend/internal/estimates/service"
	"countertop_quote_backend/internal/estimates/transport"
	"countertop_quote_backend/platform/httpkit"
	"countertop_quote_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "invalid request"

// Handler handles HTTP requests for estimates
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new estimates handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the estimate routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Estimate)
	rg.POST("/jobs", h.EnqueueJob)
	rg.GET("/jobs/:id", h.GetJob)
	rg.GET("/history", h.ListHistory)
}

// Estimate handles POST /api/estimate
func (h *Handler) Estimate(c *gin.Context) {
	var req transport.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	est, err := h.svc.Estimate(c.Request.Context(), req.ToDomain(), req.CustomerMeta(), req.WantsNarrative())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.EstimateResponse{
		EstimateID:      est.ID,
		Estimate:        transport.NewBreakdown(est.Result),
		Narrative:       est.Narrative,
		NarrativeStatus: est.NarrativeStatus,
		Catalog: transport.CatalogInfo{
			Source:   est.CatalogSource,
			Fallback: est.CatalogFallback,
		},
	})
}

// EnqueueJob handles POST /api/estimate/jobs
func (h *Handler) EnqueueJob(c *gin.Context) {
	var req transport.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	job, err := h.svc.EnqueueNarrative(c.Request.Context(), req.ToDomain(), req.CustomerMeta())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusAccepted, toJobResponse(job))
}

// GetJob handles GET /api/estimate/jobs/:id
func (h *Handler) GetJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	job, err := h.svc.GetNarrativeJob(c.Request.Context(), jobID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toJobResponse(job))
}

// ListHistory handles GET /api/estimate/history
func (h *Handler) ListHistory(c *gin.Context) {
	var req transport.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	records, err := h.svc.ListHistory(c.Request.Context(), req.Limit)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.HistoryItem, 0, len(records))
	for _, rec := range records {
		items = append(items, transport.HistoryItem{
			ID:              rec.ID,
			Source:          rec.Source,
			MaterialKey:     rec.MaterialKey,
			MaterialMatched: rec.MaterialMatched,
			AreaUnits:       rec.AreaUnits,
			WasteStrategy:   rec.WasteStrategy,
			SlabCount:       rec.SlabCount,
			TotalCost:       transport.Money(rec.TotalCost),
			CatalogSource:   rec.CatalogSource,
			CreatedAt:       rec.CreatedAt,
		})
	}
	httpkit.OK(c, gin.H{"items": items})
}

func toJobResponse(job repository.NarrativeJob) transport.NarrativeJobResponse {
	return transport.NarrativeJobResponse{
		JobID:           job.ID,
		Status:          job.Status,
		Estimate:        transport.NewBreakdown(job.Result),
		Narrative:       job.Narrative,
		NarrativeStatus: job.NarrativeStatus,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
	}
}
