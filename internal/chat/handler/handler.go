package handler

import (
	"net/http"

	"countertop_quote_backend/internal/chat/service"
	"countertop_quote_backend/internal/chat/transport"
	"countertop_quote_backend/platform/httpkit"
	"countertop_quote_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler serves the conversational estimator.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the chat routes. limit runs before every turn.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	if limit != nil {
		rg.POST("", limit, h.Chat)
	} else {
		rg.POST("", h.Chat)
	}
	rg.DELETE("/sessions/:id", h.ResetSession)
}

// Chat handles POST /api/chat
func (h *Handler) Chat(c *gin.Context) {
	var req transport.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	out, err := h.svc.Chat(c.Request.Context(), req.ToInput())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.NewChatResponse(out))
}

// ResetSession handles DELETE /api/chat/sessions/:id
func (h *Handler) ResetSession(c *gin.Context) {
	if httpkit.HandleError(c, h.svc.ResetSession(c.Request.Context(), c.Param("id"))) {
		return
	}
	c.Status(http.StatusNoContent)
}
