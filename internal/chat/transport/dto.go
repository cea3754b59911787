// Package transport holds the chat request and response bodies.
package transport

import (
	"countertop_quote_backend/internal/chat/service"
	estimatetransport "countertop_quote_backend/internal/estimates/transport"

	"github.com/google/uuid"
)

// QuoteState is the client-held slot state.
type QuoteState struct {
	MaterialKey *string  `json:"materialKey,omitempty" validate:"omitempty,max=200"`
	AreaUnits   *float64 `json:"areaUnits,omitempty"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message    string      `json:"message" validate:"max=4000"`
	QuoteState *QuoteState `json:"quoteState"`
	SessionID  string      `json:"sessionId" validate:"omitempty,uuid"`
	Reset      bool        `json:"reset"`
}

// ToInput maps the body onto a chat turn.
func (r ChatRequest) ToInput() service.ChatInput {
	in := service.ChatInput{
		Message:   r.Message,
		SessionID: r.SessionID,
		Reset:     r.Reset,
	}
	if r.QuoteState != nil {
		in.QuoteState = &service.ConversationState{
			MaterialKey: r.QuoteState.MaterialKey,
			AreaUnits:   r.QuoteState.AreaUnits,
		}
	}
	return in
}

// ChatResponse is the reply to POST /api/chat.
type ChatResponse struct {
	Reply      string                               `json:"reply"`
	Action     string                               `json:"action"`
	QuoteState QuoteState                           `json:"quoteState"`
	SessionID  string                               `json:"sessionId,omitempty"`
	EstimateID *uuid.UUID                           `json:"estimateId,omitempty"`
	Estimate   *estimatetransport.EstimateBreakdown `json:"estimate,omitempty"`
}

// NewChatResponse renders a chat turn.
func NewChatResponse(out service.ChatOutput) ChatResponse {
	resp := ChatResponse{
		Reply:  out.Reply,
		Action: string(out.Action),
		QuoteState: QuoteState{
			MaterialKey: out.State.MaterialKey,
			AreaUnits:   out.State.AreaUnits,
		},
		SessionID: out.SessionID,
	}
	if out.Result != nil {
		breakdown := estimatetransport.NewBreakdown(*out.Result)
		resp.Estimate = &breakdown
		id := out.EstimateID
		resp.EstimateID = &id
	}
	return resp
}
