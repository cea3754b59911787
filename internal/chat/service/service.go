// Package service implements the conversational estimator: slot filling over
// chat turns, inline quotes and delegation to the language model.
package service

import (
	"context"
	"strings"

	"countertop_quote_backend/internal/estimates/domain"
	"countertop_quote_backend/internal/events"
	"countertop_quote_backend/internal/narrative"
	"countertop_quote_backend/internal/pricing"
	"countertop_quote_backend/platform/apperr"
	"countertop_quote_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	baseSystemPrompt = "You are a helpful remodeling assistant for a countertop fabrication shop. " +
		"Only answer questions about countertops, kitchen and bathroom remodeling, materials and installation. " +
		"Politely decline anything else."
	pricingSystemPrompt = " When answering pricing questions, refer to the following pricing data: "
)

var pricingKeywords = []string{"price", "cost", "estimate", "quote"}

// CatalogProvider is the slice of pricing.Provider the chat needs.
type CatalogProvider interface {
	Current(ctx context.Context) *pricing.Snapshot
}

// SessionRepository holds server-side conversation state.
type SessionRepository interface {
	Load(ctx context.Context, sessionID string, dst any) (bool, error)
	Save(ctx context.Context, sessionID string, value any) error
	Delete(ctx context.Context, sessionID string) error
}

// ChatInput is one user turn.
type ChatInput struct {
	Message string
	// QuoteState is client-held state. It takes precedence over SessionID.
	QuoteState *ConversationState
	SessionID  string
	Reset      bool
}

// ChatOutput is the reply to one turn.
type ChatOutput struct {
	Reply      string
	Action     Action
	State      ConversationState
	SessionID  string
	EstimateID uuid.UUID
	Request    *domain.Request
	Result     *domain.Result
}

// Service runs chat turns.
type Service struct {
	catalog   CatalogProvider
	dialogue  *Dialogue
	completer narrative.Completer // nil means delegation is unavailable
	sessions  SessionRepository   // nil means client-held state only
	eventBus  events.Bus
	log       *logger.Logger
}

// New creates a chat service.
func New(catalog CatalogProvider, dialogue *Dialogue, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		catalog:  catalog,
		dialogue: dialogue,
		log:      log,
	}
}

// SetCompleter injects the language model used for delegated turns.
func (s *Service) SetCompleter(c narrative.Completer) {
	s.completer = c
}

// SetSessions injects the session store.
func (s *Service) SetSessions(sessions SessionRepository) {
	s.sessions = sessions
}

// SetEventBus injects the event bus.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// Chat advances the conversation by one utterance.
func (s *Service) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ChatOutput{}, apperr.BadRequest("Missing user input")
	}

	state, sessionID, err := s.resolveState(ctx, in)
	if err != nil {
		return ChatOutput{}, err
	}

	snapshot := s.catalog.Current(ctx)
	turn, err := s.dialogue.Advance(state, message, snapshot)
	if err != nil {
		return ChatOutput{}, err
	}

	out := ChatOutput{
		Reply:     turn.Reply,
		Action:    turn.Action,
		State:     turn.State,
		SessionID: sessionID,
		Request:   turn.Request,
		Result:    turn.Result,
	}

	switch turn.Action {
	case ActionQuote:
		out.EstimateID = uuid.New()
		s.publishQuote(ctx, out, snapshot)
	case ActionDelegate:
		reply, err := s.delegate(ctx, message, snapshot)
		if err != nil {
			return ChatOutput{}, err
		}
		out.Reply = reply
	}

	if sessionID != "" {
		if err := s.sessions.Save(ctx, sessionID, turn.State); err != nil {
			return ChatOutput{}, err
		}
	}
	return out, nil
}

// ResetSession clears server-held state for sessionID.
func (s *Service) ResetSession(ctx context.Context, sessionID string) error {
	if s.sessions == nil {
		return apperr.Unavailable("chat sessions are not configured")
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return apperr.BadRequest("invalid session id")
	}
	return s.sessions.Delete(ctx, sessionID)
}

// SystemContext is the system instruction for a delegated utterance. The
// pricing summary is only included when the user asks about money.
func SystemContext(utterance string, snapshot *pricing.Snapshot) string {
	lower := strings.ToLower(utterance)
	for _, keyword := range pricingKeywords {
		if strings.Contains(lower, keyword) {
			return baseSystemPrompt + pricingSystemPrompt + pricing.Summary(snapshot)
		}
	}
	return baseSystemPrompt
}

func (s *Service) resolveState(ctx context.Context, in ChatInput) (ConversationState, string, error) {
	var state ConversationState
	if in.QuoteState != nil {
		state = *in.QuoteState
	}

	sessionID := strings.TrimSpace(in.SessionID)
	if in.QuoteState != nil || s.sessions == nil {
		if sessionID != "" && s.sessions == nil {
			return ConversationState{}, "", apperr.Unavailable("chat sessions are not configured")
		}
		if in.Reset {
			state = ConversationState{}
		}
		return state, sessionID, nil
	}

	if sessionID == "" {
		return ConversationState{}, uuid.NewString(), nil
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return ConversationState{}, "", apperr.BadRequest("invalid session id")
	}
	if in.Reset {
		return ConversationState{}, sessionID, nil
	}
	if _, err := s.sessions.Load(ctx, sessionID, &state); err != nil {
		return ConversationState{}, "", err
	}
	return state, sessionID, nil
}

func (s *Service) delegate(ctx context.Context, message string, snapshot *pricing.Snapshot) (string, error) {
	if s.completer == nil {
		return "", apperr.Unavailable("assistant is not configured")
	}
	reply, err := s.completer.Complete(ctx, SystemContext(message, snapshot), message)
	if err != nil {
		s.log.UpstreamFailure("llm", "chat", err)
		return "", apperr.Upstream("assistant is temporarily unavailable", err)
	}
	return reply, nil
}

func (s *Service) publishQuote(ctx context.Context, out ChatOutput, snapshot *pricing.Snapshot) {
	if s.eventBus == nil || out.Result == nil || out.Request == nil {
		return
	}
	result := *out.Result
	s.eventBus.Publish(ctx, events.EstimateCalculated{
		BaseEvent:       events.NewBaseEvent(),
		EstimateID:      out.EstimateID,
		Source:          events.SourceChat,
		MaterialKey:     result.MaterialKey,
		MaterialMatched: result.MaterialMatched,
		AreaUnits:       out.Request.AreaUnits,
		WasteStrategy:   string(result.WasteStrategy),
		SlabCount:       result.SlabCount,
		MaterialCost:    result.MaterialCost,
		FixtureCost:     result.FixtureCost,
		BacksplashCost:  result.BacksplashCost,
		LaborCost:       result.LaborCost,
		TotalCost:       result.TotalCost,
		CatalogSource:   snapshot.Source(),
	})
}
