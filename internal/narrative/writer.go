package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"countertop_quote_backend/platform/logger"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

// Narrative outcome reported next to the numeric estimate.
const (
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
	StatusPending  = "pending"
)

// ErrEmptyNarrative is returned when the model answers with blank text.
var ErrEmptyNarrative = errors.New("narrative writer returned empty text")

const writerInstruction = `You write short, friendly countertop remodeling estimates for homeowners.
You receive a labelled breakdown of a computed estimate. Explain the job, the material,
the slab count and each cost line in plain language, then state the total.
Use the numbers exactly as given; never recompute, round differently or invent prices.
If "Material Matched" says default pricing was applied, mention that the material price
is a standard estimate pending confirmation. Keep it under 200 words. No markdown tables.`

// Generator writes prose for a prompt document.
type Generator interface {
	Write(ctx context.Context, doc PromptDocument) (string, error)
}

// Writer is a Generator backed by an ADK llmagent.
type Writer struct {
	runner         *runner.Runner
	sessionService session.Service
	appName        string
	log            *logger.Logger
}

// NewWriter creates a narrative writer on top of llm.
func NewWriter(llm model.LLM, log *logger.Logger) (*Writer, error) {
	if llm == nil {
		return nil, fmt.Errorf("narrative writer requires a model")
	}
	if log == nil {
		log = logger.Nop()
	}

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "EstimateNarrator",
		Model:       llm,
		Description: "Writes the customer-facing explanation of a countertop estimate",
		Instruction: writerInstruction,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create narrative agent: %w", err)
	}

	sessionService := session.InMemoryService()
	w := &Writer{
		sessionService: sessionService,
		appName:        "estimate_narrator",
		log:            log,
	}

	r, err := runner.New(runner.Config{
		AppName:        w.appName,
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create narrative runner: %w", err)
	}
	w.runner = r

	return w, nil
}

// Write runs the agent once over doc in a throwaway session.
func (w *Writer) Write(ctx context.Context, doc PromptDocument) (string, error) {
	userID := "estimate-narrator"
	sessionID := uuid.New().String()

	if _, err := w.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   w.appName,
		UserID:    userID,
		SessionID: sessionID,
	}); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer func() {
		if err := w.sessionService.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
			AppName:   w.appName,
			UserID:    userID,
			SessionID: sessionID,
		}); err != nil {
			w.log.Warn("failed to delete narrative session", "error", err)
		}
	}()

	content := &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{genai.NewPartFromText("Estimate breakdown:\n" + doc.String())},
	}

	var output strings.Builder
	for event, err := range w.runner.Run(ctx, userID, sessionID, content, agent.RunConfig{
		StreamingMode: agent.StreamingModeNone,
	}) {
		if err != nil {
			return "", fmt.Errorf("narrative generation failed: %w", err)
		}
		if event == nil || event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			if part != nil {
				output.WriteString(part.Text)
			}
		}
	}

	text := strings.TrimSpace(output.String())
	if text == "" {
		return "", ErrEmptyNarrative
	}
	return text, nil
}

// Narrate asks gen for prose and folds every failure into the marker. The
// returned status is one of StatusOK, StatusFailed or StatusDisabled.
func Narrate(ctx context.Context, gen Generator, doc PromptDocument, log *logger.Logger) (string, string) {
	if gen == nil {
		return "", StatusDisabled
	}
	text, err := gen.Write(ctx, doc)
	if err != nil {
		if log != nil {
			log.WithContext(ctx).UpstreamFailure("llm", "narrative", err)
		}
		return FailureMarker, StatusFailed
	}
	return text, StatusOK
}

var _ Generator = (*Writer)(nil)
