package narrative

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// Completer answers a single user message under a system context.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ModelCompleter calls a model.LLM directly, without agent state, so the
// system context can change per call.
type ModelCompleter struct {
	llm model.LLM
}

func NewModelCompleter(llm model.LLM) *ModelCompleter {
	return &ModelCompleter{llm: llm}
}

func (c *ModelCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	req := &model.LLMRequest{
		Model:    c.llm.Name(),
		Contents: []*genai.Content{genai.NewContentFromText(user, genai.RoleUser)},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		},
	}

	var out strings.Builder
	for resp, err := range c.llm.GenerateContent(ctx, req, false) {
		if err != nil {
			return "", fmt.Errorf("completion failed: %w", err)
		}
		if resp == nil || resp.Content == nil {
			continue
		}
		for _, part := range resp.Content.Parts {
			if part != nil {
				out.WriteString(part.Text)
			}
		}
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", ErrEmptyNarrative
	}
	return text, nil
}
