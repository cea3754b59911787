package service

import (
	"fmt"
	"strings"

	"countertop_quote_backend/internal/estimates/domain"
	"countertop_quote_backend/internal/pricing"
)

// Action is what the dialogue decided to do with a turn.
type Action string

const (
	ActionQuote       Action = "quote"
	ActionAskArea     Action = "ask_area"
	ActionAskMaterial Action = "ask_material"
	ActionDelegate    Action = "delegate"
)

const (
	replyAskArea     = "Great choice. How many square feet of countertop do you need? For example: \"30 sq ft\"."
	replyAskMaterial = "Thanks. Which material or color would you like? For example: granite, quartz, porcelain or a specific color name."
)

// Turn is the outcome of one utterance.
type Turn struct {
	Action Action
	State  ConversationState
	// Reply is empty for ActionDelegate.
	Reply   string
	Request *domain.Request
	Result  *domain.Result
}

// Dialogue is the slot-filling policy. Advance is pure.
type Dialogue struct {
	extractor SlotExtractor
	policy    domain.Policy
}

func NewDialogue(extractor SlotExtractor, policy domain.Policy) *Dialogue {
	if extractor == nil {
		extractor = RegexSlotExtractor{}
	}
	return &Dialogue{extractor: extractor, policy: policy}
}

// Advance merges the slots found in utterance into state and decides:
// both slots filled → quote with tiered waste, one missing → ask for it,
// none → hand the utterance to the language model.
func (d *Dialogue) Advance(state ConversationState, utterance string, snapshot *pricing.Snapshot) (Turn, error) {
	next := state.Sanitize().Merge(d.extractor.Extract(utterance, snapshot))
	turn := Turn{State: next}

	switch {
	case next.HasMaterial() && next.HasArea():
		req := domain.Request{
			AreaUnits:     *next.AreaUnits,
			MaterialKey:   *next.MaterialKey,
			WasteStrategy: domain.WasteTiered,
		}
		normalized, err := req.Normalize()
		if err != nil {
			return Turn{}, err
		}
		result, err := domain.Compute(normalized, snapshot, d.policy)
		if err != nil {
			return Turn{}, err
		}
		turn.Action = ActionQuote
		turn.Request = &normalized
		turn.Result = &result
		turn.Reply = RenderQuote(normalized, result)
	case next.HasMaterial():
		turn.Action = ActionAskArea
		turn.Reply = replyAskArea
	case next.HasArea():
		turn.Action = ActionAskMaterial
		turn.Reply = replyAskMaterial
	default:
		turn.Action = ActionDelegate
	}
	return turn, nil
}

// RenderQuote is the inline chat reply for a computed estimate.
func RenderQuote(req domain.Request, result domain.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here's a quick estimate for %s sq ft of %s:\n",
		trimNumber(req.AreaUnits), displayMaterial(result.MaterialKey))
	fmt.Fprintf(&b, "- Material: $%s ($%s/sq ft)\n", result.MaterialCost.StringFixed(2), result.UnitCost.StringFixed(2))
	fmt.Fprintf(&b, "- Labor: $%s\n", result.LaborCost.StringFixed(2))
	fmt.Fprintf(&b, "- Slabs needed: %d (includes %s%% waste allowance)\n", result.SlabCount, result.WasteFactor.Shift(2).StringFixed(0))
	fmt.Fprintf(&b, "Estimated total: $%s", result.TotalCost.StringFixed(2))
	if !result.MaterialMatched {
		b.WriteString("\nWe don't have a listed price for that material yet, so this uses our standard rate.")
	}
	return b.String()
}

func trimNumber(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func displayMaterial(key string) string {
	if key == "" {
		return "countertop"
	}
	return key
}
