package service

import "strings"

// ConversationState is the set of quote slots collected so far. It is the
// "quoteState" object exchanged with the client and the value kept in the
// session store.
type ConversationState struct {
	MaterialKey *string  `json:"materialKey,omitempty"`
	AreaUnits   *float64 `json:"areaUnits,omitempty"`
}

// Merge overlays slots recognised this turn. Slots not mentioned keep their
// previous value.
func (s ConversationState) Merge(slots Slots) ConversationState {
	if slots.MaterialKey != nil {
		material := *slots.MaterialKey
		s.MaterialKey = &material
	}
	if slots.AreaUnits != nil {
		area := *slots.AreaUnits
		s.AreaUnits = &area
	}
	return s
}

// HasMaterial reports whether the material slot is filled.
func (s ConversationState) HasMaterial() bool {
	return s.MaterialKey != nil && strings.TrimSpace(*s.MaterialKey) != ""
}

// HasArea reports whether the area slot holds a usable value.
func (s ConversationState) HasArea() bool {
	return s.AreaUnits != nil && *s.AreaUnits > 0
}

// Sanitize drops slot values that can never be used.
func (s ConversationState) Sanitize() ConversationState {
	if !s.HasMaterial() {
		s.MaterialKey = nil
	}
	if !s.HasArea() {
		s.AreaUnits = nil
	}
	return s
}
