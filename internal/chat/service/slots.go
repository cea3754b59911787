package service

import (
	"regexp"
	"strconv"
	"strings"

	"countertop_quote_backend/internal/estimates/domain"
	"countertop_quote_backend/internal/pricing"
)

// Slots are the values recognised in a single utterance.
type Slots struct {
	MaterialKey *string
	AreaUnits   *float64
}

// SlotExtractor finds quote slots in free text.
type SlotExtractor interface {
	Extract(utterance string, snapshot *pricing.Snapshot) Slots
}

var areaPattern = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)\s*(?:square\s*(?:feet|foot|ft)|sq\.?\s*(?:feet|foot|ft)\.?|sqft|ft²|ft\^?2|sf)`)

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// RegexSlotExtractor matches "<number> <area unit>" for the area and the
// longest catalog key mentioned for the material. A bare family word maps to
// a catalog entry of that family. Areas above domain.MaxAreaUnits are ignored.
type RegexSlotExtractor struct{}

func (RegexSlotExtractor) Extract(utterance string, snapshot *pricing.Snapshot) Slots {
	var slots Slots
	if area, ok := extractArea(utterance); ok {
		slots.AreaUnits = &area
	}
	if material, ok := extractMaterial(utterance, snapshot); ok {
		slots.MaterialKey = &material
	}
	return slots
}

func extractArea(utterance string) (float64, bool) {
	match := areaPattern.FindStringSubmatch(utterance)
	if match == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil || value <= 0 || value > domain.MaxAreaUnits {
		return 0, false
	}
	return value, true
}

func extractMaterial(utterance string, snapshot *pricing.Snapshot) (string, bool) {
	padded := " " + strings.TrimSpace(nonWord.ReplaceAllString(strings.ToLower(utterance), " ")) + " "

	best := ""
	for _, key := range snapshot.Keys() {
		needle := " " + strings.TrimSpace(nonWord.ReplaceAllString(key, " ")) + " "
		if len(needle) <= 2 {
			continue
		}
		if strings.Contains(padded, needle) && len(key) > len(best) {
			best = key
		}
	}
	if best != "" {
		return best, true
	}

	for _, family := range pricing.Families {
		if strings.Contains(padded, " "+family+" ") {
			return familyKey(family, snapshot), true
		}
	}
	return "", false
}

// familyKey resolves a bare family word to the first catalog key of that
// family, or the word itself when the catalog has none.
func familyKey(family string, snapshot *pricing.Snapshot) string {
	for _, entry := range snapshot.Entries() {
		if entry.Family == family {
			return entry.Key
		}
	}
	return family
}

var _ SlotExtractor = RegexSlotExtractor{}
