package entities

import (
	"github.com/cognicore/textkit/pkg/textkit/patterns"
)

// DefaultConfidence is attached to every pattern match
const DefaultConfidence = 0.9

// Entity represents a recognized entity
type Entity struct {
	Text       string              `json:"text"`
	Type       patterns.EntityType `json:"type"`
	Confidence float64             `json:"confidence"`
}

// Extractor finds entities using the registry's category matchers
type Extractor struct {
	registry *patterns.Registry
}

// NewExtractor creates an extractor over a shared registry
func NewExtractor(reg *patterns.Registry) *Extractor {
	return &Extractor{registry: reg}
}

// Extract runs every category independently over the full text. The same
// substring may be reported under several categories (a two-word name is
// both a Person and a Location shape); those overlaps are kept.
func (e *Extractor) Extract(text string) []Entity {
	entities := []Entity{}
	if text == "" {
		return entities
	}

	for _, typ := range e.registry.Types() {
		for _, m := range e.registry.FindAll(typ, text) {
			entities = append(entities, Entity{
				Text:       m.Text,
				Type:       typ,
				Confidence: DefaultConfidence,
			})
		}
	}

	return entities
}

// ByType returns the entities of one category, in match order.
func ByType(entities []Entity, typ patterns.EntityType) []Entity {
	var out []Entity
	for _, e := range entities {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// CountByType tallies entities per category.
func CountByType(entities []Entity) map[patterns.EntityType]int {
	counts := make(map[patterns.EntityType]int)
	for _, e := range entities {
		counts[e.Type]++
	}
	return counts
}
