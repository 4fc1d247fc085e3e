// Package weight provides named pillar-weight presets and blends consumed
// by the aggregate package's weighted strategies.
package weight

import "time"

// Preset identifies a pre-defined weight configuration for a deployment
// context (industry vertical, regulation, or general priority).
type Preset string

const (
	Balanced            Preset = "balanced"
	SafetyFocused       Preset = "safety_focused"
	FairnessFocused     Preset = "fairness_focused"
	PrivacyFocused      Preset = "privacy_focused"
	PerformanceFocused  Preset = "performance_focused"
	RegulatoryEUAIAct   Preset = "regulatory_eu_ai_act"
	RegulatorySOC2      Preset = "regulatory_soc2"
	Healthcare          Preset = "healthcare"
	Finance             Preset = "finance"
	ContentModeration   Preset = "content_moderation"
)

// PillarWeights is a named set of per-pillar weights, always normalized so
// the weights sum to 1.0 (unless every input weight is zero, in which case
// the set is left as-is).
type PillarWeights struct {
	Name        string
	Weights     map[string]float64
	Description string
	CreatedAt   time.Time
	Metadata    map[string]any
}

func normalize(weights map[string]float64) map[string]float64 {
	var total float64
	for _, v := range weights {
		total += v
	}
	if total <= 0 {
		out := make(map[string]float64, len(weights))
		for k, v := range weights {
			out[k] = v
		}
		return out
	}
	out := make(map[string]float64, len(weights))
	for k, v := range weights {
		out[k] = v / total
	}
	return out
}

// newPillarWeights builds a PillarWeights, normalizing weights to sum to 1.0.
func newPillarWeights(name string, weights map[string]float64, description string) PillarWeights {
	return PillarWeights{
		Name:        name,
		Weights:     normalize(weights),
		Description: description,
		CreatedAt:   time.Now(),
	}
}

// GetWeight returns the weight for pillar, or fallback if absent.
func (p PillarWeights) GetWeight(pillar string, fallback float64) float64 {
	if w, ok := p.Weights[pillar]; ok {
		return w
	}
	return fallback
}

// WithWeight returns a copy of p with pillar set to weight and the set
// re-normalized.
func (p PillarWeights) WithWeight(pillar string, w float64) PillarWeights {
	next := make(map[string]float64, len(p.Weights)+1)
	for k, v := range p.Weights {
		next[k] = v
	}
	next[pillar] = w
	p.Weights = normalize(next)
	return p
}

// Comparison is the result of compare_weights across several configurations.
type Comparison struct {
	Configurations        []string
	PillarComparison      map[string]map[string]float64
	SignificantDifferences []PillarDifference
}

// PillarDifference flags a pillar whose weight varies by more than 0.1
// across the compared configurations.
type PillarDifference struct {
	Pillar string
	Min    float64
	Max    float64
	Values map[string]float64
}

// PresetSummary is a directory entry for list_presets.
type PresetSummary struct {
	Preset      Preset
	Name        string
	Description string
	Pillars     []string
}
