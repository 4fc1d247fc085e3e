package weight

import (
	"math"
	"sort"
	"strings"
	"sync"
)

// Manager resolves weight presets and owns the custom weight sets created
// at runtime. Custom weights are read-mostly state: reads take an RLock,
// mutations replace entries under a full Lock.
type Manager struct {
	mu            sync.RWMutex
	defaultPreset Preset
	custom        map[string]PillarWeights
}

// NewManager builds a Manager whose zero-argument GetWeights calls resolve
// to defaultPreset.
func NewManager(defaultPreset Preset) *Manager {
	return &Manager{
		defaultPreset: defaultPreset,
		custom:        make(map[string]PillarWeights),
	}
}

// GetWeights resolves customName (if set and registered) or preset
// (falling back to the Manager's default, then Balanced).
func (m *Manager) GetWeights(preset Preset, customName string) PillarWeights {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if customName != "" {
		if pw, ok := m.custom[customName]; ok {
			return pw
		}
	}
	if preset == "" {
		preset = m.defaultPreset
	}
	if pw, ok := presets[preset]; ok {
		return pw
	}
	return presets[Balanced]
}

// GetWeightDict is GetWeights reduced to its plain pillar -> weight map.
func (m *Manager) GetWeightDict(preset Preset, customName string) map[string]float64 {
	return m.GetWeights(preset, customName).Weights
}

// CreateCustomWeights registers a named custom weight set, normalizing
// weights and optionally merging over a base preset (base entries win only
// where weights does not override them).
func (m *Manager) CreateCustomWeights(name string, weights map[string]float64, description string, basePreset Preset) PillarWeights {
	merged := weights
	if basePreset != "" {
		if base, ok := presets[basePreset]; ok {
			merged = make(map[string]float64, len(base.Weights)+len(weights))
			for k, v := range base.Weights {
				merged[k] = v
			}
			for k, v := range weights {
				merged[k] = v
			}
		}
	}

	pw := newPillarWeights(name, merged, description)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.custom[name] = pw
	return pw
}

// UpdateCustomWeights applies updates to an existing custom set and
// re-normalizes it, returning false if name is not registered.
func (m *Manager) UpdateCustomWeights(name string, updates map[string]float64) (PillarWeights, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.custom[name]
	if !ok {
		return PillarWeights{}, false
	}
	merged := make(map[string]float64, len(existing.Weights)+len(updates))
	for k, v := range existing.Weights {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}
	existing.Weights = normalize(merged)
	m.custom[name] = existing
	return existing, true
}

// DeleteCustomWeights removes a registered custom set.
func (m *Manager) DeleteCustomWeights(name string) (PillarWeights, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pw, ok := m.custom[name]
	if ok {
		delete(m.custom, name)
	}
	return pw, ok
}

// ListPresets summarizes every built-in preset.
func (m *Manager) ListPresets() []PresetSummary {
	out := make([]PresetSummary, 0, len(allPresets))
	for _, p := range allPresets {
		pw := presets[p]
		out = append(out, PresetSummary{
			Preset:      p,
			Name:        pw.Name,
			Description: pw.Description,
			Pillars:     sortedKeys(pw.Weights),
		})
	}
	return out
}

// ListCustom summarizes every registered custom weight set.
func (m *Manager) ListCustom() []PresetSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.custom))
	for name := range m.custom {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]PresetSummary, 0, len(names))
	for _, name := range names {
		pw := m.custom[name]
		out = append(out, PresetSummary{
			Name:        pw.Name,
			Description: pw.Description,
			Pillars:     sortedKeys(pw.Weights),
		})
	}
	return out
}

// RecommendPreset suggests a Preset given an optional industry, regulation,
// and priority list, in that order of precedence. Matching is
// case-insensitive; an unmatched context falls back to Balanced.
func RecommendPreset(industry, regulation string, priorities []string) Preset {
	if industry != "" {
		industryMap := map[string]Preset{
			"healthcare":   Healthcare,
			"medical":      Healthcare,
			"finance":      Finance,
			"banking":      Finance,
			"insurance":    Finance,
			"social_media": ContentModeration,
			"content":      ContentModeration,
		}
		if p, ok := industryMap[strings.ToLower(industry)]; ok {
			return p
		}
	}

	if regulation != "" {
		regulationMap := map[string]Preset{
			"eu_ai_act": RegulatoryEUAIAct,
			"soc2":      RegulatorySOC2,
			"hipaa":     Healthcare,
			"gdpr":      PrivacyFocused,
			"ccpa":      PrivacyFocused,
		}
		if p, ok := regulationMap[strings.ToLower(regulation)]; ok {
			return p
		}
	}

	for _, raw := range priorities {
		switch strings.ToLower(raw) {
		case "fairness", "bias":
			return FairnessFocused
		case "privacy":
			return PrivacyFocused
		case "security", "safety":
			return SafetyFocused
		case "performance", "accuracy":
			return PerformanceFocused
		}
	}

	return Balanced
}

// BlendPresets combines several presets by weighted ratio (equal if ratios
// is nil, normalized to sum to 1.0 otherwise) into one named PillarWeights
// covering the union of their pillars.
func BlendPresets(sources []Preset, ratios []float64, name string) PillarWeights {
	if len(sources) == 0 {
		return presets[Balanced]
	}
	if ratios == nil {
		ratios = make([]float64, len(sources))
		for i := range ratios {
			ratios[i] = 1.0
		}
	}
	var totalRatio float64
	for _, r := range ratios {
		totalRatio += r
	}
	normRatios := make([]float64, len(ratios))
	if totalRatio > 0 {
		for i, r := range ratios {
			normRatios[i] = r / totalRatio
		}
	}

	allPillars := map[string]struct{}{}
	for _, p := range sources {
		for pillar := range presets[p].Weights {
			allPillars[pillar] = struct{}{}
		}
	}

	blended := make(map[string]float64, len(allPillars))
	for pillar := range allPillars {
		var sum float64
		for i, p := range sources {
			sum += presets[p].GetWeight(pillar, 0) * normRatios[i]
		}
		blended[pillar] = sum
	}

	names := make([]string, len(sources))
	for i, p := range sources {
		names[i] = string(p)
	}

	pw := newPillarWeights(name, blended, "Blend of "+strings.Join(names, ", "))
	pw.Metadata = map[string]any{
		"source_presets": names,
		"blend_ratios":   normRatios,
	}
	return pw
}

// CompareWeights builds a per-pillar comparison matrix across configs and
// flags pillars whose weight range exceeds 0.1.
func CompareWeights(configs []PillarWeights) Comparison {
	if len(configs) == 0 {
		return Comparison{}
	}

	allPillars := map[string]struct{}{}
	for _, c := range configs {
		for pillar := range c.Weights {
			allPillars[pillar] = struct{}{}
		}
	}

	names := make([]string, len(configs))
	for i, c := range configs {
		names[i] = c.Name
	}

	comparison := make(map[string]map[string]float64, len(allPillars))
	var differences []PillarDifference
	for _, pillar := range sortedKeysFromSet(allPillars) {
		values := make(map[string]float64, len(configs))
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, c := range configs {
			v := c.GetWeight(pillar, 0)
			values[c.Name] = v
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
		comparison[pillar] = values
		if maxV-minV > 0.1 {
			differences = append(differences, PillarDifference{
				Pillar: pillar,
				Min:    minV,
				Max:    maxV,
				Values: values,
			})
		}
	}

	return Comparison{
		Configurations:         names,
		PillarComparison:       comparison,
		SignificantDifferences: differences,
	}
}

func sortedKeys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeysFromSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
