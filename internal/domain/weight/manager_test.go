package weight

import (
	"math"
	"testing"
)

func sumWeights(pw PillarWeights) float64 {
	var total float64
	for _, v := range pw.Weights {
		total += v
	}
	return total
}

func TestPresets_AreNormalized(t *testing.T) {
	t.Parallel()

	for _, p := range allPresets {
		pw := presets[p]
		if math.Abs(sumWeights(pw)-1.0) > 1e-9 {
			t.Errorf("preset %q weights sum to %v, want 1.0", p, sumWeights(pw))
		}
	}
}

func TestManager_GetWeights_DefaultsAndFallback(t *testing.T) {
	t.Parallel()

	m := NewManager(Balanced)
	pw := m.GetWeights("", "")
	if pw.Name != "balanced" {
		t.Errorf("GetWeights() = %v, want balanced", pw.Name)
	}

	pw2 := m.GetWeights(SafetyFocused, "")
	if pw2.Name != "safety_focused" {
		t.Errorf("GetWeights(safety_focused) = %v", pw2.Name)
	}
}

func TestManager_CreateCustomWeights_MergesBase(t *testing.T) {
	t.Parallel()

	m := NewManager(Balanced)
	pw := m.CreateCustomWeights("my_custom", map[string]float64{"security": 5.0}, "desc", Balanced)
	if pw.Weights["security"] <= pw.Weights["accuracy"] {
		t.Errorf("custom security weight should dominate merged base, got %v vs %v", pw.Weights["security"], pw.Weights["accuracy"])
	}
	if math.Abs(sumWeights(pw)-1.0) > 1e-9 {
		t.Errorf("custom weights sum to %v, want 1.0", sumWeights(pw))
	}

	got := m.GetWeights("", "my_custom")
	if got.Name != "my_custom" {
		t.Errorf("GetWeights(custom_name) = %v, want my_custom", got.Name)
	}
}

func TestManager_UpdateCustomWeights(t *testing.T) {
	t.Parallel()

	m := NewManager(Balanced)
	m.CreateCustomWeights("c", map[string]float64{"a": 1.0, "b": 1.0}, "", "")

	updated, ok := m.UpdateCustomWeights("c", map[string]float64{"a": 3.0})
	if !ok {
		t.Fatal("UpdateCustomWeights() ok = false")
	}
	if updated.Weights["a"] <= updated.Weights["b"] {
		t.Errorf("after update, a should dominate b: %v vs %v", updated.Weights["a"], updated.Weights["b"])
	}

	if _, ok := m.UpdateCustomWeights("nonexistent", nil); ok {
		t.Error("UpdateCustomWeights(nonexistent) ok = true, want false")
	}
}

func TestManager_DeleteCustomWeights(t *testing.T) {
	t.Parallel()

	m := NewManager(Balanced)
	m.CreateCustomWeights("c", map[string]float64{"a": 1.0}, "", "")

	if _, ok := m.DeleteCustomWeights("c"); !ok {
		t.Fatal("DeleteCustomWeights() ok = false")
	}
	if _, ok := m.DeleteCustomWeights("c"); ok {
		t.Error("DeleteCustomWeights() on already-deleted entry: ok = true, want false")
	}
}

func TestRecommendPreset(t *testing.T) {
	t.Parallel()

	cases := []struct {
		industry, regulation string
		priorities           []string
		want                 Preset
	}{
		{industry: "Healthcare", want: Healthcare},
		{industry: "banking", want: Finance},
		{regulation: "EU_AI_ACT", want: RegulatoryEUAIAct},
		{regulation: "gdpr", want: PrivacyFocused},
		{priorities: []string{"fairness"}, want: FairnessFocused},
		{priorities: []string{"safety"}, want: SafetyFocused},
		{want: Balanced},
	}
	for _, c := range cases {
		got := RecommendPreset(c.industry, c.regulation, c.priorities)
		if got != c.want {
			t.Errorf("RecommendPreset(%q, %q, %v) = %v, want %v", c.industry, c.regulation, c.priorities, got, c.want)
		}
	}
}

func TestBlendPresets_EqualRatioByDefault(t *testing.T) {
	t.Parallel()

	blended := BlendPresets([]Preset{SafetyFocused, PerformanceFocused}, nil, "blend")
	if math.Abs(sumWeights(blended)-1.0) > 1e-9 {
		t.Errorf("blended weights sum to %v, want 1.0", sumWeights(blended))
	}
	if len(blended.Weights) == 0 {
		t.Fatal("blended weights empty")
	}
}

func TestBlendPresets_EmptyReturnsBalanced(t *testing.T) {
	t.Parallel()

	blended := BlendPresets(nil, nil, "blend")
	if blended.Name != "balanced" {
		t.Errorf("BlendPresets(nil) = %v, want balanced", blended.Name)
	}
}

func TestCompareWeights_FlagsSignificantDifferences(t *testing.T) {
	t.Parallel()

	a := newPillarWeights("a", map[string]float64{"x": 0.9, "y": 0.1}, "")
	b := newPillarWeights("b", map[string]float64{"x": 0.1, "y": 0.9}, "")

	cmp := CompareWeights([]PillarWeights{a, b})
	if len(cmp.SignificantDifferences) != 2 {
		t.Errorf("len(SignificantDifferences) = %d, want 2", len(cmp.SignificantDifferences))
	}
}

func TestListPresets_CoversAllBuiltins(t *testing.T) {
	t.Parallel()

	m := NewManager(Balanced)
	summaries := m.ListPresets()
	if len(summaries) != len(allPresets) {
		t.Errorf("len(ListPresets()) = %d, want %d", len(summaries), len(allPresets))
	}
}
