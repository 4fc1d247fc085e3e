package compliance

import "testing"

func TestControlScoreFor_WeightedAverageOverKnownPillars(t *testing.T) {
	t.Parallel()

	scores := map[string]float64{"explain": 0.9, "governance": 0.4}
	got := ControlScoreFor("eu-ai-act", "art14-4", scores)

	if got <= 0 || got >= 1 {
		t.Fatalf("ControlScoreFor() = %v, want a value strictly between 0 and 1", got)
	}
}

func TestControlScoreFor_ZeroWhenNoRelevantPillarsKnown(t *testing.T) {
	t.Parallel()

	got := ControlScoreFor("eu-ai-act", "art13-1", map[string]float64{"accuracy": 0.9})
	if got != 0 {
		t.Errorf("ControlScoreFor() = %v, want 0 when the relevant pillar has no known score", got)
	}
}

func TestControlScoreFor_ZeroForControlWithNoMappings(t *testing.T) {
	t.Parallel()

	got := ControlScoreFor("eu-ai-act", "does-not-exist", map[string]float64{"accuracy": 1.0})
	if got != 0 {
		t.Errorf("ControlScoreFor() = %v, want 0 for an unmapped control", got)
	}
}

func TestScoreControls_UnknownFrameworkErrors(t *testing.T) {
	t.Parallel()

	_, err := ScoreControls("not-a-framework", nil)
	if err == nil {
		t.Fatal("ScoreControls() error = nil, want an UnknownFrameworkError")
	}
}

func TestAnalyze_FlagsControlsBelowThreshold(t *testing.T) {
	t.Parallel()

	scores := map[string]float64{
		"explain": 0.2, "governance": 0.2, "accuracy": 0.2, "robustness": 0.2,
		"security": 0.2, "testing": 0.2, "fairness": 0.2, "trace": 0.2,
		"actions": 0.2, "imitation": 0.2, "privacy": 0.2, "toxicity": 0.2,
	}

	analysis, err := Analyze("eu-ai-act", scores, 0.7)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if len(analysis.Gaps) == 0 {
		t.Fatal("expected at least one gap with uniformly low pillar scores")
	}
	for _, g := range analysis.Gaps {
		if g.CurrentScore >= g.Threshold {
			t.Errorf("gap %s has CurrentScore %v >= Threshold %v", g.ControlID, g.CurrentScore, g.Threshold)
		}
	}
}

func TestAnalyze_NoGapsWhenAllPillarsHighScoring(t *testing.T) {
	t.Parallel()

	scores := map[string]float64{
		"explain": 1.0, "governance": 1.0, "accuracy": 1.0, "robustness": 1.0,
		"security": 1.0, "testing": 1.0, "fairness": 1.0, "trace": 1.0,
		"actions": 1.0, "imitation": 1.0, "privacy": 1.0, "toxicity": 1.0,
	}

	analysis, err := Analyze("eu-ai-act", scores, 0.7)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if len(analysis.Gaps) != 0 {
		t.Errorf("Gaps = %+v, want none when every relevant pillar scores 1.0", analysis.Gaps)
	}
}

func TestAnalyze_TopPillarIsHighestImpactContributor(t *testing.T) {
	t.Parallel()

	// art9-1 maps only to governance (weight 1.0) in the relevance table.
	scores := map[string]float64{"governance": 0.1}
	analysis, err := Analyze("eu-ai-act", scores, 0.7)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	var found bool
	for _, g := range analysis.Gaps {
		if g.ControlID == "art9-1" {
			found = true
			if g.TopPillar != "governance" {
				t.Errorf("TopPillar = %q, want %q", g.TopPillar, "governance")
			}
		}
	}
	if !found {
		t.Fatal("expected a gap for control art9-1")
	}
}

func TestGetFramework_ListsAllBuiltins(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"eu-ai-act", "nist-ai-rmf", "soc2", "iso-42001", "gdpr"} {
		if _, ok := GetFramework(id); !ok {
			t.Errorf("GetFramework(%q) not found", id)
		}
	}
	if len(ListFrameworks()) != 5 {
		t.Errorf("len(ListFrameworks()) = %d, want 5", len(ListFrameworks()))
	}
}

func TestRequiredPillars_IncludesMappedPillars(t *testing.T) {
	t.Parallel()

	pillars := RequiredPillars("gdpr")
	want := map[string]bool{"privacy": true, "explain": true, "governance": true, "fairness": true}
	got := make(map[string]bool)
	for _, p := range pillars {
		got[p] = true
	}
	for p := range want {
		if !got[p] {
			t.Errorf("RequiredPillars(gdpr) missing %q", p)
		}
	}
}

func TestFramework_ControlLookup(t *testing.T) {
	t.Parallel()

	fw, _ := GetFramework("soc2")
	c, ok := fw.Control("cc6.1")
	if !ok {
		t.Fatal("Control(cc6.1) not found")
	}
	if c.Name != "Logical Access Security" {
		t.Errorf("Name = %q, want %q", c.Name, "Logical Access Security")
	}

	if _, ok := fw.Control("does-not-exist"); ok {
		t.Error("Control() found a nonexistent control id")
	}
}
