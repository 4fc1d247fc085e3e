package threshold

import "testing"

func TestNew_RejectsNonMonotoneOrdering(t *testing.T) {
	t.Parallel()

	if _, err := New("bad", 0.5, 0.3, 0.7, 0.85, true); err == nil {
		t.Fatal("New() with critical > high: error = nil, want error")
	}
	if _, err := New("bad-inverted", 0.3, 0.5, 0.7, 0.85, false); err == nil {
		t.Fatal("New() lower-is-better with increasing cut-points: error = nil, want error")
	}
}

func TestNew_AcceptsEqualCutPoints(t *testing.T) {
	t.Parallel()

	if _, err := New("flat", 0.5, 0.5, 0.5, 0.5, true); err != nil {
		t.Fatalf("New() with equal cut-points: error = %v, want nil", err)
	}
}

func TestRiskLevelFor_Monotonicity(t *testing.T) {
	t.Parallel()

	cfg := must(New("m", 0.3, 0.5, 0.7, 0.85, true))
	for _, score := range []float64{0.3, 0.5, 0.7, 0.85, 1.0} {
		if cfg.RiskLevelFor(score) == RiskCritical {
			t.Errorf("RiskLevelFor(%v) = critical, want score >= critical_threshold implies not critical", score)
		}
	}
	if cfg.RiskLevelFor(0.29) != RiskCritical {
		t.Errorf("RiskLevelFor(0.29) = %v, want critical", cfg.RiskLevelFor(0.29))
	}
}

func TestRiskLevelFor_LowerIsBetter(t *testing.T) {
	t.Parallel()

	cfg := must(New("raw_toxicity", 0.8, 0.6, 0.4, 0.2, false))
	if cfg.RiskLevelFor(0.9) != RiskCritical {
		t.Errorf("RiskLevelFor(0.9) = %v, want critical", cfg.RiskLevelFor(0.9))
	}
	if cfg.RiskLevelFor(0.05) != RiskMinimal {
		t.Errorf("RiskLevelFor(0.05) = %v, want minimal", cfg.RiskLevelFor(0.05))
	}
}

func TestCheckScores_PassToFail(t *testing.T) {
	t.Parallel()

	m := NewManager(nil, RiskMedium, false)

	pass := m.CheckScores(map[string]float64{"overall": 0.72}, nil)
	if pass.OverallRisk != RiskMedium {
		t.Errorf("OverallRisk(0.72) = %v, want medium", pass.OverallRisk)
	}
	if !pass.Passed {
		t.Errorf("Passed(0.72) = false, want true")
	}

	fail := m.CheckScores(map[string]float64{"overall": 0.49}, nil)
	if fail.OverallRisk != RiskHigh {
		t.Errorf("OverallRisk(0.49) = %v, want high", fail.OverallRisk)
	}
	if fail.Passed {
		t.Errorf("Passed(0.49) = true, want false")
	}
	if len(fail.Violations) != 1 {
		t.Fatalf("len(Violations) = %d, want 1", len(fail.Violations))
	}

	advice := DeploymentRecommendation(fail)
	if advice.Recommendation != RecommendReviewRequired {
		t.Errorf("Recommendation = %v, want %v", advice.Recommendation, RecommendReviewRequired)
	}
}

func TestCheckScores_UnknownMetricFallsBackToOverall(t *testing.T) {
	t.Parallel()

	m := NewManager(nil, RiskMedium, false)
	result := m.CheckScores(map[string]float64{"made_up_metric": 0.1}, nil)
	if result.RiskLevels["made_up_metric"] != RiskCritical {
		t.Errorf("RiskLevel = %v, want critical (overall threshold applied)", result.RiskLevels["made_up_metric"])
	}
}

func TestCheckScores_FailOnAnyViolation(t *testing.T) {
	t.Parallel()

	m := NewManager(nil, RiskCritical, true)
	result := m.CheckScores(map[string]float64{"overall": 0.6}, map[string]RiskLevel{"overall": RiskLow})
	if result.Passed {
		t.Error("Passed = true, want false: any violation must fail when FailOnAnyViolation is set")
	}
}

func TestDeploymentRecommendation_Deploy(t *testing.T) {
	t.Parallel()

	advice := DeploymentRecommendation(CheckResult{Passed: true, OverallRisk: RiskMinimal})
	if advice.Recommendation != RecommendDeploy {
		t.Errorf("Recommendation = %v, want %v", advice.Recommendation, RecommendDeploy)
	}
}

func TestDeploymentRecommendation_DeployWithMonitoring(t *testing.T) {
	t.Parallel()

	advice := DeploymentRecommendation(CheckResult{Passed: true, OverallRisk: RiskMedium})
	if advice.Recommendation != RecommendDeployWithMonitor {
		t.Errorf("Recommendation = %v, want %v", advice.Recommendation, RecommendDeployWithMonitor)
	}
}

func TestDeploymentRecommendation_DoNotDeploy(t *testing.T) {
	t.Parallel()

	advice := DeploymentRecommendation(CheckResult{Passed: false, OverallRisk: RiskCritical})
	if advice.Recommendation != RecommendDoNotDeploy {
		t.Errorf("Recommendation = %v, want %v", advice.Recommendation, RecommendDoNotDeploy)
	}
}

func TestDeploymentRecommendation_TopFiveViolationsOnly(t *testing.T) {
	t.Parallel()

	var violations []Violation
	for i := 0; i < 8; i++ {
		violations = append(violations, Violation{MetricName: "m", ObservedLevel: RiskHigh, ExpectedLevel: RiskLow})
	}
	advice := DeploymentRecommendation(CheckResult{Passed: false, OverallRisk: RiskHigh, Violations: violations})
	if len(advice.SuggestedActions) != 5 {
		t.Errorf("len(SuggestedActions) = %d, want 5", len(advice.SuggestedActions))
	}
}

func TestNamedPolicies_AreValid(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"strict", "standard", "lenient"} {
		p, ok := NamedPolicy(name)
		if !ok {
			t.Fatalf("NamedPolicy(%q) not found", name)
		}
		m := ApplyPolicy(p)
		if m == nil {
			t.Fatalf("ApplyPolicy(%q) = nil", name)
		}
	}
	if _, ok := NamedPolicy("nonexistent"); ok {
		t.Error("NamedPolicy(nonexistent) = found, want not found")
	}
}

func TestManager_SetGetRemoveThreshold(t *testing.T) {
	t.Parallel()

	m := NewManager(nil, RiskMedium, false)
	custom := must(New("custom", 0.1, 0.2, 0.3, 0.4, true))
	m.SetThreshold("custom", custom)

	got, ok := m.GetThreshold("custom")
	if !ok || got.Name != "custom" {
		t.Fatalf("GetThreshold(custom) = %v, %v", got, ok)
	}

	removed, ok := m.RemoveThreshold("custom")
	if !ok || removed.Name != "custom" {
		t.Fatalf("RemoveThreshold(custom) = %v, %v", removed, ok)
	}
	if _, ok := m.GetThreshold("custom"); ok {
		t.Error("GetThreshold(custom) after remove: found, want not found")
	}
}

func TestManager_EmptyScoresYieldsMinimalOverall(t *testing.T) {
	t.Parallel()

	m := NewManager(nil, RiskMedium, false)
	result := m.CheckScores(map[string]float64{}, nil)
	if result.OverallRisk != RiskMinimal {
		t.Errorf("OverallRisk(empty) = %v, want minimal", result.OverallRisk)
	}
	if !result.Passed {
		t.Error("Passed(empty) = false, want true")
	}
}
