package compliance

import "sort"

// ControlScoreFor computes a control's compliance score as the
// relevance-weighted average of known pillar scores: Σ rᵢ·sᵢ / Σ rᵢ over
// pillars with a known score. If the relevant pillars carry zero total
// weight, or none are present in pillarScores, the score is zero.
func ControlScoreFor(frameworkID, controlID string, pillarScores map[string]float64) float64 {
	relevance := relevanceForControl(frameworkID, controlID)
	if len(relevance) == 0 {
		return 0
	}

	var weightedSum, totalWeight float64
	for pillar, weight := range relevance {
		score, ok := pillarScores[pillar]
		if !ok {
			continue
		}
		weightedSum += score * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

// ScoreControls computes every control's compliance score for a framework.
func ScoreControls(frameworkID string, pillarScores map[string]float64) ([]ControlScore, error) {
	framework, ok := GetFramework(frameworkID)
	if !ok {
		return nil, &UnknownFrameworkError{FrameworkID: frameworkID}
	}

	controls := framework.Controls()
	out := make([]ControlScore, len(controls))
	for i, c := range controls {
		out[i] = ControlScore{
			ControlID:   c.ID,
			ControlName: c.Name,
			Score:       ControlScoreFor(frameworkID, c.ID, pillarScores),
		}
	}
	return out, nil
}

// Analyze runs a gap analysis for a framework: every control scoring below
// threshold is reported as a Gap, annotated with the pillars whose low
// score contributed most.
func Analyze(frameworkID string, pillarScores map[string]float64, threshold float64) (GapAnalysis, error) {
	framework, ok := GetFramework(frameworkID)
	if !ok {
		return GapAnalysis{}, &UnknownFrameworkError{FrameworkID: frameworkID}
	}

	controls := framework.Controls()
	result := GapAnalysis{
		FrameworkID:   frameworkID,
		FrameworkName: framework.Name,
		TotalControls: len(controls),
	}

	for _, c := range controls {
		score := ControlScoreFor(frameworkID, c.ID, pillarScores)
		if score >= threshold {
			continue
		}

		relevance := relevanceForControl(frameworkID, c.ID)
		var contributing []ContributingPillar
		for pillar, weight := range relevance {
			pScore := pillarScores[pillar]
			if pScore < threshold {
				contributing = append(contributing, ContributingPillar{Pillar: pillar, Score: pScore, Impact: weight})
			}
		}
		sort.Slice(contributing, func(i, j int) bool { return contributing[i].Pillar < contributing[j].Pillar })

		topPillar := ""
		bestImpact := -1.0
		for _, cp := range contributing {
			weighted := cp.Impact * cp.Score
			if weighted > bestImpact {
				bestImpact = weighted
				topPillar = cp.Pillar
			}
		}

		result.Gaps = append(result.Gaps, Gap{
			ControlID:           c.ID,
			ControlName:         c.Name,
			CurrentScore:        score,
			Threshold:           threshold,
			Shortfall:           threshold - score,
			ContributingPillars: contributing,
			TopPillar:           topPillar,
		})
	}

	return result, nil
}

// UnknownFrameworkError reports a request against a framework id that is
// not in the built-in catalog.
type UnknownFrameworkError struct {
	FrameworkID string
}

func (e *UnknownFrameworkError) Error() string {
	return "compliance: unknown framework " + e.FrameworkID
}
