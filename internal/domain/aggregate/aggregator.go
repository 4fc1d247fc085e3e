package aggregate

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// epsilon guards against log(0) and division by zero when clipping scores
// for the geometric/harmonic/weighted-product strategies.
const epsilon = 1e-10

// Aggregator reduces pillar scores to a composite AggregatedScore.
type Aggregator struct {
	defaultStrategy      Strategy
	minConfidenceThreshold float64
	missingScoreHandling MissingScoreHandling
	defaultScore         float64
}

// Option configures an Aggregator at construction.
type Option func(*Aggregator)

// WithMinConfidenceThreshold sets the confidence floor below which a pillar
// score is filtered per missingScoreHandling. Default 0.5.
func WithMinConfidenceThreshold(t float64) Option {
	return func(a *Aggregator) { a.minConfidenceThreshold = t }
}

// WithMissingScoreHandling sets how low-confidence scores are treated.
// Default exclude.
func WithMissingScoreHandling(h MissingScoreHandling) Option {
	return func(a *Aggregator) { a.missingScoreHandling = h }
}

// WithDefaultScore sets the score substituted by HandlingDefault and
// returned when the input set is empty after filtering. Default 0.5.
func WithDefaultScore(s float64) Option {
	return func(a *Aggregator) { a.defaultScore = s }
}

// New creates an Aggregator with defaultStrategy used whenever Aggregate is
// called without an explicit strategy.
func New(defaultStrategy Strategy, opts ...Option) *Aggregator {
	a := &Aggregator{
		defaultStrategy:        defaultStrategy,
		minConfidenceThreshold: 0.5,
		missingScoreHandling:   HandlingExclude,
		defaultScore:           0.5,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate reduces scores to a single AggregatedScore under strategy
// (falling back to the Aggregator's default strategy when empty). weights,
// if non-nil, overrides each named pillar's weight before aggregation.
func (a *Aggregator) Aggregate(scores []PillarScore, strategy Strategy, weights map[string]float64) (AggregatedScore, error) {
	if strategy == "" {
		strategy = a.defaultStrategy
	}

	valid, err := a.filterScores(scores)
	if err != nil {
		return AggregatedScore{}, err
	}

	if len(valid) == 0 {
		return AggregatedScore{
			OverallScore:        a.defaultScore,
			StrategyUsed:        strategy,
			PillarScores:        map[string]float64{},
			PillarContributions: map[string]float64{},
			Confidence:          0.0,
			RiskLevel:           RiskUnknown,
		}, nil
	}

	if weights != nil {
		for i := range valid {
			if w, ok := weights[valid[i].PillarName]; ok {
				valid[i].Weight = w
			}
		}
	}

	overall, err := calculateAggregate(valid, strategy)
	if err != nil {
		return AggregatedScore{}, err
	}

	pillarScores := make(map[string]float64, len(valid))
	for _, s := range valid {
		pillarScores[s.PillarName] = s.Score
	}

	return AggregatedScore{
		OverallScore:        overall,
		StrategyUsed:        strategy,
		PillarScores:        pillarScores,
		PillarContributions: calculateContributions(valid, strategy),
		Confidence:          calculateConfidence(valid),
		RiskLevel:           defaultRiskLevel(overall),
		NumPillars:          len(valid),
	}, nil
}

func (a *Aggregator) filterScores(scores []PillarScore) ([]PillarScore, error) {
	valid := make([]PillarScore, 0, len(scores))
	for _, s := range scores {
		if s.Confidence >= a.minConfidenceThreshold {
			valid = append(valid, s)
			continue
		}
		switch a.missingScoreHandling {
		case HandlingDefault:
			valid = append(valid, PillarScore{
				PillarName: s.PillarName,
				Score:      a.defaultScore,
				Confidence: s.Confidence,
				Weight:     s.Weight,
			})
		case HandlingFail:
			return nil, fmt.Errorf("aggregate: pillar %q has confidence %.3f below threshold %.3f",
				s.PillarName, s.Confidence, a.minConfidenceThreshold)
		default: // HandlingExclude
		}
	}
	return valid, nil
}

func calculateAggregate(scores []PillarScore, strategy Strategy) (float64, error) {
	values := make([]float64, len(scores))
	weights := make([]float64, len(scores))
	for i, s := range scores {
		values[i] = s.Score
		weights[i] = s.Weight
	}

	switch strategy {
	case WeightedAverage:
		sumW := sum(weights)
		if sumW == 0 {
			return mean(values), nil
		}
		return weightedSum(values, weights) / sumW, nil

	case ArithmeticMean:
		return mean(values), nil

	case GeometricMean:
		clipped := clipAll(values, epsilon, 1.0)
		var sumLog float64
		for _, v := range clipped {
			sumLog += math.Log(v)
		}
		return math.Exp(sumLog / float64(len(clipped))), nil

	case HarmonicMean:
		clipped := clipAll(values, epsilon, 1.0)
		var sumInv float64
		for _, v := range clipped {
			sumInv += 1.0 / v
		}
		return float64(len(clipped)) / sumInv, nil

	case Minimum:
		return minOf(values), nil

	case Maximum:
		return maxOf(values), nil

	case Median:
		return medianOf(values), nil

	case WeightedProduct:
		clipped := clipAll(values, epsilon, 1.0)
		sumW := sum(weights)
		product := 1.0
		for i, v := range clipped {
			w := weights[i]
			if sumW > 0 {
				w = weights[i] / sumW
			}
			product *= math.Pow(v, w)
		}
		return product, nil

	case Percentile90:
		return percentileOf(values, 10), nil // lower tail is worse-case

	case Percentile95:
		return percentileOf(values, 5), nil

	default:
		return 0, fmt.Errorf("aggregate: unknown strategy %q", strategy)
	}
}

func calculateContributions(scores []PillarScore, strategy Strategy) map[string]float64 {
	contributions := make(map[string]float64, len(scores))
	totalWeight := 0.0
	for _, s := range scores {
		totalWeight += s.Weight
	}

	switch strategy {
	case WeightedAverage, WeightedProduct:
		for _, s := range scores {
			fraction := 1.0 / float64(len(scores))
			if totalWeight > 0 {
				fraction = s.Weight / totalWeight
			}
			contributions[s.PillarName] = s.Score * fraction
		}

	case Minimum:
		minScore := minOfScores(scores)
		for _, s := range scores {
			if s.Score == minScore {
				contributions[s.PillarName] = 1.0
			} else {
				contributions[s.PillarName] = 0.0
			}
		}

	case Maximum:
		maxScore := maxOfScores(scores)
		for _, s := range scores {
			if s.Score == maxScore {
				contributions[s.PillarName] = 1.0
			} else {
				contributions[s.PillarName] = 0.0
			}
		}

	default:
		for _, s := range scores {
			contributions[s.PillarName] = s.Score / float64(len(scores))
		}
	}

	return contributions
}

func calculateConfidence(scores []PillarScore) float64 {
	if len(scores) == 0 {
		return 0.0
	}
	totalWeight := 0.0
	for _, s := range scores {
		totalWeight += s.Weight
	}
	if totalWeight == 0 {
		confidences := make([]float64, len(scores))
		for i, s := range scores {
			confidences[i] = s.Confidence
		}
		return mean(confidences)
	}
	var weighted float64
	for _, s := range scores {
		weighted += s.Confidence * s.Weight
	}
	return weighted / totalWeight
}

// defaultRiskLevel maps an overall score to a risk level using the
// Aggregator's built-in defaults; the Threshold Manager may override this
// mapping with a configured policy.
func defaultRiskLevel(score float64) RiskLevel {
	switch {
	case score >= 0.9:
		return RiskLow
	case score >= 0.7:
		return RiskMedium
	case score >= 0.5:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// AggregateByCategory aggregates subsets of scores keyed by a category name,
// e.g. grouping pillars into "safety", "fairness", "privacy" buckets.
func (a *Aggregator) AggregateByCategory(scores []PillarScore, categoryMapping map[string][]string, strategy Strategy) (map[string]AggregatedScore, error) {
	byName := make(map[string]PillarScore, len(scores))
	for _, s := range scores {
		byName[s.PillarName] = s
	}

	results := make(map[string]AggregatedScore, len(categoryMapping))
	for category, names := range categoryMapping {
		var subset []PillarScore
		for _, name := range names {
			if s, ok := byName[name]; ok {
				subset = append(subset, s)
			}
		}
		if len(subset) == 0 {
			continue
		}
		agg, err := a.Aggregate(subset, strategy, nil)
		if err != nil {
			return nil, fmt.Errorf("aggregate category %q: %w", category, err)
		}
		results[category] = agg
	}
	return results, nil
}

// CompareAggregations runs every strategy in strategies (all ten, if nil)
// concurrently over the same input scores, one goroutine per strategy.
func (a *Aggregator) CompareAggregations(scores []PillarScore, strategies []Strategy) (map[Strategy]AggregatedScore, error) {
	if strategies == nil {
		strategies = AllStrategies
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[Strategy]AggregatedScore, len(strategies))
		errs    []error
	)

	for _, strategy := range strategies {
		wg.Add(1)
		go func(s Strategy) {
			defer wg.Done()
			agg, err := a.Aggregate(scores, s, nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			results[s] = agg
		}(strategy)
	}
	wg.Wait()

	if len(errs) > 0 {
		return nil, errs[0]
	}
	return results, nil
}

// TrendAnalysis analyzes a time-ordered sequence of pillar score sets,
// returning direction, volatility, and per-pillar deltas. historicalScores
// must contain at least two entries.
func (a *Aggregator) TrendAnalysis(historicalScores [][]PillarScore, strategy Strategy) (TrendReport, error) {
	if len(historicalScores) < 2 {
		return TrendReport{}, fmt.Errorf("aggregate: trend analysis needs at least 2 data points, got %d", len(historicalScores))
	}

	aggregates := make([]AggregatedScore, len(historicalScores))
	for i, scores := range historicalScores {
		agg, err := a.Aggregate(scores, strategy, nil)
		if err != nil {
			return TrendReport{}, err
		}
		aggregates[i] = agg
	}

	overalls := make([]float64, len(aggregates))
	for i, agg := range aggregates {
		overalls[i] = agg.OverallScore
	}

	delta := overalls[len(overalls)-1] - overalls[0]
	direction := TrendImproving
	if delta < 0 {
		direction = TrendDeclining
	}
	if math.Abs(delta) < trendDeadBand {
		direction = TrendStable
	}

	allPillars := map[string]struct{}{}
	for _, agg := range aggregates {
		for p := range agg.PillarScores {
			allPillars[p] = struct{}{}
		}
	}

	pillarDeltas := make(map[string]PillarTrend, len(allPillars))
	for pillar := range allPillars {
		var values []float64
		for _, agg := range aggregates {
			if v, ok := agg.PillarScores[pillar]; ok {
				values = append(values, v)
			}
		}
		if len(values) < 2 {
			continue
		}
		change := values[len(values)-1] - values[0]
		dir := TrendStable
		if change > trendDeadBand {
			dir = TrendImproving
		} else if change < -trendDeadBand {
			dir = TrendDeclining
		}
		pillarDeltas[pillar] = PillarTrend{
			Change:     change,
			Direction:  dir,
			Volatility: stdDev(values),
		}
	}

	return TrendReport{
		Direction:      direction,
		Volatility:     stdDev(overalls),
		AverageScore:   mean(overalls),
		Latest:         overalls[len(overalls)-1],
		First:          overalls[0],
		NumEvaluations: len(historicalScores),
		PillarDeltas:   pillarDeltas,
	}, nil
}

func sum(vs []float64) float64 {
	var s float64
	for _, v := range vs {
		s += v
	}
	return s
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	return sum(vs) / float64(len(vs))
}

func weightedSum(values, weights []float64) float64 {
	var s float64
	for i, v := range values {
		s += v * weights[i]
	}
	return s
}

func clipAll(vs []float64, lo, hi float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = math.Min(math.Max(v, lo), hi)
	}
	return out
}

func minOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOfScores(scores []PillarScore) float64 {
	vs := make([]float64, len(scores))
	for i, s := range scores {
		vs[i] = s.Score
	}
	return minOf(vs)
}

func maxOfScores(scores []PillarScore) float64 {
	vs := make([]float64, len(scores))
	for i, s := range scores {
		vs[i] = s.Score
	}
	return maxOf(vs)
}

func medianOf(vs []float64) float64 {
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}

func percentileOf(vs []float64, p float64) float64 {
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := (p / 100.0) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func stdDev(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	m := mean(vs)
	var sumSq float64
	for _, v := range vs {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(vs)))
}
