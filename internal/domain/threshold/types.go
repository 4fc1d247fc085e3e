// Package threshold classifies normalized scores into risk levels and
// derives deployment recommendations from the resulting verdict.
package threshold

import (
	"fmt"
	"time"
)

// RiskLevel is a coarse risk classification, ordered worst (Critical) to
// best (Minimal).
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
	RiskMinimal  RiskLevel = "minimal"
)

// severity maps a RiskLevel to a numeric rank; higher is worse.
var severity = map[RiskLevel]int{
	RiskCritical: 5,
	RiskHigh:     4,
	RiskMedium:   3,
	RiskLow:      2,
	RiskMinimal:  1,
}

// Worse reports whether r is a strictly more severe level than other.
func (r RiskLevel) Worse(other RiskLevel) bool {
	return severity[r] > severity[other]
}

// WorseOrEqual reports whether r is at least as severe as other.
func (r RiskLevel) WorseOrEqual(other RiskLevel) bool {
	return severity[r] >= severity[other]
}

// Config is a single threshold: four cut-points on [0,1] plus an
// orientation flag. The cut-points must be monotone for the configured
// orientation; New rejects any ordering violation.
type Config struct {
	Name        string
	Critical    float64
	High        float64
	Medium      float64
	Low         float64
	Description string
	Unit        string

	// HigherIsBetter is true when a larger raw score is safer (the
	// common case: accuracy, robustness, ...). When false the cut-points
	// are interpreted in descending order (e.g. a raw toxicity score,
	// where a larger value is worse).
	HigherIsBetter bool
}

// New validates the monotone-ordering invariant and returns a Config.
// For higher-is-better: Critical <= High <= Medium <= Low. For
// lower-is-better the inequalities reverse.
func New(name string, critical, high, medium, low float64, higherIsBetter bool) (Config, error) {
	c := Config{
		Name:           name,
		Critical:       critical,
		High:           high,
		Medium:         medium,
		Low:            low,
		HigherIsBetter: higherIsBetter,
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if c.HigherIsBetter {
		if !(c.Critical <= c.High && c.High <= c.Medium && c.Medium <= c.Low) {
			return fmt.Errorf("threshold %q: cut-points must satisfy critical <= high <= medium <= low for higher-is-better, got %v <= %v <= %v <= %v",
				c.Name, c.Critical, c.High, c.Medium, c.Low)
		}
		return nil
	}
	if !(c.Critical >= c.High && c.High >= c.Medium && c.Medium >= c.Low) {
		return fmt.Errorf("threshold %q: cut-points must satisfy critical >= high >= medium >= low for lower-is-better, got %v >= %v >= %v >= %v",
			c.Name, c.Critical, c.High, c.Medium, c.Low)
	}
	return nil
}

// RiskLevelFor maps a raw score to a RiskLevel under this config's
// orientation.
func (c Config) RiskLevelFor(score float64) RiskLevel {
	if c.HigherIsBetter {
		switch {
		case score < c.Critical:
			return RiskCritical
		case score < c.High:
			return RiskHigh
		case score < c.Medium:
			return RiskMedium
		case score < c.Low:
			return RiskLow
		default:
			return RiskMinimal
		}
	}
	switch {
	case score > c.Critical:
		return RiskCritical
	case score > c.High:
		return RiskHigh
	case score > c.Medium:
		return RiskMedium
	case score > c.Low:
		return RiskLow
	default:
		return RiskMinimal
	}
}

// Violation records a score whose risk level exceeded an expected bound.
type Violation struct {
	MetricName    string
	Score         float64
	ThresholdUsed Config
	ObservedLevel RiskLevel
	ExpectedLevel RiskLevel
	Message       string
	Timestamp     time.Time
}

// CheckResult is the outcome of checking a set of named scores.
type CheckResult struct {
	Passed       bool
	RiskLevels   map[string]RiskLevel
	Violations   []Violation
	OverallRisk  RiskLevel
	ScoresChecked int
	Timestamp    time.Time
}

// Recommendation is a deployment_recommendation derived from a CheckResult.
type Recommendation string

const (
	RecommendDeploy             Recommendation = "DEPLOY"
	RecommendDeployWithMonitor  Recommendation = "DEPLOY_WITH_MONITORING"
	RecommendReviewRequired     Recommendation = "REVIEW_REQUIRED"
	RecommendDoNotDeploy        Recommendation = "DO_NOT_DEPLOY"
)

// DeploymentAdvice bundles the recommendation with its reasoning and
// remediation suggestions.
type DeploymentAdvice struct {
	Recommendation   Recommendation
	Reasoning        string
	OverallRisk      RiskLevel
	Passed           bool
	ViolationCount   int
	SuggestedActions []string
	Timestamp        time.Time
}

// Policy is a named, pre-validated bundle of thresholds plus the acceptable
// risk bound and violation-handling mode, loadable as a running
// configuration.
type Policy struct {
	Name                string
	Thresholds          map[string]Config
	MaxAcceptableRisk   RiskLevel
	FailOnAnyViolation  bool
	Description         string
}
