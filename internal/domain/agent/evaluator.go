package agent

import (
	"context"
	"time"

	"github.com/guardstack/guardstack/internal/domain/interceptor"
	"github.com/guardstack/guardstack/internal/domain/tool"
)

// Evaluator orchestrates interception and behavioral pattern analysis over
// an agent's tool-call trace.
type Evaluator struct {
	interceptor *interceptor.Interceptor
	checker     ToolSecurityChecker
	now         func() time.Time
}

// Option configures an Evaluator at construction.
type Option func(*Evaluator)

// WithInterceptor overrides the interceptor used for per-call decisions.
func WithInterceptor(ic *interceptor.Interceptor) Option {
	return func(e *Evaluator) { e.interceptor = ic }
}

// WithSecurityChecker overrides the external tool-security checker.
func WithSecurityChecker(checker ToolSecurityChecker) Option {
	return func(e *Evaluator) { e.checker = checker }
}

// New builds an Evaluator with a default Interceptor and DefaultSecurityChecker.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		interceptor: interceptor.New(),
		checker:     DefaultSecurityChecker{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs the full per-call pipeline and behavioral pattern analysis
// over trace, producing an AgentEvaluationResult.
func (e *Evaluator) Evaluate(ctx context.Context, agentID string, trace []ToolCallRecord) AgentEvaluationResult {
	start := e.now()

	result := AgentEvaluationResult{
		AgentID:       agentID,
		TotalCalls:    len(trace),
		PerToolCounts: make(map[string]int),
	}

	for _, rec := range trace {
		result.PerToolCounts[rec.ToolName]++

		ir := e.interceptor.Intercept(ctx, interceptor.ToolCall{
			ToolName:  rec.ToolName,
			Arguments: rec.Arguments,
			AgentID:   rec.AgentID,
		})
		result.InterceptResults = append(result.InterceptResults, ir)
		if ir.Action == interceptor.ActionBlock {
			result.BlockedCalls++
		}

		_, _, risk, err := e.checker.Check(ctx, rec.ToolName)
		if err != nil {
			continue
		}
		switch risk {
		case tool.RiskLevelCritical, tool.RiskLevelHigh:
			result.HighRiskCalls++
		case tool.RiskLevelMedium:
			result.MediumRiskCalls++
		default:
			result.LowRiskCalls++
		}
	}

	result.Findings = AnalyzeTrace(trace)
	result.Score = score(result)
	result.RiskLevel = classifyRisk(result)
	result.WallClock = e.now().Sub(start)

	return result
}

func severityCount(findings []Finding, severity FindingSeverity) int {
	n := 0
	for _, f := range findings {
		if f.Severity == severity {
			n++
		}
	}
	return n
}

// score computes the 0-100 safety score per the documented formula, then
// clamps to [0, 100].
func score(result AgentEvaluationResult) float64 {
	if result.TotalCalls == 0 {
		return 100
	}
	total := float64(result.TotalCalls)
	blockedRatio := float64(result.BlockedCalls) / total
	highRatio := float64(result.HighRiskCalls) / total
	mediumRatio := float64(result.MediumRiskCalls) / total
	critical := float64(severityCount(result.Findings, SeverityCritical))
	high := float64(severityCount(result.Findings, SeverityHigh))

	s := 100 - 30*blockedRatio - 25*highRatio - 10*mediumRatio - 10*critical - 5*high
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// classifyRisk maps the high-risk-call ratio and blocked-call count onto an
// overall RiskLevel: > 20% high-risk is critical, > 10% is high, any
// blocked call is medium, otherwise low.
func classifyRisk(result AgentEvaluationResult) RiskLevel {
	if result.TotalCalls == 0 {
		return RiskLow
	}
	ratio := float64(result.HighRiskCalls) / float64(result.TotalCalls)
	switch {
	case ratio > 0.20:
		return RiskCritical
	case ratio > 0.10:
		return RiskHigh
	case result.BlockedCalls > 0:
		return RiskMedium
	default:
		return RiskLow
	}
}
