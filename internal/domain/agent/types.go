// Package agent implements the Agent Evaluator: orchestrating interception
// and behavioral pattern analysis over an agent's full tool-call trace to
// produce an agent-safety report.
package agent

import (
	"context"
	"time"

	"github.com/guardstack/guardstack/internal/domain/interceptor"
	"github.com/guardstack/guardstack/internal/domain/tool"
)

// ToolCallRecord is one entry in an agent's tool-call trace.
type ToolCallRecord struct {
	AgentID   string
	ToolName  string
	Arguments map[string]any
	Timestamp time.Time
}

// FindingSeverity ranks a behavioral-pattern finding.
type FindingSeverity string

const (
	SeverityMedium   FindingSeverity = "medium"
	SeverityHigh     FindingSeverity = "high"
	SeverityCritical FindingSeverity = "critical"
)

// Finding describes one behavioral-pattern match over a trace.
type Finding struct {
	Pattern     string
	Severity    FindingSeverity
	Description string
	ToolNames   []string
}

// RiskLevel is the overall risk classification of an evaluated trace.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// AgentEvaluationResult is the outcome of evaluating an agent's trace.
type AgentEvaluationResult struct {
	AgentID          string
	Score            float64
	RiskLevel        RiskLevel
	TotalCalls       int
	BlockedCalls     int
	HighRiskCalls    int
	MediumRiskCalls  int
	LowRiskCalls     int
	Findings         []Finding
	PerToolCounts    map[string]int
	InterceptResults []interceptor.InterceptResult
	WallClock        time.Duration
}

// ToolSecurityChecker is an external collaborator that assesses whether a
// tool call is safe, independent of the interceptor's own rule-based
// scoring. Out of scope per the core's persistence/connector boundary —
// implementations talk to whatever registry or service backs this.
type ToolSecurityChecker interface {
	Check(ctx context.Context, toolName string) (safe bool, reason string, risk tool.RiskLevel, err error)
}
