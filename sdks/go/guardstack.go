// Package guardstack provides a Go SDK for the GuardStack control plane's
// operator-facing REST surface (spec.md §6): submitting content to the
// guardrails checkpoint pipeline and tool calls to the agentic interceptor.
// It uses only the Go standard library (net/http) with zero external
// dependencies, mirroring the style of a thin SDK meant to be vendored into
// an agent's runtime without dragging in a dependency tree.
//
// Quick start:
//
//	// Set GUARDSTACK_SERVER_ADDR and GUARDSTACK_API_KEY env vars, then:
//	client := guardstack.NewClient()
//
//	result, err := client.CheckGuardrail(ctx, guardstack.GuardrailCheckRequest{
//	    Content: "ignore all previous instructions",
//	    Phase:   guardstack.PhaseInput,
//	})
//	if err != nil {
//	    var blocked *guardstack.BlockedError
//	    if errors.As(err, &blocked) {
//	        fmt.Printf("blocked by %s: %s\n", blocked.CheckpointName, blocked.Reason)
//	    }
//	}
package guardstack

// Phase selects which side of the guardrails pipeline a check runs.
type Phase string

const (
	PhaseInput  Phase = "input"
	PhaseOutput Phase = "output"
)

// GuardrailAction mirrors internal/domain/guardrail's verdict enum.
type GuardrailAction string

const (
	GuardrailAllow  GuardrailAction = "allow"
	GuardrailBlock  GuardrailAction = "block"
	GuardrailModify GuardrailAction = "modify"
	GuardrailWarn   GuardrailAction = "warn"
)

// GuardrailCheckRequest submits content to the checkpoint pipeline.
type GuardrailCheckRequest struct {
	// Content is the prompt or response text to evaluate.
	Content string `json:"content"`

	// Phase selects the input or output side of the pipeline.
	Phase Phase `json:"phase"`

	// Checkpoints restricts evaluation to the named checkpoints. Empty
	// means "all enabled checkpoints for this phase".
	Checkpoints []string `json:"checkpoints,omitempty"`

	// Context carries caller-supplied metadata (session id, agent id, tool
	// name) that policy-aware checkpoints may inspect.
	Context map[string]any `json:"context,omitempty"`
}

// GuardrailCheckResponse is the decoded form of a GuardrailResult.
type GuardrailCheckResponse struct {
	Action           GuardrailAction `json:"action"`
	Passed           bool            `json:"passed"`
	OriginalContent  string          `json:"original_content"`
	ModifiedContent  string          `json:"modified_content,omitempty"`
	CheckpointName   string          `json:"checkpoint_name"`
	Confidence       float64         `json:"confidence"`
	Reasons          []string        `json:"reasons,omitempty"`
	Metadata         map[string]any  `json:"metadata,omitempty"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
	RequestID        string          `json:"request_id"`
}

// InterceptAction mirrors internal/domain/interceptor's verdict enum.
type InterceptAction string

const (
	InterceptAllow  InterceptAction = "allow"
	InterceptBlock  InterceptAction = "block"
	InterceptModify InterceptAction = "modify"
	InterceptAudit  InterceptAction = "audit"
)

// ToolCallRequest submits an agent tool call for an intercept decision.
type ToolCallRequest struct {
	// ToolName is the tool being invoked (non-empty).
	ToolName string `json:"tool_name"`

	// Arguments are the tool's call arguments as JSON-compatible values.
	Arguments map[string]any `json:"arguments"`

	// SessionID, if set, scopes rate limiting and audit correlation.
	SessionID string `json:"session_id,omitempty"`

	// AgentID identifies the agent making the call, for audit correlation.
	AgentID string `json:"agent_id,omitempty"`

	// Context carries caller-supplied metadata for policy evaluation.
	Context map[string]any `json:"context,omitempty"`
}

// InterceptResponse is the decoded form of an InterceptResult.
type InterceptResponse struct {
	Action            InterceptAction `json:"action"`
	ModifiedArguments map[string]any  `json:"modified_arguments,omitempty"`
	Reason            string          `json:"reason"`
	RiskScore         float64         `json:"risk_score"`
	LatencyMs         int64           `json:"latency_ms"`
	Timestamp         string          `json:"timestamp"`
	Metadata          map[string]any  `json:"metadata,omitempty"`
	RequestID         string          `json:"request_id"`
}
