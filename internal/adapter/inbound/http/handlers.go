package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/guardstack/guardstack/internal/domain/filter"
	"github.com/guardstack/guardstack/internal/domain/guardrail"
	"github.com/guardstack/guardstack/internal/domain/interceptor"
)

// GuardrailCheckRequest is the wire shape for POST /v1/guardrails/check.
type GuardrailCheckRequest struct {
	Content     string   `json:"content"`
	Phase       string   `json:"phase"`
	Checkpoints []string `json:"checkpoints,omitempty"`
	SessionID   string   `json:"session_id,omitempty"`
}

// GuardrailCheckResponse is the wire shape returned by POST /v1/guardrails/check.
type GuardrailCheckResponse struct {
	Action          string         `json:"action"`
	Passed          bool           `json:"passed"`
	OriginalContent string         `json:"original_content,omitempty"`
	ModifiedContent string         `json:"modified_content,omitempty"`
	CheckpointName  string         `json:"checkpoint_name,omitempty"`
	Confidence      float64        `json:"confidence,omitempty"`
	Reasons         []string       `json:"reasons,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	RequestID       string         `json:"request_id,omitempty"`
}

// ToolCallRequest is the wire shape for POST /v1/intercept.
type ToolCallRequest struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	AgentID   string         `json:"agent_id,omitempty"`
}

// InterceptResponse is the wire shape returned by POST /v1/intercept.
type InterceptResponse struct {
	Action    string  `json:"action"`
	RiskScore float64 `json:"risk_score"`
	Reason    string  `json:"reason,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
}

// GuardrailHandler adapts HTTP requests onto the guardrails checkpoint runtime.
type GuardrailHandler struct {
	runtime *guardrail.Runtime
}

// NewGuardrailHandler builds a GuardrailHandler backed by runtime.
func NewGuardrailHandler(runtime *guardrail.Runtime) *GuardrailHandler {
	return &GuardrailHandler{runtime: runtime}
}

func (h *GuardrailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req GuardrailCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	phase := guardrail.PhaseInput
	if req.Phase == string(guardrail.PhaseOutput) {
		phase = guardrail.PhaseOutput
	}

	gctx := filter.GuardContext{SessionID: req.SessionID}
	result := h.runtime.Run(r.Context(), req.Content, gctx, phase)

	resp := GuardrailCheckResponse{
		Action:          string(result.Action),
		Passed:          result.Passed,
		OriginalContent: result.OriginalContent,
		ModifiedContent: result.ModifiedContent,
		CheckpointName:  result.GuardrailName,
		Confidence:      result.Confidence,
		Reasons:         result.Reasons,
		Metadata:        result.Metadata,
		RequestID:       RequestIDFromContext(r.Context()),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// InterceptHandler adapts HTTP requests onto the agentic interceptor.
type InterceptHandler struct {
	interceptor *interceptor.Interceptor
}

// NewInterceptHandler builds an InterceptHandler backed by ic.
func NewInterceptHandler(ic *interceptor.Interceptor) *InterceptHandler {
	return &InterceptHandler{interceptor: ic}
}

func (h *InterceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ToolCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	call := interceptor.ToolCall{
		ToolName:  req.ToolName,
		Arguments: req.Arguments,
		SessionID: req.SessionID,
		AgentID:   req.AgentID,
	}
	result := h.interceptor.Intercept(r.Context(), call)

	resp := InterceptResponse{
		Action:    string(result.Action),
		RiskScore: result.RiskScore,
		Reason:    result.Reason,
		RequestID: RequestIDFromContext(r.Context()),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// RequestIDFromContext retrieves the request ID set by RequestIDMiddleware,
// or the empty string when the request carries none.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// Routes assembles the full inbound REST facade, wiring the middleware chain
// documented in doc.go around the guardrail, intercept, health, and metrics
// endpoints.
func Routes(
	guardrailRuntime *guardrail.Runtime,
	ic *interceptor.Interceptor,
	healthChecker *HealthChecker,
	metrics *Metrics,
	allowedOrigins []string,
	logger *slog.Logger,
) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/v1/guardrails/check", NewGuardrailHandler(guardrailRuntime))
	mux.Handle("/v1/intercept", NewInterceptHandler(ic))
	mux.Handle("/health", healthChecker.Handler())
	mux.Handle("/metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = MetricsMiddleware(metrics)(handler)
	handler = APIKeyMiddleware(handler)
	handler = DNSRebindingProtection(allowedOrigins)(handler)
	handler = RealIPMiddleware(handler)
	handler = RequestIDMiddleware(logger)(handler)
	return handler
}
