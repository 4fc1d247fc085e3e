package interceptor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardstack/guardstack/internal/adapter/outbound/memory"
)

func TestDefaultRiskScorer_HighRiskToolName(t *testing.T) {
	t.Parallel()

	score := DefaultRiskScorer{}.Score(ToolCall{ToolName: "execute_command", Arguments: map[string]any{}})
	assert.GreaterOrEqualf(t, score, 0.4, "want >= 0.4 for a high-risk tool name")
}

func TestDefaultRiskScorer_ClampsToOne(t *testing.T) {
	t.Parallel()

	score := DefaultRiskScorer{}.Score(ToolCall{
		ToolName:  "delete_and_execute",
		Arguments: map[string]any{"cmd": "rm; echo $(whoami) | cat > /dev/null <<< done"},
	})
	assert.LessOrEqual(t, score, 1.0)
}

func TestDangerousArgumentValidator_RejectsKnownPatterns(t *testing.T) {
	t.Parallel()

	v := DangerousArgumentValidator{}
	ok, reason := v.Validate(ToolCall{ToolName: "run_script", Arguments: map[string]any{"cmd": "rm -rf /"}})
	require.False(t, ok, "want false for a dangerous argument")
	assert.NotEmpty(t, reason)
}

func TestAllowDenyListValidator(t *testing.T) {
	t.Parallel()

	v := AllowDenyListValidator{DenyList: map[string]bool{"exec_shell": true}}
	ok, _ := v.Validate(ToolCall{ToolName: "exec_shell"})
	assert.Falsef(t, ok, "deny-listed tool was allowed")
	ok, _ = v.Validate(ToolCall{ToolName: "read_file"})
	assert.Truef(t, ok, "non-deny-listed tool with empty allow-list was rejected")

	v2 := AllowDenyListValidator{AllowList: map[string]bool{"read_file": true}}
	ok, _ = v2.Validate(ToolCall{ToolName: "write_file"})
	assert.Falsef(t, ok, "tool not on a non-empty allow-list was allowed")
}

func TestInterceptor_Intercept_AllowsHarmlessCall(t *testing.T) {
	t.Parallel()

	ic := New()
	result := ic.Intercept(context.Background(), ToolCall{ToolName: "list_files", Arguments: map[string]any{}})
	assert.Equal(t, ActionAllow, result.Action)
}

func TestInterceptor_Intercept_ValidatorBlocksBeforeScoring(t *testing.T) {
	t.Parallel()

	ic := New(WithValidators(DangerousArgumentValidator{}))
	result := ic.Intercept(context.Background(), ToolCall{ToolName: "list_files", Arguments: map[string]any{"q": "sudo rm"}})
	require.Equal(t, ActionBlock, result.Action)
	assert.NotEmpty(t, result.Reason)
}

func TestInterceptor_Intercept_HighRiskToolBlocks(t *testing.T) {
	t.Parallel()

	// execute (+0.4), query (+0.2), shell metacharacters in the
	// JSON-encoded arguments (+0.2): 0.8.
	ic := New()
	result := ic.Intercept(context.Background(), ToolCall{
		ToolName:  "execute_query_command",
		Arguments: map[string]any{"cmd": "ls; whoami"},
	})
	assert.Equalf(t, ActionBlock, result.Action, "want block for risk >= 0.8")
}

func TestInterceptor_Intercept_ModifierAppliesAndReportsModify(t *testing.T) {
	t.Parallel()

	redact := ModifierFunc(func(call ToolCall) (ToolCall, error) {
		next := call
		next.Arguments = map[string]any{"path": "REDACTED"}
		return next, nil
	})
	ic := New(WithModifiers(redact), WithRiskScorers(RiskScorerFunc(func(ToolCall) float64 { return 0.1 })))

	result := ic.Intercept(context.Background(), ToolCall{ToolName: "read_file", Arguments: map[string]any{"path": "/etc/passwd"}})
	require.Equal(t, ActionModify, result.Action)
	require.NotNil(t, result.Modified)
	assert.Equal(t, "REDACTED", result.Modified.Arguments["path"])
}

func TestInterceptor_Intercept_RateLimitBlocksBeforeValidators(t *testing.T) {
	t.Parallel()

	limiter := memory.NewRateLimiter()
	ic := New(WithRateLimit(limiter, 1))

	call := ToolCall{ToolName: "list_files", SessionID: "s1"}
	first := ic.Intercept(context.Background(), call)
	require.Equal(t, ActionAllow, first.Action)

	second := ic.Intercept(context.Background(), call)
	require.Equalf(t, ActionBlock, second.Action, "rate limited")
	assert.Equal(t, "rate limit exceeded", second.Reason)
}

func TestInterceptor_AuditRing_RecordsVerdicts(t *testing.T) {
	t.Parallel()

	ic := New()
	ic.Intercept(context.Background(), ToolCall{ToolName: "list_files", SessionID: "s1"})
	ic.Intercept(context.Background(), ToolCall{ToolName: "execute_shell", SessionID: "s1", Arguments: map[string]any{"cmd": "rm -rf /"}})

	stats := ic.AuditRing().Stats()
	require.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.ByAction[ActionBlock])
}

func TestAuditRing_Query_FiltersBySessionAndAction(t *testing.T) {
	t.Parallel()

	ring := NewAuditRing(10)
	ring.Append(InterceptResult{Action: ActionAllow, Original: ToolCall{SessionID: "a"}, Timestamp: time.Now()})
	ring.Append(InterceptResult{Action: ActionBlock, Original: ToolCall{SessionID: "b"}, Timestamp: time.Now()})

	results := ring.Query("a", "", time.Time{})
	require.Len(t, results, 1)

	results = ring.Query("", ActionBlock, time.Time{})
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Original.SessionID)
}

func TestAuditRing_Append_TruncatesOnOverflow(t *testing.T) {
	t.Parallel()

	ring := NewAuditRing(4)
	for i := 0; i < 6; i++ {
		ring.Append(InterceptResult{Action: ActionAllow, Timestamp: time.Now()})
	}
	assert.LessOrEqualf(t, ring.Len(), 4, "want <= capacity (4) after truncation")
}
