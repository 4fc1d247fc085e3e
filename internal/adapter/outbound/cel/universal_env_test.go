package cel

import (
	"testing"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/guardstack/guardstack/internal/domain/policy"
)

// compileAndEval is a helper that compiles and evaluates a CEL expression
// against a universal activation built from the given EvaluationContext.
func compileAndEval(t *testing.T, expr string, evalCtx policy.EvaluationContext) bool {
	t.Helper()
	env, err := NewUniversalPolicyEnvironment()
	if err != nil {
		t.Fatalf("NewUniversalPolicyEnvironment() error: %v", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		t.Fatalf("Compile(%q) error: %v", expr, issues.Err())
	}

	prg, err := env.Program(ast, cel.EvalOptions(cel.OptOptimize))
	if err != nil {
		t.Fatalf("Program() error: %v", err)
	}

	activation := BuildUniversalActivation(evalCtx)
	result, _, err := prg.Eval(activation)
	if err != nil {
		t.Fatalf("Eval(%q) error: %v", expr, err)
	}

	b, ok := result.Value().(bool)
	if !ok {
		t.Fatalf("Eval(%q) returned %T, want bool", expr, result.Value())
	}
	return b
}

// baseToolCallContext returns an EvaluationContext with typical intercepted tool call
// fields populated.
func baseToolCallContext() policy.EvaluationContext {
	return policy.EvaluationContext{
		ToolName:      "read_file",
		ToolArguments: map[string]interface{}{"path": "/etc/passwd"},
		UserRoles:     []string{"admin", "user"},
		SessionID:     "sess-1",
		IdentityID:    "id-1",
		IdentityName:  "alice",
		RequestTime:   time.Now(),
		Framework:     "",
		RiskScore:     0.2,
	}
}

func TestUniversalEnv_ToolName(t *testing.T) {
	ctx := baseToolCallContext()
	if !compileAndEval(t, `tool_name == "read_file"`, ctx) {
		t.Error("expected tool_name == 'read_file' to be true")
	}
	if compileAndEval(t, `tool_name == "write_file"`, ctx) {
		t.Error("expected tool_name == 'write_file' to be false")
	}
}

func TestUniversalEnv_UserRoles(t *testing.T) {
	ctx := baseToolCallContext()
	if !compileAndEval(t, `"admin" in user_roles`, ctx) {
		t.Error("expected 'admin' in user_roles to be true")
	}
	if compileAndEval(t, `"superadmin" in user_roles`, ctx) {
		t.Error("expected 'superadmin' in user_roles to be false")
	}
}

func TestUniversalEnv_Glob(t *testing.T) {
	ctx := baseToolCallContext()
	if !compileAndEval(t, `glob("read_*", tool_name)`, ctx) {
		t.Error("expected glob('read_*', tool_name) to be true")
	}
	if compileAndEval(t, `glob("write_*", tool_name)`, ctx) {
		t.Error("expected glob('write_*', tool_name) to be false")
	}
}

func TestUniversalEnv_RiskScore(t *testing.T) {
	ctx := baseToolCallContext()
	if !compileAndEval(t, `risk_score < 0.5`, ctx) {
		t.Error("expected risk_score < 0.5 to be true")
	}
	ctx.RiskScore = 0.9
	if !compileAndEval(t, `risk_score >= 0.8`, ctx) {
		t.Error("expected risk_score >= 0.8 to be true after raising it")
	}
}

func TestUniversalEnv_Framework(t *testing.T) {
	ctx := baseToolCallContext()
	ctx.Framework = "crewai"
	ctx.FrameworkAttrs = map[string]string{"role": "researcher"}

	if !compileAndEval(t, `framework == "crewai"`, ctx) {
		t.Error("expected framework == 'crewai' to be true")
	}
	if !compileAndEval(t, `framework_attrs["role"] == "researcher"`, ctx) {
		t.Error("expected framework_attrs['role'] == 'researcher' to be true")
	}
}

func TestUniversalEnv_ActionArg(t *testing.T) {
	ctx := baseToolCallContext()
	ctx.ToolArguments = map[string]interface{}{
		"path": "/etc/passwd",
		"mode": "read",
	}

	if !compileAndEval(t, `action_arg(arguments, "path") == "/etc/passwd"`, ctx) {
		t.Error("expected action_arg(arguments, 'path') == '/etc/passwd' to be true")
	}
}

func TestUniversalEnv_ActionArgContains(t *testing.T) {
	ctx := baseToolCallContext()
	ctx.ToolArguments = map[string]interface{}{
		"query":    "SELECT * FROM users WHERE password = 'secret'",
		"database": "production",
	}

	t.Run("contains_match", func(t *testing.T) {
		if !compileAndEval(t, `action_arg_contains(arguments, "password")`, ctx) {
			t.Error("expected action_arg_contains(arguments, 'password') to be true")
		}
	})

	t.Run("no_match", func(t *testing.T) {
		if compileAndEval(t, `action_arg_contains(arguments, "DROP TABLE")`, ctx) {
			t.Error("expected action_arg_contains(arguments, 'DROP TABLE') to be false")
		}
	})
}

func TestUniversalEnv_FrameworkRestriction(t *testing.T) {
	ctx := policy.EvaluationContext{
		ToolName:      "http_get",
		ToolArguments: map[string]interface{}{},
		UserRoles:     []string{"agent"},
		SessionID:     "sess-4",
		IdentityID:    "id-4",
		IdentityName:  "agent-1",
		RequestTime:   time.Now(),
		Framework:     "crewai",
	}

	if !compileAndEval(t, `framework == "crewai" && tool_name == "http_get"`, ctx) {
		t.Error("expected crewai && http_get to be true")
	}
}

func TestBuildUniversalActivation_NilSafety(t *testing.T) {
	// Context with nil maps and slices should not panic
	ctx := policy.EvaluationContext{
		ToolName:    "test",
		RequestTime: time.Now(),
		// ToolArguments, UserRoles, and FrameworkAttrs are nil
	}

	activation := BuildUniversalActivation(ctx)

	if activation["tool_args"] == nil {
		t.Error("tool_args should not be nil")
	}
	if activation["user_roles"] == nil {
		t.Error("user_roles should not be nil")
	}
	if activation["arguments"] == nil {
		t.Error("arguments should not be nil")
	}
	if activation["identity_roles"] == nil {
		t.Error("identity_roles should not be nil")
	}
	if activation["framework_attrs"] == nil {
		t.Error("framework_attrs should not be nil")
	}
}
