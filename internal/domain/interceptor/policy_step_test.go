package interceptor

import (
	"context"
	"testing"

	"github.com/guardstack/guardstack/internal/adapter/outbound/memory"
	"github.com/guardstack/guardstack/internal/domain/policy"
)

func TestPolicyValidator_DenyRuleBlocksCall(t *testing.T) {
	t.Parallel()

	store := memory.NewPolicyStore()
	store.AddPolicy(&policy.Policy{
		ID: "p1", Enabled: true,
		Rules: []policy.Rule{{Name: "deny-exec", Priority: 100, ToolMatch: "exec_*", Action: policy.ActionDeny}},
	})
	engine, err := policy.NewCELEngine(context.Background(), store, nil)
	if err != nil {
		t.Fatalf("NewCELEngine() error: %v", err)
	}

	ic := New(WithValidators(PolicyValidator{Engine: engine}))
	result := ic.Intercept(context.Background(), ToolCall{ToolName: "exec_shell"})
	if result.Action != ActionBlock {
		t.Fatalf("Action = %v, want %v", result.Action, ActionBlock)
	}
}

func TestPolicyValidator_AllowRulePassesThrough(t *testing.T) {
	t.Parallel()

	store := memory.NewPolicyStore()
	engine, err := policy.NewCELEngine(context.Background(), store, nil)
	if err != nil {
		t.Fatalf("NewCELEngine() error: %v", err)
	}

	ic := New(WithValidators(PolicyValidator{Engine: engine}))
	result := ic.Intercept(context.Background(), ToolCall{ToolName: "list_files"})
	if result.Action != ActionAllow {
		t.Fatalf("Action = %v, want %v (default-allow policy engine)", result.Action, ActionAllow)
	}
}
