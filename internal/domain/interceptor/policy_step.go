package interceptor

import (
	"context"

	"github.com/guardstack/guardstack/internal/domain/policy"
)

// PolicyValidator adapts a policy.PolicyEngine into a Validator: a deny or
// approval-required decision rejects the call; an allow decision passes it
// through to the rest of the chain. This lets RBAC policy evaluation run
// as an ordinary step in the interceptor's validator list, ahead of risk
// scoring.
type PolicyValidator struct {
	Engine policy.PolicyEngine
}

// Validate evaluates call against the policy engine, translating its
// decision into the Validator contract.
func (p PolicyValidator) Validate(call ToolCall) (bool, string) {
	roles, _ := call.Context["user_roles"].([]string)

	decision, err := p.Engine.Evaluate(context.Background(), policy.EvaluationContext{
		ToolName:      call.ToolName,
		ToolArguments: call.Arguments,
		UserRoles:     roles,
		SessionID:     call.SessionID,
	})
	if err != nil {
		return false, "policy evaluation error: " + err.Error()
	}
	if decision.RequiresApproval {
		return false, "approval required: " + decision.Reason
	}
	if !decision.Allowed {
		return false, decision.Reason
	}
	return true, ""
}

// Compile-time interface verification.
var _ Validator = PolicyValidator{}
