package policy

import "context"

// DefaultPolicy returns the built-in RBAC rules applied when an operator
// has not yet configured custom policies. Rule IDs are left empty; stores
// that require a stable ID should assign one on insert.
func DefaultPolicy() *Policy {
	readOnlyRole := []Condition{{Field: "user_roles", Operator: OpIn, Value: "read-only"}}
	userRole := []Condition{{Field: "user_roles", Operator: OpIn, Value: "user"}}

	return &Policy{
		Name:       "Default RBAC Policy",
		Enabled:    true,
		FailAction: ActionAllow,
		Rules: []Rule{
			{
				Name:      "block-delete",
				Priority:  200,
				ToolMatch: "delete_*",
				Action:    ActionDeny,
				Message:   "destructive delete tools are blocked by default",
			},
			{
				Name:      "block-exec",
				Priority:  200,
				ToolMatch: "exec_*",
				Action:    ActionDeny,
				Message:   "shell/code execution tools are blocked by default",
			},
			{
				Name:       "readonly-read",
				Priority:   100,
				ToolMatch:  "read_*",
				Conditions: readOnlyRole,
				Action:     ActionAllow,
			},
			{
				Name:       "readonly-list",
				Priority:   100,
				ToolMatch:  "list_*",
				Conditions: readOnlyRole,
				Action:     ActionAllow,
			},
			{
				Name:       "readonly-get",
				Priority:   100,
				ToolMatch:  "get_*",
				Conditions: readOnlyRole,
				Action:     ActionAllow,
			},
			{
				Name:       "user-read",
				Priority:   50,
				ToolMatch:  "read_*",
				Conditions: userRole,
				Action:     ActionAllow,
			},
			{
				Name:       "user-write",
				Priority:   50,
				ToolMatch:  "write_*",
				Conditions: userRole,
				Action:     ActionAllow,
			},
			{
				Name:       "user-create",
				Priority:   50,
				ToolMatch:  "create_*",
				Conditions: userRole,
				Action:     ActionAllow,
			},
			{
				Name:      "high-risk-approval",
				Priority:  150,
				ToolMatch: "*",
				// greater-than, not >=: the operator set has no >=, so a
				// risk_score of exactly 0.5 now falls through to no-match
				// instead of requiring approval.
				Conditions: []Condition{{Field: "risk_score", Operator: OpGreaterThan, Value: 0.5}},
				Action:     ActionApprovalRequired,
				Message:    "risk score exceeds the auto-approval threshold",
			},
		},
	}
}

// SeedDefaultPolicy installs DefaultPolicy if the store has no policies
// yet. Idempotent: a non-empty store is left untouched.
func SeedDefaultPolicy(ctx context.Context, store PolicyStore) error {
	policies, err := store.GetAllPolicies(ctx)
	if err != nil {
		return err
	}
	if len(policies) > 0 {
		return nil
	}

	defaultPolicy := DefaultPolicy()
	if err := store.SavePolicy(ctx, defaultPolicy); err != nil {
		return err
	}
	for i := range defaultPolicy.Rules {
		rule := &defaultPolicy.Rules[i]
		if err := store.SaveRule(ctx, defaultPolicy.ID, rule); err != nil {
			return err
		}
	}
	return nil
}
