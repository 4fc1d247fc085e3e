package config

import "testing"

func validConfig() GuardStackConfig {
	cfg := GuardStackConfig{
		Auth: AuthConfig{
			Identities: []IdentityConfig{{ID: "svc-a", Name: "Service A", Roles: []string{"user"}}},
			APIKeys:    []APIKeyConfig{{KeyHash: "argon2id$...", IdentityID: "svc-a"}},
		},
	}
	cfg.SetDefaults()
	return cfg
}

func TestValidate_AcceptsDefaultedConfig(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidate_RejectsUnknownIdentityReference(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Auth.APIKeys[0].IdentityID = "does-not-exist"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for unknown identity_id")
	}
}

func TestValidate_RejectsInvalidAuditOutput(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Audit.Output = "syslog://local"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for invalid audit output")
	}
}

func TestValidate_AcceptsFileAuditOutput(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Audit.Output = "file:///var/log/guardstack/audit.jsonl"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil for absolute file:// output", err)
	}
}

func TestValidate_RejectsRelativeFileAuditOutput(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Audit.Output = "file://relative/path"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for relative file:// path")
	}
}

func TestValidate_RejectsInvalidPolicyAction(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Policies = []PolicyConfig{
		{
			Name: "bad-policy",
			Rules: []RuleConfig{
				{Name: "r1", Action: "quarantine"},
			},
		},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for invalid rule action")
	}
}

func TestValidate_AcceptsApprovalRequiredAction(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Policies = []PolicyConfig{
		{
			Name: "sensitive-tools",
			Rules: []RuleConfig{
				{Name: "r1", ToolMatch: "fs.*", Action: "approval_required"},
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidate_RejectsUnknownConditionOperator(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Policies = []PolicyConfig{
		{
			Name: "bad-condition",
			Rules: []RuleConfig{
				{
					Name:       "r1",
					Action:     "deny",
					Conditions: []ConditionConfig{{Field: "risk_score", Operator: "at-least", Value: 0.5}},
				},
			},
		},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for unknown condition operator")
	}
}

func TestValidate_AcceptsStructuredConditionsAndFailAction(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Policies = []PolicyConfig{
		{
			Name:       "risk-based",
			FailAction: "deny",
			Rules: []RuleConfig{
				{
					Name:        "high-risk",
					Action:      "approval_required",
					Combination: "any-must-match",
					Message:     "elevated risk requires approval",
					Conditions: []ConditionConfig{
						{Field: "risk_score", Operator: "greater-than", Value: 0.7},
						{Field: "user_roles", Operator: "in", Value: "untrusted"},
					},
				},
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}
