// Package config provides configuration types for the GuardStack control plane.
//
// The schema is designed for simplicity and file-based configuration. It
// intentionally excludes features modeled only as interfaces/contracts for
// future wiring:
//
//   - NO PostgreSQL-backed audit/policy persistence (sqlite or file only)
//   - NO multi-tenant support
//   - NO SSO/SAML/SCIM authentication
//   - NO webhook/email notification delivery
//   - NO distributed rate-limit coordination (process-local only)
package config

import (
	"os"

	"github.com/spf13/viper"
)

// GuardStackConfig is the top-level configuration for the control plane.
type GuardStackConfig struct {
	// Server configures the HTTP listener for the REST facade.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Guardrails configures the checkpoint pipeline.
	Guardrails GuardrailsConfig `yaml:"guardrails" mapstructure:"guardrails"`

	// Scoring configures the normalization/aggregation/threshold pipeline.
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`

	// Interceptor configures the tool-call intercept engine.
	Interceptor InterceptorConfig `yaml:"interceptor" mapstructure:"interceptor"`

	// Auth configures file-based identities and API keys.
	Auth AuthConfig `yaml:"auth" mapstructure:"auth"`

	// Audit configures where audit records are written.
	Audit AuditConfig `yaml:"audit" mapstructure:"audit"`

	// Policies defines the access control rules evaluated by the policy engine.
	// Optional: when empty, the interceptor uses default-deny for flagged tools.
	Policies []PolicyConfig `yaml:"policies" mapstructure:"policies" validate:"omitempty,dive"`

	// DevMode enables permissive defaults and verbose logging for local runs.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// HTTPAddr is the address to listen on (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Defaults to "127.0.0.1:8080" (localhost only) if empty.
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"omitempty,hostname_port"`

	// LogLevel sets the minimum log level.
	// Valid values: "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

// GuardrailsConfig configures the two-phase guardrail checkpoint pipeline.
type GuardrailsConfig struct {
	// Checkpoints defines the named checkpoints evaluated for each request.
	// Evaluated in order; a fail-closed checkpoint that times out blocks the
	// request, a fail-open checkpoint that times out allows it through.
	Checkpoints []CheckpointConfig `yaml:"checkpoints" mapstructure:"checkpoints" validate:"omitempty,dive"`

	// ResultCache configures the content-addressed cache for repeated checks.
	ResultCache ResultCacheConfig `yaml:"result_cache" mapstructure:"result_cache"`
}

// CheckpointConfig configures a single guardrail checkpoint.
type CheckpointConfig struct {
	// Name identifies the checkpoint (e.g., "toxicity", "pii", "jailbreak").
	Name string `yaml:"name" mapstructure:"name" validate:"required"`

	// Phases selects which phases this checkpoint runs on: "input", "output", or both.
	Phases []string `yaml:"phases" mapstructure:"phases" validate:"required,min=1,dive,oneof=input output"`

	// Timeout bounds a single checkpoint evaluation (e.g., "200ms").
	// Defaults to "500ms" if not specified.
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty"`

	// FailOpen controls behavior when the checkpoint times out or errors.
	// true: allow the request through (fail-open). false: block it (fail-closed).
	FailOpen bool `yaml:"fail_open" mapstructure:"fail_open"`
}

// ResultCacheConfig configures the guardrail result cache.
type ResultCacheConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// TTL is how long a cached result stays valid (e.g., "5m").
	TTL string `yaml:"ttl" mapstructure:"ttl" validate:"omitempty"`
	// MaxEntries bounds the cache size. Defaults to 10000 if not specified.
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries" validate:"omitempty,min=1"`
}

// ScoringConfig configures the pillar-score normalization and aggregation pipeline.
type ScoringConfig struct {
	// ThresholdPolicy names the active threshold preset: "strict", "standard", or "lenient".
	ThresholdPolicy string `yaml:"threshold_policy" mapstructure:"threshold_policy" validate:"omitempty,oneof=strict standard lenient"`

	// WeightPreset names the active pillar-weight preset (e.g., "balanced", "security-first").
	WeightPreset string `yaml:"weight_preset" mapstructure:"weight_preset"`

	// AggregationStrategy names the default aggregation strategy for pillar scores
	// (e.g., "weighted_average", "minimum", "harmonic_mean").
	AggregationStrategy string `yaml:"aggregation_strategy" mapstructure:"aggregation_strategy"`
}

// InterceptorConfig configures the tool-call intercept engine.
type InterceptorConfig struct {
	// RateLimit configures optional rate limiting on tool calls.
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`

	// Sandbox configures bounded execution of intercepted tool calls.
	Sandbox SandboxConfigYAML `yaml:"sandbox" mapstructure:"sandbox"`
}

// RateLimitConfig configures fixed-window rate limiting.
type RateLimitConfig struct {
	// Enabled turns rate limiting on or off.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// PerMinute is the maximum tool calls per minute per rate-limit key.
	// Defaults to 60 if rate limiting is enabled.
	PerMinute int `yaml:"per_minute" mapstructure:"per_minute" validate:"omitempty,min=1"`

	// CleanupInterval is how often to sweep expired windows (e.g., "5m").
	// Defaults to "5m" if not specified.
	CleanupInterval string `yaml:"cleanup_interval" mapstructure:"cleanup_interval" validate:"omitempty"`

	// MaxIdle is the maximum age of an idle window before it is swept (e.g., "1h").
	// Defaults to "1h" if not specified.
	MaxIdle string `yaml:"max_idle" mapstructure:"max_idle" validate:"omitempty"`
}

// SandboxConfigYAML configures the agent-action execution sandbox.
type SandboxConfigYAML struct {
	// Mode selects the isolation level: "none", "process", or "container".
	Mode string `yaml:"mode" mapstructure:"mode" validate:"omitempty,oneof=none process container"`

	// Timeout bounds a single sandboxed execution (e.g., "30s").
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty"`

	// MemoryLimitMB bounds memory for "container" mode. Defaults to 256.
	MemoryLimitMB int `yaml:"memory_limit_mb" mapstructure:"memory_limit_mb" validate:"omitempty,min=1"`

	// CPULimit bounds CPU shares for "container" mode (e.g., "0.5"). Defaults to "1.0".
	CPULimit string `yaml:"cpu_limit" mapstructure:"cpu_limit" validate:"omitempty"`

	// NetworkDisabled disables network access for "container" mode. Defaults to true.
	NetworkDisabled bool `yaml:"network_disabled" mapstructure:"network_disabled"`
}

// AuthConfig configures file-based authentication.
type AuthConfig struct {
	// Identities defines the known identities (users/services).
	Identities []IdentityConfig `yaml:"identities" mapstructure:"identities" validate:"omitempty,dive"`

	// APIKeys defines the API keys that map to identities.
	APIKeys []APIKeyConfig `yaml:"api_keys" mapstructure:"api_keys" validate:"omitempty,dive"`
}

// IdentityConfig defines a file-based identity.
type IdentityConfig struct {
	ID    string   `yaml:"id" mapstructure:"id" validate:"required"`
	Name  string   `yaml:"name" mapstructure:"name" validate:"required"`
	Roles []string `yaml:"roles" mapstructure:"roles" validate:"required,min=1"`
}

// APIKeyConfig defines an API key that authenticates as an identity.
type APIKeyConfig struct {
	// KeyHash is the argon2id hash of the API key.
	KeyHash string `yaml:"key_hash" mapstructure:"key_hash" validate:"required"`

	// IdentityID references the identity this key authenticates as.
	IdentityID string `yaml:"identity_id" mapstructure:"identity_id" validate:"required"`
}

// AuditConfig configures audit trail output.
type AuditConfig struct {
	// Output specifies where audit records are written.
	// Valid values: "stdout" or "file:///absolute/path/to/audit"
	Output string `yaml:"output" mapstructure:"output" validate:"required,audit_output"`

	// ChannelSize is the buffer size for the async audit channel.
	// Defaults to 1000 if not specified or 0.
	ChannelSize int `yaml:"channel_size" mapstructure:"channel_size" validate:"omitempty,min=1"`

	// SendTimeout is how long to block when the channel is full (e.g., "100ms", "0").
	// "0" or empty = drop immediately (no blocking).
	SendTimeout string `yaml:"send_timeout" mapstructure:"send_timeout" validate:"omitempty"`

	// WarningThreshold is the percentage (0-100) at which to log backpressure warnings.
	WarningThreshold int `yaml:"warning_threshold" mapstructure:"warning_threshold" validate:"omitempty,min=0,max=100"`

	// BufferSize is the number of recent audit records kept in the in-memory ring buffer.
	BufferSize int `yaml:"buffer_size" mapstructure:"buffer_size" validate:"omitempty,min=1"`
}

// PolicyConfig defines a named set of access control rules.
type PolicyConfig struct {
	Name  string       `yaml:"name" mapstructure:"name" validate:"required"`
	Rules []RuleConfig `yaml:"rules" mapstructure:"rules" validate:"required,min=1,dive"`

	// FailAction is the decision applied when no rule in this policy matches
	// a call. Defaults to "allow" when empty.
	FailAction string `yaml:"fail_action" mapstructure:"fail_action" validate:"omitempty,oneof=allow deny approval_required"`
}

// RuleConfig defines a single access control rule.
type RuleConfig struct {
	// Name is a human-readable identifier for this rule.
	Name string `yaml:"name" mapstructure:"name" validate:"required"`

	// ToolMatch is a glob pattern matched against the tool name (e.g., "fs.*").
	// Empty matches all tools.
	ToolMatch string `yaml:"tool_match" mapstructure:"tool_match"`

	// Conditions are the (field, operator, value) tuples evaluated against
	// the tool call context. Empty always matches.
	Conditions []ConditionConfig `yaml:"conditions" mapstructure:"conditions" validate:"omitempty,dive"`

	// Combination controls how Conditions are joined: "all-must-match"
	// (default) or "any-must-match".
	Combination string `yaml:"combination" mapstructure:"combination" validate:"omitempty,oneof=all-must-match any-must-match"`

	// Message is shown as the decision reason when this rule matches.
	Message string `yaml:"message" mapstructure:"message"`

	// Action is what to do when the rule's conditions hold.
	Action string `yaml:"action" mapstructure:"action" validate:"required,oneof=allow deny approval_required"`
}

// ConditionConfig defines a single (field, operator, value) tuple.
type ConditionConfig struct {
	// Field names a variable exposed to the policy engine (e.g. "tool_name",
	// "user_roles", "risk_score").
	Field string `yaml:"field" mapstructure:"field" validate:"required"`

	// Operator is one of: equals, not-equals, contains, not-contains,
	// matches, greater-than, less-than, in, not-in, exists, not-exists.
	Operator string `yaml:"operator" mapstructure:"operator" validate:"required,oneof=equals not-equals contains not-contains matches greater-than less-than in not-in exists not-exists"`

	// Value is compared against Field. Numbers, strings, and booleans are
	// supported. Unused (zero value) for exists/not-exists on boolean values.
	Value any `yaml:"value" mapstructure:"value"`
}

// SetDevDefaults applies permissive defaults for development mode.
// These defaults are applied BEFORE validation so required fields are satisfied.
func (c *GuardStackConfig) SetDevDefaults() {
	if !c.DevMode {
		return
	}

	if len(c.Auth.Identities) == 0 {
		c.Auth.Identities = []IdentityConfig{
			{ID: "dev-user", Name: "Development User", Roles: []string{"admin"}},
		}
	}

	if len(c.Policies) == 0 {
		c.Policies = []PolicyConfig{
			{
				Name:       "dev-allow-all",
				FailAction: "allow",
				Rules: []RuleConfig{
					{Name: "allow-all", Action: "allow"},
				},
			},
		}
	}

	if c.Audit.Output == "" {
		c.Audit.Output = "stdout"
	}
}

// SetDefaults applies sensible default values to the configuration.
func (c *GuardStackConfig) SetDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:8080"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	for i := range c.Guardrails.Checkpoints {
		if c.Guardrails.Checkpoints[i].Timeout == "" {
			c.Guardrails.Checkpoints[i].Timeout = "500ms"
		}
	}
	if c.Guardrails.ResultCache.TTL == "" {
		c.Guardrails.ResultCache.TTL = "5m"
	}
	if c.Guardrails.ResultCache.MaxEntries == 0 {
		c.Guardrails.ResultCache.MaxEntries = 10000
	}

	if c.Scoring.ThresholdPolicy == "" {
		c.Scoring.ThresholdPolicy = "standard"
	}
	if c.Scoring.WeightPreset == "" {
		c.Scoring.WeightPreset = "balanced"
	}
	if c.Scoring.AggregationStrategy == "" {
		c.Scoring.AggregationStrategy = "weighted_average"
	}

	// Rate limit defaults — enabled by default for security.
	// Only apply the default when the user hasn't explicitly set it in YAML/env.
	if !viper.IsSet("interceptor.rate_limit.enabled") {
		c.Interceptor.RateLimit.Enabled = true
	}
	if c.Interceptor.RateLimit.PerMinute == 0 {
		c.Interceptor.RateLimit.PerMinute = 60
	}
	if c.Interceptor.RateLimit.CleanupInterval == "" {
		c.Interceptor.RateLimit.CleanupInterval = "5m"
	}
	if c.Interceptor.RateLimit.MaxIdle == "" {
		c.Interceptor.RateLimit.MaxIdle = "1h"
	}

	if c.Interceptor.Sandbox.Mode == "" {
		c.Interceptor.Sandbox.Mode = "none"
	}
	if c.Interceptor.Sandbox.Timeout == "" {
		c.Interceptor.Sandbox.Timeout = "30s"
	}
	if c.Interceptor.Sandbox.MemoryLimitMB == 0 {
		c.Interceptor.Sandbox.MemoryLimitMB = 256
	}
	if c.Interceptor.Sandbox.CPULimit == "" {
		c.Interceptor.Sandbox.CPULimit = "1.0"
	}
	if !viper.IsSet("interceptor.sandbox.network_disabled") {
		c.Interceptor.Sandbox.NetworkDisabled = true
	}

	// Audit defaults
	if c.Audit.Output == "" {
		c.Audit.Output = "stdout"
	}
	if c.Audit.ChannelSize == 0 {
		c.Audit.ChannelSize = 1000
	}
	if c.Audit.SendTimeout == "" {
		c.Audit.SendTimeout = "100ms"
	}
	if c.Audit.WarningThreshold == 0 {
		c.Audit.WarningThreshold = 80
	}
	if c.Audit.BufferSize == 0 {
		c.Audit.BufferSize = 1000
	}
}

// defaultConfigDir returns the per-user config directory, used by the loader
// when no explicit config file is given.
func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.guardstack"
}
