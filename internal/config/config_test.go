package config

import "testing"

func TestGuardStackConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	var cfg GuardStackConfig
	cfg.SetDefaults()

	if cfg.Server.HTTPAddr != "127.0.0.1:8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "127.0.0.1:8080")
	}
	if cfg.Audit.Output != "stdout" {
		t.Errorf("Audit.Output = %q, want %q", cfg.Audit.Output, "stdout")
	}
	if !cfg.Interceptor.RateLimit.Enabled {
		t.Error("RateLimit.Enabled should default to true")
	}
	if cfg.Interceptor.RateLimit.PerMinute != 60 {
		t.Errorf("PerMinute default = %d, want 60", cfg.Interceptor.RateLimit.PerMinute)
	}
	if cfg.Interceptor.Sandbox.Mode != "none" {
		t.Errorf("Sandbox.Mode default = %q, want %q", cfg.Interceptor.Sandbox.Mode, "none")
	}
	if !cfg.Interceptor.Sandbox.NetworkDisabled {
		t.Error("Sandbox.NetworkDisabled should default to true")
	}
	if cfg.Scoring.ThresholdPolicy != "standard" {
		t.Errorf("ThresholdPolicy default = %q, want %q", cfg.Scoring.ThresholdPolicy, "standard")
	}
	if cfg.Scoring.WeightPreset != "balanced" {
		t.Errorf("WeightPreset default = %q, want %q", cfg.Scoring.WeightPreset, "balanced")
	}
	if cfg.Guardrails.ResultCache.MaxEntries != 10000 {
		t.Errorf("ResultCache.MaxEntries default = %d, want 10000", cfg.Guardrails.ResultCache.MaxEntries)
	}
}

func TestGuardStackConfig_SetDefaults_PreservesExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := GuardStackConfig{
		Server: ServerConfig{HTTPAddr: "0.0.0.0:9090", LogLevel: "debug"},
	}
	cfg.SetDefaults()

	if cfg.Server.HTTPAddr != "0.0.0.0:9090" {
		t.Errorf("HTTPAddr was overwritten: %q", cfg.Server.HTTPAddr)
	}
	if cfg.Server.LogLevel != "debug" {
		t.Errorf("LogLevel was overwritten: %q", cfg.Server.LogLevel)
	}
}

func TestGuardStackConfig_SetDevDefaults_NoopWhenDisabled(t *testing.T) {
	t.Parallel()

	var cfg GuardStackConfig
	cfg.SetDevDefaults()

	if len(cfg.Auth.Identities) != 0 {
		t.Error("dev defaults should not apply when DevMode is false")
	}
}

func TestGuardStackConfig_SetDevDefaults_SeedsDevIdentity(t *testing.T) {
	t.Parallel()

	cfg := GuardStackConfig{DevMode: true}
	cfg.SetDevDefaults()

	if len(cfg.Auth.Identities) != 1 || cfg.Auth.Identities[0].ID != "dev-user" {
		t.Errorf("dev identity not seeded: %+v", cfg.Auth.Identities)
	}
	if len(cfg.Policies) != 1 || cfg.Policies[0].Name != "dev-allow-all" {
		t.Errorf("dev allow-all policy not seeded: %+v", cfg.Policies)
	}
	if cfg.Audit.Output != "stdout" {
		t.Errorf("Audit.Output = %q, want stdout", cfg.Audit.Output)
	}
}

func TestCheckpointConfig_TimeoutDefaultedPerEntry(t *testing.T) {
	t.Parallel()

	cfg := GuardStackConfig{
		Guardrails: GuardrailsConfig{
			Checkpoints: []CheckpointConfig{
				{Name: "toxicity", Phases: []string{"output"}},
				{Name: "pii", Phases: []string{"input", "output"}, Timeout: "1s"},
			},
		},
	}
	cfg.SetDefaults()

	if cfg.Guardrails.Checkpoints[0].Timeout != "500ms" {
		t.Errorf("checkpoint[0].Timeout = %q, want 500ms default", cfg.Guardrails.Checkpoints[0].Timeout)
	}
	if cfg.Guardrails.Checkpoints[1].Timeout != "1s" {
		t.Errorf("checkpoint[1].Timeout = %q, want explicit 1s preserved", cfg.Guardrails.Checkpoints[1].Timeout)
	}
}
