package cmd

import (
	"context"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	inbound "github.com/guardstack/guardstack/internal/adapter/inbound/http"
	"github.com/guardstack/guardstack/internal/adapter/outbound/memory"
	"github.com/guardstack/guardstack/internal/adapter/outbound/sqlite"
	"github.com/guardstack/guardstack/internal/config"
	"github.com/guardstack/guardstack/internal/domain/auth"
	"github.com/guardstack/guardstack/internal/domain/filter"
	"github.com/guardstack/guardstack/internal/domain/guardrail"
	"github.com/guardstack/guardstack/internal/domain/interceptor"
	"github.com/guardstack/guardstack/internal/domain/policy"
	"github.com/guardstack/guardstack/internal/domain/sandbox"
)

var (
	devMode     bool
	dbPath      string
	allowOrigin []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the control plane server",
	Long: `Start the guardstackd control plane.

Wires the guardrails checkpoint pipeline, the agentic interceptor and
sandbox, and the RBAC policy engine behind the REST facade on
server.http_addr.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&devMode, "dev", false, "enable development mode (permissive defaults, verbose logging)")
	serveCmd.Flags().StringVar(&dbPath, "db", "", "path to a SQLite database file for durable evaluation records (optional)")
	serveCmd.Flags().StringSliceVar(&allowOrigin, "allow-origin", nil, "allowed browser Origin header values (default: none, local-only)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if devMode {
		cfg.DevMode = true
	}
	cfg.SetDevDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logLevel := parseLogLevel(cfg.Server.LogLevel)
	if cfg.DevMode {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		return err
	}
	logger.Info("guardstackd stopped")
	return nil
}

// run wires every domain package into the running server and blocks until
// ctx is cancelled.
func run(ctx context.Context, cfg *config.GuardStackConfig, logger *slog.Logger) error {
	// ===== Durable storage (optional) =====
	if dbPath != "" {
		store, err := sqlite.Open(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open sqlite store: %w", err)
		}
		defer store.Close()
		logger.Info("durable evaluation storage enabled", "path", dbPath)
	}

	// ===== Auth =====
	authStore := memory.NewAuthStore()
	for _, id := range cfg.Auth.Identities {
		roles := make([]auth.Role, len(id.Roles))
		for i, r := range id.Roles {
			roles[i] = auth.Role(r)
		}
		authStore.AddIdentity(&auth.Identity{ID: id.ID, Name: id.Name, Roles: roles})
	}
	for _, key := range cfg.Auth.APIKeys {
		authStore.AddKey(&auth.APIKey{
			Key:        strings.TrimPrefix(key.KeyHash, "sha256:"),
			IdentityID: key.IdentityID,
			CreatedAt:  time.Now(),
		})
	}
	apiKeyService := auth.NewAPIKeyService(authStore)

	// ===== Policy engine =====
	policyStore := memory.NewPolicyStore()
	now := time.Now()
	for _, p := range cfg.Policies {
		rules := make([]policy.Rule, len(p.Rules))
		for i, r := range p.Rules {
			toolMatch := r.ToolMatch
			if toolMatch == "" {
				toolMatch = "*"
			}
			conditions := make([]policy.Condition, len(r.Conditions))
			for j, c := range r.Conditions {
				conditions[j] = policy.Condition{
					Field:    c.Field,
					Operator: policy.ConditionOperator(c.Operator),
					Value:    c.Value,
				}
			}
			rules[i] = policy.Rule{
				ID:          fmt.Sprintf("%s-rule-%d", p.Name, i),
				Name:        r.Name,
				Conditions:  conditions,
				Combination: policy.CombinationMode(r.Combination),
				Message:     r.Message,
				Action:      policy.Action(r.Action),
				ToolMatch:   toolMatch,
				Priority:    100 - i,
				CreatedAt:   now,
			}
		}
		failAction := policy.Action(p.FailAction)
		if failAction == "" {
			failAction = policy.ActionAllow
		}
		if err := policyStore.SavePolicy(ctx, &policy.Policy{
			ID: p.Name, Name: p.Name, Rules: rules, FailAction: failAction, Enabled: true,
			CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("failed to seed policy %q: %w", p.Name, err)
		}
	}
	celEngine, err := policy.NewCELEngine(ctx, policyStore, logger)
	if err != nil {
		return fmt.Errorf("failed to build policy engine: %w", err)
	}

	// ===== Guardrails checkpoint pipeline =====
	checkpoints := make([]guardrail.Config, 0, len(cfg.Guardrails.Checkpoints))
	for _, cp := range cfg.Guardrails.Checkpoints {
		check, err := buildCheckpoint(cp.Name)
		if err != nil {
			logger.Warn("skipping unknown checkpoint", "name", cp.Name, "error", err)
			continue
		}
		timeout, err := time.ParseDuration(cp.Timeout)
		if err != nil {
			timeout = 500 * time.Millisecond
		}
		checkpoints = append(checkpoints, guardrail.Config{
			Name:     cp.Name,
			Phase:    phaseFromStrings(cp.Phases),
			Enabled:  true,
			FailOpen: cp.FailOpen,
			Timeout:  timeout,
			Check:    check,
		})
	}

	runtimeOpts := []guardrail.Option{guardrail.WithLogger(logger)}
	if cfg.Guardrails.ResultCache.Enabled {
		ttl, err := time.ParseDuration(cfg.Guardrails.ResultCache.TTL)
		if err != nil {
			ttl = 5 * time.Minute
		}
		runtimeOpts = append(runtimeOpts, guardrail.WithResultCache(cfg.Guardrails.ResultCache.MaxEntries, ttl))
	}
	guardrailRuntime := guardrail.New(checkpoints, runtimeOpts...)

	// ===== Agentic interceptor + sandbox =====
	rateLimiter := memory.NewRateLimiter()
	validators := append(interceptor.DefaultValidators(nil, nil), policyValidator{engine: celEngine})
	interceptorOpts := []interceptor.Option{
		interceptor.WithValidators(validators...),
		interceptor.WithAuditRing(interceptor.NewAuditRing(0)),
		interceptor.WithLogger(logger),
	}
	if cfg.Interceptor.RateLimit.Enabled {
		interceptorOpts = append(interceptorOpts, interceptor.WithRateLimit(rateLimiter, cfg.Interceptor.RateLimit.PerMinute))
	}
	ic := interceptor.New(interceptorOpts...)

	sandboxMode := sandbox.Mode(cfg.Interceptor.Sandbox.Mode)
	sandboxTimeout, err := time.ParseDuration(cfg.Interceptor.Sandbox.Timeout)
	if err != nil {
		sandboxTimeout = 30 * time.Second
	}
	sandboxPool, err := sandbox.NewPool(1, sandbox.Config{
		Mode:            sandboxMode,
		Timeout:         sandboxTimeout,
		MemoryLimitMB:   cfg.Interceptor.Sandbox.MemoryLimitMB,
		NetworkDisabled: cfg.Interceptor.Sandbox.NetworkDisabled,
	})
	if err != nil {
		return fmt.Errorf("failed to build sandbox pool: %w", err)
	}
	defer sandboxPool.Close()
	logger.Info("sandbox pool ready", "mode", sandboxMode, "timeout", sandboxTimeout)

	// ===== Audit =====
	auditStore, err := createAuditStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create audit store: %w", err)
	}
	defer auditStore.Close()

	// ===== HTTP facade =====
	metrics := inbound.NewMetrics(prometheus.NewRegistry())
	healthChecker := inbound.NewHealthChecker(rateLimiter, nil, nil, Version)
	handler := inbound.Routes(guardrailRuntime, ic, healthChecker, metrics, allowOrigin, logger)
	handler = inbound.RequireAPIKey(apiKeyService, cfg.DevMode)(handler)

	server := &stdhttp.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("guardstackd starting",
			"version", Version,
			"dev_mode", cfg.DevMode,
			"http_addr", cfg.Server.HTTPAddr,
			"checkpoints", len(checkpoints),
			"rate_limit", cfg.Interceptor.RateLimit.Enabled,
			"sandbox_mode", sandboxMode,
		)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// policyValidator adapts the CEL policy engine onto the interceptor's
// Validator chain, so every tool call is checked against the seeded RBAC
// policies before it is admitted. Engine errors fail open: a misbehaving
// policy must not itself become a denial-of-service vector.
type policyValidator struct {
	engine *policy.CELEngine
}

func (v policyValidator) Validate(call interceptor.ToolCall) (bool, string) {
	decision, err := v.engine.Evaluate(context.Background(), policy.EvaluationContext{
		ToolName:      call.ToolName,
		ToolArguments: call.Arguments,
		SessionID:     call.SessionID,
		RequestTime:   time.Now(),
	})
	if err != nil {
		return true, ""
	}
	if !decision.Allowed {
		return false, decision.Reason
	}
	return true, ""
}

// buildCheckpoint resolves a named checkpoint from config into its domain
// filter.Checkpoint, pairing each detector with the action a match reports.
func buildCheckpoint(name string) (filter.Checkpoint, error) {
	switch name {
	case "pii":
		return filter.NewCheckpoint(filter.NewPIIFilter(), filter.ActionModify), nil
	case "toxicity":
		return filter.NewCheckpoint(filter.NewToxicityFilter(nil), filter.ActionBlock), nil
	case "jailbreak":
		return filter.NewCheckpoint(filter.NewJailbreakFilter(), filter.ActionBlock), nil
	case "topic":
		return filter.NewCheckpoint(filter.NewTopicFilter(nil, nil), filter.ActionBlock), nil
	default:
		return filter.Checkpoint{}, fmt.Errorf("unknown checkpoint %q", name)
	}
}

func phaseFromStrings(phases []string) guardrail.Phase {
	hasInput, hasOutput := false, false
	for _, p := range phases {
		switch p {
		case "input":
			hasInput = true
		case "output":
			hasOutput = true
		}
	}
	switch {
	case hasInput && hasOutput:
		return guardrail.PhaseBoth
	case hasOutput:
		return guardrail.PhaseOutput
	default:
		return guardrail.PhaseInput
	}
}

func createAuditStore(cfg *config.GuardStackConfig, logger *slog.Logger) (*memory.MemoryAuditStore, error) {
	switch {
	case cfg.Audit.Output == "stdout":
		logger.Debug("audit output: stdout", "buffer_size", cfg.Audit.BufferSize)
		return memory.NewAuditStore(cfg.Audit.BufferSize), nil
	case strings.HasPrefix(cfg.Audit.Output, "file://"):
		path := strings.TrimPrefix(cfg.Audit.Output, "file://")
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit file %s: %w", path, err)
		}
		logger.Debug("audit output: file", "path", path, "buffer_size", cfg.Audit.BufferSize)
		return memory.NewAuditStoreWithWriter(f, cfg.Audit.BufferSize), nil
	default:
		return nil, fmt.Errorf("invalid audit output: %s (must be 'stdout' or 'file://path')", cfg.Audit.Output)
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
