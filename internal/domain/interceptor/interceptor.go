package interceptor

import (
	"context"
	"log/slog"
	"reflect"
	"time"
)

// Interceptor decides allow/block/modify/audit for a ToolCall by running a
// rate-limit admission check, a validator chain, a modifier chain, and a
// risk-scorer chain, in that order.
type Interceptor struct {
	validators []Validator
	modifiers  []Modifier
	scorers    []RiskScorer

	rateLimiter RateLimiter
	perMinute   int

	audit  *AuditRing
	logger *slog.Logger

	now func() time.Time
}

// Option configures an Interceptor at construction.
type Option func(*Interceptor)

// WithValidators overrides the default validator chain.
func WithValidators(validators ...Validator) Option {
	return func(i *Interceptor) { i.validators = validators }
}

// WithModifiers sets the modifier chain (empty by default).
func WithModifiers(modifiers ...Modifier) Option {
	return func(i *Interceptor) { i.modifiers = modifiers }
}

// WithRiskScorers overrides the default risk-scorer chain.
func WithRiskScorers(scorers ...RiskScorer) Option {
	return func(i *Interceptor) { i.scorers = scorers }
}

// WithRateLimit enables admission rate limiting at perMinute calls per
// rate-limit key.
func WithRateLimit(limiter RateLimiter, perMinute int) Option {
	return func(i *Interceptor) { i.rateLimiter = limiter; i.perMinute = perMinute }
}

// WithAuditRing attaches a bounded audit ring buffer.
func WithAuditRing(ring *AuditRing) Option {
	return func(i *Interceptor) { i.audit = ring }
}

// WithLogger attaches a structured logger for modifier failures.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interceptor) { i.logger = logger }
}

// New builds an Interceptor with the default validator and risk-scorer
// chains; callers override via options.
func New(opts ...Option) *Interceptor {
	i := &Interceptor{
		validators: DefaultValidators(nil, nil),
		scorers:    []RiskScorer{DefaultRiskScorer{}},
		audit:      NewAuditRing(0),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// AuditRing returns the interceptor's audit ring buffer.
func (i *Interceptor) AuditRing() *AuditRing { return i.audit }

// Intercept runs the full decision chain over call and records the
// resulting verdict in the audit ring.
func (i *Interceptor) Intercept(ctx context.Context, call ToolCall) InterceptResult {
	start := i.now()

	if i.rateLimiter != nil {
		key := call.SessionID
		if key == "" {
			key = "default"
		}
		rl, err := i.rateLimiter.Allow(ctx, key, i.perMinute)
		if err == nil && !rl.Allowed {
			result := i.finish(call, ActionBlock, "rate limit exceeded", 0, nil, start)
			return result
		}
	}

	for _, v := range i.validators {
		if ok, reason := v.Validate(call); !ok {
			return i.finish(call, ActionBlock, reason, 0, nil, start)
		}
	}

	current := call
	mutated := false
	for _, m := range i.modifiers {
		next, err := m.Modify(current)
		if err != nil {
			if i.logger != nil {
				i.logger.Warn("modifier failed, skipping", "tool", call.ToolName, "error", err)
			}
			continue
		}
		if next.ToolName != current.ToolName || !argsEqual(next.Arguments, current.Arguments) {
			mutated = true
		}
		current = next
	}

	var risk float64
	for _, s := range i.scorers {
		if v := s.Score(current); v > risk {
			risk = v
		}
	}

	action := decideAction(risk, mutated)

	var modifiedPtr *ToolCall
	if mutated {
		modifiedPtr = &current
	}

	return i.finish(call, action, "", risk, modifiedPtr, start)
}

// decideAction maps a risk score and whether a modifier mutated the call
// onto a final action: r >= 0.8 blocks, r >= 0.5 audits, otherwise modify
// (if the call was rewritten) or allow.
func decideAction(risk float64, mutated bool) Action {
	switch {
	case risk >= 0.8:
		return ActionBlock
	case risk >= 0.5:
		return ActionAudit
	case mutated:
		return ActionModify
	default:
		return ActionAllow
	}
}

func (i *Interceptor) finish(original ToolCall, action Action, reason string, risk float64, modified *ToolCall, start time.Time) InterceptResult {
	result := InterceptResult{
		Action:    action,
		Original:  original,
		Modified:  modified,
		Reason:    reason,
		RiskScore: risk,
		LatencyMs: float64(i.now().Sub(start).Microseconds()) / 1000.0,
		Timestamp: i.now(),
	}
	if i.audit != nil {
		i.audit.Append(result)
	}
	return result
}

func argsEqual(a, b map[string]any) bool {
	return reflect.DeepEqual(a, b)
}
