package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/cel-go/cel"

	celeval "github.com/guardstack/guardstack/internal/adapter/outbound/cel"
)

// CompiledRule is a policy Rule with its Conditions pre-compiled into a
// single CEL program.
type CompiledRule struct {
	ID        string
	Name      string
	Priority  int
	ToolMatch string
	Program   cel.Program
	Action    Action
	Message   string

	ApprovalTimeout time.Duration
	TimeoutAction   Action
}

// RuleIndex gives O(1) lookup for exact tool-name matches, with glob rules
// evaluated separately in priority order.
type RuleIndex struct {
	Exact    map[string][]CompiledRule
	Wildcard []CompiledRule
}

// compiledSnapshot is the immutable ruleset published via atomic.Value.
type compiledSnapshot struct {
	Rules      []CompiledRule
	Index      *RuleIndex
	FailAction Action
}

// CELEngine implements PolicyEngine with CEL-compiled rule conditions,
// glob-indexed tool matching, and a bounded result cache keyed by the
// evaluation context's salient fields. Reads are lock-free (atomic.Value);
// Reload swaps the snapshot under a brief mutex.
type CELEngine struct {
	store     PolicyStore
	evaluator *celeval.Evaluator
	snapshot  atomic.Value // *compiledSnapshot
	mu        sync.Mutex
	cache     *ResultCache
	logger    *slog.Logger
}

// CELEngineOption configures a CELEngine at construction.
type CELEngineOption func(*CELEngine)

// WithResultCacheSize overrides the default 1000-entry result cache.
func WithResultCacheSize(size int) CELEngineOption {
	return func(e *CELEngine) { e.cache = NewResultCache(size) }
}

// NewCELEngine builds a CELEngine, loading and compiling every enabled
// policy's rules from store.
func NewCELEngine(ctx context.Context, store PolicyStore, logger *slog.Logger, opts ...CELEngineOption) (*CELEngine, error) {
	evaluator, err := celeval.NewEvaluator()
	if err != nil {
		return nil, fmt.Errorf("create CEL evaluator: %w", err)
	}

	e := &CELEngine{
		store:     store,
		evaluator: evaluator,
		cache:     NewResultCache(1000),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}

	policies, err := store.GetAllPolicies(ctx)
	if err != nil {
		return nil, fmt.Errorf("load policies: %w", err)
	}

	var rules []Rule
	for _, p := range policies {
		if p.Enabled {
			rules = append(rules, p.Rules...)
		}
	}

	compiled, err := e.compileRules(rules)
	if err != nil {
		return nil, err
	}
	e.snapshot.Store(&compiledSnapshot{
		Rules:      compiled,
		Index:      e.buildIndex(compiled),
		FailAction: policiesFailAction(policies),
	})

	if logger != nil {
		logger.Info("policy engine initialized", "rules_compiled", len(compiled))
	}
	return e, nil
}

// policiesFailAction picks the fail action applied when no rule matches.
// Multiple enabled policies are merged into one rule set at evaluation time,
// so the first enabled policy's FailAction governs; this keeps the common
// single-policy case unsurprising while still giving operators a knob.
func policiesFailAction(policies []Policy) Action {
	for _, p := range policies {
		if p.Enabled {
			return p.FailAction
		}
	}
	return ActionAllow
}

// ValidateRules checks that every rule's Conditions compile to a valid CEL
// program, so an invalid rule is rejected before it reaches the store.
func (e *CELEngine) ValidateRules(rules []Rule) error {
	for _, r := range rules {
		expr, err := buildConditionExpr(r.Conditions, r.Combination)
		if err != nil {
			return fmt.Errorf("rule %q: %w", r.Name, err)
		}
		if err := e.evaluator.ValidateExpression(expr); err != nil {
			return fmt.Errorf("rule %q: %w", r.Name, err)
		}
	}
	return nil
}

func (e *CELEngine) compileRules(rules []Rule) ([]CompiledRule, error) {
	compiled := make([]CompiledRule, 0, len(rules))
	for _, r := range rules {
		expr, err := buildConditionExpr(r.Conditions, r.Combination)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		prg, err := e.evaluator.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compile rule %s: %w", r.ID, err)
		}

		id := r.ID
		if id == "" {
			id = r.Name
		}

		compiled = append(compiled, CompiledRule{
			ID:              id,
			Name:            r.Name,
			Priority:        r.Priority,
			ToolMatch:       r.ToolMatch,
			Program:         prg,
			Action:          r.Action,
			Message:         r.Message,
			ApprovalTimeout: r.ApprovalTimeout,
			TimeoutAction:   r.TimeoutAction,
		})
	}

	sort.Slice(compiled, func(i, j int) bool { return compiled[i].Priority > compiled[j].Priority })
	return compiled, nil
}

func (e *CELEngine) buildIndex(rules []CompiledRule) *RuleIndex {
	idx := &RuleIndex{Exact: make(map[string][]CompiledRule)}
	for _, r := range rules {
		if strings.ContainsAny(r.ToolMatch, "*?[") {
			idx.Wildcard = append(idx.Wildcard, r)
		} else {
			idx.Exact[r.ToolMatch] = append(idx.Exact[r.ToolMatch], r)
		}
	}
	sort.Slice(idx.Wildcard, func(i, j int) bool { return idx.Wildcard[i].Priority > idx.Wildcard[j].Priority })
	for k := range idx.Exact {
		sort.Slice(idx.Exact[k], func(i, j int) bool { return idx.Exact[k][i].Priority > idx.Exact[k][j].Priority })
	}
	return idx
}

func (e *CELEngine) loadSnapshot() *compiledSnapshot {
	return e.snapshot.Load().(*compiledSnapshot)
}

// candidateRules merges exact and wildcard rules, highest priority first.
func candidateRules(idx *RuleIndex, toolName string) []CompiledRule {
	exact := idx.Exact[toolName]
	if len(exact) == 0 {
		return idx.Wildcard
	}
	if len(idx.Wildcard) == 0 {
		return exact
	}

	merged := make([]CompiledRule, 0, len(exact)+len(idx.Wildcard))
	i, j := 0, 0
	for i < len(exact) && j < len(idx.Wildcard) {
		if exact[i].Priority >= idx.Wildcard[j].Priority {
			merged = append(merged, exact[i])
			i++
		} else {
			merged = append(merged, idx.Wildcard[j])
			j++
		}
	}
	merged = append(merged, exact[i:]...)
	merged = append(merged, idx.Wildcard[j:]...)
	return merged
}

// Evaluate implements PolicyEngine. Rules are tried in priority order;
// the first whose tool-match glob and CEL condition both succeed decides
// the outcome. With no match, the enabled policies' FailAction decides
// (allow when unset). Results are cached by the context's salient fields.
func (e *CELEngine) Evaluate(ctx context.Context, evalCtx EvaluationContext) (Decision, error) {
	key := computeCacheKey(evalCtx)
	if d, ok := e.cache.Get(key); ok {
		return d, nil
	}

	snapshot := e.loadSnapshot()
	candidates := candidateRules(snapshot.Index, evalCtx.ToolName)

	for _, rule := range candidates {
		if strings.ContainsAny(rule.ToolMatch, "*?[") && rule.ToolMatch != "*" {
			matched, err := filepath.Match(rule.ToolMatch, evalCtx.ToolName)
			if err != nil {
				if e.logger != nil {
					e.logger.Warn("invalid glob pattern", "rule", rule.ID, "pattern", rule.ToolMatch, "error", err)
				}
				continue
			}
			if !matched {
				continue
			}
		}

		result, err := e.evaluator.Evaluate(rule.Program, evalCtx)
		if err != nil {
			return Decision{}, fmt.Errorf("rule %s evaluation failed: %w", rule.ID, err)
		}
		if !result {
			continue
		}

		reason := rule.Message
		if reason == "" {
			reason = fmt.Sprintf("matched rule %s", rule.Name)
		}
		decision := Decision{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Reason:   reason,
		}
		switch rule.Action {
		case ActionAllow:
			decision.Allowed = true
		case ActionApprovalRequired:
			decision.RequiresApproval = true
			decision.ApprovalTimeout = rule.ApprovalTimeout
			decision.ApprovalTimeoutAction = rule.TimeoutAction
		default:
			decision.Allowed = false
		}

		e.cache.Put(key, decision)
		return decision, nil
	}

	decision := fallbackDecision(snapshot.FailAction)
	e.cache.Put(key, decision)
	return decision, nil
}

// fallbackDecision is the Decision applied when no rule in the active
// snapshot matches a call, driven by the owning policy's FailAction.
func fallbackDecision(failAction Action) Decision {
	switch failAction {
	case ActionDeny:
		return Decision{Allowed: false, Reason: "no matching rule (default deny)"}
	case ActionApprovalRequired:
		return Decision{RequiresApproval: true, Reason: "no matching rule (default approval required)"}
	default:
		return Decision{Allowed: true, Reason: "no matching rule (default allow)"}
	}
}

// Reload recompiles every enabled policy's rules and atomically swaps the
// snapshot, clearing the result cache since prior decisions may now be
// stale.
func (e *CELEngine) Reload(ctx context.Context) error {
	policies, err := e.store.GetAllPolicies(ctx)
	if err != nil {
		return fmt.Errorf("load policies: %w", err)
	}

	var rules []Rule
	for _, p := range policies {
		if p.Enabled {
			rules = append(rules, p.Rules...)
		}
	}

	compiled, err := e.compileRules(rules)
	if err != nil {
		return fmt.Errorf("compile rules: %w", err)
	}
	idx := e.buildIndex(compiled)

	e.mu.Lock()
	e.snapshot.Store(&compiledSnapshot{
		Rules:      compiled,
		Index:      idx,
		FailAction: policiesFailAction(policies),
	})
	e.mu.Unlock()

	e.cache.Clear()
	if e.logger != nil {
		e.logger.Info("policy engine reloaded", "policies", len(policies), "rules_compiled", len(compiled))
	}
	return nil
}

// computeCacheKey hashes the evaluation context fields a rule condition can
// observe, so two calls that would compile to the same decision share a
// cache entry. RequestTime is left out: a condition on request_time sees the
// time of the call that filled the entry.
func computeCacheKey(evalCtx EvaluationContext) uint64 {
	h := xxhash.New()

	_, _ = h.WriteString(evalCtx.ToolName)
	_, _ = h.Write([]byte{0})

	roles := append([]string(nil), evalCtx.UserRoles...)
	sort.Strings(roles)
	_, _ = h.WriteString(strings.Join(roles, ","))
	_, _ = h.Write([]byte{0})

	_, _ = h.WriteString(evalCtx.IdentityName)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(evalCtx.Framework)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(evalCtx.SessionID)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(evalCtx.IdentityID)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(strconv.FormatFloat(evalCtx.RiskScore, 'g', -1, 64))
	_, _ = h.Write([]byte{0})

	if len(evalCtx.FrameworkAttrs) > 0 {
		attrsJSON, _ := json.Marshal(evalCtx.FrameworkAttrs)
		_, _ = h.Write(attrsJSON)
		_, _ = h.Write([]byte{0})
	}

	if len(evalCtx.ToolArguments) > 0 {
		argsJSON, _ := json.Marshal(evalCtx.ToolArguments)
		_, _ = h.Write(argsJSON)
	}

	return h.Sum64()
}

// Compile-time interface verification.
var _ PolicyEngine = (*CELEngine)(nil)
