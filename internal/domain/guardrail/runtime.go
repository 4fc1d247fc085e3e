package guardrail

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/guardstack/guardstack/internal/domain/filter"
)

// Runtime is the two-phase checkpoint pipeline: input checkpoints run
// before a deferred model call, output checkpoints run after. Checkpoints
// are invoked in registration order, each under its own timeout and
// fail-open policy.
type Runtime struct {
	mu          sync.RWMutex
	checkpoints []Config

	metrics *Metrics
	cache   *ResultCache
	logger  *slog.Logger
}

// Option configures a Runtime at construction.
type Option func(*Runtime)

// WithResultCache enables the input-phase content-addressed cache.
func WithResultCache(maxSize int, ttl time.Duration) Option {
	return func(r *Runtime) { r.cache = NewResultCache(maxSize, ttl) }
}

// WithLogger attaches a structured logger for timeout/error diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) { r.logger = logger }
}

// New builds a Runtime from an ordered list of checkpoint configs.
func New(checkpoints []Config, opts ...Option) *Runtime {
	r := &Runtime{
		checkpoints: checkpoints,
		metrics:     NewMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Metrics returns the runtime's running metrics accumulator.
func (r *Runtime) Metrics() *Metrics { return r.metrics }

// SetCheckpoints atomically replaces the registered checkpoints (e.g. on
// config reload).
func (r *Runtime) SetCheckpoints(checkpoints []Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkpoints = checkpoints
}

func (r *Runtime) checkpointsFor(phase Phase) []Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Config, 0, len(r.checkpoints))
	for _, cp := range r.checkpoints {
		if cp.Enabled && cp.Phase.appliesTo(phase) {
			out = append(out, cp)
		}
	}
	return out
}

// Run executes the sequential check pipeline for phase over content,
// stopping on the first block and threading modifications forward.
func (r *Runtime) Run(ctx context.Context, content string, gctx filter.GuardContext, phase Phase) Result {
	start := time.Now()
	gctx.Phase = string(phase)

	active := r.checkpointsFor(phase)

	if phase == PhaseInput && r.cache != nil {
		key := Key(content, checkpointNames(active))
		if cached, ok := r.cache.Get(key); ok {
			return cached
		}
		result := r.runSequential(ctx, content, gctx, active, start)
		r.cache.Put(key, result)
		return result
	}

	return r.runSequential(ctx, content, gctx, active, start)
}

func checkpointNames(checkpoints []Config) []string {
	names := make([]string, len(checkpoints))
	for i, cp := range checkpoints {
		names[i] = cp.Name
	}
	return names
}

func (r *Runtime) runSequential(ctx context.Context, content string, gctx filter.GuardContext, checkpoints []Config, start time.Time) Result {
	current := content
	var reasons []string
	metadata := map[string]any{}
	anyWarn := false
	lastName := ""

	for _, cp := range checkpoints {
		lastName = cp.Name
		verdict, err := r.runOne(ctx, cp, current, gctx)
		if err != nil {
			elapsed := time.Since(start)
			if cp.FailOpen {
				r.metrics.recordCheckpoint(cp.Name, true, false, elapsed)
				reasons = append(reasons, fmt.Sprintf("%s: %s (fail-open, passed through)", cp.Name, err.Error()))
				if r.logger != nil {
					r.logger.Warn("checkpoint failed, failing open", "checkpoint", cp.Name, "error", err)
				}
				continue
			}

			r.metrics.recordCheckpoint(cp.Name, false, true, elapsed)
			r.metrics.recordRun(false, true, current != content, true, time.Since(start))
			if r.logger != nil {
				r.logger.Warn("checkpoint failed, failing closed", "checkpoint", cp.Name, "error", err)
			}
			return Result{
				Action:          filter.ActionBlock,
				Passed:          false,
				OriginalContent: content,
				GuardrailName:   cp.Name,
				Reasons:         append(reasons, fmt.Sprintf("%s: %s (fail-closed, blocked)", cp.Name, err.Error())),
				Metadata:        metadata,
				ProcessingTime:  time.Since(start),
				Err:             err,
			}
		}

		for k, v := range verdict.Metadata {
			metadata[cp.Name+"."+fmt.Sprint(k)] = v
		}

		switch verdict.Action {
		case filter.ActionBlock:
			r.metrics.recordCheckpoint(cp.Name, false, true, verdict.elapsed())
			r.metrics.recordRun(false, true, false, false, time.Since(start))
			return Result{
				Action:          filter.ActionBlock,
				Passed:          false,
				OriginalContent: content,
				GuardrailName:   cp.Name,
				Reasons:         append(reasons, verdict.Reasons...),
				Metadata:        metadata,
				ProcessingTime:  time.Since(start),
			}
		case filter.ActionModify:
			r.metrics.recordCheckpoint(cp.Name, true, false, verdict.elapsed())
			current = verdict.ModifiedContent
			reasons = append(reasons, verdict.Reasons...)
		case filter.ActionAudit:
			r.metrics.recordCheckpoint(cp.Name, true, false, verdict.elapsed())
			anyWarn = true
			reasons = append(reasons, verdict.Reasons...)
		default: // ActionAllow
			r.metrics.recordCheckpoint(cp.Name, true, false, verdict.elapsed())
		}
	}

	action := filter.ActionAllow
	if current != content {
		action = filter.ActionModify
	} else if anyWarn {
		action = filter.ActionAudit
	}

	r.metrics.recordRun(true, false, current != content, false, time.Since(start))

	res := Result{
		Action:          action,
		Passed:          true,
		OriginalContent: content,
		GuardrailName:   lastName,
		Reasons:         reasons,
		Metadata:        metadata,
		ProcessingTime:  time.Since(start),
	}
	if current != content {
		res.ModifiedContent = current
	}
	return res
}

// runOne invokes a checkpoint under its configured timeout.
func (r *Runtime) runOne(ctx context.Context, cp Config, content string, gctx filter.GuardContext) (timedVerdict, error) {
	timeout := cp.Timeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}

	type outcome struct {
		v filter.Verdict
	}
	done := make(chan outcome, 1)

	checkStart := time.Now()
	go func() {
		done <- outcome{v: cp.Check.Check(content, gctx)}
	}()

	select {
	case o := <-done:
		return timedVerdict{Verdict: o.v, started: checkStart}, nil
	case <-time.After(timeout):
		return timedVerdict{}, fmt.Errorf("checkpoint %q timed out after %s", cp.Name, timeout)
	case <-ctx.Done():
		return timedVerdict{}, ctx.Err()
	}
}

// timedVerdict pairs a Verdict with when its check started, for latency
// accounting independent of the outer pipeline's elapsed time.
type timedVerdict struct {
	filter.Verdict
	started time.Time
}

func (t timedVerdict) elapsed() time.Duration {
	if t.started.IsZero() {
		return 0
	}
	return time.Since(t.started)
}

// RunParallel fans independent checkpoints out concurrently and gathers
// every verdict against the original content; modifications are reported
// side-by-side, not composed.
func (r *Runtime) RunParallel(ctx context.Context, content string, gctx filter.GuardContext, phase Phase) []filter.Verdict {
	gctx.Phase = string(phase)
	active := r.checkpointsFor(phase)

	verdicts := make([]filter.Verdict, len(active))
	var wg sync.WaitGroup
	for i, cp := range active {
		wg.Add(1)
		go func(i int, cp Config) {
			defer wg.Done()
			v, err := r.runOne(ctx, cp, content, gctx)
			if err != nil {
				verdicts[i] = filter.Verdict{CheckName: cp.Name, Action: filter.ActionBlock, Reasons: []string{err.Error()}}
				return
			}
			verdicts[i] = v.Verdict
		}(i, cp)
	}
	wg.Wait()
	return verdicts
}

// CheckBoth runs the input/output sandwich: input phase first; on block,
// returns without invoking modelFn; otherwise modelFn runs against the
// (possibly modified) input, and the output phase runs over its result.
func (r *Runtime) CheckBoth(ctx context.Context, input string, modelFn func(context.Context, string) (string, error), gctx filter.GuardContext) SandwichResult {
	inputResult := r.Run(ctx, input, gctx, PhaseInput)
	if inputResult.Action == filter.ActionBlock {
		return SandwichResult{Input: inputResult, Blocked: true, BlockPhase: PhaseInput}
	}

	modelInput := input
	if inputResult.ModifiedContent != "" {
		modelInput = inputResult.ModifiedContent
	}

	modelOutput, err := modelFn(ctx, modelInput)
	if err != nil {
		return SandwichResult{Input: inputResult, ModelErr: err}
	}

	outputResult := r.Run(ctx, modelOutput, gctx, PhaseOutput)
	if outputResult.Action == filter.ActionBlock {
		return SandwichResult{Input: inputResult, Output: outputResult, Blocked: true, BlockPhase: PhaseOutput}
	}

	finalText := modelOutput
	if outputResult.ModifiedContent != "" {
		finalText = outputResult.ModifiedContent
	}

	return SandwichResult{Input: inputResult, Output: outputResult, FinalText: finalText}
}
