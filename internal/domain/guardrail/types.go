// Package guardrail implements the two-phase input/output checkpoint
// pipeline: checkpoints are invoked in registration order under a
// per-checkpoint timeout, with fail-open/fail-closed semantics, modifier
// chaining, running metrics, and a content-addressed result cache.
package guardrail

import (
	"time"

	"github.com/guardstack/guardstack/internal/domain/filter"
)

// Phase selects when a checkpoint runs.
type Phase string

const (
	PhaseInput  Phase = "input"
	PhaseOutput Phase = "output"
	PhaseBoth   Phase = "both"
)

// appliesTo reports whether a checkpoint registered for p should run
// during the requested phase.
func (p Phase) appliesTo(requested Phase) bool {
	return p == PhaseBoth || p == requested
}

// Config describes one registered checkpoint: its detector/modifier pair
// (via filter.Checkpoint), the phase(s) it runs on, its timeout budget,
// and its fail-open override.
type Config struct {
	Name     string
	Phase    Phase
	Enabled  bool
	FailOpen bool
	Timeout  time.Duration
	Check    filter.Checkpoint
}

// Result is the runtime's verdict for one piece of content.
type Result struct {
	Action          filter.Action
	Passed          bool
	OriginalContent string
	ModifiedContent string
	GuardrailName   string
	Confidence      float64
	Reasons         []string
	Metadata        map[string]any
	ProcessingTime  time.Duration
	Err             error
}

// SandwichResult is the outcome of check_both: input phase, the model
// call, and output phase composed into a single verdict.
type SandwichResult struct {
	Input      Result
	Output     Result
	ModelErr   error
	FinalText  string
	Blocked    bool
	BlockPhase Phase
}
