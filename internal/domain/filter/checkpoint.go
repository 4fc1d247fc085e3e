package filter

import "time"

// Action is the verdict a checkpoint reaches after inspecting content.
type Action string

const (
	ActionAllow  Action = "allow"
	ActionBlock  Action = "block"
	ActionModify Action = "modify"
	ActionAudit  Action = "audit"
)

// GuardContext carries request metadata a detector may use alongside the
// content string (session/caller identity, phase). Detectors that don't
// need it simply ignore the fields they don't use.
type GuardContext struct {
	SessionID string
	Phase     string // "input" or "output"
}

// Detector is the common shape every content filter implements: inspect
// content and report whether it matched, why, and with what metadata.
// Implementations must not retain content beyond the call.
type Detector interface {
	// Name identifies the detector for logging, metrics, and audit records.
	Name() string
	// Detect reports whether content matched, the human-readable reasons,
	// and any structured metadata (match counts, scores, redacted spans).
	Detect(content string, ctx GuardContext) (matched bool, reasons []string, metadata map[string]any)
}

// Modifier rewrites content that matched a detector (e.g. PII redaction).
// Implementations that cannot rewrite should not be registered as modifiers.
type Modifier interface {
	Modify(content string, ctx GuardContext) (string, error)
}

// Verdict is a single checkpoint's decision for one piece of content.
type Verdict struct {
	CheckName       string
	Action          Action
	Reasons         []string
	Metadata        map[string]any
	ModifiedContent string
	Modified        bool
	DurationNs      int64
}

// Checkpoint wraps a Detector (and optionally a Modifier) with an
// action_on_match policy: what Action to report when the detector matches.
type Checkpoint struct {
	detector      Detector
	modifier      Modifier
	actionOnMatch Action
}

// NewCheckpoint builds a Checkpoint from a Detector and the Action to
// report on a match. actionOnMatch of ActionModify requires detector to
// also implement Modifier; otherwise NewCheckpoint falls back to
// ActionBlock's semantics for a match without rewriting the content.
func NewCheckpoint(detector Detector, actionOnMatch Action) Checkpoint {
	cp := Checkpoint{detector: detector, actionOnMatch: actionOnMatch}
	if m, ok := detector.(Modifier); ok {
		cp.modifier = m
	} else if actionOnMatch == ActionModify {
		cp.actionOnMatch = ActionBlock
	}
	return cp
}

// Name returns the wrapped detector's name.
func (c Checkpoint) Name() string { return c.detector.Name() }

// Check runs the detector and maps a match to the configured action. When
// actionOnMatch is ActionModify and the detector supports Modify, the
// rewritten content is returned; a Modify error downgrades the verdict to
// ActionBlock so a failed rewrite never silently passes unmodified content.
func (c Checkpoint) Check(content string, ctx GuardContext) Verdict {
	start := time.Now()
	matched, reasons, metadata := c.detector.Detect(content, ctx)

	v := Verdict{
		CheckName:  c.Name(),
		Reasons:    reasons,
		Metadata:   metadata,
		DurationNs: time.Since(start).Nanoseconds(),
	}

	if !matched {
		v.Action = ActionAllow
		return v
	}

	if c.actionOnMatch == ActionModify && c.modifier != nil {
		modified, err := c.modifier.Modify(content, ctx)
		if err != nil {
			v.Action = ActionBlock
			v.Reasons = append(v.Reasons, "modify failed: "+err.Error())
			v.DurationNs = time.Since(start).Nanoseconds()
			return v
		}
		v.Action = ActionModify
		v.ModifiedContent = modified
		v.Modified = modified != content
		v.DurationNs = time.Since(start).Nanoseconds()
		return v
	}

	v.Action = c.actionOnMatch
	v.DurationNs = time.Since(start).Nanoseconds()
	return v
}
