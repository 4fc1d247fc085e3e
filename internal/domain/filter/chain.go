package filter

import "sync"

// ChainMode selects how a Chain runs its checkpoints.
type ChainMode string

const (
	// ModeSequential stops at the first block and threads modifications
	// from one checkpoint into the content the next one inspects.
	ModeSequential ChainMode = "sequential"
	// ModeParallel runs every checkpoint against the original content and
	// gathers all verdicts; modifications are reported side-by-side, not
	// composed into a single output.
	ModeParallel ChainMode = "parallel"
)

// ChainResult is the outcome of running a Chain over one piece of content.
type ChainResult struct {
	FinalAction Action
	Content     string
	Verdicts    []Verdict
}

// Chain composes Checkpoints into a single evaluation.
type Chain struct {
	checkpoints []Checkpoint
	mode        ChainMode
}

// NewChain builds a Chain in the given mode over checkpoints, evaluated in
// the order given (registration order).
func NewChain(mode ChainMode, checkpoints ...Checkpoint) *Chain {
	return &Chain{checkpoints: checkpoints, mode: mode}
}

// Run evaluates the chain against content under ctx.
func (c *Chain) Run(content string, ctx GuardContext) ChainResult {
	if c.mode == ModeParallel {
		return c.runParallel(content, ctx)
	}
	return c.runSequential(content, ctx)
}

func (c *Chain) runSequential(content string, ctx GuardContext) ChainResult {
	current := content
	verdicts := make([]Verdict, 0, len(c.checkpoints))

	for _, cp := range c.checkpoints {
		v := cp.Check(current, ctx)
		verdicts = append(verdicts, v)

		switch v.Action {
		case ActionBlock:
			return ChainResult{FinalAction: ActionBlock, Content: current, Verdicts: verdicts}
		case ActionModify:
			current = v.ModifiedContent
		}
	}

	final := ActionAllow
	for _, v := range verdicts {
		if v.Action == ActionAudit {
			final = ActionAudit
		}
	}
	return ChainResult{FinalAction: final, Content: current, Verdicts: verdicts}
}

// runParallel fans every checkpoint out over the original content
// concurrently. Per spec, modifications from parallel checkpoints are not
// composable: the returned Content is always the original input, and each
// checkpoint's own rewrite (if any) lives only in its Verdict.
func (c *Chain) runParallel(content string, ctx GuardContext) ChainResult {
	verdicts := make([]Verdict, len(c.checkpoints))

	var wg sync.WaitGroup
	for i, cp := range c.checkpoints {
		wg.Add(1)
		go func(i int, cp Checkpoint) {
			defer wg.Done()
			verdicts[i] = cp.Check(content, ctx)
		}(i, cp)
	}
	wg.Wait()

	final := ActionAllow
	for _, v := range verdicts {
		switch {
		case v.Action == ActionBlock:
			final = ActionBlock
		case v.Action == ActionAudit && final != ActionBlock:
			final = ActionAudit
		}
	}
	return ChainResult{FinalAction: final, Content: content, Verdicts: verdicts}
}
