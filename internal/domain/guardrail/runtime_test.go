package guardrail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardstack/guardstack/internal/domain/filter"
)

// slowDetector blocks until released, so tests can force a checkpoint
// timeout deterministically.
type slowDetector struct {
	name  string
	delay time.Duration
}

func (d slowDetector) Name() string { return d.name }
func (d slowDetector) Detect(content string, ctx filter.GuardContext) (bool, []string, map[string]any) {
	time.Sleep(d.delay)
	return false, nil, nil
}

func blockingCheckpoint(name string) Config {
	topic := filter.NewTopicFilter(map[string][]string{"blocked": {"forbidden"}}, nil)
	return Config{
		Name: name, Phase: PhaseInput, Enabled: true, FailOpen: false,
		Timeout: 100 * time.Millisecond, Check: filter.NewCheckpoint(topic, filter.ActionBlock),
	}
}

func allowingCheckpoint(name string) Config {
	topic := filter.NewTopicFilter(map[string][]string{"blocked": {"nevermatches___"}}, nil)
	return Config{
		Name: name, Phase: PhaseInput, Enabled: true,
		Timeout: 100 * time.Millisecond, Check: filter.NewCheckpoint(topic, filter.ActionBlock),
	}
}

func TestRuntime_Run_BlocksAndStopsPipeline(t *testing.T) {
	t.Parallel()

	rt := New([]Config{blockingCheckpoint("topic-1"), allowingCheckpoint("topic-2")})
	result := rt.Run(context.Background(), "this contains a forbidden word", filter.GuardContext{}, PhaseInput)

	require.Equal(t, filter.ActionBlock, result.Action)
	assert.False(t, result.Passed)
	assert.Equalf(t, "topic-1", result.GuardrailName, "second checkpoint must not run")
}

func TestRuntime_Run_AllowsWhenNothingMatches(t *testing.T) {
	t.Parallel()

	rt := New([]Config{allowingCheckpoint("topic-1")})
	result := rt.Run(context.Background(), "perfectly normal text", filter.GuardContext{}, PhaseInput)

	require.Equal(t, filter.ActionAllow, result.Action)
	assert.True(t, result.Passed)
}

func TestRuntime_Run_ModifyThreadsContentForward(t *testing.T) {
	t.Parallel()

	cp := Config{
		Name: "pii", Phase: PhaseInput, Enabled: true,
		Timeout: 200 * time.Millisecond, Check: filter.NewCheckpoint(filter.NewPIIFilter(), filter.ActionModify),
	}
	rt := New([]Config{cp})

	result := rt.Run(context.Background(), "email me at jane@example.com", filter.GuardContext{}, PhaseInput)
	require.Equal(t, filter.ActionModify, result.Action)
	assert.NotEmptyf(t, result.ModifiedContent, "ModifiedContent was not populated")
	assert.NotEqual(t, result.OriginalContent, result.ModifiedContent)
}

func TestRuntime_Run_TimeoutFailClosedBlocks(t *testing.T) {
	t.Parallel()

	cp := Config{
		Name: "slow", Phase: PhaseInput, Enabled: true, FailOpen: false,
		Timeout: 10 * time.Millisecond, Check: filter.NewCheckpoint(slowDetector{name: "slow", delay: 100 * time.Millisecond}, filter.ActionBlock),
	}
	rt := New([]Config{cp})

	result := rt.Run(context.Background(), "anything", filter.GuardContext{}, PhaseInput)
	assert.Equalf(t, filter.ActionBlock, result.Action, "fail-closed timeout")
	assert.Error(t, result.Err)
}

func TestRuntime_Run_TimeoutFailOpenPassesThrough(t *testing.T) {
	t.Parallel()

	cp := Config{
		Name: "slow", Phase: PhaseInput, Enabled: true, FailOpen: true,
		Timeout: 10 * time.Millisecond, Check: filter.NewCheckpoint(slowDetector{name: "slow", delay: 100 * time.Millisecond}, filter.ActionBlock),
	}
	rt := New([]Config{cp})

	result := rt.Run(context.Background(), "anything", filter.GuardContext{}, PhaseInput)
	assert.Equalf(t, filter.ActionAllow, result.Action, "fail-open timeout passes through")
	assert.True(t, result.Passed)
}

func TestRuntime_CheckBoth_InputBlockSkipsModel(t *testing.T) {
	t.Parallel()

	rt := New([]Config{blockingCheckpoint("topic-1")})
	modelCalled := false
	modelFn := func(ctx context.Context, s string) (string, error) {
		modelCalled = true
		return s, nil
	}

	result := rt.CheckBoth(context.Background(), "a forbidden phrase", modelFn, filter.GuardContext{})
	require.True(t, result.Blocked)
	assert.Equal(t, PhaseInput, result.BlockPhase)
	assert.False(t, modelCalled, "model function was called after an input-phase block")
}

func TestRuntime_CheckBoth_RunsOutputPhaseOverModelResponse(t *testing.T) {
	t.Parallel()

	inputCP := allowingCheckpoint("topic-in")
	outputCP := blockingCheckpoint("topic-out")
	outputCP.Phase = PhaseOutput
	rt := New([]Config{inputCP, outputCP})

	modelFn := func(ctx context.Context, s string) (string, error) {
		return "a forbidden response", nil
	}

	result := rt.CheckBoth(context.Background(), "harmless prompt", modelFn, filter.GuardContext{})
	require.True(t, result.Blocked)
	assert.Equal(t, PhaseOutput, result.BlockPhase)
}

func TestRuntime_CheckBoth_ModelErrorIsReported(t *testing.T) {
	t.Parallel()

	rt := New([]Config{allowingCheckpoint("topic-1")})
	wantErr := errors.New("upstream unavailable")
	modelFn := func(ctx context.Context, s string) (string, error) { return "", wantErr }

	result := rt.CheckBoth(context.Background(), "hello", modelFn, filter.GuardContext{})
	assert.ErrorIs(t, result.ModelErr, wantErr)
}

func TestRuntime_Metrics_AccumulateAndReset(t *testing.T) {
	t.Parallel()

	rt := New([]Config{allowingCheckpoint("topic-1")})
	rt.Run(context.Background(), "hello", filter.GuardContext{}, PhaseInput)
	rt.Run(context.Background(), "world", filter.GuardContext{}, PhaseInput)

	snap := rt.Metrics().Snapshot()
	require.Equalf(t, int64(2), snap.Total, "Snapshot = %+v", snap)
	assert.Equal(t, int64(2), snap.Passed)

	rt.Metrics().Reset()
	snap = rt.Metrics().Snapshot()
	assert.Equal(t, int64(0), snap.Total)
}

func TestRuntime_ResultCache_HitsOnRepeatedContent(t *testing.T) {
	t.Parallel()

	rt := New([]Config{allowingCheckpoint("topic-1")}, WithResultCache(100, time.Minute))

	rt.Run(context.Background(), "repeat me", filter.GuardContext{}, PhaseInput)
	rt.Run(context.Background(), "repeat me", filter.GuardContext{}, PhaseInput)

	snap := rt.Metrics().Snapshot()
	assert.Equalf(t, int64(1), snap.Total, "second call should be served from cache, not re-run the pipeline")
}

func TestRuntime_RunParallel_GathersAllVerdicts(t *testing.T) {
	t.Parallel()

	rt := New([]Config{blockingCheckpoint("topic-1"), allowingCheckpoint("topic-2")})
	verdicts := rt.RunParallel(context.Background(), "a forbidden word", filter.GuardContext{}, PhaseInput)

	require.Len(t, verdicts, 2)
}
