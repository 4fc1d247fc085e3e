package filter

import (
	"context"
	"errors"
	"testing"
)

func TestToxicityFilter_PatternMode(t *testing.T) {
	t.Parallel()

	f := NewToxicityFilter([]string{"go die", "idiot"})
	matched, reasons, meta := f.Detect("don't be an idiot about it", GuardContext{})
	if !matched {
		t.Fatal("Detect() matched = false, want true")
	}
	if meta["mode"] != "pattern" {
		t.Errorf("mode = %v, want pattern", meta["mode"])
	}
	if len(reasons) == 0 {
		t.Error("reasons empty")
	}
}

func TestToxicityFilter_PatternMode_NoMatch(t *testing.T) {
	t.Parallel()

	f := NewToxicityFilter([]string{"go die"})
	matched, _, _ := f.Detect("have a nice day", GuardContext{})
	if matched {
		t.Error("Detect() matched = true, want false")
	}
}

type stubScorer struct {
	score float64
	err   error
}

func (s stubScorer) Score(_ context.Context, _ string) (float64, error) {
	return s.score, s.err
}

func TestToxicityFilter_MLMode_AboveThreshold(t *testing.T) {
	t.Parallel()

	f := NewToxicityFilter(nil).WithMLScorer(stubScorer{score: 0.9})
	matched, _, meta := f.Detect("whatever", GuardContext{})
	if !matched {
		t.Error("Detect() matched = false, want true")
	}
	if meta["mode"] != "ml" {
		t.Errorf("mode = %v, want ml", meta["mode"])
	}
}

func TestToxicityFilter_MLMode_BelowThreshold(t *testing.T) {
	t.Parallel()

	f := NewToxicityFilter(nil).WithMLScorer(stubScorer{score: 0.1})
	matched, _, _ := f.Detect("whatever", GuardContext{})
	if matched {
		t.Error("Detect() matched = true, want false")
	}
}

func TestToxicityFilter_MLMode_ErrorFailsOpen(t *testing.T) {
	t.Parallel()

	f := NewToxicityFilter(nil).WithMLScorer(stubScorer{err: errors.New("endpoint down")})
	matched, _, meta := f.Detect("whatever", GuardContext{})
	if matched {
		t.Error("Detect() matched = true, want false on scorer error")
	}
	if meta["error"] == nil {
		t.Error("metadata missing error detail")
	}
}
