package filter

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// defaultToxicPatterns is the built-in word/phrase list for pattern-mode
// toxicity detection. It is intentionally coarse; production deployments
// are expected to supply their own list or switch to ML mode.
var defaultToxicPatterns = []string{
	"kill yourself", "i hate you", "go die", "you're worthless",
	"slur1", "slur2", // placeholders for a real denylist loaded from config
}

// MLScorer calls an external toxicity-scoring endpoint, returning a score
// in [0,1]. Implementations should respect ctx cancellation.
type MLScorer interface {
	Score(ctx context.Context, content string) (float64, error)
}

// ToxicityFilter detects toxic content either by a compiled pattern list
// (reporting a match count) or, when an MLScorer is configured, by
// comparing a model score against Threshold.
type ToxicityFilter struct {
	patterns  []*regexp.Regexp
	scorer    MLScorer
	Threshold float64
	Timeout   time.Duration
}

// NewToxicityFilter builds a pattern-mode ToxicityFilter from custom
// patterns, or the built-in list when patterns is nil.
func NewToxicityFilter(patterns []string) *ToxicityFilter {
	if patterns == nil {
		patterns = defaultToxicPatterns
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(p)))
	}
	return &ToxicityFilter{patterns: compiled, Threshold: 0.7, Timeout: 2 * time.Second}
}

// WithMLScorer switches the filter to ML mode: Detect calls scorer instead
// of matching patterns.
func (f *ToxicityFilter) WithMLScorer(scorer MLScorer) *ToxicityFilter {
	f.scorer = scorer
	return f
}

func (f *ToxicityFilter) Name() string { return "toxicity" }

// Detect implements Detector. In ML mode a scorer error is treated as "not
// matched" with the error recorded in metadata, so a flaky endpoint
// fails open rather than blocking every request.
func (f *ToxicityFilter) Detect(content string, _ GuardContext) (bool, []string, map[string]any) {
	if f.scorer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), f.Timeout)
		defer cancel()

		score, err := f.scorer.Score(ctx, content)
		if err != nil {
			return false, nil, map[string]any{"mode": "ml", "error": err.Error()}
		}
		matched := score >= f.Threshold
		meta := map[string]any{"mode": "ml", "score": score, "threshold": f.Threshold}
		if !matched {
			return false, nil, meta
		}
		return true, []string{fmt.Sprintf("toxicity score %.2f >= threshold %.2f", score, f.Threshold)}, meta
	}

	var hits []string
	for _, re := range f.patterns {
		if loc := re.FindStringIndex(content); loc != nil {
			hits = append(hits, strings.ToLower(content[loc[0]:loc[1]]))
		}
	}
	if len(hits) == 0 {
		return false, nil, map[string]any{"mode": "pattern", "count": 0}
	}
	reasons := make([]string, len(hits))
	for i, h := range hits {
		reasons[i] = fmt.Sprintf("matched toxic pattern %q", h)
	}
	return true, reasons, map[string]any{"mode": "pattern", "count": len(hits)}
}
