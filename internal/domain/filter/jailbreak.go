package filter

import (
	"regexp"
	"time"
)

// ScanMode controls how the response scanner handles detections.
type ScanMode string

const (
	// ScanModeMonitor logs detections without blocking responses.
	ScanModeMonitor ScanMode = "monitor"
	// ScanModeEnforce blocks responses containing prompt injection.
	ScanModeEnforce ScanMode = "enforce"
)

// ScanFinding represents a single pattern match found during scanning.
type ScanFinding struct {
	// PatternName is the identifier of the matched pattern (e.g., "system_prompt_override").
	PatternName string
	// PatternCategory groups related patterns (e.g., "prompt_injection", "delimiter_escape").
	PatternCategory string
	// MatchedText is the text that matched, truncated to 100 characters.
	MatchedText string
	// Position is the byte offset where the match starts in the scanned content.
	Position int
}

// ScanResult contains the outcome of scanning content for prompt injection.
type ScanResult struct {
	// Detected is true if one or more patterns matched.
	Detected bool
	// Findings contains all pattern matches found.
	Findings []ScanFinding
	// ScanDurationNs is how long the scan took in nanoseconds.
	ScanDurationNs int64
}

// compiledPattern holds a pre-compiled regex pattern with metadata.
type compiledPattern struct {
	name     string
	category string
	re       *regexp.Regexp
}

// JailbreakFilter detects jailbreak and prompt-injection patterns in guardrail content.
// All patterns are compiled at construction time for minimal per-scan overhead.
type JailbreakFilter struct {
	patterns []compiledPattern
}

// NewJailbreakFilter creates a JailbreakFilter with compiled regex patterns
// for detecting prompt injection attacks in tool responses.
func NewJailbreakFilter() *JailbreakFilter {
	rawPatterns := []struct {
		name     string
		category string
		pattern  string
	}{
		{
			name:     "system_prompt_override",
			category: "prompt_injection",
			pattern:  `(?i)(?:ignore|disregard|forget)\s+(?:all\s+)?(?:previous|prior|above|earlier)\s+(?:instructions|prompts|rules|context)`,
		},
		{
			name:     "role_hijack",
			category: "prompt_injection",
			pattern:  `(?i)you\s+are\s+(?:now|actually|really)\s+(?:a|an|my)\s+`,
		},
		{
			name:     "instruction_injection",
			category: "prompt_injection",
			pattern:  `(?i)(?:new\s+instructions?|updated?\s+(?:instructions?|rules?|prompt)):\s*`,
		},
		{
			name:     "system_tag_injection",
			category: "prompt_injection",
			pattern:  `(?i)<\s*(?:system|assistant|user|human|ai)\s*>`,
		},
		{
			name:     "delimiter_escape",
			category: "delimiter_escape",
			pattern:  "(?i)(?:```|---|\\.{3})\\s*(?:system|instructions?|rules?)\\s*(?:```|---|\\.{3})",
		},
		{
			name:     "do_anything_now",
			category: "prompt_injection",
			pattern:  `(?i)(?:DAN|do\s+anything\s+now|jailbreak|ignore\s+safety)`,
		},
		{
			name:     "encoding_marker",
			category: "obfuscation",
			pattern:  `(?i)\b(?:base64|rot13)\b`,
		},
		{
			name:     "chat_delimiter_injection",
			category: "delimiter_escape",
			pattern:  `(?i)\[/?INST\]|###\s*System`,
		},
	}

	compiled := make([]compiledPattern, 0, len(rawPatterns))
	for _, rp := range rawPatterns {
		compiled = append(compiled, compiledPattern{
			name:     rp.name,
			category: rp.category,
			re:       regexp.MustCompile(rp.pattern),
		})
	}

	return &JailbreakFilter{
		patterns: compiled,
	}
}

// Name implements Detector.
func (s *JailbreakFilter) Name() string { return "jailbreak" }

// Detect implements Detector by adapting Scan's ScanResult to the
// matched/reasons/metadata shape the checkpoint registry expects.
func (s *JailbreakFilter) Detect(content string, _ GuardContext) (bool, []string, map[string]any) {
	result := s.Scan(content)
	if !result.Detected {
		return false, nil, nil
	}
	reasons := make([]string, len(result.Findings))
	for i, f := range result.Findings {
		reasons[i] = f.PatternCategory + ":" + f.PatternName
	}
	return true, reasons, map[string]any{"finding_count": len(result.Findings)}
}

// Scan runs all compiled patterns against the given content string.
// Returns a ScanResult with any findings. Empty content returns immediately
// with no findings.
func (s *JailbreakFilter) Scan(content string) ScanResult {
	start := time.Now()

	if content == "" {
		return ScanResult{
			ScanDurationNs: time.Since(start).Nanoseconds(),
		}
	}

	var findings []ScanFinding
	for _, p := range s.patterns {
		matches := p.re.FindAllStringIndex(content, -1)
		for _, loc := range matches {
			matchedText := content[loc[0]:loc[1]]
			if len(matchedText) > 100 {
				matchedText = matchedText[:100]
			}
			findings = append(findings, ScanFinding{
				PatternName:     p.name,
				PatternCategory: p.category,
				MatchedText:     matchedText,
				Position:        loc[0],
			})
		}
	}

	return ScanResult{
		Detected:       len(findings) > 0,
		Findings:       findings,
		ScanDurationNs: time.Since(start).Nanoseconds(),
	}
}

// ScanJSON recursively scans JSON-compatible values (strings, maps, slices)
// for prompt injection patterns. This handles the common case where tool or model
// results are JSON objects with string fields that may contain injected content.
func (s *JailbreakFilter) ScanJSON(v interface{}) ScanResult {
	start := time.Now()

	var findings []ScanFinding
	s.scanValue(v, &findings)

	return ScanResult{
		Detected:       len(findings) > 0,
		Findings:       findings,
		ScanDurationNs: time.Since(start).Nanoseconds(),
	}
}

// scanValue recursively extracts strings from JSON-compatible values and scans them.
func (s *JailbreakFilter) scanValue(v interface{}, findings *[]ScanFinding) {
	switch val := v.(type) {
	case string:
		result := s.Scan(val)
		if result.Detected {
			*findings = append(*findings, result.Findings...)
		}
	case map[string]interface{}:
		for _, mapVal := range val {
			s.scanValue(mapVal, findings)
		}
	case []interface{}:
		for _, item := range val {
			s.scanValue(item, findings)
		}
		// Skip other types (numbers, bools, nil)
	}
}
