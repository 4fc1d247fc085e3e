package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// piiKind distinguishes the regex families the PII filter scans for.
type piiKind string

const (
	piiSSN         piiKind = "ssn"
	piiCreditCard  piiKind = "credit_card"
	piiEmail       piiKind = "email"
	piiPhone       piiKind = "phone"
	piiIPv4        piiKind = "ipv4"
	piiDOB         piiKind = "dob"
	piiPassport    piiKind = "passport"
)

var piiPatterns = map[piiKind]*regexp.Regexp{
	piiSSN:        regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	piiCreditCard: regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{4}\b`),
	piiEmail:      regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`),
	piiPhone:      regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`),
	piiIPv4:       regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
	piiDOB:        regexp.MustCompile(`\b(?:0[1-9]|1[0-2])[\/\-](?:0[1-9]|[12]\d|3[01])[\/\-](?:19|20)\d{2}\b`),
	piiPassport:   regexp.MustCompile(`\b[A-Z]{1,2}\d{6,9}\b`),
}

// Invalid SSN area-number prefixes per SSA rules: 000 and 666 were never
// issued, and 9xx is reserved for ITINs. A match on one of these discounts
// confidence rather than suppressing the finding outright — it might still
// be a real identifier formatted like an SSN in a different scheme.
var invalidSSNPrefixes = []string{"000", "666"}

// PIIMatch is a single regex hit, with the confidence-adjusted kind and
// span needed to redact it in place.
type PIIMatch struct {
	Kind       piiKind
	Text       string
	Start, End int
	Confidence float64
}

// PIIFilter detects common personally-identifiable-information patterns
// and can redact matched spans in place.
type PIIFilter struct {
	RedactionChar byte
}

// NewPIIFilter builds a PIIFilter using '*' as the redaction character.
func NewPIIFilter() *PIIFilter {
	return &PIIFilter{RedactionChar: '*'}
}

func (f *PIIFilter) Name() string { return "pii" }

// scan finds every PII match across all regex families.
func (f *PIIFilter) scan(content string) []PIIMatch {
	var matches []PIIMatch
	for kind, re := range piiPatterns {
		for _, loc := range re.FindAllStringIndex(content, -1) {
			text := content[loc[0]:loc[1]]
			confidence := 1.0
			if kind == piiSSN && hasInvalidSSNPrefix(text) {
				confidence = 0.5
			}
			matches = append(matches, PIIMatch{
				Kind:       kind,
				Text:       text,
				Start:      loc[0],
				End:        loc[1],
				Confidence: confidence,
			})
		}
	}
	return matches
}

func hasInvalidSSNPrefix(ssn string) bool {
	if len(ssn) < 3 {
		return false
	}
	prefix := ssn[:3]
	for _, p := range invalidSSNPrefixes {
		if prefix == p {
			return true
		}
	}
	return strings.HasPrefix(prefix, "9")
}

// Detect implements Detector.
func (f *PIIFilter) Detect(content string, _ GuardContext) (bool, []string, map[string]any) {
	matches := f.scan(content)
	if len(matches) == 0 {
		return false, nil, nil
	}

	counts := map[string]int{}
	reasons := make([]string, 0, len(matches))
	for _, m := range matches {
		counts[string(m.Kind)]++
		reasons = append(reasons, fmt.Sprintf("%s detected at offset %d (confidence %.2f)", m.Kind, m.Start, m.Confidence))
	}

	return true, reasons, map[string]any{
		"match_count":  len(matches),
		"kind_counts":  counts,
	}
}

// Modify implements Modifier: every matched span is replaced by
// RedactionChar repeated to the original span's length, so redaction never
// changes the content's length (important for downstream offset-based
// tooling).
func (f *PIIFilter) Modify(content string, _ GuardContext) (string, error) {
	matches := f.scan(content)
	if len(matches) == 0 {
		return content, nil
	}

	out := []byte(content)
	for _, m := range matches {
		for i := m.Start; i < m.End; i++ {
			out[i] = f.RedactionChar
		}
	}
	return string(out), nil
}
