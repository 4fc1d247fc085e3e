package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// TopicFilter blocks content matching any keyword in a blocked group, with
// an optional allow-list that overrides a block when the allowed keyword
// also appears (e.g. "poison" blocked generally, but allowed alongside
// "antidote" in a medical-content context).
type TopicFilter struct {
	blocked map[string]*regexp.Regexp
	allowed map[string]*regexp.Regexp
}

// NewTopicFilter compiles blocked and allowed keyword groups (group name ->
// keyword list) into one disjunctive regex per group.
func NewTopicFilter(blockedGroups, allowedGroups map[string][]string) *TopicFilter {
	return &TopicFilter{
		blocked: compileGroups(blockedGroups),
		allowed: compileGroups(allowedGroups),
	}
}

func compileGroups(groups map[string][]string) map[string]*regexp.Regexp {
	compiled := make(map[string]*regexp.Regexp, len(groups))
	for name, keywords := range groups {
		if len(keywords) == 0 {
			continue
		}
		parts := make([]string, len(keywords))
		for i, kw := range keywords {
			parts[i] = regexp.QuoteMeta(kw)
		}
		compiled[name] = regexp.MustCompile(`(?i)\b(?:` + strings.Join(parts, "|") + `)\b`)
	}
	return compiled
}

func (f *TopicFilter) Name() string { return "topic" }

// Detect implements Detector: content matches if any blocked group's regex
// fires and the same group's allowed-keyword regex (if configured) does
// not also match.
func (f *TopicFilter) Detect(content string, _ GuardContext) (bool, []string, map[string]any) {
	var reasons []string
	matchedGroups := make([]string, 0)

	for group, re := range f.blocked {
		if !re.MatchString(content) {
			continue
		}
		if allow, ok := f.allowed[group]; ok && allow.MatchString(content) {
			continue
		}
		matchedGroups = append(matchedGroups, group)
		reasons = append(reasons, fmt.Sprintf("content matched blocked topic group %q", group))
	}

	if len(matchedGroups) == 0 {
		return false, nil, nil
	}
	return true, reasons, map[string]any{"matched_groups": matchedGroups}
}
