package interceptor

import (
	"encoding/json"
	"fmt"
	"strings"
)

// dangerousArgPatterns are substrings that, when present anywhere in a
// ToolCall's argument representation, reject the call outright.
var dangerousArgPatterns = []string{
	"rm -rf", "DROP TABLE", "<script>", "javascript:", "sudo", "; rm ", "| rm ",
}

// argString renders a ToolCall's arguments as a single string for
// substring scans (dangerous-argument validation, length-based scoring).
func argString(call ToolCall) string {
	b, err := json.Marshal(call.Arguments)
	if err != nil {
		return fmt.Sprint(call.Arguments)
	}
	return string(b)
}

// AllowDenyListValidator rejects calls against an explicit deny-list and,
// when an allow-list is non-empty, requires membership in it.
type AllowDenyListValidator struct {
	AllowList map[string]bool
	DenyList  map[string]bool
}

func (v AllowDenyListValidator) Validate(call ToolCall) (bool, string) {
	if v.DenyList[call.ToolName] {
		return false, fmt.Sprintf("tool %q is on the deny list", call.ToolName)
	}
	if len(v.AllowList) > 0 && !v.AllowList[call.ToolName] {
		return false, fmt.Sprintf("tool %q is not on the allow list", call.ToolName)
	}
	return true, ""
}

// DangerousArgumentValidator rejects calls whose argument representation
// contains a fixed set of dangerous substrings.
type DangerousArgumentValidator struct{}

func (DangerousArgumentValidator) Validate(call ToolCall) (bool, string) {
	args := argString(call)
	for _, pattern := range dangerousArgPatterns {
		if strings.Contains(args, pattern) {
			return false, fmt.Sprintf("dangerous argument pattern detected: %q", pattern)
		}
	}
	return true, ""
}

// DefaultValidators returns the allow-/deny-list check and the
// dangerous-argument check, in that order.
func DefaultValidators(allowList, denyList map[string]bool) []Validator {
	return []Validator{
		AllowDenyListValidator{AllowList: allowList, DenyList: denyList},
		DangerousArgumentValidator{},
	}
}

var highRiskSubstrings = []string{
	"execute", "eval", "shell", "command", "run", "delete", "remove", "drop", "truncate", "write", "modify", "update",
}

var mediumRiskSubstrings = []string{
	"read", "get", "fetch", "query", "search", "list", "browse", "access",
}

const shellMetacharacters = ";&|`$(){}[]<>"

// DefaultRiskScorer implements the fixed-weight heuristic: +0.4 for a
// high-risk tool-name substring, +0.2 for a medium-risk one, +0.2 for an
// oversized argument string, +0.2 for shell metacharacters. Clamped to 1.0.
type DefaultRiskScorer struct{}

func (DefaultRiskScorer) Score(call ToolCall) float64 {
	name := strings.ToLower(call.ToolName)
	var risk float64

	for _, s := range highRiskSubstrings {
		if strings.Contains(name, s) {
			risk += 0.4
			break
		}
	}
	for _, s := range mediumRiskSubstrings {
		if strings.Contains(name, s) {
			risk += 0.2
			break
		}
	}

	args := argString(call)
	if len(args) > 1000 {
		risk += 0.2
	}
	if strings.ContainsAny(args, shellMetacharacters) {
		risk += 0.2
	}

	if risk > 1.0 {
		risk = 1.0
	}
	return risk
}
