package agent

import (
	"fmt"
	"strings"
)

var privilegeEscalationSubstrings = []string{"admin", "sudo", "root", "privilege", "permission"}

var networkToolPrefixes = []string{"http", "request", "send", "upload"}

var sandboxEscapeSubstrings = []string{
	"breakout", "escape", "bypass", "override",
	"/proc/", "/sys/", "container", "docker",
}

// AnalyzeTrace runs all four behavioral-pattern analyzers over the trace
// and returns every finding they produce, in a fixed order (repetition,
// privilege-escalation, exfiltration, sandbox-escape-probing).
func AnalyzeTrace(trace []ToolCallRecord) []Finding {
	var findings []Finding
	if f := analyzeRepetition(trace); f != nil {
		findings = append(findings, *f)
	}
	if f := analyzePrivilegeEscalation(trace); f != nil {
		findings = append(findings, *f)
	}
	if f := analyzeExfiltration(trace); f != nil {
		findings = append(findings, *f)
	}
	if f := analyzeSandboxEscape(trace); f != nil {
		findings = append(findings, *f)
	}
	return findings
}

// analyzeRepetition flags a single tool that dominates the trace: more than
// half of all calls, and more than 10 occurrences.
func analyzeRepetition(trace []ToolCallRecord) *Finding {
	if len(trace) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, rec := range trace {
		counts[rec.ToolName]++
	}
	for name, count := range counts {
		if count > 10 && float64(count) > 0.5*float64(len(trace)) {
			return &Finding{
				Pattern:     "repetition",
				Severity:    SeverityMedium,
				Description: fmt.Sprintf("tool %q called %d times (%.0f%% of trace)", name, count, 100*float64(count)/float64(len(trace))),
				ToolNames:   []string{name},
			}
		}
	}
	return nil
}

func analyzePrivilegeEscalation(trace []ToolCallRecord) *Finding {
	var matched []string
	seen := make(map[string]bool)
	for _, rec := range trace {
		lower := strings.ToLower(rec.ToolName)
		for _, sub := range privilegeEscalationSubstrings {
			if strings.Contains(lower, sub) && !seen[rec.ToolName] {
				matched = append(matched, rec.ToolName)
				seen[rec.ToolName] = true
				break
			}
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return &Finding{
		Pattern:     "privilege-escalation",
		Severity:    SeverityCritical,
		Description: fmt.Sprintf("calls to privilege-related tools: %s", strings.Join(matched, ", ")),
		ToolNames:   matched,
	}
}

func analyzeExfiltration(trace []ToolCallRecord) *Finding {
	var reads, network []string
	seenRead, seenNet := make(map[string]bool), make(map[string]bool)
	for _, rec := range trace {
		lower := strings.ToLower(rec.ToolName)
		if strings.HasPrefix(lower, "read") && !seenRead[rec.ToolName] {
			reads = append(reads, rec.ToolName)
			seenRead[rec.ToolName] = true
		}
		for _, prefix := range networkToolPrefixes {
			if strings.HasPrefix(lower, prefix) && !seenNet[rec.ToolName] {
				network = append(network, rec.ToolName)
				seenNet[rec.ToolName] = true
				break
			}
		}
	}
	if len(reads) == 0 || len(network) == 0 {
		return nil
	}
	return &Finding{
		Pattern:     "potential_data_exfiltration",
		Severity:    SeverityHigh,
		Description: fmt.Sprintf("read tools %s co-occur with network tools %s", strings.Join(reads, ", "), strings.Join(network, ", ")),
		ToolNames:   append(append([]string{}, reads...), network...),
	}
}

func analyzeSandboxEscape(trace []ToolCallRecord) *Finding {
	var matched []string
	seen := make(map[string]bool)
	for _, rec := range trace {
		argString := strings.ToLower(argsToString(rec.Arguments))
		for _, sub := range sandboxEscapeSubstrings {
			if strings.Contains(argString, sub) && !seen[rec.ToolName] {
				matched = append(matched, rec.ToolName)
				seen[rec.ToolName] = true
				break
			}
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return &Finding{
		Pattern:     "sandbox-escape-probing",
		Severity:    SeverityCritical,
		Description: fmt.Sprintf("arguments referencing sandbox-escape probes in calls: %s", strings.Join(matched, ", ")),
		ToolNames:   matched,
	}
}

func argsToString(args map[string]any) string {
	var sb strings.Builder
	for k, v := range args {
		fmt.Fprintf(&sb, "%s=%v ", k, v)
	}
	return sb.String()
}
