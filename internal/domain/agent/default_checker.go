package agent

import (
	"context"
	"fmt"

	"github.com/guardstack/guardstack/internal/domain/tool"
)

// DefaultSecurityChecker classifies tool names with the same pattern
// catalog the tool package uses for MCP tool-list classification. It has no
// external dependency, making it suitable for tests and local development
// where no real security-checker service is wired in.
type DefaultSecurityChecker struct{}

func (DefaultSecurityChecker) Check(_ context.Context, toolName string) (bool, string, tool.RiskLevel, error) {
	level := tool.ClassifyTool(tool.Tool{Name: toolName})
	switch level {
	case tool.RiskLevelCritical:
		return false, fmt.Sprintf("tool %q classified critical risk", toolName), level, nil
	case tool.RiskLevelHigh:
		return false, fmt.Sprintf("tool %q classified high risk", toolName), level, nil
	default:
		return true, "", level, nil
	}
}
