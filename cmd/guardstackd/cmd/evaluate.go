package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/guardstack/guardstack/internal/domain/interceptor"
	"github.com/guardstack/guardstack/pkg/mcp"
)

var (
	evalToolName  string
	evalArgsJSON  string
	evalSessionID string
	evalMCP       bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run one tool call through the interceptor",
	Long: `Build the agentic interceptor's default validator and risk-scorer
chain and run a single tool call through it, printing the verdict as JSON.

Useful for checking what a given call would do without standing up the
full server.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evalToolName, "tool", "", "tool name being invoked (required)")
	evaluateCmd.Flags().StringVar(&evalArgsJSON, "args", "{}", "tool arguments as a JSON object")
	evaluateCmd.Flags().StringVar(&evalSessionID, "session", "cli", "session ID to attribute the call to")
	evaluateCmd.Flags().BoolVar(&evalMCP, "mcp", false, "read a raw MCP tools/call JSON-RPC request from stdin instead of --tool/--args")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	var call interceptor.ToolCall

	switch {
	case evalMCP:
		raw, err := readAllStdin()
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		call, err = mcp.DecodeToolCall([]byte(raw), evalSessionID, "")
		if err != nil {
			return fmt.Errorf("failed to decode MCP tools/call request: %w", err)
		}
	case evalToolName != "":
		var arguments map[string]any
		if err := json.Unmarshal([]byte(evalArgsJSON), &arguments); err != nil {
			return fmt.Errorf("failed to parse --args as JSON: %w", err)
		}
		call = interceptor.ToolCall{ToolName: evalToolName, Arguments: arguments, SessionID: evalSessionID}
	default:
		return fmt.Errorf("one of --tool or --mcp is required")
	}

	ic := interceptor.New()
	result := ic.Intercept(context.Background(), call)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
