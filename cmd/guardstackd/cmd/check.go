package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/guardstack/guardstack/internal/config"
	"github.com/guardstack/guardstack/internal/domain/filter"
	"github.com/guardstack/guardstack/internal/domain/guardrail"
)

var (
	checkContent string
	checkPhase   string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one guardrail check against stdin or --content",
	Long: `Build the guardrails checkpoint pipeline from config and run a single
piece of content through it, printing the resulting verdict as JSON.

Reads from stdin unless --content is given.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkContent, "content", "", "content to check (default: read from stdin)")
	checkCmd.Flags().StringVar(&checkPhase, "phase", "input", "guardrail phase: input or output")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	content := checkContent
	if content == "" {
		buf, err := readAllStdin()
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		content = buf
	}

	checkpoints := make([]guardrail.Config, 0, len(cfg.Guardrails.Checkpoints))
	for _, cp := range cfg.Guardrails.Checkpoints {
		check, err := buildCheckpoint(cp.Name)
		if err != nil {
			continue
		}
		timeout, err := time.ParseDuration(cp.Timeout)
		if err != nil {
			timeout = 500 * time.Millisecond
		}
		checkpoints = append(checkpoints, guardrail.Config{
			Name:     cp.Name,
			Phase:    phaseFromStrings(cp.Phases),
			Enabled:  true,
			FailOpen: cp.FailOpen,
			Timeout:  timeout,
			Check:    check,
		})
	}

	phase := guardrail.PhaseInput
	if checkPhase == "output" {
		phase = guardrail.PhaseOutput
	}

	runtime := guardrail.New(checkpoints)
	result := runtime.Run(context.Background(), content, filter.GuardContext{}, phase)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func readAllStdin() (string, error) {
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			break
		}
	}
	return string(buf), nil
}
