// Package cmd provides the CLI commands for guardstackd.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/guardstack/guardstack/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "guardstackd",
	Short: "GuardStack - AI safety control plane",
	Long: `GuardStack runs the Guardrails Runtime, the Agentic Interceptor and
Sandbox, and the Scoring Core behind one operator-facing REST facade.

Quick start:
  1. Create a config file: guardstack.yaml
  2. Run: guardstackd serve

Configuration:
  Config is loaded from guardstack.yaml in the current directory,
  $HOME/.guardstack/, or /etc/guardstack/.

  Environment variables override config values with the GUARDSTACK_ prefix.
  Example: GUARDSTACK_SERVER_HTTP_ADDR=:9090

Commands:
  serve     Start the control plane server
  check     Run one guardrail check against stdin/flag content
  evaluate  Run one tool call through the interceptor
  version   Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./guardstack.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
