// Command guardstackd runs the GuardStack control plane: the guardrails
// checkpoint pipeline, the agentic tool-call interceptor, and the scoring
// core, behind a single REST facade.
package main

import "github.com/guardstack/guardstack/cmd/guardstackd/cmd"

func main() {
	cmd.Execute()
}
