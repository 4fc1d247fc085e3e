// Package sandbox implements a resource-bounded command executor with
// none/process/container isolation modes, environment scrubbing, and a
// fixed-size pool of pre-initialized sandboxes.
package sandbox

import "time"

// Mode selects the isolation level for a sandboxed execution.
type Mode string

const (
	ModeNone      Mode = "none"
	ModeProcess   Mode = "process"
	ModeContainer Mode = "container"
)

// Config configures one sandbox instance.
type Config struct {
	Mode Mode

	// Timeout bounds a single execution's wall clock.
	Timeout time.Duration

	// MemoryLimitMB and CPUShare bound container-mode resource usage.
	MemoryLimitMB int
	CPUShare      float64
	// NetworkDisabled disables network access in container mode.
	NetworkDisabled bool
	// ReadOnlyRootFS mounts the container filesystem read-only.
	ReadOnlyRootFS bool
	// VolumeMounts are host:container path pairs mounted into the container.
	VolumeMounts map[string]string

	// ExtraEnv layers additional environment variables on top of the
	// scrubbed base environment (process mode) or the container's env.
	ExtraEnv map[string]string
}

// scrubbedKeys are removed from the inherited environment in process mode.
var scrubbedKeys = []string{
	"AWS_SECRET_ACCESS_KEY", "AWS_ACCESS_KEY_ID", "OPENAI_API_KEY",
	"ANTHROPIC_API_KEY", "DATABASE_URL", "SECRET_KEY",
}

// Result is the outcome of one sandboxed execution.
type Result struct {
	Success   bool
	Stdout    string
	Stderr    string
	ExitCode  int
	ElapsedMs float64
	TimedOut  bool
}
