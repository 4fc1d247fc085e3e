package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Sandbox is a scoped execution resource: Setup allocates its working
// directory, Teardown removes it. Acquisition paths must call Teardown
// regardless of whether Execute succeeds.
type Sandbox struct {
	cfg     Config
	tempDir string
}

// New builds a Sandbox for cfg. Call Setup before Execute, and Teardown
// when done.
func New(cfg Config) *Sandbox {
	return &Sandbox{cfg: cfg}
}

// Setup allocates a tempdir prefixed "sandbox_" for this instance's
// lifetime.
func (s *Sandbox) Setup() error {
	dir, err := os.MkdirTemp("", "sandbox_")
	if err != nil {
		return fmt.Errorf("sandbox setup: %w", err)
	}
	s.tempDir = dir
	return nil
}

// Teardown removes the sandbox's tempdir recursively, ignoring errors (the
// directory may already be gone, or contain files the process can't
// remove — neither should fail the caller's cleanup path).
func (s *Sandbox) Teardown() {
	if s.tempDir != "" {
		_ = os.RemoveAll(s.tempDir)
	}
}

// TempDir returns the sandbox's working directory.
func (s *Sandbox) TempDir() string { return s.tempDir }

// Execute runs name/args under the sandbox's configured mode, resource
// limits, and timeout.
func (s *Sandbox) Execute(ctx context.Context, name string, args ...string) Result {
	switch s.cfg.Mode {
	case ModeContainer:
		return s.executeContainer(ctx, name, args...)
	default:
		return s.executeLocal(ctx, name, args...)
	}
}

// executeLocal covers both "none" and "process" modes: a subprocess under
// the sandbox's tempdir, bounded to exactly the configured timeout.
// "process" mode additionally scrubs the environment.
func (s *Sandbox) executeLocal(ctx context.Context, name string, args ...string) Result {
	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, name, args...)
	cmd.Dir = s.tempDir

	if s.cfg.Mode == ModeProcess {
		cmd.Env = scrubbedEnv(s.cfg.Mode, s.cfg.ExtraEnv)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if execCtx.Err() == context.DeadlineExceeded {
		return Result{Success: false, ExitCode: -1, TimedOut: true, ElapsedMs: float64(elapsed.Microseconds()) / 1000.0, Stdout: stdout.String(), Stderr: stderr.String()}
	}

	exitCode := 0
	success := err == nil
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		exitCode = -1
	}

	return Result{
		Success:   success,
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		ExitCode:  exitCode,
		ElapsedMs: float64(elapsed.Microseconds()) / 1000.0,
	}
}

// executeContainer launches name/args under a container runtime CLI
// (docker-compatible), applying the configured memory/CPU/network/
// filesystem restrictions. The launcher receives timeout+10s to account
// for container startup; no separate limit is passed to the container, so
// the inner process is bounded only by that launcher deadline.
func (s *Sandbox) executeContainer(ctx context.Context, name string, args ...string) Result {
	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout+10*time.Second)
	defer cancel()

	runnerArgs := s.containerArgs(name, args...)
	cmd := exec.CommandContext(execCtx, "docker", runnerArgs...)
	cmd.Dir = s.tempDir
	cmd.Env = scrubbedEnv(s.cfg.Mode, s.cfg.ExtraEnv)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if execCtx.Err() == context.DeadlineExceeded {
		return Result{Success: false, ExitCode: -1, TimedOut: true, ElapsedMs: float64(elapsed.Microseconds()) / 1000.0, Stdout: stdout.String(), Stderr: stderr.String()}
	}

	exitCode := 0
	success := err == nil
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		exitCode = -1
	}

	return Result{
		Success:   success,
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		ExitCode:  exitCode,
		ElapsedMs: float64(elapsed.Microseconds()) / 1000.0,
	}
}

func (s *Sandbox) containerArgs(name string, args ...string) []string {
	runnerArgs := []string{"run", "--rm"}

	if s.cfg.MemoryLimitMB > 0 {
		runnerArgs = append(runnerArgs, "--memory", fmt.Sprintf("%dm", s.cfg.MemoryLimitMB))
	}
	if s.cfg.CPUShare > 0 {
		runnerArgs = append(runnerArgs, "--cpus", fmt.Sprintf("%.2f", s.cfg.CPUShare))
	}
	if s.cfg.NetworkDisabled {
		runnerArgs = append(runnerArgs, "--network", "none")
	}
	if s.cfg.ReadOnlyRootFS {
		runnerArgs = append(runnerArgs, "--read-only")
	}
	for host, container := range s.cfg.VolumeMounts {
		runnerArgs = append(runnerArgs, "-v", host+":"+container)
	}
	for _, kv := range scrubbedEnvList(s.cfg.ExtraEnv) {
		runnerArgs = append(runnerArgs, "-e", kv)
	}

	runnerArgs = append(runnerArgs, "sandbox-runtime", name)
	return append(runnerArgs, args...)
}
