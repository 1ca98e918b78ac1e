package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"ci-relay/internal/model"
)

// ShellExecutor runs step commands through `sh -c` with the step's
// environment bindings appended to the process environment.
type ShellExecutor struct {
	workDir string
	timeout time.Duration
}

var _ Executor = (*ShellExecutor)(nil)

// NewShellExecutor creates an executor. timeout bounds each step; zero
// means no per-step bound beyond the run context.
func NewShellExecutor(workDir string, timeout time.Duration) *ShellExecutor {
	return &ShellExecutor{workDir: workDir, timeout: timeout}
}

// Execute implements Executor.
func (e *ShellExecutor) Execute(ctx context.Context, step model.Step) (ExecResult, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", step.Command)
	cmd.Dir = e.workDir

	env := os.Environ()
	for k, v := range step.Env {
		env = append(env, k+"="+v)
	}
	cmd.Env = env

	out, err := cmd.CombinedOutput()
	result := ExecResult{Output: string(out)}

	if err == nil {
		return result, nil
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	return result, fmt.Errorf("failed to run step %q: %w", step.Name, err)
}
