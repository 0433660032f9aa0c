// Package runner executes task commands and captures their output.
package runner

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/google/uuid"

	"github.com/ngenohkevin/taskdeck/internal/task"
)

// Runner executes a task's command and reports the captured result.
type Runner interface {
	Run(ctx context.Context, t task.Task) (*task.RunResult, error)
}

// HostRunner executes commands directly on the host shell.
type HostRunner struct {
	timeout time.Duration
}

// NewHostRunner creates a host runner with a per-run timeout.
func NewHostRunner(timeout time.Duration) *HostRunner {
	return &HostRunner{
		timeout: timeout,
	}
}

// Run executes the task command with bash, capturing combined output.
func (r *HostRunner) Run(ctx context.Context, t task.Task) (*task.RunResult, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	startTime := time.Now()

	cmd := exec.CommandContext(ctx, "bash", "-c", t.Command)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	duration := time.Since(startTime)

	result := &task.RunResult{
		ID:          t.ID,
		ExecutionID: uuid.NewString(),
		Command:     t.Command,
		StartedAt:   startTime,
		Duration:    duration,
	}

	// Combine stdout and stderr
	output := stdout.String()
	if stderr.Len() > 0 {
		if output != "" {
			output += "\n"
		}
		output += stderr.String()
	}
	result.Output = output

	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitError.ExitCode()
		} else {
			result.ExitCode = -1
		}
		result.Success = false
		result.Error = err.Error()
	} else {
		result.ExitCode = 0
		result.Success = true
	}

	return result, nil
}
