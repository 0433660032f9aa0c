// Package task defines the task entity and the server-side registry.
package task

import (
	"fmt"
	"time"
)

// Task represents a named, owned, executable command.
// The ID is assigned by the caller at creation time.
type Task struct {
	ID      string `json:"id" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Owner   string `json:"owner" binding:"required"`
	Command string `json:"command" binding:"required"`
}

// Validate checks that all required fields are present.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("task name is required")
	}
	if t.Owner == "" {
		return fmt.Errorf("task owner is required")
	}
	if t.Command == "" {
		return fmt.Errorf("task command is required")
	}
	return nil
}

// List contains a task collection in insertion order.
type List struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
}

// RunResult represents the result of executing a task's command.
type RunResult struct {
	ID          string        `json:"id"`
	ExecutionID string        `json:"execution_id"`
	Command     string        `json:"command"`
	Output      string        `json:"output"`
	ExitCode    int           `json:"exit_code"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
}
