package store

import "fmt"

// ValidationError reports a task with a missing required field.
// It is returned before any state mutation or network call.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s is required", e.Field)
}

// NotFoundError reports an operation on an id absent from the local list.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %q not found", e.ID)
}

// NetworkError reports an unreachable backend.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError reports a backend call that exceeded its bounded wait.
// Callers treat it the same as NetworkError.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out: %v", e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// DecodeError reports a malformed backend response.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// CreateFailed reports a remote rejection of an optimistic create.
// The local entry has already been rolled back; Task carries the
// original input so the caller can retry or display it.
type CreateFailed struct {
	Task Task
	Err  error
}

func (e *CreateFailed) Error() string {
	return fmt.Sprintf("create %q failed: %v", e.Task.ID, e.Err)
}

func (e *CreateFailed) Unwrap() error { return e.Err }

// DeleteFailed reports a remote rejection of an optimistic delete.
// The entry has been restored at its original position.
type DeleteFailed struct {
	Task Task
	Err  error
}

func (e *DeleteFailed) Error() string {
	return fmt.Sprintf("delete %q failed: %v", e.Task.ID, e.Err)
}

func (e *DeleteFailed) Unwrap() error { return e.Err }

// ExecutionFailed reports a failed remote run, carrying whatever
// partial output the backend returned.
type ExecutionFailed struct {
	ID     string
	Output string
	Err    error
}

func (e *ExecutionFailed) Error() string {
	return fmt.Sprintf("execute %q failed: %v", e.ID, e.Err)
}

func (e *ExecutionFailed) Unwrap() error { return e.Err }
