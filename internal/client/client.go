// Package client implements the HTTP backend the task store talks to.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ngenohkevin/taskdeck/internal/store"
)

// Client is an HTTP implementation of store.Backend.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a client for the task API at baseURL. The timeout bounds
// every request; an exceeded bound surfaces as store.TimeoutError.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

type listResponse struct {
	Tasks []store.Task `json:"tasks"`
	Total int          `json:"total"`
}

type runResponse struct {
	ID       string `json:"id"`
	Output   string `json:"output"`
	ExitCode int    `json:"exit_code"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ListTasks implements store.Backend.
func (c *Client) ListTasks(ctx context.Context) ([]store.Task, error) {
	const op = "list tasks"

	resp, err := c.do(ctx, http.MethodGet, "/api/tasks", nil, op)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", op, c.serverError(resp))
	}

	var list listResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, &store.DecodeError{Op: op, Err: err}
	}
	return list.Tasks, nil
}

// CreateTask implements store.Backend.
func (c *Client) CreateTask(ctx context.Context, t store.Task) error {
	const op = "create task"

	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/tasks", bytes.NewReader(body), op)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s: %s", op, c.serverError(resp))
	}
	return nil
}

// DeleteTask implements store.Backend.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	const op = "delete task"

	resp, err := c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, op)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return &store.NotFoundError{ID: id}
	default:
		return fmt.Errorf("%s: %s", op, c.serverError(resp))
	}
}

// RunTask implements store.Backend. Partial output accompanies the error
// when the command itself failed.
func (c *Client) RunTask(ctx context.Context, id string) (string, error) {
	const op = "run task"

	resp, err := c.do(ctx, http.MethodPost, "/api/tasks/"+id+"/run", nil, op)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", &store.NotFoundError{ID: id}
	default:
		return "", fmt.Errorf("%s: %s", op, c.serverError(resp))
	}

	var run runResponse
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		return "", &store.DecodeError{Op: op, Err: err}
	}

	if !run.Success {
		msg := run.Error
		if msg == "" {
			msg = fmt.Sprintf("command exited with code %d", run.ExitCode)
		}
		return run.Output, errors.New(msg)
	}
	return run.Output, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, op string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &store.NetworkError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(op, err)
	}
	return resp, nil
}

// serverError extracts the error message from a non-2xx response body.
func (c *Client) serverError(resp *http.Response) string {
	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Error != "" {
		return fmt.Sprintf("server returned %d: %s", resp.StatusCode, er.Error)
	}
	return fmt.Sprintf("server returned %d", resp.StatusCode)
}

// transportError classifies a failed request as timeout or network error.
func transportError(op string, err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &store.TimeoutError{Op: op, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &store.TimeoutError{Op: op, Err: err}
	}
	return &store.NetworkError{Op: op, Err: err}
}
