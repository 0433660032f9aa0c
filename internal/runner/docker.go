package runner

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/google/uuid"

	"github.com/ngenohkevin/taskdeck/internal/task"
)

// DockerRunner executes each task command in an ephemeral container.
type DockerRunner struct {
	client  *client.Client
	image   string
	timeout time.Duration
}

// NewDockerRunner creates a Docker-backed runner using the given image.
func NewDockerRunner(image string, timeout time.Duration) (*DockerRunner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return &DockerRunner{
		client:  cli,
		image:   image,
		timeout: timeout,
	}, nil
}

// IsAvailable checks if the Docker daemon is reachable.
func (r *DockerRunner) IsAvailable(ctx context.Context) bool {
	_, err := r.client.Ping(ctx)
	return err == nil
}

// Close closes the Docker client.
func (r *DockerRunner) Close() error {
	return r.client.Close()
}

// Run creates a container for the task command, waits for it to exit and
// collects its logs. The container is always removed afterwards.
func (r *DockerRunner) Run(ctx context.Context, t task.Task) (*task.RunResult, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	startTime := time.Now()

	result := &task.RunResult{
		ID:          t.ID,
		ExecutionID: uuid.NewString(),
		Command:     t.Command,
		StartedAt:   startTime,
	}

	created, err := r.client.ContainerCreate(ctx, &container.Config{
		Image: r.image,
		Cmd:   []string{"sh", "-c", t.Command},
	}, nil, nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	defer func() {
		removeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = r.client.ContainerRemove(removeCtx, created.ID, container.RemoveOptions{Force: true})
	}()

	if err := r.client.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	statusCh, errCh := r.client.ContainerWait(ctx, created.ID, container.WaitConditionNotRunning)
	var exitCode int
	select {
	case err := <-errCh:
		if err != nil {
			return nil, fmt.Errorf("failed to wait for container: %w", err)
		}
	case status := <-statusCh:
		exitCode = int(status.StatusCode)
	}

	output, err := r.containerOutput(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(startTime)
	result.Output = output
	result.ExitCode = exitCode
	result.Success = exitCode == 0
	if exitCode != 0 {
		result.Error = fmt.Sprintf("command exited with code %d", exitCode)
	}

	return result, nil
}

// containerOutput reads combined stdout and stderr from a stopped container.
func (r *DockerRunner) containerOutput(ctx context.Context, id string) (string, error) {
	reader, err := r.client.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get container logs: %w", err)
	}
	defer reader.Close()

	var lines []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := scanner.Text()
		// Docker logs have an 8-byte header for each line
		if len(line) > 8 {
			line = line[8:]
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n"), nil
}
