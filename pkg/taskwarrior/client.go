package taskwarrior

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"

	"github.com/google/uuid"
)

// Overrides applied to every task invocation so a sync run neither triggers
// hooks nor blocks on confirmation prompts.
var baseOverrides = []string{"rc.hooks=0", "rc.confirmation=0", "rc.verbose=nothing"}

type Client struct{}

func NewClient() *Client {
	return &Client{}
}

// Export runs `task <filter> export` and returns the matching tasks.
func (c *Client) Export(ctx context.Context, filter ...string) ([]Task, error) {
	args := append(filter, "export")
	output, err := c.run(ctx, nil, args...)
	if err != nil {
		return nil, err
	}

	var tasks []Task
	if err := json.Unmarshal(output, &tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal taskwarrior output: %w", err)
	}
	return tasks, nil
}

// Import feeds the task to `task import`, which creates the task when its
// UUID is unknown and overwrites it when the UUID already exists. A missing
// UUID is filled in first so the caller can refer to the task afterwards.
func (c *Client) Import(ctx context.Context, task Task) (Task, error) {
	if task.UUID == "" {
		task.UUID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = PENDING
	}

	payload, err := json.Marshal([]Task{task})
	if err != nil {
		return Task{}, fmt.Errorf("failed to marshal task for import: %w", err)
	}

	if _, err := c.run(ctx, bytes.NewReader(payload), "import", "-"); err != nil {
		return Task{}, err
	}
	return task, nil
}

// Done marks the task with the given UUID as completed.
func (c *Client) Done(ctx context.Context, taskUUID string) error {
	_, err := c.run(ctx, nil, "uuid:"+taskUUID, "done")
	return err
}

func (c *Client) run(ctx context.Context, stdin io.Reader, args ...string) ([]byte, error) {
	full := append(append([]string{}, args...), baseOverrides...)
	cmd := exec.CommandContext(ctx, "task", full...)
	cmd.Stdin = stdin

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("taskwarrior command failed: exit code %d, %s, stderr: %s",
				exitErr.ExitCode(), err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("taskwarrior command failed: %w", err)
	}
	return output, nil
}

// ParseTask parses a single task JSON from an io.Reader
func (c *Client) ParseTask(r io.Reader) (Task, error) {
	var task Task
	if err := json.NewDecoder(r).Decode(&task); err != nil {
		return Task{}, fmt.Errorf("failed to decode task json: %w", err)
	}
	return task, nil
}

// ParseTasks parses multiple JSON objects from an io.Reader.
func (c *Client) ParseTasks(r io.Reader) ([]Task, error) {
	var tasks []Task
	decoder := json.NewDecoder(r)
	for {
		var task Task
		if err := decoder.Decode(&task); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
