package taskwarrior

import (
	"context"
	"fmt"
	"strings"
)

// SyncAnnotationPrefix marks the annotation that links a local task to its
// remote counterpart. The full format is owned by pkg/identity.
const SyncAnnotationPrefix = "remoteId="

// listFilter selects every task the reconciler cares about: open tasks plus
// completed ones, so completions can be propagated in both directions.
var listFilter = []string{"(", "status:pending", "or", "status:completed", ")"}

// ListTasks returns all pending and completed tasks, annotations included.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	return c.Export(ctx, listFilter...)
}

// CreateTask adds a new task. The returned task has its UUID populated.
func (c *Client) CreateTask(ctx context.Context, t Task) (Task, error) {
	t.UUID = "" // Import assigns a fresh one
	return c.Import(ctx, t)
}

// UpdateTask overwrites the task identified by t.UUID.
func (c *Client) UpdateTask(ctx context.Context, t Task) error {
	if t.UUID == "" {
		return fmt.Errorf("cannot update task without uuid")
	}
	_, err := c.Import(ctx, t)
	return err
}

// CompleteTask marks the task as done.
func (c *Client) CompleteTask(ctx context.Context, taskUUID string) error {
	return c.Done(ctx, taskUUID)
}

// SetAnnotation replaces the task's sync annotation, leaving ordinary
// annotations alone. The annotation must round-trip exactly, so the task is
// re-exported and re-imported rather than mutated via `task annotate`, which
// would append instead of replace.
func (c *Client) SetAnnotation(ctx context.Context, taskUUID, annotation string) error {
	tasks, err := c.Export(ctx, "uuid:"+taskUUID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return fmt.Errorf("task %s not found", taskUUID)
	}

	t := tasks[0]
	replaced := false
	for i := range t.Annotations {
		if strings.HasPrefix(t.Annotations[i].Description, SyncAnnotationPrefix) {
			t.Annotations[i].Description = annotation
			replaced = true
			break
		}
	}
	if !replaced {
		t.Annotations = append(t.Annotations, Annotation{Description: annotation})
	}

	_, err = c.Import(ctx, t)
	return err
}
