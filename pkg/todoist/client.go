package todoist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const defaultBaseURL = "https://api.todoist.com/rest/v2"

// maxRetries bounds the retry loop for transient API failures.
const maxRetries = 4

// Client is a Todoist REST API client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a new Todoist client authenticated with the given API token.
func NewClient(token string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBaseURL is like NewClient but targets a non-default API
// endpoint. Used by tests.
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = baseURL
	return c
}

// APIError is a non-2xx response from the Todoist API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("todoist API error: status %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether the error is worth retrying (rate limit or
// server-side failure).
func (e *APIError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ListTasks fetches all tasks visible to the authenticated user.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.get(ctx, "/tasks", &tasks); err != nil {
		return nil, fmt.Errorf("listing todoist tasks: %w", err)
	}
	return tasks, nil
}

// ListProjects fetches all projects visible to the authenticated user.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.get(ctx, "/projects", &projects); err != nil {
		return nil, fmt.Errorf("listing todoist projects: %w", err)
	}
	return projects, nil
}

// CloseTask marks the task with the given ID as completed.
func (c *Client) CloseTask(ctx context.Context, id string) error {
	if err := c.post(ctx, fmt.Sprintf("/tasks/%s/close", id)); err != nil {
		return fmt.Errorf("closing todoist task %s: %w", id, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, out)
}

func (c *Client) post(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodPost, path, nil)
}

// maxRetryAfter caps the server-requested wait so a hostile or confused
// Retry-After header cannot stall a pass for minutes.
const maxRetryAfter = 30 * time.Second

// parseRetryAfter interprets a Retry-After header value, either delay
// seconds or an HTTP date. Returns 0 for absent or unparseable values.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	var wait time.Duration
	if secs, err := strconv.Atoi(v); err == nil {
		wait = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(v); err == nil {
		wait = time.Until(at)
	}
	if wait < 0 {
		return 0
	}
	if wait > maxRetryAfter {
		return maxRetryAfter
	}
	return wait
}

// do performs one API call with bounded exponential backoff on transient
// failures, honoring Retry-After when the server sends one. Non-transient
// API errors abort the retry loop immediately.
func (c *Client) do(ctx context.Context, method, path string, out interface{}) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
			if apiErr.Transient() {
				if wait := parseRetryAfter(resp.Header.Get("Retry-After")); wait > 0 {
					select {
					case <-time.After(wait):
					case <-ctx.Done():
						return backoff.Permanent(ctx.Err())
					}
				}
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}

		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding response: %w", err))
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	return backoff.Retry(operation, policy)
}
