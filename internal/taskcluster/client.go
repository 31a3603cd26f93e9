package taskcluster

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/digideskio/git-cinnabar/internal/ctxlog"
)

// ErrNotFound is returned by FindTask for any non-success answer.
var ErrNotFound = errors.New("indexed task not found")

// APIError describes a rejected queue request.
type APIError struct {
	TaskID     string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("queue rejected task %s with status %d: headers=%v body=%s", e.TaskID, e.StatusCode, e.Header, e.Body)
}

// Client talks to the index and queue services.
type Client struct {
	endpoints Endpoints
	http      *http.Client
}

// NewClient creates a client for the given endpoints. A nil httpClient uses
// a client with pooled connections and no overall timeout.
func NewClient(endpoints Endpoints, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &Client{endpoints: endpoints, http: httpClient}
}

// Endpoints returns the endpoints the client was created with.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// FindTask looks up an indexed namespace. Any non-success status yields
// ErrNotFound; the body is drained so the connection can be reused.
func (c *Client) FindTask(ctx context.Context, namespace string) (*IndexedTask, error) {
	logger := ctxlog.FromContext(ctx)
	url := c.endpoints.IndexTaskURL(namespace)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create index request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("index request for %s failed: %w", namespace, err)
	}
	defer resp.Body.Close()

	logger.Debug("Index service answered.", "namespace", namespace, "status", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s (status %d)", ErrNotFound, namespace, resp.StatusCode)
	}

	var found IndexedTask
	if err := json.NewDecoder(resp.Body).Decode(&found); err != nil {
		return nil, fmt.Errorf("failed to decode index answer for %s: %w", namespace, err)
	}
	return &found, nil
}

// CreateTask submits a task definition under the given ID. A non-success
// status is returned as an *APIError carrying the response headers and body.
func (c *Client) CreateTask(ctx context.Context, taskID string, task *Task) (*TaskStatus, error) {
	body, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to encode task %s: %w", taskID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoints.QueueTaskURL(taskID), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create queue request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("queue request for task %s failed: %w", taskID, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue answer for task %s: %w", taskID, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{TaskID: taskID, StatusCode: resp.StatusCode, Header: resp.Header, Body: respBody}
	}

	var status TaskStatus
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, fmt.Errorf("failed to decode queue answer for task %s: %w", taskID, err)
	}
	return &status, nil
}
