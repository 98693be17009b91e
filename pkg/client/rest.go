package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clawboard/clawboard/pkg/wire"
)

// REST talks to the Clawboard HTTP API. It is the collaborator the dispatch
// layer falls back to when an event cannot be reconciled locally.
type REST struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewREST creates a REST client for baseURL, e.g. http://localhost:3010.
func NewREST(baseURL, apiKey string) *REST {
	return &REST{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *REST) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ListTasks fetches all tasks.
func (r *REST) ListTasks(ctx context.Context) ([]wire.Task, error) {
	var resp struct {
		Tasks []wire.Task `json:"tasks"`
	}
	if err := r.do(ctx, http.MethodGet, "/v1/tasks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// ListActivities fetches the activity log.
func (r *REST) ListActivities(ctx context.Context) ([]wire.Activity, error) {
	var resp struct {
		Activities []wire.Activity `json:"activities"`
	}
	if err := r.do(ctx, http.MethodGet, "/v1/activity", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Activities, nil
}

// ListDocuments fetches all documents.
func (r *REST) ListDocuments(ctx context.Context) ([]wire.Document, error) {
	var resp struct {
		Documents []wire.Document `json:"documents"`
	}
	if err := r.do(ctx, http.MethodGet, "/v1/documents", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

// ListProjects fetches all projects.
func (r *REST) ListProjects(ctx context.Context) ([]wire.Project, error) {
	var resp struct {
		Projects []wire.Project `json:"projects"`
	}
	if err := r.do(ctx, http.MethodGet, "/v1/projects", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

// CreateTask creates a task.
func (r *REST) CreateTask(ctx context.Context, title, description, status string, projectID *int64) (wire.Task, error) {
	var task wire.Task
	err := r.do(ctx, http.MethodPost, "/v1/tasks", map[string]any{
		"title":       title,
		"description": description,
		"status":      status,
		"projectId":   projectID,
	}, &task)
	return task, err
}

// MoveTask changes a task's column and position (the drag-and-drop write).
func (r *REST) MoveTask(ctx context.Context, id int64, status string, position float64) (wire.Task, error) {
	var task wire.Task
	err := r.do(ctx, http.MethodPatch, fmt.Sprintf("/v1/tasks/%d", id), map[string]any{
		"status":   status,
		"position": position,
	}, &task)
	return task, err
}

// DeleteTask deletes a task.
func (r *REST) DeleteTask(ctx context.Context, id int64) error {
	return r.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/tasks/%d", id), nil, nil)
}
