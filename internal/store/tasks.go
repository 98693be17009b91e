package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clawboard/clawboard/pkg/wire"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

const taskColumns = "id, project_id, title, description, status, position, agent_id, created_at, updated_at"

func scanTask(row interface{ Scan(...any) error }) (wire.Task, error) {
	var t wire.Task
	var projectID sql.NullInt64
	err := row.Scan(&t.ID, &projectID, &t.Title, &t.Description, &t.Status, &t.Position, &t.AgentID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return wire.Task{}, err
	}
	t.ProjectID = idPtr(projectID)
	return t, nil
}

// ListTasks returns all tasks ordered by status column then position.
func (s *Store) ListTasks(ctx context.Context) ([]wire.Task, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY status, position")
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []wire.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask returns one task by id.
func (s *Store) GetTask(ctx context.Context, id int64) (wire.Task, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return wire.Task{}, ErrNotFound
	}
	if err != nil {
		return wire.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// CreateTask inserts a task at the head of its status column (lowest position
// minus one) and returns the stored row.
func (s *Store) CreateTask(ctx context.Context, projectID *int64, title, description, status, agentID string) (wire.Task, error) {
	if status == "" {
		status = wire.TaskStatusBacklog
	}
	now := s.nowMs()

	var minPos sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, "SELECT MIN(position) FROM tasks WHERE status = ?", status).Scan(&minPos); err != nil {
		return wire.Task{}, fmt.Errorf("failed to compute position: %w", err)
	}
	position := 0.0
	if minPos.Valid {
		position = minPos.Float64 - 1
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks (project_id, title, description, status, position, agent_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		nullableID(projectID), title, description, status, position, agentID, now, now)
	if err != nil {
		return wire.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wire.Task{}, fmt.Errorf("failed to read task id: %w", err)
	}
	return s.GetTask(ctx, id)
}

// TaskPatch holds the mutable task fields. Nil pointers are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	Position    *float64
	ProjectID   *int64
	AgentID     *string
}

// UpdateTask applies a partial update and returns the stored row.
func (s *Store) UpdateTask(ctx context.Context, id int64, patch TaskPatch) (wire.Task, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return wire.Task{}, err
	}

	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Position != nil {
		t.Position = *patch.Position
	}
	if patch.ProjectID != nil {
		t.ProjectID = patch.ProjectID
	}
	if patch.AgentID != nil {
		t.AgentID = *patch.AgentID
	}
	t.UpdatedAt = s.nowMs()

	_, err = s.db.ExecContext(ctx,
		"UPDATE tasks SET project_id = ?, title = ?, description = ?, status = ?, position = ?, agent_id = ?, updated_at = ? WHERE id = ?",
		nullableID(t.ProjectID), t.Title, t.Description, t.Status, t.Position, t.AgentID, t.UpdatedAt, id)
	if err != nil {
		return wire.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	return t, nil
}

// DeleteTask removes a task. Deleting an absent id returns ErrNotFound.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
