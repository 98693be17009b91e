package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clawboard/clawboard/pkg/wire"
)

// ListActivities returns up to limit activity entries, newest first.
func (s *Store) ListActivities(ctx context.Context, limit int) ([]wire.Activity, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, task_id, agent_id, kind, message, created_at FROM activities ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := []wire.Activity{}
	for rows.Next() {
		var a wire.Activity
		var taskID sql.NullInt64
		if err := rows.Scan(&a.ID, &taskID, &a.AgentID, &a.Kind, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.TaskID = idPtr(taskID)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// CreateActivity appends an entry to the activity log and returns the stored
// row.
func (s *Store) CreateActivity(ctx context.Context, taskID *int64, agentID, kind, message string) (wire.Activity, error) {
	now := s.nowMs()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO activities (task_id, agent_id, kind, message, created_at) VALUES (?, ?, ?, ?, ?)",
		nullableID(taskID), agentID, kind, message, now)
	if err != nil {
		return wire.Activity{}, fmt.Errorf("failed to create activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wire.Activity{}, fmt.Errorf("failed to read activity id: %w", err)
	}
	return wire.Activity{ID: id, TaskID: taskID, AgentID: agentID, Kind: kind, Message: message, CreatedAt: now}, nil
}
