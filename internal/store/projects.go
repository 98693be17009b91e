package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clawboard/clawboard/pkg/wire"
)

// ListProjects returns all projects, oldest first.
func (s *Store) ListProjects(ctx context.Context) ([]wire.Project, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, color, created_at FROM projects ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []wire.Project{}
	for rows.Next() {
		var p wire.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetProject returns one project by id.
func (s *Store) GetProject(ctx context.Context, id int64) (wire.Project, error) {
	var p wire.Project
	err := s.db.QueryRowContext(ctx, "SELECT id, name, color, created_at FROM projects WHERE id = ?", id).
		Scan(&p.ID, &p.Name, &p.Color, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return wire.Project{}, ErrNotFound
	}
	if err != nil {
		return wire.Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// CreateProject inserts a project and returns the stored row.
func (s *Store) CreateProject(ctx context.Context, name, color string) (wire.Project, error) {
	now := s.nowMs()
	res, err := s.db.ExecContext(ctx, "INSERT INTO projects (name, color, created_at) VALUES (?, ?, ?)", name, color, now)
	if err != nil {
		return wire.Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wire.Project{}, fmt.Errorf("failed to read project id: %w", err)
	}
	return wire.Project{ID: id, Name: name, Color: color, CreatedAt: now}, nil
}

// UpdateProject renames/recolours a project and returns the stored row.
func (s *Store) UpdateProject(ctx context.Context, id int64, name, color string) (wire.Project, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE projects SET name = ?, color = ? WHERE id = ?", name, color, id)
	if err != nil {
		return wire.Project{}, fmt.Errorf("failed to update project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wire.Project{}, fmt.Errorf("failed to read update result: %w", err)
	}
	if n == 0 {
		return wire.Project{}, ErrNotFound
	}
	return s.GetProject(ctx, id)
}

// DeleteProject removes a project. Tasks and documents keep existing with a
// null project reference (ON DELETE SET NULL).
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
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
