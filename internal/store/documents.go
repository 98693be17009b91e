package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clawboard/clawboard/pkg/wire"
)

const documentColumns = "id, project_id, title, content, updated_at"

func scanDocument(row interface{ Scan(...any) error }) (wire.Document, error) {
	var d wire.Document
	var projectID sql.NullInt64
	if err := row.Scan(&d.ID, &projectID, &d.Title, &d.Content, &d.UpdatedAt); err != nil {
		return wire.Document{}, err
	}
	d.ProjectID = idPtr(projectID)
	return d, nil
}

// ListDocuments returns all documents, most recently updated first.
func (s *Store) ListDocuments(ctx context.Context) ([]wire.Document, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+documentColumns+" FROM documents ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := []wire.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// GetDocument returns one document by id.
func (s *Store) GetDocument(ctx context.Context, id int64) (wire.Document, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return wire.Document{}, ErrNotFound
	}
	if err != nil {
		return wire.Document{}, fmt.Errorf("failed to get document: %w", err)
	}
	return d, nil
}

// CreateDocument inserts a document and returns the stored row.
func (s *Store) CreateDocument(ctx context.Context, projectID *int64, title, content string) (wire.Document, error) {
	now := s.nowMs()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO documents (project_id, title, content, updated_at) VALUES (?, ?, ?, ?)",
		nullableID(projectID), title, content, now)
	if err != nil {
		return wire.Document{}, fmt.Errorf("failed to create document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wire.Document{}, fmt.Errorf("failed to read document id: %w", err)
	}
	return wire.Document{ID: id, ProjectID: projectID, Title: title, Content: content, UpdatedAt: now}, nil
}

// UpdateDocument replaces a document's title and content and returns the
// stored row.
func (s *Store) UpdateDocument(ctx context.Context, id int64, title, content string) (wire.Document, error) {
	now := s.nowMs()
	res, err := s.db.ExecContext(ctx,
		"UPDATE documents SET title = ?, content = ?, updated_at = ? WHERE id = ?",
		title, content, now, id)
	if err != nil {
		return wire.Document{}, fmt.Errorf("failed to update document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wire.Document{}, fmt.Errorf("failed to read update result: %w", err)
	}
	if n == 0 {
		return wire.Document{}, ErrNotFound
	}
	return s.GetDocument(ctx, id)
}
