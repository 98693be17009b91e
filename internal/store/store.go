package store

import (
	"database/sql"
	"time"
)

// Store runs board queries against the SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a Store. now is injectable for tests; nil means time.Now.
func New(db *sql.DB, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{db: db, now: now}
}

func (s *Store) nowMs() int64 {
	return s.now().UnixMilli()
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
