package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/clawboard/clawboard/internal/database"
	"github.com/clawboard/clawboard/pkg/wire"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.UnixMilli(1700000000000)
	return New(db.DB, func() time.Time { return now })
}

func TestTasks_CreateInsertsAtColumnHead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateTask(ctx, nil, "first", "", "", "")
	require.NoError(t, err)
	require.Equal(t, wire.TaskStatusBacklog, first.Status, "empty status defaults to backlog")
	require.Equal(t, 0.0, first.Position)

	second, err := s.CreateTask(ctx, nil, "second", "", wire.TaskStatusBacklog, "")
	require.NoError(t, err)
	require.Equal(t, first.Position-1, second.Position, "new tasks enter at the head of the column")

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, second.ID, tasks[0].ID, "ordered by position within status")
}

func TestTasks_PartialUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, nil, "title", "desc", "", "claw-1")
	require.NoError(t, err)

	status := wire.TaskStatusDone
	position := -7.5
	updated, err := s.UpdateTask(ctx, task.ID, TaskPatch{Status: &status, Position: &position})
	require.NoError(t, err)

	require.Equal(t, wire.TaskStatusDone, updated.Status)
	require.Equal(t, -7.5, updated.Position)
	require.Equal(t, "title", updated.Title, "unset fields stay untouched")
	require.Equal(t, "claw-1", updated.AgentID)

	_, err = s.UpdateTask(ctx, 9999, TaskPatch{Status: &status})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTasks_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, nil, "doomed", "", "", "")
	require.NoError(t, err)

	require.NoError(t, s.DeleteTask(ctx, task.ID))
	require.ErrorIs(t, s.DeleteTask(ctx, task.ID), ErrNotFound)

	_, err = s.GetTask(ctx, task.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestProjects_CRUDAndTaskDetach(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	project, err := s.CreateProject(ctx, "infra", "#00ff00")
	require.NoError(t, err)

	task, err := s.CreateTask(ctx, &project.ID, "wire it", "", "", "")
	require.NoError(t, err)
	require.NotNil(t, task.ProjectID)

	renamed, err := s.UpdateProject(ctx, project.ID, "infrastructure", "#00ff00")
	require.NoError(t, err)
	require.Equal(t, "infrastructure", renamed.Name)

	require.NoError(t, s.DeleteProject(ctx, project.ID))

	// Deleting the project detaches its tasks instead of deleting them.
	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Nil(t, got.ProjectID)

	_, err = s.UpdateProject(ctx, project.ID, "x", "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDocuments_CreateAndUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc, err := s.CreateDocument(ctx, nil, "notes", "hello")
	require.NoError(t, err)

	updated, err := s.UpdateDocument(ctx, doc.ID, "notes", "hello world")
	require.NoError(t, err)
	require.Equal(t, "hello world", updated.Content)

	_, err = s.UpdateDocument(ctx, 9999, "x", "y")
	require.ErrorIs(t, err, ErrNotFound)

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestActivities_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateActivity(ctx, nil, "claw-1", "task_moved", "moved #1 to done")
	require.NoError(t, err)
	second, err := s.CreateActivity(ctx, nil, "claw-1", "task_created", "created #2")
	require.NoError(t, err)

	activities, err := s.ListActivities(ctx, 100)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	require.Equal(t, second.ID, activities[0].ID)
}
