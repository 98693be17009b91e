package client

import (
	"context"
	"time"

	"github.com/clawboard/clawboard/pkg/logger"
	"github.com/clawboard/clawboard/pkg/wire"
)

// Syncer joins the REST collaborator to the cache: initial population,
// fallback refetches, and optimistic writes.
type Syncer struct {
	rest    *REST
	cache   *Cache
	timeout time.Duration
}

// NewSyncer creates a Syncer. A zero timeout defaults to 10s per refetch.
func NewSyncer(rest *REST, cache *Cache, timeout time.Duration) *Syncer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Syncer{rest: rest, cache: cache, timeout: timeout}
}

func (s *Syncer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Bootstrap populates every collection at mount time.
func (s *Syncer) Bootstrap(ctx context.Context) error {
	if err := s.RefetchTasks(ctx); err != nil {
		return err
	}
	if err := s.RefetchActivities(ctx); err != nil {
		return err
	}
	if err := s.RefetchDocuments(ctx); err != nil {
		return err
	}
	return s.RefetchProjects(ctx)
}

// RefetchTasks reloads the task collection.
func (s *Syncer) RefetchTasks(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	tasks, err := s.rest.ListTasks(ctx)
	if err != nil {
		return err
	}
	s.cache.SetTasks(tasks)
	return nil
}

// RefetchActivities reloads the activity log.
func (s *Syncer) RefetchActivities(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	activities, err := s.rest.ListActivities(ctx)
	if err != nil {
		return err
	}
	s.cache.SetActivities(activities)
	return nil
}

// RefetchDocuments reloads the document collection.
func (s *Syncer) RefetchDocuments(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	documents, err := s.rest.ListDocuments(ctx)
	if err != nil {
		return err
	}
	s.cache.SetDocuments(documents)
	return nil
}

// RefetchProjects reloads the project collection.
func (s *Syncer) RefetchProjects(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	projects, err := s.rest.ListProjects(ctx)
	if err != nil {
		return err
	}
	s.cache.SetProjects(projects)
	return nil
}

// Optimistic applies a local cache mutation immediately, issues the
// authoritative write, and on write failure discards local state by running
// the given refetch. The returned error is the write's; refetch failures are
// logged, since the next successful refetch or inbound event resolves them.
func (s *Syncer) Optimistic(ctx context.Context, apply func(*Cache), write func(context.Context) error, refetch func(context.Context) error) error {
	apply(s.cache)
	if err := write(ctx); err != nil {
		if rerr := refetch(ctx); rerr != nil {
			logger.Warnf("rollback refetch failed: %v", rerr)
		}
		return err
	}
	return nil
}

// MoveTask optimistically moves a task to a new column/position, then issues
// the PATCH; on failure the task list is refetched to roll back.
func (s *Syncer) MoveTask(ctx context.Context, id int64, status string, position float64) error {
	return s.Optimistic(ctx,
		func(c *Cache) {
			c.MutateTask(id, func(t *wire.Task) {
				t.Status = status
				t.Position = position
			})
		},
		func(ctx context.Context) error {
			_, err := s.rest.MoveTask(ctx, id, status, position)
			return err
		},
		s.RefetchTasks,
	)
}
