package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/clawboard/clawboard/pkg/wire"
	"github.com/stretchr/testify/require"
)

// newRESTTestServer serves a canned task list and lets the test fail writes.
func newRESTTestServer(t *testing.T, tasks []wire.Task, failWrites *atomic.Bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"tasks": tasks})
	})
	mux.HandleFunc("PATCH /v1/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		if failWrites.Load() {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(tasks[0])
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSyncer_RefetchTasksReplacesCollection(t *testing.T) {
	var failWrites atomic.Bool
	srv := newRESTTestServer(t, []wire.Task{{ID: 1, Title: "from server"}}, &failWrites)

	cache := NewCache()
	cache.SetTasks([]wire.Task{{ID: 9, Title: "stale"}})
	syncer := NewSyncer(NewREST(srv.URL, "secret"), cache, 0)

	require.NoError(t, syncer.RefetchTasks(context.Background()))

	tasks := cache.Tasks()
	require.Len(t, tasks, 1)
	require.Equal(t, "from server", tasks[0].Title)
}

func TestSyncer_OptimisticKeepsLocalStateOnSuccess(t *testing.T) {
	var failWrites atomic.Bool
	srv := newRESTTestServer(t, []wire.Task{{ID: 1, Status: wire.TaskStatusBacklog}}, &failWrites)

	cache := NewCache()
	cache.SetTasks([]wire.Task{{ID: 1, Status: wire.TaskStatusBacklog}})
	syncer := NewSyncer(NewREST(srv.URL, "secret"), cache, 0)

	require.NoError(t, syncer.MoveTask(context.Background(), 1, wire.TaskStatusDone, -2))

	tasks := cache.Tasks()
	require.Equal(t, wire.TaskStatusDone, tasks[0].Status)
	require.Equal(t, -2.0, tasks[0].Position)
}

func TestSyncer_OptimisticRollsBackViaRefetchOnFailure(t *testing.T) {
	var failWrites atomic.Bool
	failWrites.Store(true)
	srv := newRESTTestServer(t, []wire.Task{{ID: 1, Status: wire.TaskStatusBacklog}}, &failWrites)

	cache := NewCache()
	cache.SetTasks([]wire.Task{{ID: 1, Status: wire.TaskStatusBacklog}})
	syncer := NewSyncer(NewREST(srv.URL, "secret"), cache, 0)

	err := syncer.MoveTask(context.Background(), 1, wire.TaskStatusDone, -2)
	require.Error(t, err)

	// The failed write's local mutation is discarded by the refetch.
	tasks := cache.Tasks()
	require.Equal(t, wire.TaskStatusBacklog, tasks[0].Status)
}
