package client

import (
	"sync"

	"github.com/clawboard/clawboard/pkg/wire"
)

// Cache holds the client's copy of each entity collection. Collections are
// ordered, unique by id, and mutated only by the dispatch reducers and
// explicit refetch/optimistic call sites.
type Cache struct {
	mu         sync.Mutex
	tasks      []wire.Task
	activities []wire.Activity
	documents  []wire.Document
	projects   []wire.Project
	agents     map[string]wire.AgentStatus
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{agents: make(map[string]wire.AgentStatus)}
}

func headInsert[E any](list []E, e E, id func(E) int64) []E {
	for _, existing := range list {
		if id(existing) == id(e) {
			return list
		}
	}
	return append([]E{e}, list...)
}

func replaceOrInsert[E any](list []E, e E, id func(E) int64) []E {
	for i, existing := range list {
		if id(existing) == id(e) {
			list[i] = e
			return list
		}
	}
	return append([]E{e}, list...)
}

func removeByID[E any](list []E, target int64, id func(E) int64) []E {
	for i, existing := range list {
		if id(existing) == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func taskID(t wire.Task) int64         { return t.ID }
func activityID(a wire.Activity) int64 { return a.ID }
func documentID(d wire.Document) int64 { return d.ID }

// Tasks returns a copy of the cached task list.
func (c *Cache) Tasks() []wire.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]wire.Task(nil), c.tasks...)
}

// Activities returns a copy of the cached activity list.
func (c *Cache) Activities() []wire.Activity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]wire.Activity(nil), c.activities...)
}

// Documents returns a copy of the cached document list.
func (c *Cache) Documents() []wire.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]wire.Document(nil), c.documents...)
}

// Projects returns a copy of the cached project list.
func (c *Cache) Projects() []wire.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]wire.Project(nil), c.projects...)
}

// Agents returns a copy of the known agent statuses.
func (c *Cache) Agents() map[string]wire.AgentStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]wire.AgentStatus, len(c.agents))
	for id, status := range c.agents {
		out[id] = status
	}
	return out
}

// SetTasks replaces the task collection (refetch path).
func (c *Cache) SetTasks(tasks []wire.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append([]wire.Task(nil), tasks...)
}

// SetActivities replaces the activity collection (refetch path).
func (c *Cache) SetActivities(activities []wire.Activity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activities = append([]wire.Activity(nil), activities...)
}

// SetDocuments replaces the document collection (refetch path).
func (c *Cache) SetDocuments(documents []wire.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents = append([]wire.Document(nil), documents...)
}

// SetProjects replaces the project collection.
func (c *Cache) SetProjects(projects []wire.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects = append([]wire.Project(nil), projects...)
}

// InsertTask inserts at head unless the id is already present. Idempotent:
// a duplicate delivery racing a local optimistic insert is a no-op.
func (c *Cache) InsertTask(t wire.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = headInsert(c.tasks, t, taskID)
}

// UpsertTask replaces the task in place when present, otherwise inserts it
// (a created event the client missed).
func (c *Cache) UpsertTask(t wire.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = replaceOrInsert(c.tasks, t, taskID)
}

// RemoveTask removes by id; absence is a no-op.
func (c *Cache) RemoveTask(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = removeByID(c.tasks, id, taskID)
}

// MutateTask applies fn to the cached task with the given id, if present.
// Used by optimistic call sites.
func (c *Cache) MutateTask(id int64, fn func(*wire.Task)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			fn(&c.tasks[i])
			return
		}
	}
}

// InsertActivity inserts at head unless the id is already present.
func (c *Cache) InsertActivity(a wire.Activity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activities = headInsert(c.activities, a, activityID)
}

// RemoveActivity removes by id; absence is a no-op.
func (c *Cache) RemoveActivity(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activities = removeByID(c.activities, id, activityID)
}

// UpsertDocument replaces the document in place when present, otherwise
// inserts it.
func (c *Cache) UpsertDocument(d wire.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents = replaceOrInsert(c.documents, d, documentID)
}

// RemoveDocument removes by id; absence is a no-op.
func (c *Cache) RemoveDocument(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents = removeByID(c.documents, id, documentID)
}

// ApplyAgentStatus merges one agent status report. The wildcard agent id "*"
// applies the status to every agent the cache already knows about.
func (c *Cache) ApplyAgentStatus(status wire.AgentStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if status.AgentID == wire.AgentAll {
		for id, existing := range c.agents {
			existing.Status = status.Status
			if status.Thought != "" {
				existing.Thought = status.Thought
			}
			if status.LastActivity != "" {
				existing.LastActivity = status.LastActivity
			}
			c.agents[id] = existing
		}
		return
	}
	c.agents[status.AgentID] = status
}
