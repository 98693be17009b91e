package wire

// Task is a board card. Position orders tasks within a status column; lower
// values sort first.
type Task struct {
	ID          int64   `json:"id"`
	ProjectID   *int64  `json:"projectId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Position    float64 `json:"position"`
	AgentID     string  `json:"agentId,omitempty"`
	// CreatedAt and UpdatedAt are wall-clock timestamps in milliseconds
	// since epoch.
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// Task status column values.
const (
	TaskStatusBacklog    = "backlog"
	TaskStatusInProgress = "in_progress"
	TaskStatusReview     = "review"
	TaskStatusDone       = "done"
)

// ValidTaskStatus reports whether s names a board column.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusBacklog, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return true
	}
	return false
}

// Project groups tasks and documents.
type Project struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	CreatedAt int64  `json:"createdAt"`
}

// Document is a free-form note attached to the board or a project.
type Document struct {
	ID        int64  `json:"id"`
	ProjectID *int64 `json:"projectId"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Activity is one entry in the board's activity log.
type Activity struct {
	ID        int64  `json:"id"`
	TaskID    *int64 `json:"taskId"`
	AgentID   string `json:"agentId,omitempty"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"createdAt"`
}

// AgentStatus is the payload of agent_status_updated events.
//
// AgentID may be "*", meaning the update applies to every known agent.
type AgentStatus struct {
	AgentID string `json:"agentId"`
	Status  string `json:"status"`
	Thought string `json:"thought,omitempty"`
	// LastActivity is an ISO-8601 timestamp.
	LastActivity string `json:"lastActivity,omitempty"`
	TurnCount    int    `json:"turnCount,omitempty"`
}

// Agent status values.
const (
	AgentStatusThinking = "thinking"
	AgentStatusIdle     = "idle"
	AgentStatusOffline  = "offline"

	// AgentAll is the wildcard AgentID.
	AgentAll = "*"
)
