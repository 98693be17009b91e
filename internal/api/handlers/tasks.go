package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/clawboard/clawboard/internal/store"
	"github.com/clawboard/clawboard/internal/ws"
	"github.com/clawboard/clawboard/pkg/wire"
	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	store   *store.Store
	updates *ws.Hub
}

func NewTaskHandler(s *store.Store, updates *ws.Hub) *TaskHandler {
	return &TaskHandler{store: s, updates: updates}
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// ListTasks handles GET /v1/tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.store.ListTasks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tasks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// GetTask handles GET /v1/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	task, err := h.store.GetTask(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get task"})
		return
	}
	c.JSON(http.StatusOK, task)
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
	ProjectID   *int64 `json:"projectId"`
	AgentID     string `json:"agentId"`
}

// CreateTask handles POST /v1/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Status != "" && !wire.ValidTaskStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	task, err := h.store.CreateTask(c.Request.Context(), req.ProjectID, req.Title, req.Description, req.Status, req.AgentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	h.updates.BroadcastEvent(wire.EventTaskCreated, task)
	c.JSON(http.StatusCreated, task)
}

type UpdateTaskRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	Position    *float64 `json:"position"`
	ProjectID   *int64   `json:"projectId"`
	AgentID     *string  `json:"agentId"`
}

// UpdateTask handles PATCH /v1/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Status != nil && !wire.ValidTaskStatus(*req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	task, err := h.store.UpdateTask(c.Request.Context(), id, store.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Position:    req.Position,
		ProjectID:   req.ProjectID,
		AgentID:     req.AgentID,
	})
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	h.updates.BroadcastEvent(wire.EventTaskUpdated, task)
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /v1/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	err := h.store.DeleteTask(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	h.updates.BroadcastEvent(wire.EventTaskDeleted, wire.DeleteRef{ID: id})
	c.JSON(http.StatusOK, gin.H{"success": true})
}
