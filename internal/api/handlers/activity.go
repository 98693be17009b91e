package handlers

import (
	"net/http"
	"strconv"

	"github.com/clawboard/clawboard/internal/store"
	"github.com/clawboard/clawboard/internal/ws"
	"github.com/clawboard/clawboard/pkg/wire"
	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	store   *store.Store
	updates *ws.Hub
}

func NewActivityHandler(s *store.Store, updates *ws.Hub) *ActivityHandler {
	return &ActivityHandler{store: s, updates: updates}
}

// ListActivity handles GET /v1/activity
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}

	activities, err := h.store.ListActivities(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list activity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

type ActivityRequest struct {
	TaskID  *int64 `json:"taskId"`
	AgentID string `json:"agentId"`
	Kind    string `json:"kind" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// CreateActivity handles POST /v1/activity
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	var req ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	activity, err := h.store.CreateActivity(c.Request.Context(), req.TaskID, req.AgentID, req.Kind, req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record activity"})
		return
	}

	h.updates.BroadcastEvent(wire.EventActivityCreated, activity)
	c.JSON(http.StatusCreated, activity)
}
