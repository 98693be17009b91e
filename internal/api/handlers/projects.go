package handlers

import (
	"errors"
	"net/http"

	"github.com/clawboard/clawboard/internal/store"
	"github.com/clawboard/clawboard/internal/ws"
	"github.com/clawboard/clawboard/pkg/logger"
	"github.com/clawboard/clawboard/pkg/wire"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	store   *store.Store
	updates *ws.Hub
}

func NewProjectHandler(s *store.Store, updates *ws.Hub) *ProjectHandler {
	return &ProjectHandler{store: s, updates: updates}
}

// broadcastProjects emits the coarse projects_updated event carrying the full
// project list. Project mutations are rare enough that clients just replace
// their copy wholesale.
func (h *ProjectHandler) broadcastProjects(c *gin.Context) {
	projects, err := h.store.ListProjects(c.Request.Context())
	if err != nil {
		logger.Warnf("failed to load projects for broadcast: %v", err)
		return
	}
	h.updates.BroadcastEvent(wire.EventProjectsUpdated, projects)
}

// ListProjects handles GET /v1/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.store.ListProjects(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

type ProjectRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// CreateProject handles POST /v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	project, err := h.store.CreateProject(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	h.broadcastProjects(c)
	c.JSON(http.StatusCreated, project)
}

// UpdateProject handles PATCH /v1/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	project, err := h.store.UpdateProject(c.Request.Context(), id, req.Name, req.Color)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	h.broadcastProjects(c)
	c.JSON(http.StatusOK, project)
}

// DeleteProject handles DELETE /v1/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	err := h.store.DeleteProject(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	h.broadcastProjects(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
