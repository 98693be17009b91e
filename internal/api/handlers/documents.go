package handlers

import (
	"errors"
	"net/http"

	"github.com/clawboard/clawboard/internal/store"
	"github.com/clawboard/clawboard/internal/ws"
	"github.com/clawboard/clawboard/pkg/wire"
	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	store   *store.Store
	updates *ws.Hub
}

func NewDocumentHandler(s *store.Store, updates *ws.Hub) *DocumentHandler {
	return &DocumentHandler{store: s, updates: updates}
}

// ListDocuments handles GET /v1/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	docs, err := h.store.ListDocuments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// GetDocument handles GET /v1/documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	doc, err := h.store.GetDocument(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get document"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

type DocumentRequest struct {
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content"`
	ProjectID *int64 `json:"projectId"`
}

// CreateDocument handles POST /v1/documents
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	doc, err := h.store.CreateDocument(c.Request.Context(), req.ProjectID, req.Title, req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document"})
		return
	}

	h.updates.BroadcastEvent(wire.EventDocumentUpdated, doc)
	c.JSON(http.StatusCreated, doc)
}

// UpdateDocument handles PUT /v1/documents/:id
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	doc, err := h.store.UpdateDocument(c.Request.Context(), id, req.Title, req.Content)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update document"})
		return
	}

	h.updates.BroadcastEvent(wire.EventDocumentUpdated, doc)
	c.JSON(http.StatusOK, doc)
}
