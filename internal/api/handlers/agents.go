package handlers

import (
	"net/http"
	"sync"

	"github.com/clawboard/clawboard/internal/ws"
	"github.com/clawboard/clawboard/pkg/wire"
	"github.com/gin-gonic/gin"
)

// AgentHandler accepts agent lifecycle webhooks and relays them to the board.
//
// Presence is ephemeral: the last reported status per agent is held in memory
// only and resets on restart. Agents that never report simply do not exist.
type AgentHandler struct {
	updates *ws.Hub

	mu     sync.Mutex
	agents map[string]wire.AgentStatus
}

func NewAgentHandler(updates *ws.Hub) *AgentHandler {
	return &AgentHandler{
		updates: updates,
		agents:  make(map[string]wire.AgentStatus),
	}
}

// ListAgents handles GET /v1/agents
func (h *AgentHandler) ListAgents(c *gin.Context) {
	h.mu.Lock()
	agents := make([]wire.AgentStatus, 0, len(h.agents))
	for _, status := range h.agents {
		agents = append(agents, status)
	}
	h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"agents": agents})
}

// PostAgentEvent handles POST /v1/agents/events, the webhook target for agent
// lifecycle hooks. agentId "*" applies the status to every known agent.
func (h *AgentHandler) PostAgentEvent(c *gin.Context) {
	var status wire.AgentStatus
	if err := c.ShouldBindJSON(&status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if status.AgentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "agentId is required"})
		return
	}
	switch status.Status {
	case wire.AgentStatusThinking, wire.AgentStatusIdle, wire.AgentStatusOffline:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	h.mu.Lock()
	if status.AgentID == wire.AgentAll {
		for id, existing := range h.agents {
			existing.Status = status.Status
			if status.Thought != "" {
				existing.Thought = status.Thought
			}
			if status.LastActivity != "" {
				existing.LastActivity = status.LastActivity
			}
			h.agents[id] = existing
		}
	} else {
		h.agents[status.AgentID] = status
	}
	h.mu.Unlock()

	// The wildcard is forwarded as-is; each client applies it to its own
	// known-agent set.
	h.updates.BroadcastEvent(wire.EventAgentStatusUpdated, status)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
