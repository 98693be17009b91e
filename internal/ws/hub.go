package ws

import (
	"encoding/json"

	"github.com/clawboard/clawboard/pkg/logger"
	"github.com/clawboard/clawboard/pkg/wire"
)

// Hub serializes a domain event once and pushes the same bytes to every open,
// authorized connection.
type Hub struct {
	registry *Registry
}

// NewHub creates a Hub over a registry.
func NewHub(registry *Registry) *Hub {
	return &Hub{registry: registry}
}

// Registry exposes the underlying connection registry.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Broadcast fans envelope out to all open connections.
//
// The envelope is marshalled a single time; a marshal failure aborts the whole
// call because a malformed envelope is a programming error, not a transient
// fault. A failed send only affects that one recipient.
func (h *Hub) Broadcast(env wire.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		logger.Errorf("failed to marshal %s envelope: %v", env.Type, err)
		return
	}

	h.registry.ForEachOpen(func(conn *Conn) {
		if err := conn.send(data); err != nil {
			logger.Debugf("failed to send %s to %s: %v", env.Type, conn.ID(), err)
		}
	})
}

// BroadcastEvent builds an envelope from a domain object and broadcasts it.
func (h *Hub) BroadcastEvent(eventType string, data any) {
	env, err := wire.NewEnvelope(eventType, data)
	if err != nil {
		logger.Errorf("failed to build %s envelope: %v", eventType, err)
		return
	}
	h.Broadcast(env)
}
