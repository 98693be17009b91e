package wire

import "encoding/json"

// Envelope is the wire message unit exchanged over the realtime channel.
//
// Data is the raw JSON payload for the event; its shape depends on Type.
// An Envelope is immutable once constructed: the broadcaster marshals it a
// single time and reuses the bytes for every recipient.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event type values emitted by the server.
const (
	EventTaskCreated        = "task_created"
	EventTaskUpdated        = "task_updated"
	EventTaskDeleted        = "task_deleted"
	EventActivityCreated    = "activity_created"
	EventDocumentUpdated    = "document_updated"
	EventProjectsUpdated    = "projects_updated"
	EventAgentStatusUpdated = "agent_status_updated"
)

// Entity kind prefixes used for fallback routing of event subtypes that have
// no dedicated reducer on the client.
const (
	PrefixTask     = "task_"
	PrefixActivity = "activity_"
	PrefixDocument = "document_"
)

// NewEnvelope marshals data into an Envelope of the given type.
func NewEnvelope(eventType string, data any) (Envelope, error) {
	if data == nil {
		return Envelope{Type: eventType}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: eventType, Data: raw}, nil
}

// DeleteRef is the payload of *_deleted events.
type DeleteRef struct {
	ID int64 `json:"id"`
}
