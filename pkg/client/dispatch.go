package client

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/clawboard/clawboard/pkg/logger"
	"github.com/clawboard/clawboard/pkg/wire"
)

// Refetcher reloads one entity collection from the REST API. Used as the
// correctness fallback when an event has no dedicated reducer.
type Refetcher interface {
	RefetchTasks(ctx context.Context) error
	RefetchActivities(ctx context.Context) error
	RefetchDocuments(ctx context.Context) error
}

// Dispatcher routes inbound envelopes to cache reducers.
//
// Events with a precise reducer are applied directly and idempotently; any
// other event whose type carries a known entity prefix degrades to a full
// refetch of that collection, so new event subtypes stay correct without a
// reducer for each one. Types with no known prefix are ignored.
type Dispatcher struct {
	cache    *Cache
	refetch  Refetcher
	OnChange func()
}

// NewDispatcher creates a Dispatcher over cache. refetch may be nil, in which
// case the fallback path logs and drops the event.
func NewDispatcher(cache *Cache, refetch Refetcher) *Dispatcher {
	return &Dispatcher{cache: cache, refetch: refetch}
}

// Cache returns the dispatcher's cache.
func (d *Dispatcher) Cache() *Cache {
	return d.cache
}

// DispatchRaw parses a raw frame and dispatches it. Malformed frames are
// discarded silently.
func (d *Dispatcher) DispatchRaw(data []byte) {
	var env wire.Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
		return
	}
	d.Dispatch(env)
}

// Dispatch applies one envelope to the cache. Safe to call repeatedly with
// the same envelope: reducers are idempotent under redelivery.
func (d *Dispatcher) Dispatch(env wire.Envelope) {
	switch env.Type {
	case wire.EventTaskCreated:
		var t wire.Task
		if !decode(env, &t) {
			return
		}
		d.cache.InsertTask(t)

	case wire.EventTaskUpdated:
		var t wire.Task
		if !decode(env, &t) {
			return
		}
		d.cache.UpsertTask(t)

	case wire.EventTaskDeleted:
		var ref wire.DeleteRef
		if !decode(env, &ref) {
			return
		}
		d.cache.RemoveTask(ref.ID)

	case wire.EventActivityCreated:
		var a wire.Activity
		if !decode(env, &a) {
			return
		}
		d.cache.InsertActivity(a)

	case wire.EventDocumentUpdated:
		var doc wire.Document
		if !decode(env, &doc) {
			return
		}
		d.cache.UpsertDocument(doc)

	case wire.EventProjectsUpdated:
		var projects []wire.Project
		if !decode(env, &projects) {
			return
		}
		d.cache.SetProjects(projects)

	case wire.EventAgentStatusUpdated:
		var status wire.AgentStatus
		if !decode(env, &status) {
			return
		}
		d.cache.ApplyAgentStatus(status)

	default:
		if !d.fallback(env.Type) {
			return
		}
	}

	if d.OnChange != nil {
		d.OnChange()
	}
}

// fallback reloads the collection named by the event's prefix. Returns false
// for unroutable types.
func (d *Dispatcher) fallback(eventType string) bool {
	var refetch func(context.Context) error
	switch {
	case strings.HasPrefix(eventType, wire.PrefixTask):
		if d.refetch != nil {
			refetch = d.refetch.RefetchTasks
		}
	case strings.HasPrefix(eventType, wire.PrefixActivity):
		if d.refetch != nil {
			refetch = d.refetch.RefetchActivities
		}
	case strings.HasPrefix(eventType, wire.PrefixDocument):
		if d.refetch != nil {
			refetch = d.refetch.RefetchDocuments
		}
	default:
		return false
	}

	if refetch == nil {
		logger.Debugf("no refetcher for %s event, dropping", eventType)
		return false
	}

	logger.Debugf("no reducer for %s, refetching collection", eventType)
	if err := refetch(context.Background()); err != nil {
		logger.Warnf("fallback refetch for %s failed: %v", eventType, err)
	}
	return true
}

// decode unmarshals an envelope payload; a decode failure discards the event
// the same way a malformed frame would.
func decode(env wire.Envelope, out any) bool {
	if err := json.Unmarshal(env.Data, out); err != nil {
		logger.Debugf("discarding %s with malformed payload: %v", env.Type, err)
		return false
	}
	return true
}
