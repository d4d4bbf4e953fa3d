package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter        EventType = "node_enter"
	EventVariableSet      EventType = "variable_set"
	EventTraversalEnd     EventType = "traversal_end"
	EventInteractionStart EventType = "interaction_start"
	EventInteractionClose EventType = "interaction_close"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// NodeEvent is emitted for every node visited during a traversal.
type NodeEvent struct {
	EventBase
	NodeID   string   `json:"node_id"`
	NodeKind NodeKind `json:"node_kind"`
	Port     string   `json:"port,omitempty"` // Port taken when leaving the node
}

// VariableEvent is emitted when a SetVariable node writes memory.
type VariableEvent struct {
	EventBase
	NodeID   string `json:"node_id"`
	Variable string `json:"variable"`
	Value    string `json:"value"`
}

// TraversalEvent summarises a completed traversal.
type TraversalEvent struct {
	EventBase
	StartNodeID string `json:"start_node_id"`
	NodeID      string `json:"node_id,omitempty"`
	Found       bool   `json:"found"`
	Reason      string `json:"reason"`
	Steps       int    `json:"steps"`
}

// InteractionEvent marks the start or close of a session.
type InteractionEvent struct {
	EventBase
	ProjectID string `json:"project_id"`
	NodeID    string `json:"node_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter        func(context.Context, *NodeEvent)
	OnVariableSet      func(context.Context, *VariableEvent)
	OnTraversalEnd     func(context.Context, *TraversalEvent)
	OnInteractionStart func(context.Context, *InteractionEvent)
	OnInteractionClose func(context.Context, *InteractionEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter:        chain(h.OnNodeEnter, other.OnNodeEnter),
		OnVariableSet:      chain(h.OnVariableSet, other.OnVariableSet),
		OnTraversalEnd:     chain(h.OnTraversalEnd, other.OnTraversalEnd),
		OnInteractionStart: chain(h.OnInteractionStart, other.OnInteractionStart),
		OnInteractionClose: chain(h.OnInteractionClose, other.OnInteractionClose),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
