// Package editor applies graph-editing operations to a FlowGraph with undo/redo.
//
// Every mutating operation records a snapshot of the graph before changing it,
// so a single Undo reverts exactly one operation. Operations keep the graph's
// structural rules: one connection per (node, port), no self-connections,
// dialogue choice targets mirroring their connections, and no connections
// left pointing at deleted nodes or choices.
package editor

import (
	"fmt"
	"strings"

	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/history"
	"github.com/google/uuid"
)

// Defaults applied to new nodes.
const (
	DefaultModel      = "a_m_y_business_01"
	DefaultSpeaker    = "Entity"
	DefaultVariable   = "var"
	DefaultValue      = "true"
	DefaultText       = "Type the dialogue text here..."
	DefaultChoiceText = "Next"
	NewChoiceText     = "New option"
)

// Editor owns a working copy of a graph.
type Editor struct {
	graph   domain.FlowGraph
	history *history.Stack[domain.FlowGraph]
	newID   func(prefix string) string
}

// Option configures an Editor.
type Option func(*Editor)

// WithHistoryLimit bounds the number of undo steps.
func WithHistoryLimit(n int) Option {
	return func(e *Editor) {
		e.history = history.New[domain.FlowGraph](n)
	}
}

// WithIDGenerator replaces the UUID-based ID generator. Mostly useful in tests.
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(e *Editor) {
		e.newID = fn
	}
}

// New creates an editor over a copy of g.
func New(g domain.FlowGraph, opts ...Option) *Editor {
	e := &Editor{
		graph:   g.Clone(),
		history: history.New[domain.FlowGraph](history.DefaultLimit),
		newID: func(prefix string) string {
			return prefix + "-" + uuid.NewString()
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns a copy of the current graph.
func (e *Editor) Graph() domain.FlowGraph {
	return e.graph.Clone()
}

func (e *Editor) record() {
	e.history.Record(e.graph.Clone())
}

func (e *Editor) CanUndo() bool { return e.history.CanUndo() }
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// Undo reverts the last operation. It reports false when there is nothing to undo.
func (e *Editor) Undo() bool {
	prev, ok := e.history.Undo(e.graph)
	if ok {
		e.graph = prev
	}
	return ok
}

// Redo re-applies the last undone operation.
func (e *Editor) Redo() bool {
	next, ok := e.history.Redo(e.graph)
	if ok {
		e.graph = next
	}
	return ok
}

// AddNode appends a node of the given kind with the editor defaults.
func (e *Editor) AddNode(kind domain.NodeKind, pos domain.Position) (domain.Node, error) {
	if !kind.Valid() {
		return domain.Node{}, fmt.Errorf("unknown node kind %q", kind)
	}

	n := domain.Node{
		ID:       e.newID(strings.ToLower(string(kind))),
		Kind:     kind,
		Position: pos,
		Data: domain.NodeData{
			Speaker:      DefaultSpeaker,
			Variable:     DefaultVariable,
			Operator:     domain.OpEqual,
			CompareValue: DefaultValue,
		},
	}
	switch kind {
	case domain.KindStart:
		n.Data.Model = DefaultModel
	case domain.KindDialogue:
		n.Data.Text = DefaultText
		n.Data.Choices = []domain.Choice{{ID: e.newID("c"), Text: DefaultChoiceText}}
	}

	e.record()
	e.graph.Nodes = append(e.graph.Nodes, n)
	return n.Clone(), nil
}

// DeleteNode removes a node and every connection touching it.
func (e *Editor) DeleteNode(id string) error {
	idx := e.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("delete %q: %w", id, domain.ErrNodeNotFound)
	}

	e.record()
	e.graph.Nodes = append(e.graph.Nodes[:idx:idx], e.graph.Nodes[idx+1:]...)
	e.graph.Connections = filterConnections(e.graph.Connections, func(c domain.Connection) bool {
		return c.FromNodeID != id && c.ToNodeID != id
	})
	return nil
}

// Connect links from's port to the target node, replacing any connection that
// already leaves through the same port. For dialogue ports the matching
// choice's NextNodeID is updated as well.
func (e *Editor) Connect(from, port, to string) (domain.Connection, error) {
	if from == to {
		return domain.Connection{}, domain.ErrSelfConnection
	}
	src := e.indexOf(from)
	if src < 0 {
		return domain.Connection{}, fmt.Errorf("connect from %q: %w", from, domain.ErrNodeNotFound)
	}
	if e.indexOf(to) < 0 {
		return domain.Connection{}, fmt.Errorf("connect to %q: %w", to, domain.ErrNodeNotFound)
	}
	if port == "" {
		port = domain.PortMain
	}

	conn := domain.Connection{
		ID:         e.newID("conn"),
		FromNodeID: from,
		FromPort:   port,
		ToNodeID:   to,
	}

	e.record()
	e.graph.Connections = filterConnections(e.graph.Connections, func(c domain.Connection) bool {
		return !(c.FromNodeID == from && c.FromPort == port)
	})
	e.graph.Connections = append(e.graph.Connections, conn)

	node := &e.graph.Nodes[src]
	if node.Kind == domain.KindDialogue {
		if choice, ok := node.Choice(port); ok {
			target := to
			choice.NextNodeID = &target
		}
	}
	return conn, nil
}

// Disconnect removes a connection and clears the dialogue choice it drove.
func (e *Editor) Disconnect(connID string) error {
	var conn *domain.Connection
	for i := range e.graph.Connections {
		if e.graph.Connections[i].ID == connID {
			c := e.graph.Connections[i]
			conn = &c
			break
		}
	}
	if conn == nil {
		return fmt.Errorf("disconnect %q: %w", connID, domain.ErrConnectionNotFound)
	}

	e.record()
	e.graph.Connections = filterConnections(e.graph.Connections, func(c domain.Connection) bool {
		return c.ID != connID
	})
	if idx := e.indexOf(conn.FromNodeID); idx >= 0 {
		node := &e.graph.Nodes[idx]
		if node.Kind == domain.KindDialogue {
			if choice, ok := node.Choice(conn.FromPort); ok {
				choice.NextNodeID = nil
			}
		}
	}
	return nil
}

// AddChoice appends an unconnected choice to a node.
func (e *Editor) AddChoice(nodeID, text string) (domain.Choice, error) {
	idx := e.indexOf(nodeID)
	if idx < 0 {
		return domain.Choice{}, fmt.Errorf("add choice to %q: %w", nodeID, domain.ErrNodeNotFound)
	}
	if text == "" {
		text = NewChoiceText
	}
	c := domain.Choice{ID: e.newID("c"), Text: text}

	e.record()
	node := &e.graph.Nodes[idx]
	node.Data.Choices = append(node.Data.Choices, c)
	return c, nil
}

// UpdateChoice changes the text of a choice.
func (e *Editor) UpdateChoice(nodeID, choiceID, text string) error {
	idx := e.indexOf(nodeID)
	if idx < 0 {
		return fmt.Errorf("update choice on %q: %w", nodeID, domain.ErrNodeNotFound)
	}
	if _, ok := e.graph.Nodes[idx].Choice(choiceID); !ok {
		return fmt.Errorf("update choice %q: %w", choiceID, domain.ErrChoiceNotFound)
	}

	e.record()
	choice, _ := e.graph.Nodes[idx].Choice(choiceID)
	choice.Text = text
	return nil
}

// RemoveChoice deletes a choice together with the connection leaving through it.
func (e *Editor) RemoveChoice(nodeID, choiceID string) error {
	idx := e.indexOf(nodeID)
	if idx < 0 {
		return fmt.Errorf("remove choice from %q: %w", nodeID, domain.ErrNodeNotFound)
	}
	if _, ok := e.graph.Nodes[idx].Choice(choiceID); !ok {
		return fmt.Errorf("remove choice %q: %w", choiceID, domain.ErrChoiceNotFound)
	}

	e.record()
	node := &e.graph.Nodes[idx]
	kept := node.Data.Choices[:0:0]
	for _, c := range node.Data.Choices {
		if c.ID != choiceID {
			kept = append(kept, c)
		}
	}
	node.Data.Choices = kept
	e.graph.Connections = filterConnections(e.graph.Connections, func(c domain.Connection) bool {
		return !(c.FromNodeID == nodeID && c.FromPort == choiceID)
	})
	return nil
}

// MoveNode changes a node's canvas position. Moving to the current position
// records nothing.
func (e *Editor) MoveNode(id string, pos domain.Position) error {
	idx := e.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("move %q: %w", id, domain.ErrNodeNotFound)
	}
	if e.graph.Nodes[idx].Position == pos {
		return nil
	}

	e.record()
	e.graph.Nodes[idx].Position = pos
	return nil
}

// UpdateNodeData applies fn to a copy of the node's data and stores the result.
// Choices cannot be edited through this call; use the choice operations.
func (e *Editor) UpdateNodeData(id string, fn func(*domain.NodeData)) error {
	idx := e.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("update %q: %w", id, domain.ErrNodeNotFound)
	}

	current := e.graph.Nodes[idx].Clone()
	data := current.Data
	fn(&data)
	data.Choices = current.Data.Choices

	e.record()
	e.graph.Nodes[idx].Data = data
	return nil
}

func (e *Editor) indexOf(id string) int {
	for i := range e.graph.Nodes {
		if e.graph.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func filterConnections(conns []domain.Connection, keep func(domain.Connection) bool) []domain.Connection {
	out := make([]domain.Connection, 0, len(conns))
	for _, c := range conns {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
