package dsl

import (
	"fmt"
	"time"

	"github.com/aretw0/rcflow/pkg/domain"
)

// Builder manages the graph construction.
// Nodes and connections keep the order in which they were declared, which is
// the order traversal uses to break ties.
type Builder struct {
	order       []string
	nodes       map[string]*NodeBuilder
	connections []domain.Connection
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.Node{ID: id},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Connect appends a raw connection. The target does not need to exist, which
// makes it possible to describe dangling edges.
func (b *Builder) Connect(from, port, to string) *Builder {
	b.connections = append(b.connections, domain.Connection{
		ID:         connectionID(from, port, len(b.connections)),
		FromNodeID: from,
		FromPort:   port,
		ToNodeID:   to,
	})
	return b
}

// Build returns the graph described so far.
func (b *Builder) Build() domain.FlowGraph {
	g := domain.FlowGraph{
		Nodes:       make([]domain.Node, 0, len(b.order)),
		Connections: make([]domain.Connection, len(b.connections)),
	}
	for _, id := range b.order {
		g.Nodes = append(g.Nodes, b.nodes[id].node.Clone())
	}
	copy(g.Connections, b.connections)
	return g
}

// Project wraps the graph into a project document.
func (b *Builder) Project(id, name string) *domain.Project {
	now := domain.At(time.Now())
	return &domain.Project{
		ID:        id,
		Name:      name,
		Group:     domain.DefaultGroup,
		CreatedAt: now,
		UpdatedAt: now,
		Data:      b.Build(),
	}
}

func connectionID(from, port string, seq int) string {
	if port == "" {
		port = domain.PortMain
	}
	return fmt.Sprintf("conn-%d-%s-%s", seq+1, from, port)
}
