package domain

// Well-known port names. Dialogue nodes use their choice IDs as ports.
const (
	PortMain  = "main"
	PortTrue  = "true"
	PortFalse = "false"
)

// Connection is a directed edge leaving FromNodeID through FromPort.
type Connection struct {
	ID         string `json:"id" yaml:"id" validate:"required"`
	FromNodeID string `json:"fromNodeId" yaml:"fromNodeId" validate:"required"`
	FromPort   string `json:"fromPort" yaml:"fromPort" validate:"required"`
	ToNodeID   string `json:"toNodeId" yaml:"toNodeId" validate:"required"`
}

// FlowGraph is the ordered set of nodes and connections of a dialogue.
// Sequence order matters: lookups always return the first match.
type FlowGraph struct {
	Nodes       []Node       `json:"nodes" yaml:"nodes" validate:"dive"`
	Connections []Connection `json:"connections" yaml:"connections" validate:"dive"`
}

// Node returns the first node with the given ID.
func (g *FlowGraph) Node(id string) (*Node, bool) {
	if g == nil {
		return nil, false
	}
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// StartNode returns the first node of kind START.
func (g *FlowGraph) StartNode() (*Node, bool) {
	if g == nil {
		return nil, false
	}
	for i := range g.Nodes {
		if g.Nodes[i].Kind == KindStart {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// Outgoing returns the connections leaving nodeID, in sequence order.
func (g *FlowGraph) Outgoing(nodeID string) []Connection {
	var out []Connection
	for _, c := range g.Connections {
		if c.FromNodeID == nodeID {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep copy of the graph.
func (g FlowGraph) Clone() FlowGraph {
	out := FlowGraph{}
	if g.Nodes != nil {
		out.Nodes = make([]Node, len(g.Nodes))
		for i, n := range g.Nodes {
			out.Nodes[i] = n.Clone()
		}
	}
	if g.Connections != nil {
		out.Connections = make([]Connection, len(g.Connections))
		copy(out.Connections, g.Connections)
	}
	return out
}
