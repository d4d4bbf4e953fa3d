package flow

import "github.com/aretw0/rcflow/pkg/domain"

// FindNextNode returns the node reached from fromID through the first matching
// connection in sequence order. An empty port matches any port.
// It reports false when no connection matches or when the matched connection
// points at a node that does not exist.
func FindNextNode(g *domain.FlowGraph, fromID, port string) (*domain.Node, bool) {
	conn, ok := findConnection(g, fromID, port)
	if !ok {
		return nil, false
	}
	return g.Node(conn.ToNodeID)
}

func findConnection(g *domain.FlowGraph, fromID, port string) (*domain.Connection, bool) {
	if g == nil {
		return nil, false
	}
	for i := range g.Connections {
		c := &g.Connections[i]
		if c.FromNodeID != fromID {
			continue
		}
		if port != "" && c.FromPort != port {
			continue
		}
		return c, true
	}
	return nil, false
}
