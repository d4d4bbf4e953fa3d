package domain

import (
	"reflect"
)

// MemoryDiff returns the entries of after that were added or changed relative
// to before. Keys removed from after are reported with a nil value.
// It returns nil when nothing changed so callers can rely on omitempty.
func MemoryDiff(before, after GameMemory) map[string]any {
	delta := make(map[string]any)

	for k, newVal := range after {
		oldVal, exists := before[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	for k := range before {
		if _, exists := after[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// GraphDiff summarises structural differences between two graphs by ID.
type GraphDiff struct {
	AddedNodes         []string `json:"added_nodes,omitempty"`
	RemovedNodes       []string `json:"removed_nodes,omitempty"`
	ChangedNodes       []string `json:"changed_nodes,omitempty"`
	AddedConnections   []string `json:"added_connections,omitempty"`
	RemovedConnections []string `json:"removed_connections,omitempty"`
}

// IsEmpty checks if the diff contains any changes.
func (d *GraphDiff) IsEmpty() bool {
	return len(d.AddedNodes) == 0 &&
		len(d.RemovedNodes) == 0 &&
		len(d.ChangedNodes) == 0 &&
		len(d.AddedConnections) == 0 &&
		len(d.RemovedConnections) == 0
}

// DiffGraphs compares old and new by node and connection ID.
// Node order in the result follows the graph that contains the node.
func DiffGraphs(old, new FlowGraph) *GraphDiff {
	diff := &GraphDiff{}

	oldNodes := make(map[string]Node, len(old.Nodes))
	for _, n := range old.Nodes {
		oldNodes[n.ID] = n
	}
	newNodes := make(map[string]struct{}, len(new.Nodes))
	for _, n := range new.Nodes {
		newNodes[n.ID] = struct{}{}
		prev, ok := oldNodes[n.ID]
		switch {
		case !ok:
			diff.AddedNodes = append(diff.AddedNodes, n.ID)
		case !reflect.DeepEqual(prev, n):
			diff.ChangedNodes = append(diff.ChangedNodes, n.ID)
		}
	}
	for _, n := range old.Nodes {
		if _, ok := newNodes[n.ID]; !ok {
			diff.RemovedNodes = append(diff.RemovedNodes, n.ID)
		}
	}

	oldConns := make(map[string]struct{}, len(old.Connections))
	for _, c := range old.Connections {
		oldConns[c.ID] = struct{}{}
	}
	newConns := make(map[string]struct{}, len(new.Connections))
	for _, c := range new.Connections {
		newConns[c.ID] = struct{}{}
		if _, ok := oldConns[c.ID]; !ok {
			diff.AddedConnections = append(diff.AddedConnections, c.ID)
		}
	}
	for _, c := range old.Connections {
		if _, ok := newConns[c.ID]; !ok {
			diff.RemovedConnections = append(diff.RemovedConnections, c.ID)
		}
	}

	return diff
}
