package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/rcflow/pkg/domain"
)

// Finding is a single lint result. NodeID or ConnectionID point at the culprit.
type Finding struct {
	NodeID       string `json:"nodeId,omitempty"`
	ConnectionID string `json:"connectionId,omitempty"`
	Message      string `json:"message"`
}

func (f Finding) String() string {
	switch {
	case f.ConnectionID != "":
		return fmt.Sprintf("[%s] %s", f.ConnectionID, f.Message)
	case f.NodeID != "":
		return fmt.Sprintf("[%s] %s", f.NodeID, f.Message)
	default:
		return f.Message
	}
}

// Report collects lint findings. Errors make a graph unusable at runtime;
// warnings point at parts that can never run or will stop a traversal early.
type Report struct {
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// OK reports whether the graph has no errors.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Err returns the report as an error, or nil when there are no errors.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return r
}

func (r *Report) Error() string {
	lines := make([]string, 0, len(r.Errors))
	for _, f := range r.Errors {
		lines = append(lines, f.String())
	}
	return fmt.Sprintf("found %d errors:\n- %s", len(r.Errors), strings.Join(lines, "\n- "))
}

func (r *Report) errorf(nodeID, connID, format string, args ...any) {
	r.Errors = append(r.Errors, Finding{NodeID: nodeID, ConnectionID: connID, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) warnf(nodeID, connID, format string, args ...any) {
	r.Warnings = append(r.Warnings, Finding{NodeID: nodeID, ConnectionID: connID, Message: fmt.Sprintf(format, args...)})
}

// ValidateGraph checks for broken links, misrouted ports and unreachable
// nodes, crawling from the START node.
func ValidateGraph(g domain.FlowGraph) Report {
	report := Report{Errors: []Finding{}, Warnings: []Finding{}}

	nodes := make(map[string]*domain.Node, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if _, dup := nodes[n.ID]; dup {
			report.errorf(n.ID, "", "duplicate node id")
			continue
		}
		nodes[n.ID] = n

		if n.Kind == domain.KindCondition && !n.Data.Operator.Valid() && n.Data.Operator != "" {
			report.warnf(n.ID, "", "unknown condition operator %q always evaluates to false", n.Data.Operator)
		}
	}

	start, ok := g.StartNode()
	if !ok {
		report.errorf("", "", "graph has no START node")
	}

	type edgeKey struct{ from, port string }
	seenEdges := make(map[edgeKey]string, len(g.Connections))
	for _, c := range g.Connections {
		from, ok := nodes[c.FromNodeID]
		if !ok {
			report.errorf("", c.ID, "connection leaves unknown node '%s'", c.FromNodeID)
			continue
		}

		key := edgeKey{c.FromNodeID, c.FromPort}
		if first, dup := seenEdges[key]; dup {
			report.errorf(c.FromNodeID, c.ID, "port '%s' is already connected by '%s'", c.FromPort, first)
		} else {
			seenEdges[key] = c.ID
		}

		if _, ok := nodes[c.ToNodeID]; !ok {
			report.warnf(c.FromNodeID, c.ID, "missing node '%s'", c.ToNodeID)
		}

		if msg := checkPort(from, c.FromPort); msg != "" {
			report.warnf(c.FromNodeID, c.ID, "%s", msg)
		}
	}

	if start == nil {
		return report
	}

	for _, n := range g.Nodes {
		for _, c := range n.Data.Choices {
			if c.NextNodeID == nil || *c.NextNodeID == "" {
				continue
			}
			if _, ok := nodes[*c.NextNodeID]; !ok {
				report.warnf(n.ID, "", "choice '%s' leads to missing node '%s'", c.ID, *c.NextNodeID)
			}
		}
	}

	// Crawl from START; edges leaving any port count, as any choice may be taken.
	visited := map[string]bool{}
	queue := []string{start.ID}
	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		for _, next := range successors(g, nodes[currentID]) {
			if _, ok := nodes[next]; ok && !visited[next] {
				queue = append(queue, next)
			}
		}
	}

	for _, n := range g.Nodes {
		if !visited[n.ID] {
			report.warnf(n.ID, "", "unreachable from START")
		}
	}

	return report
}

// successors lists the nodes traversal can reach from n in one step: every
// outgoing edge, plus the recorded next node of dialogue choices whose port
// has no edge.
func successors(g domain.FlowGraph, n *domain.Node) []string {
	out := []string{}
	wired := map[string]bool{}
	for _, c := range g.Outgoing(n.ID) {
		out = append(out, c.ToNodeID)
		wired[c.FromPort] = true
	}
	if n.Kind != domain.KindDialogue {
		return out
	}
	for _, c := range n.Data.Choices {
		if !wired[c.ID] && c.NextNodeID != nil && *c.NextNodeID != "" {
			out = append(out, *c.NextNodeID)
		}
	}
	return out
}

// checkPort reports a port that traversal or a player can never leave through.
func checkPort(n *domain.Node, port string) string {
	switch n.Kind {
	case domain.KindStart, domain.KindSetVariable, domain.KindEvent:
		if port != domain.PortMain {
			return fmt.Sprintf("%s node leaves through '%s' instead of '%s'", n.Kind, port, domain.PortMain)
		}
	case domain.KindCondition:
		if port != domain.PortTrue && port != domain.PortFalse {
			return fmt.Sprintf("CONDITION node leaves through '%s' instead of '%s' or '%s'", port, domain.PortTrue, domain.PortFalse)
		}
	case domain.KindDialogue:
		if _, ok := n.Choice(port); !ok {
			return fmt.Sprintf("DIALOGUE node has no choice '%s'", port)
		}
	case domain.KindEnd:
		return "END node has an outgoing connection"
	}
	return ""
}
