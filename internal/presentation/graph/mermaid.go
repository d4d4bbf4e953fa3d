package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/rcflow/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

const maxLabel = 40

// GenerateMermaid produces a Mermaid flowchart of a dialogue graph.
// Node shapes follow the kind:
// - Start: ((Circle))
// - Dialogue: [Rectangle]
// - Condition: {Rhombus}
// - SetVariable: [/Parallelogram/]
// - Event: [[Subroutine]]
// - End: (((Double circle)))
// Edges are labelled by choice text or condition branch. Edges pointing at a
// missing node are dotted.
func GenerateMermaid(g domain.FlowGraph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range g.Nodes {
		opener, closer := "[", "]"
		switch node.Kind {
		case domain.KindStart:
			opener, closer = "((", "))"
		case domain.KindCondition:
			opener, closer = "{", "}"
		case domain.KindSetVariable:
			opener, closer = "[/", "/]"
		case domain.KindEvent:
			opener, closer = "[[", "]]"
		case domain.KindEnd:
			opener, closer = "(((", ")))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(node.ID), opener, nodeLabel(node), closer)
	}

	for _, c := range g.Connections {
		from, ok := g.Node(c.FromNodeID)
		if !ok {
			continue
		}
		_, targetExists := g.Node(c.ToNodeID)

		label := edgeLabel(from, c.FromPort)
		arrow := "-->"
		switch {
		case label != "" && targetExists:
			arrow = fmt.Sprintf("-- \"%s\" -->", label)
		case label != "":
			arrow = fmt.Sprintf("-. \"%s\" .->", label)
		case !targetExists:
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(c.FromNodeID), arrow, sanitizeMermaidID(c.ToNodeID))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func nodeLabel(n domain.Node) string {
	switch n.Kind {
	case domain.KindDialogue:
		if n.Data.Speaker != "" {
			return escape(n.Data.Speaker + ": " + truncate(n.Data.Text))
		}
		return escape(truncate(n.Data.Text))
	case domain.KindCondition:
		op := n.Data.Operator
		if op == "" {
			op = domain.OpEqual
		}
		return escape(fmt.Sprintf("%s %s %s", n.Data.Variable, op, n.Data.CompareValue))
	case domain.KindSetVariable:
		return escape(fmt.Sprintf("%s = %s", n.Data.Variable, n.Data.CompareValue))
	case domain.KindEvent:
		return escape("⚡ " + n.Data.EventName)
	case domain.KindStart, domain.KindEnd:
		return escape(n.ID)
	default:
		return escape(fmt.Sprintf("%s (%s)", n.ID, n.Kind))
	}
}

func edgeLabel(from *domain.Node, port string) string {
	switch from.Kind {
	case domain.KindDialogue:
		if c, ok := from.Choice(port); ok && c.Text != "" {
			return escape(truncate(c.Text))
		}
		return escape(port)
	case domain.KindCondition:
		return escape(port)
	}
	if port != domain.PortMain && port != "" {
		return escape(port)
	}
	return ""
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > maxLabel {
		return string(r[:maxLabel-1]) + "…"
	}
	return s
}

// escape replaces double quotes, which would end a Mermaid label.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
