package dsl

import "github.com/aretw0/rcflow/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Start marks the node as the interaction entry point.
func (n *NodeBuilder) Start() *NodeBuilder {
	n.node.Kind = domain.KindStart
	return n
}

// Spawn sets the world placement and ped model of a Start node.
func (n *NodeBuilder) Spawn(coords domain.WorldCoords, model string) *NodeBuilder {
	n.node.Data.Coords = &coords
	n.node.Data.Model = model
	return n
}

// Dialogue marks the node as a dialogue line spoken by speaker.
func (n *NodeBuilder) Dialogue(speaker, text string) *NodeBuilder {
	n.node.Kind = domain.KindDialogue
	n.node.Data.Speaker = speaker
	n.node.Data.Text = text
	return n
}

// Choice adds a player option. A non-empty target also wires the edge
// leaving through the choice's port and records it as the choice's next node.
func (n *NodeBuilder) Choice(id, text, target string) *NodeBuilder {
	c := domain.Choice{ID: id, Text: text}
	if target != "" {
		next := target
		c.NextNodeID = &next
		n.builder.Connect(n.node.ID, id, target)
	}
	n.node.Data.Choices = append(n.node.Data.Choices, c)
	return n
}

// Condition marks the node as a branch on variable op value.
func (n *NodeBuilder) Condition(variable string, op domain.Operator, value string) *NodeBuilder {
	n.node.Kind = domain.KindCondition
	n.node.Data.Variable = variable
	n.node.Data.Operator = op
	n.node.Data.CompareValue = value
	return n
}

// True wires the branch taken when the condition holds.
func (n *NodeBuilder) True(target string) *NodeBuilder {
	n.builder.Connect(n.node.ID, domain.PortTrue, target)
	return n
}

// False wires the branch taken when the condition does not hold.
func (n *NodeBuilder) False(target string) *NodeBuilder {
	n.builder.Connect(n.node.ID, domain.PortFalse, target)
	return n
}

// Set marks the node as a variable assignment.
func (n *NodeBuilder) Set(variable, value string) *NodeBuilder {
	n.node.Kind = domain.KindSetVariable
	n.node.Data.Variable = variable
	n.node.Data.CompareValue = value
	return n
}

// Event marks the node as a game-world trigger.
func (n *NodeBuilder) Event(name, payload string) *NodeBuilder {
	n.node.Kind = domain.KindEvent
	n.node.Data.EventName = name
	n.node.Data.EventPayload = payload
	return n
}

// End marks the node as the end of the interaction.
func (n *NodeBuilder) End() *NodeBuilder {
	n.node.Kind = domain.KindEnd
	return n
}

// Kind forces an arbitrary kind. Useful to describe graphs the engine must reject.
func (n *NodeBuilder) Kind(kind domain.NodeKind) *NodeBuilder {
	n.node.Kind = kind
	return n
}

// At sets the canvas position.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Position{X: x, Y: y}
	return n
}

// Go adds an unconditional transition to the target node through the main port.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.builder.Connect(n.node.ID, domain.PortMain, target)
	return n
}

// Port adds a transition through an arbitrary port.
func (n *NodeBuilder) Port(port, target string) *NodeBuilder {
	n.builder.Connect(n.node.ID, port, target)
	return n
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node.Clone()
}
