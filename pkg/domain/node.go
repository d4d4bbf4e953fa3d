package domain

// NodeKind identifies the behavior of a node during traversal.
type NodeKind string

const (
	// KindStart is the entry point of an interaction. It carries world placement data.
	KindStart NodeKind = "START"
	// KindDialogue is presentational: traversal stops here and the host renders it.
	KindDialogue NodeKind = "DIALOGUE"
	// KindCondition branches through the "true" or "false" port.
	KindCondition NodeKind = "CONDITION"
	// KindSetVariable writes a single memory entry and continues.
	KindSetVariable NodeKind = "SET_VARIABLE"
	// KindEvent is a game-world trigger; traversal passes through it.
	KindEvent NodeKind = "EVENT"
	// KindEnd terminates the interaction. It is presentational like Dialogue.
	KindEnd NodeKind = "END"
)

// Kinds lists every known kind in declaration order.
var Kinds = []NodeKind{KindStart, KindDialogue, KindCondition, KindSetVariable, KindEvent, KindEnd}

// Valid reports whether k is one of the known kinds.
func (k NodeKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Position is the editor canvas location of a node. Traversal never reads it.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// WorldCoords places a Start node's NPC in the game world (w is the heading).
type WorldCoords struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
	W float64 `json:"w" yaml:"w"`
}

// Choice is a player-selectable option on a Dialogue node.
// Its ID doubles as the outgoing port name of the edge it drives.
type Choice struct {
	ID         string  `json:"id" yaml:"id" validate:"required"`
	Text       string  `json:"text" yaml:"text"`
	NextNodeID *string `json:"nextNodeId" yaml:"nextNodeId"`
}

// NodeData is the flat, serialized payload of a node. Only the fields relevant
// to the node's Kind are meaningful; use Node.Payload for a typed view.
type NodeData struct {
	// Start
	Coords *WorldCoords `json:"coords,omitempty" yaml:"coords,omitempty"`
	Model  string       `json:"model,omitempty" yaml:"model,omitempty"`

	// Dialogue
	Speaker string   `json:"npcName,omitempty" yaml:"npcName,omitempty"`
	Text    string   `json:"text,omitempty" yaml:"text,omitempty"`
	Choices []Choice `json:"choices,omitempty" yaml:"choices,omitempty" validate:"dive"`

	// Condition and SetVariable
	Variable     string   `json:"variableName,omitempty" yaml:"variableName,omitempty"`
	Operator     Operator `json:"conditionOperator,omitempty" yaml:"conditionOperator,omitempty" validate:"omitempty,operator"`
	CompareValue string   `json:"variableValue,omitempty" yaml:"variableValue,omitempty"`

	// Event
	EventName    string `json:"eventName,omitempty" yaml:"eventName,omitempty"`
	EventPayload string `json:"eventPayload,omitempty" yaml:"eventPayload,omitempty"`
}

// Node is a vertex of the flow graph.
type Node struct {
	ID       string   `json:"id" yaml:"id" validate:"required"`
	Kind     NodeKind `json:"type" yaml:"type" validate:"required,nodekind"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data" yaml:"data"`
}

// Choice returns the dialogue choice with the given ID.
func (n *Node) Choice(id string) (*Choice, bool) {
	for i := range n.Data.Choices {
		if n.Data.Choices[i].ID == id {
			return &n.Data.Choices[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	out := n
	if n.Data.Coords != nil {
		c := *n.Data.Coords
		out.Data.Coords = &c
	}
	if n.Data.Choices != nil {
		out.Data.Choices = make([]Choice, len(n.Data.Choices))
		for i, ch := range n.Data.Choices {
			if ch.NextNodeID != nil {
				next := *ch.NextNodeID
				ch.NextNodeID = &next
			}
			out.Data.Choices[i] = ch
		}
	}
	return out
}
