package domain

// Payload is the typed, per-kind view of a node.
// The set of implementations is closed: StartPayload, DialoguePayload,
// ConditionPayload, SetVariablePayload, EventPayload and EndPayload.
type Payload interface {
	Kind() NodeKind
	sealed()
}

type StartPayload struct {
	Coords *WorldCoords
	Model  string
}

type DialoguePayload struct {
	Speaker string
	Text    string
	Choices []Choice
}

type ConditionPayload struct {
	Variable     string
	Operator     Operator
	CompareValue string
}

type SetVariablePayload struct {
	Variable string
	Value    string
}

type EventPayload struct {
	Name    string
	Payload string
}

type EndPayload struct{}

func (StartPayload) Kind() NodeKind       { return KindStart }
func (DialoguePayload) Kind() NodeKind    { return KindDialogue }
func (ConditionPayload) Kind() NodeKind   { return KindCondition }
func (SetVariablePayload) Kind() NodeKind { return KindSetVariable }
func (EventPayload) Kind() NodeKind       { return KindEvent }
func (EndPayload) Kind() NodeKind         { return KindEnd }

func (StartPayload) sealed()       {}
func (DialoguePayload) sealed()    {}
func (ConditionPayload) sealed()   {}
func (SetVariablePayload) sealed() {}
func (EventPayload) sealed()       {}
func (EndPayload) sealed()         {}

// Payload projects the node data onto the variant selected by its Kind.
// It returns nil for an unknown kind.
func (n *Node) Payload() Payload {
	d := n.Data
	switch n.Kind {
	case KindStart:
		return StartPayload{Coords: d.Coords, Model: d.Model}
	case KindDialogue:
		return DialoguePayload{Speaker: d.Speaker, Text: d.Text, Choices: d.Choices}
	case KindCondition:
		return ConditionPayload{Variable: d.Variable, Operator: d.Operator, CompareValue: d.CompareValue}
	case KindSetVariable:
		return SetVariablePayload{Variable: d.Variable, Value: d.CompareValue}
	case KindEvent:
		return EventPayload{Name: d.EventName, Payload: d.EventPayload}
	case KindEnd:
		return EndPayload{}
	default:
		return nil
	}
}
