package domain

import "time"

// InteractionStatus tells whether a session still awaits player input.
type InteractionStatus string

const (
	StatusActive InteractionStatus = "active" // Showing a Dialogue node
	StatusClosed InteractionStatus = "closed" // Reached End, lost its path, or was cancelled
)

// Interaction is the runtime snapshot of a player's dialogue session.
type Interaction struct {
	SessionID string `json:"session_id"`
	ProjectID string `json:"project_id"`

	// CurrentNodeID is the Dialogue (or End) node the player is looking at.
	CurrentNodeID string `json:"current_node_id"`

	Status InteractionStatus `json:"status"`

	// Memory is owned by the session and mutated by traversal.
	Memory GameMemory `json:"memory"`

	// History lists the presentational nodes shown so far.
	History []string `json:"history,omitempty"`

	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewInteraction creates an active interaction with its own copy of memory.
func NewInteraction(sessionID, projectID string, memory GameMemory, now time.Time) *Interaction {
	return &Interaction{
		SessionID: sessionID,
		ProjectID: projectID,
		Status:    StatusActive,
		Memory:    memory.Clone(),
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the interaction.
func (i *Interaction) Clone() *Interaction {
	if i == nil {
		return nil
	}
	out := *i
	out.Memory = i.Memory.Clone()
	if i.History != nil {
		out.History = append([]string(nil), i.History...)
	}
	return &out
}

// ChoiceView is the renderable part of a Choice.
type ChoiceView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// DialogueView is what the host renders for a Dialogue node.
type DialogueView struct {
	ProjectID string       `json:"projectId"`
	NodeID    string       `json:"nodeId"`
	Name      string       `json:"name"`
	Text      string       `json:"text"`
	Choices   []ChoiceView `json:"choices"`
}

// NewDialogueView builds the view of a node for the given project.
func NewDialogueView(projectID string, n *Node) *DialogueView {
	view := &DialogueView{
		ProjectID: projectID,
		NodeID:    n.ID,
		Name:      n.Data.Speaker,
		Text:      n.Data.Text,
		Choices:   make([]ChoiceView, 0, len(n.Data.Choices)),
	}
	for _, c := range n.Data.Choices {
		view.Choices = append(view.Choices, ChoiceView{ID: c.ID, Text: c.Text})
	}
	return view
}

// Outcome is the result of advancing an interaction.
type Outcome struct {
	Interaction *Interaction `json:"interaction"`

	// View is set while the interaction is active.
	View *DialogueView `json:"view,omitempty"`

	// Closed is true when the interaction ended on this step.
	Closed bool `json:"closed"`

	// Reason explains why the interaction closed (e.g. "end", "no_path").
	Reason string `json:"reason,omitempty"`

	// MemoryDelta lists the variables written on this step.
	MemoryDelta map[string]any `json:"memory_delta,omitempty"`
}
