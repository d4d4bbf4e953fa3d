package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryDiff(t *testing.T) {
	tests := []struct {
		name   string
		before GameMemory
		after  GameMemory
		want   map[string]any
	}{
		{
			name:   "No Changes",
			before: GameMemory{"a": "1"},
			after:  GameMemory{"a": "1"},
			want:   nil,
		},
		{
			name:   "Initial Write",
			before: nil,
			after:  GameMemory{"greeted": "yes"},
			want:   map[string]any{"greeted": "yes"},
		},
		{
			name:   "Overwrite",
			before: GameMemory{"x": "old", "y": "same"},
			after:  GameMemory{"x": "new", "y": "same"},
			want:   map[string]any{"x": "new"},
		},
		{
			name:   "Type Change Counts",
			before: GameMemory{"level": 15},
			after:  GameMemory{"level": "15"},
			want:   map[string]any{"level": "15"},
		},
		{
			name:   "Removal",
			before: GameMemory{"gone": "1"},
			after:  GameMemory{},
			want:   map[string]any{"gone": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MemoryDiff(tt.before, tt.after))
		})
	}
}

func TestDiffGraphs(t *testing.T) {
	old := FlowGraph{
		Nodes: []Node{
			{ID: "start", Kind: KindStart},
			{ID: "d1", Kind: KindDialogue, Data: NodeData{Text: "hi"}},
			{ID: "gone", Kind: KindEnd},
		},
		Connections: []Connection{
			{ID: "c1", FromNodeID: "start", FromPort: PortMain, ToNodeID: "d1"},
		},
	}
	updated := FlowGraph{
		Nodes: []Node{
			{ID: "start", Kind: KindStart},
			{ID: "d1", Kind: KindDialogue, Data: NodeData{Text: "hello"}},
			{ID: "end", Kind: KindEnd},
		},
		Connections: []Connection{
			{ID: "c2", FromNodeID: "start", FromPort: PortMain, ToNodeID: "end"},
		},
	}

	diff := DiffGraphs(old, updated)
	assert.Equal(t, []string{"end"}, diff.AddedNodes)
	assert.Equal(t, []string{"gone"}, diff.RemovedNodes)
	assert.Equal(t, []string{"d1"}, diff.ChangedNodes)
	assert.Equal(t, []string{"c2"}, diff.AddedConnections)
	assert.Equal(t, []string{"c1"}, diff.RemovedConnections)
	assert.False(t, diff.IsEmpty())

	assert.True(t, DiffGraphs(old, old.Clone()).IsEmpty())
}
