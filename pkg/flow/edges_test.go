package flow

import (
	"testing"

	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindNextNode(t *testing.T) {
	b := dsl.New()
	b.Add("start").Start().Go("d1")
	b.Add("d1").Dialogue("NPC", "Hi")
	b.Add("cond").Condition("x", domain.OpEqual, "1").True("yes").False("no")
	b.Add("yes").Dialogue("NPC", "yes")
	b.Add("no").Dialogue("NPC", "no")
	b.Add("dangling").Event("e", "").Go("ghost")
	b.Add("lonely").Event("e", "")
	g := b.Build()

	tests := []struct {
		name   string
		from   string
		port   string
		want   string
		wantOK bool
	}{
		{name: "connected node", from: "start", want: "d1", wantOK: true},
		{name: "port filter matches", from: "start", port: domain.PortMain, want: "d1", wantOK: true},
		{name: "true port", from: "cond", port: domain.PortTrue, want: "yes", wantOK: true},
		{name: "false port", from: "cond", port: domain.PortFalse, want: "no", wantOK: true},
		{name: "any port takes first in order", from: "cond", want: "yes", wantOK: true},
		{name: "no connection", from: "lonely"},
		{name: "port mismatch", from: "start", port: "other"},
		{name: "missing target", from: "dangling"},
		{name: "unknown source", from: "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindNextNode(&g, tt.from, tt.port)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got.ID)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestFindNextNode_FirstConnectionWins(t *testing.T) {
	b := dsl.New()
	b.Add("a").Event("e", "").Go("b").Go("c")
	b.Add("b").Dialogue("", "b")
	b.Add("c").Dialogue("", "c")
	g := b.Build()

	got, ok := FindNextNode(&g, "a", domain.PortMain)
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)
}

func TestFindNextNode_NilGraph(t *testing.T) {
	got, ok := FindNextNode(nil, "a", "")
	assert.False(t, ok)
	assert.Nil(t, got)
}
