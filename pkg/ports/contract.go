package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		interaction := domain.NewInteraction(sessionID, "proj_1", domain.GameMemory{
			"greeted":     "yes",
			"honor_level": 55,
		}, time.Now())
		interaction.CurrentNodeID = "d1"
		interaction.History = []string{"d1"}

		err := store.Save(ctx, sessionID, interaction)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "proj_1", loaded.ProjectID)
		assert.Equal(t, "d1", loaded.CurrentNodeID)
		assert.Equal(t, domain.StatusActive, loaded.Status)
		assert.Equal(t, []string{"d1"}, loaded.History)
		assert.Equal(t, "yes", loaded.Memory.Lookup("greeted"))
		// Serializing stores may change numeric types; the string form is what traversal sees.
		assert.Equal(t, "55", loaded.Memory.Lookup("honor_level"))
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Memory["greeted"] = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "yes", again.Memory.Lookup("greeted"))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewInteraction(sessionID, "proj_1", nil, time.Now()))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewInteraction(id1, "proj_1", nil, time.Now()))
		_ = store.Save(ctx, id2, domain.NewInteraction(id2, "proj_1", nil, time.Now()))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunProjectStoreContract runs a suite of tests to verify that a ProjectStore
// implementation adheres to the defined interface contract.
func RunProjectStoreContract(t *testing.T, store ProjectStore) {
	ctx := context.Background()
	prefix := "contract-proj-" + time.Now().Format("20060102150405")

	sample := func(id string) *domain.Project {
		next := "end"
		return &domain.Project{
			ID:        id,
			Name:      "Docks " + id,
			Group:     "Harbor",
			CreatedAt: domain.UnixMilli(1700000000000),
			UpdatedAt: domain.UnixMilli(1700000000000),
			Data: domain.FlowGraph{
				Nodes: []domain.Node{
					{ID: "start", Kind: domain.KindStart, Position: domain.Position{X: 100, Y: 100}, Data: domain.NodeData{Model: "a_m_y_business_01"}},
					{ID: "d1", Kind: domain.KindDialogue, Data: domain.NodeData{Speaker: "Marcus", Text: "Hi", Choices: []domain.Choice{{ID: "c1", Text: "Bye", NextNodeID: &next}}}},
					{ID: "end", Kind: domain.KindEnd},
				},
				Connections: []domain.Connection{
					{ID: "k1", FromNodeID: "start", FromPort: domain.PortMain, ToNodeID: "d1"},
					{ID: "k2", FromNodeID: "d1", FromPort: "c1", ToNodeID: "end"},
				},
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		id := prefix + "-a"
		want := sample(id)
		require.NoError(t, store.Save(ctx, want))
		defer func() { _ = store.Delete(ctx, id) }()

		got, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		id := prefix + "-b"
		p := sample(id)
		require.NoError(t, store.Save(ctx, p))
		defer func() { _ = store.Delete(ctx, id) }()

		p.Name = "Renamed"
		p.Data.Nodes = p.Data.Nodes[:1]
		require.NoError(t, store.Save(ctx, p))

		got, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.Len(t, got.Data.Nodes, 1)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, prefix+"-missing")
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		id := prefix + "-c"
		require.NoError(t, store.Save(ctx, sample(id)))
		require.NoError(t, store.Delete(ctx, id))

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)

		assert.NoError(t, store.Delete(ctx, id), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		ids := []string{prefix + "-z", prefix + "-y"}
		for _, id := range ids {
			require.NoError(t, store.Save(ctx, sample(id)))
		}
		defer func() {
			for _, id := range ids {
				_ = store.Delete(ctx, id)
			}
		}()

		list, err := store.List(ctx)
		require.NoError(t, err)

		var found []domain.ProjectSummary
		for _, s := range list {
			if s.ID == ids[0] || s.ID == ids[1] {
				found = append(found, s)
			}
		}
		require.Len(t, found, 2, fmt.Sprintf("listed: %v", list))
		assert.Equal(t, ids[1], found[0].ID, "listing is ordered by ID")
		assert.Equal(t, "Harbor", found[0].Group)
		assert.Equal(t, 3, found[0].Nodes)
	})
}
