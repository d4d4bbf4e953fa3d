package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/rcflow/pkg/adapters/memory"
	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryProjectStore_Contract(t *testing.T) {
	store := memory.NewProjectStore()
	ports.RunProjectStoreContract(t, store)
}

func TestMemoryProjectStore_SeedIsCopied(t *testing.T) {
	p := &domain.Project{ID: "p1", Name: "Seed"}
	store := memory.NewProjectStore(p)
	p.Name = "Mutated"

	got, err := store.Load(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Seed", got.Name)

	list, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.DefaultGroup, list[0].Group)
}

func TestMemoryStore_ListIsOrdered(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	for _, id := range []string{"s3", "s1", "s2"} {
		require.NoError(t, store.Save(ctx, id, &domain.Interaction{SessionID: id}))
	}
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids)
}
