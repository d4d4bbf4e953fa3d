package project

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/rcflow/pkg/adapters/memory"
	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog() (*Catalog, *time.Time) {
	now := fixedNow
	c := NewCatalog(memory.NewProjectStore(), WithClock(func() time.Time { return now }))
	return c, &now
}

func TestCatalog_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCatalog()

	p, err := c.Create(ctx, "  Docks  ", "Harbor")
	require.NoError(t, err)
	assert.Equal(t, "Docks", p.Name)
	assert.Equal(t, "Harbor", p.Group)

	got, err := c.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = c.Create(ctx, "   ", "")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestCatalog_SaveTouches(t *testing.T) {
	ctx := context.Background()
	c, now := newTestCatalog()

	p, err := c.Create(ctx, "Docks", "")
	require.NoError(t, err)

	*now = now.Add(time.Minute)
	p.Data.Nodes = append(p.Data.Nodes, domain.Node{ID: "end", Kind: domain.KindEnd})
	require.NoError(t, c.Save(ctx, p))

	got, err := c.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.At(fixedNow), got.CreatedAt)
	assert.Equal(t, domain.At(*now), got.UpdatedAt)
	assert.Len(t, got.Data.Nodes, 2)

	p.Data.Nodes = append(p.Data.Nodes, domain.Node{ID: "bad", Kind: "PORTAL"})
	assert.Error(t, c.Save(ctx, p))
}

func TestCatalog_RenameMoveDelete(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCatalog()

	p, err := c.Create(ctx, "Docks", "")
	require.NoError(t, err)

	renamed, err := c.Rename(ctx, p.ID, "Harbor Job")
	require.NoError(t, err)
	assert.Equal(t, "Harbor Job", renamed.Name)

	moved, err := c.Move(ctx, p.ID, "Missions")
	require.NoError(t, err)
	assert.Equal(t, "Missions", moved.Group)

	_, err = c.Rename(ctx, "proj_missing", "x")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	require.NoError(t, c.Delete(ctx, p.ID))
	_, err = c.Get(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestCatalog_Groups(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCatalog()

	_, err := c.Create(ctx, "A", "Zeta")
	require.NoError(t, err)
	_, err = c.Create(ctx, "B", "")
	require.NoError(t, err)
	require.NoError(t, c.CreateGroup("Alpha"))
	assert.Error(t, c.CreateGroup(" "))

	groups, err := c.Groups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.DefaultGroup, "Alpha", "Zeta"}, groups)
}

func TestCatalog_DeleteGroup(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCatalog()

	p, err := c.Create(ctx, "A", "Zeta")
	require.NoError(t, err)

	err = c.DeleteGroup(ctx, domain.DefaultGroup)
	assert.ErrorIs(t, err, domain.ErrProtectedGroup)

	require.NoError(t, c.DeleteGroup(ctx, "Zeta"))

	got, err := c.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultGroup, got.Group)

	groups, err := c.Groups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.DefaultGroup}, groups)
}
