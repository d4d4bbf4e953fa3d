package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/rcflow/pkg/adapters/file"
	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.SessionStore = (*file.Store)(nil)
	_ ports.ProjectStore = (*file.ProjectStore)(nil)
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, file.New(t.TempDir()))
}

func TestFileProjectStore_Contract(t *testing.T) {
	ports.RunProjectStoreContract(t, file.NewProjectStore(t.TempDir()))
}

func TestFileProjectStore_WritesReadableDocument(t *testing.T) {
	dir := t.TempDir()
	store := file.NewProjectStore(dir)
	ctx := context.Background()

	p := &domain.Project{ID: "proj_docks", Name: "Docks", Data: domain.FlowGraph{
		Nodes: []domain.Node{{ID: "start", Kind: domain.KindStart}},
	}}
	require.NoError(t, store.Save(ctx, p))

	raw, err := os.ReadFile(filepath.Join(dir, "proj_docks.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type": "START"`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestFileStores_RejectPathTraversal(t *testing.T) {
	ctx := context.Background()
	sessions := file.New(t.TempDir())
	projects := file.NewProjectStore(t.TempDir())

	assert.Error(t, sessions.Save(ctx, "../escape", domain.NewInteraction("x", "p", nil, time.Now())))
	_, err := sessions.Load(ctx, "")
	assert.Error(t, err)
	assert.Error(t, projects.Save(ctx, &domain.Project{ID: "a/b", Name: "x"}))
}

func TestFileStore_ListMissingDirectory(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "does-not-exist"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
