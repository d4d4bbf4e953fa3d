package memory

import (
	"context"
	"sync"

	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/tidwall/btree"
)

type projectItem struct {
	id      string
	project *domain.Project
}

func projectLess(a, b projectItem) bool {
	return a.id < b.id
}

// ProjectStore implements ports.ProjectStore in memory, ordered by project ID.
// Safe for concurrent use.
type ProjectStore struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[projectItem]
}

// NewProjectStore creates an empty store, optionally seeded with projects.
func NewProjectStore(seed ...*domain.Project) *ProjectStore {
	s := &ProjectStore{
		tree: btree.NewBTreeGOptions(projectLess, btree.Options{NoLocks: true}),
	}
	for _, p := range seed {
		s.tree.Set(projectItem{id: p.ID, project: p.Clone()})
	}
	return s
}

// Save stores a copy of the project.
func (s *ProjectStore) Save(ctx context.Context, project *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Set(projectItem{id: project.ID, project: project.Clone()})
	return nil
}

// Load returns a copy of the project.
func (s *ProjectStore) Load(ctx context.Context, projectID string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.tree.Get(projectItem{id: projectID})
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return item.project.Clone(), nil
}

// Delete removes the project.
func (s *ProjectStore) Delete(ctx context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Delete(projectItem{id: projectID})
	return nil
}

// List returns project summaries ordered by ID.
func (s *ProjectStore) List(ctx context.Context) ([]domain.ProjectSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ProjectSummary, 0, s.tree.Len())
	s.tree.Scan(func(item projectItem) bool {
		out = append(out, item.project.Summary())
		return true
	})
	return out, nil
}
