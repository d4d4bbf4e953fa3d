package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/aretw0/rcflow/pkg/domain"
)

// ProjectStore implements ports.ProjectStore with one <id>.json document per
// project, in the same shape the HTTP API returns.
type ProjectStore struct {
	dir docDir
}

// NewProjectStore creates a ProjectStore in basePath, or in .rcflow/projects
// when it is empty.
func NewProjectStore(basePath string) *ProjectStore {
	if basePath == "" {
		basePath = filepath.Join(".rcflow", "projects")
	}
	return &ProjectStore{dir: docDir(basePath)}
}

func (s *ProjectStore) Save(_ context.Context, project *domain.Project) error {
	if err := s.dir.write(project.ID, project); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

func (s *ProjectStore) Load(_ context.Context, projectID string) (*domain.Project, error) {
	var p domain.Project
	err := s.dir.read(projectID, &p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	return &p, nil
}

func (s *ProjectStore) Delete(_ context.Context, projectID string) error {
	if err := s.dir.remove(projectID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// List decodes every document; summaries come back ordered by ID.
func (s *ProjectStore) List(ctx context.Context) ([]domain.ProjectSummary, error) {
	ids, err := s.dir.ids()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	out := make([]domain.ProjectSummary, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Summary())
	}
	return out, nil
}
