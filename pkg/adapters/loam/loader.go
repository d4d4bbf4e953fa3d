// Package loam reads and writes projects as Markdown documents with YAML
// frontmatter, using the Loam document store. A directory of projects can be
// versioned and reviewed like any other text content.
package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Source adapts a Loam repository to ports.ProjectSource.
type Source struct {
	Repo *loam.TypedRepository[ProjectMetadata]
}

// New wraps an existing typed repository.
func New(repo *loam.TypedRepository[ProjectMetadata]) *Source {
	return &Source{Repo: repo}
}

// Open initializes a Loam repository rooted at dir. Strict mode is always on
// so JSON and YAML documents yield the same numeric types.
func Open(dir string, opts ...loam.Option) (*Source, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath, append([]loam.Option{loam.WithStrict(true)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[ProjectMetadata](repo)), nil
}

// Load reads the project document with the given ID.
func (s *Source) Load(ctx context.Context, projectID string) (*domain.Project, error) {
	doc, err := s.Repo.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w: %w", projectID, domain.ErrProjectNotFound, err)
	}

	id := doc.Data.ID
	if id == "" {
		id = trimExtension(doc.ID)
	}
	return toProject(id, doc.Data)
}

// Save writes the project as a document named after its ID.
func (s *Source) Save(ctx context.Context, p *domain.Project) error {
	graph, err := graphToMap(p.Data)
	if err != nil {
		return err
	}
	err = s.Repo.Save(ctx, &loam.DocumentModel[ProjectMetadata]{
		ID:      p.ID,
		Content: "# " + p.Name + "\n",
		Data: ProjectMetadata{
			ID:        p.ID,
			Name:      p.Name,
			Group:     p.Group,
			CreatedAt: p.CreatedAt.String(),
			UpdatedAt: p.UpdatedAt.String(),
			Graph:     graph,
		},
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", p.ID, err)
	}
	return nil
}

// List returns a summary of every project document, ordered by ID.
// Two documents resolving to the same project ID are reported as an error.
func (s *Source) List(ctx context.Context) ([]domain.ProjectSummary, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	out := make([]domain.ProjectSummary, 0, len(docs))
	for _, doc := range docs {
		id := doc.Data.ID
		if id == "" {
			id = trimExtension(doc.ID)
		}
		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: project '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID

		p, err := toProject(id, doc.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Summary())
	}
	slices.SortFunc(out, func(a, b domain.ProjectSummary) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Watch emits the ID of every project document that changes on disk.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func toProject(id string, meta ProjectMetadata) (*domain.Project, error) {
	created, err := domain.ParseTimestamp(meta.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("project %s: created_at: %w", id, err)
	}
	updated, err := domain.ParseTimestamp(meta.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("project %s: updated_at: %w", id, err)
	}

	p := &domain.Project{
		ID:        id,
		Name:      meta.Name,
		Group:     meta.Group,
		CreatedAt: created,
		UpdatedAt: updated,
	}
	if err := decodeGraph(meta.Graph, &p.Data); err != nil {
		return nil, fmt.Errorf("project %s: %w", id, err)
	}
	return p, nil
}

// decodeGraph maps a frontmatter graph onto domain.FlowGraph using the JSON
// field names, accepting json.Number wherever a float or string is expected.
func decodeGraph(raw map[string]any, out *domain.FlowGraph) error {
	if raw == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("graph decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decode graph: %w", err)
	}
	return nil
}

func graphToMap(g domain.FlowGraph) (map[string]any, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}
	return out, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
