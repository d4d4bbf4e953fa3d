package project

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/rcflow/internal/logging"
	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/ports"
)

// Catalog manages projects and the groups they are filed under.
// Groups exist either because a project uses them or because they were
// created explicitly; DefaultGroup always exists.
type Catalog struct {
	store  ports.ProjectStore
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	groups map[string]struct{}
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithCatalogLogger sets the logger used for catalog operations.
func WithCatalogLogger(l *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		c.logger = l
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) CatalogOption {
	return func(c *Catalog) {
		c.now = now
	}
}

// NewCatalog creates a catalog over store.
func NewCatalog(store ports.ProjectStore, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		store:  store,
		logger: logging.NewNop(),
		now:    time.Now,
		groups: map[string]struct{}{domain.DefaultGroup: {}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the underlying project store.
func (c *Catalog) Store() ports.ProjectStore {
	return c.store
}

// Create stores a new project seeded with a Start node.
func (c *Catalog) Create(ctx context.Context, name, group string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Fields: []FieldError{{Field: "name", Message: "field is required"}}}
	}
	p := New(name, group, c.now())
	if err := c.store.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	c.addGroup(p.Group)
	c.logger.Info("project created", "project", p.ID, "group", p.Group)
	return p, nil
}

// Get loads a project.
func (c *Catalog) Get(ctx context.Context, id string) (*domain.Project, error) {
	return c.store.Load(ctx, id)
}

// List returns every project summary.
func (c *Catalog) List(ctx context.Context) ([]domain.ProjectSummary, error) {
	return c.store.List(ctx)
}

// Save validates and stores a full project document, bumping UpdatedAt.
func (c *Catalog) Save(ctx context.Context, p *domain.Project) error {
	if err := Validate(p); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = domain.At(c.now())
	}
	p.Touch(c.now())
	if err := c.store.Save(ctx, p); err != nil {
		return fmt.Errorf("save project %s: %w", p.ID, err)
	}
	c.addGroup(p.GroupOrDefault())
	return nil
}

// Rename changes a project's display name.
func (c *Catalog) Rename(ctx context.Context, id, name string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Fields: []FieldError{{Field: "name", Message: "field is required"}}}
	}
	return c.update(ctx, id, func(p *domain.Project) { p.Name = name })
}

// Move files a project under another group, creating the group if needed.
func (c *Catalog) Move(ctx context.Context, id, group string) (*domain.Project, error) {
	group = strings.TrimSpace(group)
	if group == "" {
		group = domain.DefaultGroup
	}
	p, err := c.update(ctx, id, func(p *domain.Project) { p.Group = group })
	if err != nil {
		return nil, err
	}
	c.addGroup(group)
	return p, nil
}

// Delete removes a project.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	c.logger.Info("project deleted", "project", id)
	return nil
}

// Groups lists every group, DefaultGroup first and the rest sorted by name.
func (c *Catalog) Groups(ctx context.Context) ([]string, error) {
	summaries, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	c.mu.Lock()
	set := make(map[string]struct{}, len(c.groups)+len(summaries))
	for g := range c.groups {
		set[g] = struct{}{}
	}
	c.mu.Unlock()
	for _, s := range summaries {
		set[s.Group] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for g := range set {
		if g != domain.DefaultGroup {
			out = append(out, g)
		}
	}
	slices.Sort(out)
	return append([]string{domain.DefaultGroup}, out...), nil
}

// CreateGroup registers an empty group.
func (c *Catalog) CreateGroup(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Fields: []FieldError{{Field: "group", Message: "field is required"}}}
	}
	c.addGroup(name)
	return nil
}

// DeleteGroup removes a group and moves its projects to DefaultGroup.
func (c *Catalog) DeleteGroup(ctx context.Context, name string) error {
	if name == domain.DefaultGroup {
		return fmt.Errorf("delete group %q: %w", name, domain.ErrProtectedGroup)
	}

	summaries, err := c.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	for _, s := range summaries {
		if s.Group != name {
			continue
		}
		if _, err := c.update(ctx, s.ID, func(p *domain.Project) { p.Group = domain.DefaultGroup }); err != nil {
			return err
		}
	}

	c.mu.Lock()
	delete(c.groups, name)
	c.mu.Unlock()
	c.logger.Info("group deleted", "group", name)
	return nil
}

func (c *Catalog) update(ctx context.Context, id string, fn func(*domain.Project)) (*domain.Project, error) {
	p, err := c.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(p)
	p.Touch(c.now())
	if err := c.store.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save project %s: %w", id, err)
	}
	return p, nil
}

func (c *Catalog) addGroup(name string) {
	c.mu.Lock()
	c.groups[name] = struct{}{}
	c.mu.Unlock()
}
