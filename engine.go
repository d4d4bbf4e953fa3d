package rcflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/rcflow/internal/logging"
	"github.com/aretw0/rcflow/internal/runtime"
	"github.com/aretw0/rcflow/pkg/adapters/memory"
	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/flow"
	"github.com/aretw0/rcflow/pkg/persistence/middleware"
	"github.com/aretw0/rcflow/pkg/ports"
	"github.com/aretw0/rcflow/pkg/project"
	"github.com/aretw0/rcflow/pkg/session"
	"github.com/google/uuid"
)

// Engine is the high-level entry point for the rcflow library.
// It ties projects, the runtime service and session persistence together.
type Engine struct {
	projects *project.Catalog
	sessions *session.Manager
	runtime  *runtime.Service

	projectStore ports.ProjectStore
	sessionStore ports.SessionStore
	locker       ports.DistributedLocker
	middlewares  []middleware.Middleware
	hooks        domain.LifecycleHooks
	logger       *slog.Logger

	maxIterations int
	initialMemory domain.GameMemory
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithProjectStore sets where projects are kept. Defaults to an in-memory store.
func WithProjectStore(s ports.ProjectStore) Option {
	return func(e *Engine) {
		e.projectStore = s
	}
}

// WithSessionStore sets where interactions are kept. Defaults to an in-memory store.
func WithSessionStore(s ports.SessionStore) Option {
	return func(e *Engine) {
		e.sessionStore = s
	}
}

// WithLocker adds a distributed lock around every session operation.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls merge.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithMaxIterations overrides the traversal loop guard.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		e.maxIterations = n
	}
}

// WithInitialMemory sets the memory every new interaction starts with.
func WithInitialMemory(m domain.GameMemory) Option {
	return func(e *Engine) {
		e.initialMemory = m
	}
}

// WithSessionEncryption encrypts stored interactions with AES-256-GCM.
// activeKey must be 32 bytes; fallbackKeys are tried on read to allow rotation.
func WithSessionEncryption(activeKey []byte, fallbackKeys ...[]byte) Option {
	return WithSessionMiddleware(middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    activeKey,
		FallbackKeys: fallbackKeys,
	}))
}

// WithSessionRedaction masks memory keys matching any of the patterns before
// interactions are stored.
func WithSessionRedaction(patterns ...string) Option {
	return WithSessionMiddleware(middleware.NewRedactMiddleware(patterns))
}

// WithSessionMiddleware wraps the session store. Middlewares apply in the
// order given, the first one seeing the interaction first.
func WithSessionMiddleware(mws ...middleware.Middleware) Option {
	return func(e *Engine) {
		e.middlewares = append(e.middlewares, mws...)
	}
}

// New initializes an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:        logging.NewNop(),
		maxIterations: flow.DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.projectStore == nil {
		e.projectStore = memory.NewProjectStore()
	}
	if e.sessionStore == nil {
		e.sessionStore = memory.NewStore()
	}

	store := middleware.Chain(e.sessionStore, e.middlewares...)

	sessionOpts := []session.Option{session.WithLogger(e.logger)}
	if e.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(e.locker))
	}

	e.projects = project.NewCatalog(e.projectStore, project.WithCatalogLogger(e.logger))
	e.sessions = session.NewManager(store, sessionOpts...)
	e.runtime = runtime.New(
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithMaxIterations(e.maxIterations),
		runtime.WithInitialMemory(e.initialMemory),
	)
	return e
}

// Projects returns the project catalog.
func (e *Engine) Projects() *project.Catalog {
	return e.projects
}

// Sessions returns the session manager.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// StartInteraction opens a session on a project and runs it to the first
// Dialogue or End node. An empty sessionID gets a generated one. An
// interaction that closes immediately is not stored.
func (e *Engine) StartInteraction(ctx context.Context, projectID, sessionID string) (*domain.Outcome, error) {
	p, err := e.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var outcome *domain.Outcome
	_, _, err = e.sessions.LoadOrStart(ctx, sessionID, func(ctx context.Context) (*domain.Interaction, error) {
		var err error
		outcome, err = e.runtime.Start(ctx, p, sessionID)
		if err != nil {
			return nil, err
		}
		return outcome.Interaction, nil
	})
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrSessionExists)
	}
	return outcome, nil
}

// SelectChoice applies a choice on the session's current Dialogue node.
// The session is deleted once the interaction closes.
func (e *Engine) SelectChoice(ctx context.Context, sessionID, nodeID, choiceID string) (*domain.Outcome, error) {
	var outcome *domain.Outcome
	_, err := e.sessions.Update(ctx, sessionID, func(ctx context.Context, it *domain.Interaction) (*domain.Interaction, error) {
		p, err := e.projects.Get(ctx, it.ProjectID)
		if err != nil {
			return nil, err
		}
		outcome, err = e.runtime.Select(ctx, p, it, nodeID, choiceID)
		if err != nil {
			return nil, err
		}
		return outcome.Interaction, nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// CancelInteraction closes a session on the player's request and deletes it.
func (e *Engine) CancelInteraction(ctx context.Context, sessionID string) (*domain.Outcome, error) {
	var outcome *domain.Outcome
	_, err := e.sessions.Update(ctx, sessionID, func(ctx context.Context, it *domain.Interaction) (*domain.Interaction, error) {
		outcome = e.runtime.Cancel(ctx, it)
		return outcome.Interaction, nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// GetInteraction loads an active session with the view of its current node.
func (e *Engine) GetInteraction(ctx context.Context, sessionID string) (*domain.Outcome, error) {
	it, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	outcome := &domain.Outcome{Interaction: it}

	p, err := e.projects.Get(ctx, it.ProjectID)
	switch {
	case errors.Is(err, domain.ErrProjectNotFound):
		return outcome, nil
	case err != nil:
		return nil, err
	}
	if n, ok := p.Data.Node(it.CurrentNodeID); ok && n.Kind == domain.KindDialogue {
		outcome.View = domain.NewDialogueView(p.ID, n)
	}
	return outcome, nil
}

// Traverse runs the flow from startID without any session. mem is mutated
// in place by SetVariable nodes; pass a copy to keep the original.
func (e *Engine) Traverse(ctx context.Context, g *domain.FlowGraph, startID string, mem domain.GameMemory) flow.Result {
	return e.runtime.Traverse(ctx, g, startID, mem)
}
