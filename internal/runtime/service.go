// Package runtime drives player interactions over dialogue projects: it
// starts sessions at the START node, applies choices and reports lifecycle
// events while the pure traversal in pkg/flow does the walking.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/rcflow/internal/logging"
	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/flow"
)

// Close reasons reported in domain.Outcome.Reason and interaction events.
const (
	ReasonEnd       = "end"
	ReasonNoPath    = "no_path"
	ReasonCancelled = "cancelled"
)

// Service advances interactions. It holds no per-session state and is safe
// for concurrent use; callers serialize access to a single interaction.
type Service struct {
	logger        *slog.Logger
	hooks         domain.LifecycleHooks
	maxIterations int
	initialMemory domain.GameMemory
	now           func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(s *Service) {
		s.hooks = s.hooks.Merge(h)
	}
}

// WithMaxIterations bounds each traversal. Non-positive values keep flow.DefaultMaxIterations.
func WithMaxIterations(n int) Option {
	return func(s *Service) {
		s.maxIterations = n
	}
}

// WithInitialMemory seeds the memory of every new interaction.
func WithInitialMemory(m domain.GameMemory) Option {
	return func(s *Service) {
		s.initialMemory = m.Clone()
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a Service.
func New(opts ...Option) *Service {
	s := &Service{
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens an interaction on project p and runs it up to the first
// Dialogue or End node. A graph that never reaches one fails with
// domain.ErrNoPath and no interaction is created.
func (s *Service) Start(ctx context.Context, p *domain.Project, sessionID string) (*domain.Outcome, error) {
	start, ok := p.Data.StartNode()
	if !ok {
		return nil, fmt.Errorf("project %s: %w", p.ID, domain.ErrNoStartNode)
	}

	it := domain.NewInteraction(sessionID, p.ID, s.initialMemory, s.now())

	outcome := s.advance(ctx, p, it, start.ID)
	if outcome.Closed && outcome.Reason == ReasonNoPath {
		return nil, fmt.Errorf("project %s from %s: %w", p.ID, start.ID, domain.ErrNoPath)
	}

	s.logger.Info("interaction started", "session", sessionID, "project", p.ID, "node", it.CurrentNodeID)
	if s.hooks.OnInteractionStart != nil {
		s.hooks.OnInteractionStart(ctx, &domain.InteractionEvent{
			EventBase: s.event(domain.EventInteractionStart, sessionID),
			ProjectID: p.ID,
			NodeID:    it.CurrentNodeID,
		})
	}
	if outcome.Closed {
		s.emitClose(ctx, it, outcome.Reason)
	}
	return outcome, nil
}

// Select applies the player's choice on the current Dialogue node and runs the
// flow to the next Dialogue or End node. The input interaction is not
// modified; the outcome carries the updated copy.
func (s *Service) Select(ctx context.Context, p *domain.Project, it *domain.Interaction, nodeID, choiceID string) (*domain.Outcome, error) {
	if it.Status != domain.StatusActive {
		return nil, fmt.Errorf("session %s: %w", it.SessionID, domain.ErrInteractionClosed)
	}
	if nodeID != it.CurrentNodeID {
		return nil, fmt.Errorf("session %s is at %s, not %s: %w", it.SessionID, it.CurrentNodeID, nodeID, domain.ErrStaleNode)
	}
	node, ok := p.Data.Node(nodeID)
	if !ok {
		return nil, fmt.Errorf("node %s: %w", nodeID, domain.ErrNodeNotFound)
	}
	choice, ok := node.Choice(choiceID)
	if !ok {
		return nil, fmt.Errorf("node %s choice %s: %w", nodeID, choiceID, domain.ErrChoiceNotFound)
	}

	next := it.Clone()

	s.logger.Debug("choice selected", "session", it.SessionID, "node", nodeID, "choice", choiceID)

	target := choiceTarget(&p.Data, nodeID, choice)
	var outcome *domain.Outcome
	if target == "" {
		next.UpdatedAt = s.now()
		outcome = s.close(next, ReasonNoPath, nil)
	} else {
		outcome = s.advance(ctx, p, next, target)
	}

	if outcome.Closed {
		s.emitClose(ctx, next, outcome.Reason)
	}
	return outcome, nil
}

// Cancel closes an interaction on behalf of the host.
func (s *Service) Cancel(ctx context.Context, it *domain.Interaction) *domain.Outcome {
	next := it.Clone()
	next.UpdatedAt = s.now()
	outcome := s.close(next, ReasonCancelled, nil)
	s.emitClose(ctx, next, ReasonCancelled)
	return outcome
}

// Traverse runs a stateless traversal from startID, firing node and variable
// hooks. Writes go to mem.
func (s *Service) Traverse(ctx context.Context, g *domain.FlowGraph, startID string, mem domain.GameMemory) flow.Result {
	return s.walk(ctx, "", g, startID, mem)
}

// choiceTarget prefers the edge leaving through the choice's port and falls
// back to the choice's recorded next node.
func choiceTarget(g *domain.FlowGraph, nodeID string, c *domain.Choice) string {
	for _, conn := range g.Outgoing(nodeID) {
		if conn.FromPort == c.ID {
			return conn.ToNodeID
		}
	}
	if c.NextNodeID != nil {
		return *c.NextNodeID
	}
	return ""
}

func (s *Service) advance(ctx context.Context, p *domain.Project, it *domain.Interaction, from string) *domain.Outcome {
	before := it.Memory.Clone()
	res := s.walk(ctx, it.SessionID, &p.Data, from, it.Memory)
	it.UpdatedAt = s.now()
	delta := domain.MemoryDiff(before, it.Memory)

	if !res.Found {
		s.logger.Warn("traversal found no path",
			"session", it.SessionID, "project", p.ID, "from", from, "reason", res.Reason, "steps", res.Steps)
		return s.close(it, ReasonNoPath, delta)
	}

	it.CurrentNodeID = res.NodeID
	it.History = append(it.History, res.NodeID)

	node, _ := p.Data.Node(res.NodeID)
	if node.Kind == domain.KindEnd {
		return s.close(it, ReasonEnd, delta)
	}

	return &domain.Outcome{
		Interaction: it,
		View:        domain.NewDialogueView(p.ID, node),
		MemoryDelta: delta,
	}
}

func (s *Service) close(it *domain.Interaction, reason string, delta map[string]any) *domain.Outcome {
	it.Status = domain.StatusClosed
	return &domain.Outcome{
		Interaction: it,
		Closed:      true,
		Reason:      reason,
		MemoryDelta: delta,
	}
}

func (s *Service) walk(ctx context.Context, sessionID string, g *domain.FlowGraph, startID string, mem domain.GameMemory) flow.Result {
	observer := func(step flow.Step) {
		s.logger.Debug("node visited", "session", sessionID, "node", step.NodeID, "kind", step.Kind, "port", step.Port)
		if s.hooks.OnNodeEnter != nil {
			s.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
				EventBase: s.event(domain.EventNodeEnter, sessionID),
				NodeID:    step.NodeID,
				NodeKind:  step.Kind,
				Port:      step.Port,
			})
		}
		if step.Variable != "" && s.hooks.OnVariableSet != nil {
			s.hooks.OnVariableSet(ctx, &domain.VariableEvent{
				EventBase: s.event(domain.EventVariableSet, sessionID),
				NodeID:    step.NodeID,
				Variable:  step.Variable,
				Value:     step.Value,
			})
		}
	}

	res := flow.Walk(g, startID, mem, flow.WithMaxIterations(s.maxIterations), flow.WithObserver(observer))

	if s.hooks.OnTraversalEnd != nil {
		s.hooks.OnTraversalEnd(ctx, &domain.TraversalEvent{
			EventBase:   s.event(domain.EventTraversalEnd, sessionID),
			StartNodeID: startID,
			NodeID:      res.NodeID,
			Found:       res.Found,
			Reason:      string(res.Reason),
			Steps:       res.Steps,
		})
	}
	return res
}

func (s *Service) emitClose(ctx context.Context, it *domain.Interaction, reason string) {
	s.logger.Info("interaction closed", "session", it.SessionID, "project", it.ProjectID, "reason", reason)
	if s.hooks.OnInteractionClose != nil {
		s.hooks.OnInteractionClose(ctx, &domain.InteractionEvent{
			EventBase: s.event(domain.EventInteractionClose, it.SessionID),
			ProjectID: it.ProjectID,
			NodeID:    it.CurrentNodeID,
			Reason:    reason,
		})
	}
}

func (s *Service) event(t domain.EventType, sessionID string) domain.EventBase {
	return domain.EventBase{Timestamp: s.now(), Type: t, SessionID: sessionID}
}
