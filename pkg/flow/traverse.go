package flow

import "github.com/aretw0/rcflow/pkg/domain"

// DefaultMaxIterations bounds the number of nodes a single traversal may visit.
const DefaultMaxIterations = 100

// StopReason explains why a traversal ended.
type StopReason string

const (
	// ReasonPresentational: a Dialogue or End node was reached.
	ReasonPresentational StopReason = "presentational"
	// ReasonMissingNode: the current ID does not resolve to a node.
	ReasonMissingNode StopReason = "missing_node"
	// ReasonDeadEnd: no usable outgoing connection, or the connection dangles.
	ReasonDeadEnd StopReason = "dead_end"
	// ReasonUnknownKind: the node kind is not one the engine understands.
	ReasonUnknownKind StopReason = "unknown_kind"
	// ReasonIterationLimit: the step budget ran out, usually a cycle.
	ReasonIterationLimit StopReason = "iteration_limit"
)

// Result is the full outcome of a traversal.
type Result struct {
	NodeID string
	Found  bool
	Reason StopReason
	Steps  int
}

// Step describes a single visited node. Port is the port taken when leaving
// it ("" for presentational nodes or when leaving through any port).
type Step struct {
	Index    int
	NodeID   string
	Kind     domain.NodeKind
	Port     string
	Variable string // set when a SetVariable node wrote memory
	Value    string
}

// Observer receives every visited node in order.
type Observer func(Step)

type config struct {
	maxIterations int
	observer      Observer
}

// Option configures a traversal.
type Option func(*config)

// WithMaxIterations overrides DefaultMaxIterations. Non-positive values keep the default.
func WithMaxIterations(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithObserver registers a callback invoked for every visited node.
func WithObserver(o Observer) Option {
	return func(c *config) {
		c.observer = o
	}
}

// TraverseLogic walks g from startID and returns the ID of the first Dialogue
// or End node reached. SetVariable nodes write into mem along the way.
// It reports false for a broken flow: a missing node, a missing branch, an
// unknown node kind, or a path longer than the iteration limit.
func TraverseLogic(g *domain.FlowGraph, startID string, mem domain.GameMemory, opts ...Option) (string, bool) {
	res := Walk(g, startID, mem, opts...)
	return res.NodeID, res.Found
}

// Walk is TraverseLogic with diagnostics.
func Walk(g *domain.FlowGraph, startID string, mem domain.GameMemory, opts ...Option) Result {
	cfg := config{maxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(&cfg)
	}

	current := startID
	for steps := 0; steps < cfg.maxIterations; steps++ {
		node, ok := g.Node(current)
		if !ok {
			return Result{Reason: ReasonMissingNode, Steps: steps}
		}

		step := Step{Index: steps, NodeID: node.ID, Kind: node.Kind}
		port := ""

		switch p := node.Payload().(type) {
		case domain.DialoguePayload, domain.EndPayload:
			cfg.notify(step)
			return Result{NodeID: node.ID, Found: true, Reason: ReasonPresentational, Steps: steps + 1}

		case domain.SetVariablePayload:
			if p.Variable != "" && mem != nil {
				mem[p.Variable] = p.Value
				step.Variable, step.Value = p.Variable, p.Value
			}

		case domain.ConditionPayload:
			port = domain.PortFalse
			if EvaluateCondition(p.Variable, p.Operator, p.CompareValue, mem) {
				port = domain.PortTrue
			}

		case domain.StartPayload, domain.EventPayload:
			// pass through

		default:
			cfg.notify(step)
			return Result{Reason: ReasonUnknownKind, Steps: steps + 1}
		}

		step.Port = port
		cfg.notify(step)

		next, ok := FindNextNode(g, node.ID, port)
		if !ok {
			return Result{Reason: ReasonDeadEnd, Steps: steps + 1}
		}
		current = next.ID
	}

	return Result{Reason: ReasonIterationLimit, Steps: cfg.maxIterations}
}

func (c *config) notify(s Step) {
	if c.observer != nil {
		c.observer(s)
	}
}
