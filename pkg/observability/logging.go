package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/rcflow/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that write one structured line per event.
// Node visits are logged at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_enter",
				"session", e.SessionID,
				"node_id", e.NodeID,
				"kind", e.NodeKind,
				"port", e.Port,
			)
		},
		OnVariableSet: func(ctx context.Context, e *domain.VariableEvent) {
			logger.InfoContext(ctx, "variable_set",
				"session", e.SessionID,
				"node_id", e.NodeID,
				"variable", e.Variable,
			)
		},
		OnTraversalEnd: func(ctx context.Context, e *domain.TraversalEvent) {
			level := slog.LevelDebug
			if !e.Found {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "traversal_end",
				"session", e.SessionID,
				"from", e.StartNodeID,
				"node_id", e.NodeID,
				"reason", e.Reason,
				"steps", e.Steps,
			)
		},
		OnInteractionStart: func(ctx context.Context, e *domain.InteractionEvent) {
			logger.InfoContext(ctx, "interaction_start", "session", e.SessionID, "project", e.ProjectID)
		},
		OnInteractionClose: func(ctx context.Context, e *domain.InteractionEvent) {
			logger.InfoContext(ctx, "interaction_close", "session", e.SessionID, "project", e.ProjectID, "reason", e.Reason)
		},
	}
}
