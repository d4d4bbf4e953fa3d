package ports

import (
	"context"

	"github.com/aretw0/rcflow/pkg/domain"
)

// ProjectStore persists project documents.
type ProjectStore interface {
	ProjectSource

	// Save creates or replaces a project.
	Save(ctx context.Context, project *domain.Project) error

	// Delete removes a project. Deleting a missing project is not an error.
	Delete(ctx context.Context, projectID string) error

	// List returns a summary of every project, ordered by ID.
	List(ctx context.Context) ([]domain.ProjectSummary, error)
}

// SessionStore persists runtime interactions.
// This allows a player's dialogue to survive process restarts and to be
// served by any replica.
type SessionStore interface {
	// Save persists the interaction for a given session ID.
	Save(ctx context.Context, sessionID string, interaction *domain.Interaction) error

	// Load retrieves the interaction for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Interaction, error)

	// Delete removes the interaction for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
