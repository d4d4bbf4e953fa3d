package ports

import (
	"context"

	"github.com/aretw0/rcflow/pkg/domain"
)

// ProjectSource is a read-only origin of project documents, such as a
// versioned content repository. Hosts can mirror its projects into a
// ProjectStore or serve interactions from it directly.
type ProjectSource interface {
	// Load retrieves a project by ID.
	// Returns domain.ErrProjectNotFound if the project does not exist.
	Load(ctx context.Context, projectID string) (*domain.Project, error)
}
