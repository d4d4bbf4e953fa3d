// Package project manages dialogue projects: creation, grouping, document
// validation and import/export of the portable project format.
package project

import (
	"time"

	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/google/uuid"
)

// Seed node of every new project.
const (
	SeedNodeID = "start"
	seedX      = 100
	seedY      = 100
)

// NewID returns a fresh project identifier.
func NewID() string {
	return "proj_" + uuid.NewString()
}

// New creates a project whose graph holds a single Start node.
func New(name, group string, now time.Time) *domain.Project {
	if group == "" {
		group = domain.DefaultGroup
	}
	ts := domain.At(now)
	return &domain.Project{
		ID:        NewID(),
		Name:      name,
		Group:     group,
		CreatedAt: ts,
		UpdatedAt: ts,
		Data: domain.FlowGraph{
			Nodes: []domain.Node{{
				ID:       SeedNodeID,
				Kind:     domain.KindStart,
				Position: domain.Position{X: seedX, Y: seedY},
				Data: domain.NodeData{
					Coords: &domain.WorldCoords{},
					Model:  "a_m_y_business_01",
				},
			}},
			Connections: []domain.Connection{},
		},
	}
}
