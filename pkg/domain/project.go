package domain

import "time"

// DefaultGroup is the group every project falls back to. It cannot be deleted.
const DefaultGroup = "General"

// Project is a named, grouped dialogue graph.
// Timestamps are written as ISO-8601 strings; Unix milliseconds are still read.
type Project struct {
	ID        string    `json:"id" yaml:"id" validate:"required"`
	Name      string    `json:"name" yaml:"name" validate:"required"`
	Group     string    `json:"group,omitempty" yaml:"group,omitempty"`
	CreatedAt Timestamp `json:"createdAt" yaml:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt" yaml:"updatedAt"`
	Data      FlowGraph `json:"data" yaml:"data"`
}

// GroupOrDefault returns the project's group, or DefaultGroup when unset.
func (p *Project) GroupOrDefault() string {
	if p.Group == "" {
		return DefaultGroup
	}
	return p.Group
}

// Touch bumps UpdatedAt to t.
func (p *Project) Touch(t time.Time) {
	p.UpdatedAt = At(t)
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	out.Data = p.Data.Clone()
	return &out
}

// ProjectSummary is the lightweight listing form of a project.
type ProjectSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Group     string    `json:"group"`
	UpdatedAt Timestamp `json:"updatedAt"`
	Nodes     int       `json:"nodes"`
}

// Summary returns the listing form of the project.
func (p *Project) Summary() ProjectSummary {
	return ProjectSummary{
		ID:        p.ID,
		Name:      p.Name,
		Group:     p.GroupOrDefault(),
		UpdatedAt: p.UpdatedAt,
		Nodes:     len(p.Data.Nodes),
	}
}

// ExportMeta describes an exported project document.
type ExportMeta struct {
	Generated Timestamp `json:"generated" yaml:"generated"`
	App       string    `json:"app" yaml:"app"`
	Version   string    `json:"version" yaml:"version"`
}

// ExportDocument is the portable envelope of a single project.
type ExportDocument struct {
	Meta    ExportMeta `json:"meta" yaml:"meta"`
	Project *Project   `json:"project" yaml:"project"`
}
