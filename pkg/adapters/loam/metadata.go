package loam

// ProjectMetadata is the frontmatter of a project document.
// The document body carries free-form notes about the project.
//
// Timestamps are written as ISO-8601 strings but decoded as any: hand-written
// documents may carry Unix milliseconds, which strict Loam returns as
// json.Number. The graph is kept as a generic map and decoded with the JSON
// field names of the domain types.
type ProjectMetadata struct {
	ID        string         `json:"id" mapstructure:"id"`
	Name      string         `json:"name" mapstructure:"name"`
	Group     string         `json:"group,omitempty" mapstructure:"group"`
	CreatedAt any            `json:"created_at" mapstructure:"created_at"`
	UpdatedAt any            `json:"updated_at" mapstructure:"updated_at"`
	Graph     map[string]any `json:"graph" mapstructure:"graph"`
}
