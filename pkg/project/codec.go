package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aretw0/rcflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Export document metadata.
const (
	AppName       = "RC-Interactions Dialogue Architect"
	FormatVersion = "1.0"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a name or file extension to a Format. Unknown values map to JSON.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Export encodes p wrapped in the portable envelope.
func Export(p *domain.Project, format Format, now time.Time) ([]byte, error) {
	doc := domain.ExportDocument{
		Meta: domain.ExportMeta{
			Generated: domain.At(now),
			App:       AppName,
			Version:   FormatVersion,
		},
		Project: p,
	}

	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return data, nil
	}
}

var whitespace = regexp.MustCompile(`\s+`)

// ExportFilename derives a file name from a project name. Every whitespace
// run, leading and trailing ones included, becomes a single underscore.
func ExportFilename(name string, format Format) string {
	base := whitespace.ReplaceAllString(strings.ToLower(name), "_")
	if base == "" {
		base = "project"
	}
	return base + "." + string(format)
}

// Import decodes a document in any of the accepted shapes: the export
// envelope, a bare project, or a bare graph ({nodes, connections}), which is
// wrapped into a new project. The result is validated before it is returned.
func Import(data []byte, format Format, now time.Time) (*domain.Project, error) {
	raw, err := toJSON(data, format)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	var p *domain.Project
	switch {
	case fields["project"] != nil:
		var doc domain.ExportDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		p = doc.Project
	case fields["data"] != nil:
		p = &domain.Project{}
		if err := json.Unmarshal(raw, p); err != nil {
			return nil, fmt.Errorf("decode project: %w", err)
		}
	case fields["nodes"] != nil:
		var g domain.FlowGraph
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, fmt.Errorf("decode graph: %w", err)
		}
		p = New("Imported project", domain.DefaultGroup, now)
		p.Data = g
	default:
		return nil, fmt.Errorf("decode document: no project, data or nodes field")
	}

	if p == nil {
		return nil, fmt.Errorf("decode document: empty project")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = domain.At(now)
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// toJSON normalises YAML input to JSON so both formats share the JSON field names.
func toJSON(data []byte, format Format) ([]byte, error) {
	if format != FormatYAML {
		return data, nil
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return out, nil
}
