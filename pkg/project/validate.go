package project

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("nodekind", func(fl validator.FieldLevel) bool {
		return domain.NodeKind(fl.Field().String()).Valid()
	})
	validate.RegisterValidation("operator", func(fl validator.FieldLevel) bool {
		return domain.Operator(fl.Field().String()).Valid()
	})

	// Report fields by their document names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// FieldError is a single document problem.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every problem found in a project document.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid project: " + strings.Join(parts, "; ")
}

// Validate checks the document shape of a project: required identifiers,
// known node kinds and operators, complete connections and unique node IDs.
// Graph semantics (reachability, ports) are checked by the graph linter.
func Validate(p *domain.Project) error {
	if p == nil {
		return &ValidationError{Fields: []FieldError{{Field: "project", Message: "field is required"}}}
	}

	var fields []FieldError

	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate project: %w", err)
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   trimNamespace(fe.Namespace()),
				Message: message(fe),
			})
		}
	}

	seen := make(map[string]bool, len(p.Data.Nodes))
	for i, n := range p.Data.Nodes {
		if n.ID == "" {
			continue
		}
		if seen[n.ID] {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("data.nodes[%d].id", i),
				Message: fmt.Sprintf("duplicate node id %q", n.ID),
			})
		}
		seen[n.ID] = true
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func trimNamespace(ns string) string {
	// "Project.data.nodes[0].type" -> "data.nodes[0].type"
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "nodekind":
		return fmt.Sprintf("unknown node type %q", fe.Value())
	case "operator":
		return fmt.Sprintf("unknown condition operator %q", fe.Value())
	default:
		return fmt.Sprintf("validation failed: %s", fe.Tag())
	}
}
