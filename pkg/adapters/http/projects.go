package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aretw0/rcflow/internal/presentation/graph"
	"github.com/aretw0/rcflow/internal/validator"
	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/project"
)

// maxDocumentSize bounds imported documents.
const maxDocumentSize = 8 << 20

type createProjectRequest struct {
	Name  string `json:"name"`
	Group string `json:"group"`
}

type moveProjectRequest struct {
	Group string `json:"group"`
}

type groupRequest struct {
	Name string `json:"name"`
}

// ListProjects handles GET /projects.
func (s *Server) ListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.Engine.Projects().List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.ProjectSummary{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

// CreateProject handles POST /projects.
func (s *Server) CreateProject(w http.ResponseWriter, r *http.Request) {
	var body createProjectRequest
	if err := decode(r, &body); err != nil {
		s.badRequest(w, r, "invalid request body", err)
		return
	}
	p, err := s.Engine.Projects().Create(r.Context(), body.Name, body.Group)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, p)
}

// GetProject handles GET /projects/{id}.
func (s *Server) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathParam(w, r, "id")
	if !ok {
		return
	}
	p, err := s.Engine.Projects().Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// ReplaceProject handles PUT /projects/{id}. The path ID wins over the body.
func (s *Server) ReplaceProject(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathParam(w, r, "id")
	if !ok {
		return
	}
	var p domain.Project
	if err := decode(r, &p); err != nil {
		s.badRequest(w, r, "invalid project document", err)
		return
	}
	p.ID = id
	if err := s.Engine.Projects().Save(r.Context(), &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, &p)
}

// DeleteProject handles DELETE /projects/{id}.
func (s *Server) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.Engine.Projects().Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveProject handles POST /projects/{id}/move.
func (s *Server) MoveProject(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathParam(w, r, "id")
	if !ok {
		return
	}
	var body moveProjectRequest
	if err := decode(r, &body); err != nil {
		s.badRequest(w, r, "invalid request body", err)
		return
	}
	p, err := s.Engine.Projects().Move(r.Context(), id, body.Group)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// ExportProject handles GET /projects/{id}/export?format=json|yaml.
func (s *Server) ExportProject(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathParam(w, r, "id")
	if !ok {
		return
	}
	p, err := s.Engine.Projects().Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	raw, ok := s.queryParam(w, r, "format")
	if !ok {
		return
	}
	format := project.ParseFormat(raw)
	data, err := project.Export(p, format, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	contentType := "application/json"
	if format == project.FormatYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", project.ExportFilename(p.Name, format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ImportProject handles POST /projects/import?format=json|yaml.
// The body is the raw document.
func (s *Server) ImportProject(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		s.badRequest(w, r, "could not read document", err)
		return
	}

	raw, ok := s.queryParam(w, r, "format")
	if !ok {
		return
	}
	format := project.ParseFormat(raw)
	if raw == "" && r.Header.Get("Content-Type") == "application/yaml" {
		format = project.FormatYAML
	}

	p, err := project.Import(data, format, s.now())
	if err != nil {
		var verr *project.ValidationError
		if errors.As(err, &verr) {
			s.writeError(w, r, err)
			return
		}
		s.badRequest(w, r, err.Error(), err)
		return
	}
	if err := s.Engine.Projects().Save(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, p)
}

// GetGraph handles GET /projects/{id}/graph. With ?session= the diagram
// highlights the nodes that session has shown.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathParam(w, r, "id")
	if !ok {
		return
	}
	p, err := s.Engine.Projects().Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sid, ok := s.queryParam(w, r, "session")
	if !ok {
		return
	}
	var overlay *graph.GraphOverlay
	if sid != "" {
		out, err := s.Engine.GetInteraction(r.Context(), sid)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		overlay = &graph.GraphOverlay{
			VisitedNodes: out.Interaction.History,
			CurrentNode:  out.Interaction.CurrentNodeID,
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, graph.GenerateMermaid(p.Data, overlay))
}

// LintProject handles GET /projects/{id}/lint.
func (s *Server) LintProject(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathParam(w, r, "id")
	if !ok {
		return
	}
	p, err := s.Engine.Projects().Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report := validator.ValidateGraph(p.Data)
	if report.Errors == nil {
		report.Errors = []validator.Finding{}
	}
	if report.Warnings == nil {
		report.Warnings = []validator.Finding{}
	}
	s.writeJSON(w, http.StatusOK, report)
}

// ListGroups handles GET /groups.
func (s *Server) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.Engine.Projects().Groups(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, groups)
}

// CreateGroup handles POST /groups.
func (s *Server) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var body groupRequest
	if err := decode(r, &body); err != nil {
		s.badRequest(w, r, "invalid request body", err)
		return
	}
	if err := s.Engine.Projects().CreateGroup(body.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteGroup handles DELETE /groups/{name}.
func (s *Server) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	name, ok := s.pathParam(w, r, "name")
	if !ok {
		return
	}
	if err := s.Engine.Projects().DeleteGroup(r.Context(), name); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
