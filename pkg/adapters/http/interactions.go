package http

import (
	"encoding/json"
	"net/http"

	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/flow"
)

type startRequest struct {
	SessionID string `json:"session_id"`
}

type selectRequest struct {
	NodeID   string `json:"node_id"`
	ChoiceID string `json:"choice_id"`
}

type traverseRequest struct {
	Graph       domain.FlowGraph  `json:"graph"`
	StartNodeID string            `json:"start_node_id"`
	Memory      domain.GameMemory `json:"memory"`
}

type traverseResponse struct {
	NodeID string            `json:"node_id,omitempty"`
	Found  bool              `json:"found"`
	Reason flow.StopReason   `json:"reason"`
	Steps  int               `json:"steps"`
	Memory domain.GameMemory `json:"memory"`
}

// StartInteraction handles POST /projects/{id}/interactions.
// The body is optional; without a session_id one is generated.
func (s *Server) StartInteraction(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathParam(w, r, "id")
	if !ok {
		return
	}
	var body startRequest
	if r.ContentLength != 0 {
		if err := decode(r, &body); err != nil {
			s.badRequest(w, r, "invalid request body", err)
			return
		}
	}

	out, err := s.Engine.StartInteraction(r.Context(), id, body.SessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(out)
	s.writeJSON(w, http.StatusCreated, out)
}

// GetInteraction handles GET /interactions/{sid}.
func (s *Server) GetInteraction(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.pathParam(w, r, "sid")
	if !ok {
		return
	}
	out, err := s.Engine.GetInteraction(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

// SelectChoice handles POST /interactions/{sid}/select.
func (s *Server) SelectChoice(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.pathParam(w, r, "sid")
	if !ok {
		return
	}
	var body selectRequest
	if err := decode(r, &body); err != nil {
		s.badRequest(w, r, "invalid request body", err)
		return
	}
	if body.ChoiceID == "" {
		s.badRequest(w, r, "choice_id is required", nil)
		return
	}

	out, err := s.Engine.SelectChoice(r.Context(), sessionID, body.NodeID, body.ChoiceID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(out)
	s.writeJSON(w, http.StatusOK, out)
}

// CancelInteraction handles POST /interactions/{sid}/cancel.
func (s *Server) CancelInteraction(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.pathParam(w, r, "sid")
	if !ok {
		return
	}
	out, err := s.Engine.CancelInteraction(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(out)
	s.writeJSON(w, http.StatusOK, out)
}

// Traverse handles POST /traverse. It runs a one-off traversal of the posted
// graph and returns the memory as the traversal left it.
func (s *Server) Traverse(w http.ResponseWriter, r *http.Request) {
	var body traverseRequest
	if err := decode(r, &body); err != nil {
		s.badRequest(w, r, "invalid request body", err)
		return
	}

	start := body.StartNodeID
	if start == "" {
		n, ok := body.Graph.StartNode()
		if !ok {
			s.writeError(w, r, domain.ErrNoStartNode)
			return
		}
		start = n.ID
	}
	mem := body.Memory.Clone()

	res := s.Engine.Traverse(r.Context(), &body.Graph, start, mem)
	s.writeJSON(w, http.StatusOK, traverseResponse{
		NodeID: res.NodeID,
		Found:  res.Found,
		Reason: res.Reason,
		Steps:  res.Steps,
		Memory: mem,
	})
}

// publish pushes an outcome to the session's event subscribers.
func (s *Server) publish(out *domain.Outcome) {
	data, err := json.Marshal(out)
	if err != nil {
		s.logger.Warn("outcome encode failed", "error", err)
		return
	}
	sid := out.Interaction.SessionID
	s.Streams.Broadcast(sid, Event{Name: "outcome", Data: data})
	if out.Closed {
		s.Streams.Broadcast(sid, Event{Name: "closed", Data: []byte(out.Reason)})
	}
}
