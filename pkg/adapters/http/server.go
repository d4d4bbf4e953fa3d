package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/rcflow"
	"github.com/aretw0/rcflow/internal/logging"
	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/flow"
	"github.com/aretw0/rcflow/pkg/observability"
	"github.com/aretw0/rcflow/pkg/project"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine defines what the HTTP bridge needs from the rcflow engine.
type Engine interface {
	Projects() *project.Catalog
	StartInteraction(ctx context.Context, projectID, sessionID string) (*domain.Outcome, error)
	SelectChoice(ctx context.Context, sessionID, nodeID, choiceID string) (*domain.Outcome, error)
	CancelInteraction(ctx context.Context, sessionID string) (*domain.Outcome, error)
	GetInteraction(ctx context.Context, sessionID string) (*domain.Outcome, error)
	Traverse(ctx context.Context, g *domain.FlowGraph, startID string, mem domain.GameMemory) flow.Result
}

var _ Engine = (*rcflow.Engine)(nil)

// Server serves projects and interactions over JSON.
type Server struct {
	Engine  Engine
	Streams *StreamManager

	logger      *slog.Logger
	gatherer    prometheus.Gatherer
	metrics     *observability.Metrics
	corsOrigins []string
	now         func() time.Time

	validateRequests bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithGatherer exposes GET /metrics from g.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithMetrics records per-route request metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithCORSOrigins restricts the allowed origins. Empty allows any origin.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithClock overrides time.Now for export and import timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
		now:     time.Now,

		validateRequests: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware(func(req *http.Request) string {
			if rctx := chi.RouteContext(req.Context()); rctx != nil {
				return rctx.RoutePattern()
			}
			return ""
		}))
	}

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(s.apiRoutes)

	return s.enableCORS(r)
}

func (s *Server) apiRoutes(r chi.Router) {
	if s.validateRequests {
		router, err := specRouter()
		if err != nil {
			s.logger.Error("request validation disabled", "error", err)
		} else {
			r.Use(s.requestValidator(router))
		}
	}

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", s.ListProjects)
		r.Post("/", s.CreateProject)
		r.Post("/import", s.ImportProject)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetProject)
			r.Put("/", s.ReplaceProject)
			r.Delete("/", s.DeleteProject)
			r.Post("/move", s.MoveProject)
			r.Get("/export", s.ExportProject)
			r.Get("/graph", s.GetGraph)
			r.Get("/lint", s.LintProject)
			r.Post("/interactions", s.StartInteraction)
		})
	})

	r.Get("/groups", s.ListGroups)
	r.Post("/groups", s.CreateGroup)
	r.Delete("/groups/{name}", s.DeleteGroup)

	r.Route("/interactions/{sid}", func(r chi.Router) {
		r.Get("/", s.GetInteraction)
		r.Post("/select", s.SelectChoice)
		r.Post("/cancel", s.CancelInteraction)
		r.Get("/events", s.SubscribeEvents)
	})

	r.Post("/traverse", s.Traverse)
}

func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowOrigin(origin string) string {
	if len(s.corsOrigins) == 0 {
		return "*"
	}
	for _, o := range s.corsOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "rcflow-http",
		"version": rcflow.Version,
	})
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error  string               `json:"error"`
	Fields []project.FieldError `json:"fields,omitempty"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var verr *project.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInteractionClosed),
		errors.Is(err, domain.ErrStaleNode),
		errors.Is(err, domain.ErrSessionExists),
		errors.Is(err, domain.ErrProtectedGroup):
		return http.StatusConflict
	case errors.Is(err, domain.ErrChoiceNotFound),
		errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrNoStartNode),
		errors.Is(err, domain.ErrNoPath):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	resp := errorResponse{Error: err.Error()}
	var verr *project.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Warn("invalid request body", "method", r.Method, "path", r.URL.Path, "error", err)
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}
