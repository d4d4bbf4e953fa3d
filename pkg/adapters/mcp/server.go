package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/rcflow"
	"github.com/aretw0/rcflow/internal/logging"
	"github.com/aretw0/rcflow/internal/validator"
	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/flow"
	"github.com/aretw0/rcflow/pkg/project"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ProjectsURI is the resource listing every project.
const ProjectsURI = "rcflow://projects"

// Engine defines what the MCP server needs from rcflow.
type Engine interface {
	Projects() *project.Catalog
	Traverse(ctx context.Context, g *domain.FlowGraph, startID string, mem domain.GameMemory) flow.Result
}

// TraverseArgs are the arguments of the traverse tool.
type TraverseArgs struct {
	ProjectID   string         `json:"project_id"`
	StartNodeID string         `json:"start_node_id,omitempty"`
	Memory      map[string]any `json:"memory,omitempty"`
}

// TraverseResponse is the structured result of the traverse tool.
type TraverseResponse struct {
	NodeID string         `json:"node_id,omitempty" jsonschema_description:"The node reached, empty when none was"`
	Found  bool           `json:"found" jsonschema_description:"Whether a Dialogue or End node was reached"`
	Reason string         `json:"reason" jsonschema_description:"Why the traversal stopped"`
	Steps  int            `json:"steps" jsonschema_description:"Number of nodes visited"`
	Memory map[string]any `json:"memory" jsonschema_description:"Memory after SetVariable nodes ran"`
}

// ConditionArgs are the arguments of the evaluate_condition tool.
type ConditionArgs struct {
	Variable string         `json:"variable"`
	Operator string         `json:"operator"`
	Value    string         `json:"value"`
	Memory   map[string]any `json:"memory,omitempty"`
}

// ConditionResponse is the structured result of the evaluate_condition tool.
type ConditionResponse struct {
	Result bool   `json:"result" jsonschema_description:"Whether the condition holds"`
	Port   string `json:"port" jsonschema_description:"The port traversal would leave through"`
}

// ProjectArgs selects a project.
type ProjectArgs struct {
	ProjectID string `json:"project_id"`
}

// ProjectList is the structured result of the list_projects tool.
type ProjectList struct {
	Projects []domain.ProjectSummary `json:"projects"`
}

// Server exposes rcflow projects as an MCP server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("rcflow-mcp", rcflow.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP server over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("traverse",
		mcp.WithDescription("Run a project's flow from a node against a memory and report the node the player would see next."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithString("start_node_id", mcp.Description("Node to start from (defaults to the START node)")),
		mcp.WithObject("memory", mcp.Description("Game memory as a JSON object")),
		mcp.WithOutputSchema[TraverseResponse](),
	), mcp.NewStructuredToolHandler(s.handleTraverse))

	s.mcpServer.AddTool(mcp.NewTool("evaluate_condition",
		mcp.WithDescription("Evaluate a Condition node expression against a memory."),
		mcp.WithString("variable", mcp.Required(), mcp.Description("Memory key")),
		mcp.WithString("operator", mcp.Required(), mcp.Description("One of ==, !=, >, <, >=, <=")),
		mcp.WithString("value", mcp.Description("Value to compare with")),
		mcp.WithObject("memory", mcp.Description("Game memory as a JSON object")),
		mcp.WithOutputSchema[ConditionResponse](),
	), mcp.NewStructuredToolHandler(s.handleEvaluateCondition))

	s.mcpServer.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List every dialogue project."),
		mcp.WithOutputSchema[ProjectList](),
	), mcp.NewStructuredToolHandler(s.handleListProjects))

	s.mcpServer.AddTool(mcp.NewTool("lint_project",
		mcp.WithDescription("Check a project's graph for structural errors and warnings."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithOutputSchema[validator.Report](),
	), mcp.NewStructuredToolHandler(s.handleLintProject))
}

func (s *Server) handleTraverse(ctx context.Context, _ mcp.CallToolRequest, args TraverseArgs) (TraverseResponse, error) {
	p, err := s.engine.Projects().Get(ctx, args.ProjectID)
	if err != nil {
		return TraverseResponse{}, fmt.Errorf("load project: %w", err)
	}

	start := args.StartNodeID
	if start == "" {
		n, ok := p.Data.StartNode()
		if !ok {
			return TraverseResponse{}, fmt.Errorf("project %s: %w", p.ID, domain.ErrNoStartNode)
		}
		start = n.ID
	}

	mem := domain.GameMemory(args.Memory).Clone()
	res := s.engine.Traverse(ctx, &p.Data, start, mem)
	s.logger.Debug("MCP traverse", "project", p.ID, "from", start, "node", res.NodeID, "reason", res.Reason)

	return TraverseResponse{
		NodeID: res.NodeID,
		Found:  res.Found,
		Reason: string(res.Reason),
		Steps:  res.Steps,
		Memory: mem,
	}, nil
}

func (s *Server) handleEvaluateCondition(_ context.Context, _ mcp.CallToolRequest, args ConditionArgs) (ConditionResponse, error) {
	ok := flow.EvaluateCondition(args.Variable, domain.Operator(args.Operator), args.Value, domain.GameMemory(args.Memory))
	port := domain.PortFalse
	if ok {
		port = domain.PortTrue
	}
	return ConditionResponse{Result: ok, Port: port}, nil
}

func (s *Server) handleListProjects(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (ProjectList, error) {
	list, err := s.engine.Projects().List(ctx)
	if err != nil {
		return ProjectList{}, fmt.Errorf("list projects: %w", err)
	}
	if list == nil {
		list = []domain.ProjectSummary{}
	}
	return ProjectList{Projects: list}, nil
}

func (s *Server) handleLintProject(ctx context.Context, _ mcp.CallToolRequest, args ProjectArgs) (validator.Report, error) {
	p, err := s.engine.Projects().Get(ctx, args.ProjectID)
	if err != nil {
		return validator.Report{}, fmt.Errorf("load project: %w", err)
	}
	return validator.ValidateGraph(p.Data), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ProjectsURI, "Dialogue projects",
		mcp.WithResourceDescription("Summaries of every stored project"),
		mcp.WithMIMEType("application/json"),
	), s.readProjects)
}

func (s *Server) readProjects(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := s.engine.Projects().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encode projects: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ProjectsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
