package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/contourai-mcp-server/internal/domain"
)

// Server exposes the recommendation service as MCP tools over stdio
type Server struct {
	config    domain.MCPConfig
	service   domain.RecommendationService
	mcpServer *mcp.Server
	logger    *logrus.Logger
}

// NewServer creates a new MCP server instance and registers its tools
func NewServer(cfg domain.MCPConfig, svc domain.RecommendationService, logger *logrus.Logger) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("recommendation service is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.TransportType != "" && cfg.TransportType != "stdio" {
		return nil, fmt.Errorf("unsupported transport: %s", cfg.TransportType)
	}

	name := cfg.ServerName
	if name == "" {
		name = "contourai-mcp-server"
	}
	version := cfg.ServerVersion
	if version == "" {
		version = "dev"
	}

	server := &Server{
		config:  cfg,
		service: svc,
		logger:  logger,
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    name,
			Version: version,
		}, nil),
	}

	server.registerTools()
	return server, nil
}

// Start runs the server on stdin/stdout until the client disconnects or
// ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithFields(logrus.Fields{
		"server_name": s.config.ServerName,
		"transport":   "stdio",
	}).Info("Starting ContourAI MCP server")

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		if ctx.Err() != nil {
			s.logger.Info("MCP server stopped")
			return nil
		}
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "recommend_contours",
		Description: "Derive a radiotherapy contouring recommendation (GTV/CTV/PTV, elective nodal levels, laterality, risk tier, AJCC stage group, citations) from case attributes.",
	}, s.handleRecommendContours)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "batch_recommend_contours",
		Description: "Evaluate several cases at once. Results keep input order; an invalid case reports its error without failing the batch.",
	}, s.handleBatchRecommend)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "lookup_nodal_level",
		Description: "Return the anatomic boundaries (cranial, caudal, medial, lateral, anterior, posterior) of a head and neck nodal level such as IIa or RPN.",
	}, s.handleLookupNodalLevel)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_nodal_levels",
		Description: "List the nodal level codes known to the atlas.",
	}, s.handleListNodalLevels)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "derive_stage_group",
		Description: "Derive the AJCC 8th edition stage group for a head and neck case from T, N and HPV status.",
	}, s.handleDeriveStageGroup)

	s.logger.WithField("tool_count", 5).Debug("Registered MCP tools")
}
