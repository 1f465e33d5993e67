// Package mcp exposes the classification search as an MCP tool.
package mcp

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/kailas-cloud/openfda-mcp/internal/domain"
	"github.com/kailas-cloud/openfda-mcp/internal/domain/search/request"
	"github.com/kailas-cloud/openfda-mcp/internal/logger"
	"github.com/kailas-cloud/openfda-mcp/internal/metrics"
)

// ToolName is the only tool this server provides.
const ToolName = "search_device_classifications"

const toolDescription = "Search FDA device classifications by device name, class, or medical specialty"

// Searcher runs a classification search from raw tool arguments.
type Searcher interface {
	Search(ctx context.Context, args map[string]any) (string, error)
}

// Server is the MCP tool boundary: it maps every failure except an unknown
// tool name to a single text content block.
type Server struct {
	mcp           *mcpserver.MCPServer
	search        Searcher
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an MCP server with the search tool registered.
func NewServer(name, version string, search Searcher, bounds request.Bounds, logger *zap.Logger) *Server {
	s := &Server{
		mcp:           mcpserver.NewMCPServer(name, version, mcpserver.WithToolCapabilities(false)),
		search:        search,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
	s.mcp.AddTool(searchTool(bounds), s.handleCall)
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *mcpserver.MCPServer { return s.mcp }

// Invoke runs a tool by name. Only an unknown tool name is returned as an error.
func (s *Server) Invoke(ctx context.Context, name string, args map[string]any) ([]mcpgo.Content, error) {
	if name != ToolName {
		metrics.ToolCallsTotal.WithLabelValues("unknown", outcomeUnknownTool).Inc()
		s.logger.Warn("unknown tool requested", zap.String("tool", name))
		return nil, domain.UnknownTool(name)
	}

	ctx = logger.WithFields(ctx, s.logger,
		zap.String("call_id", uuid.NewString()),
		zap.String("tool", name),
	)
	log := logger.FromContext(ctx)
	log.Info("Searching classifications", zap.Any("arguments", args))

	start := time.Now()
	text, err := s.search.Search(ctx, args)
	outcome := outcomeOK
	if err != nil {
		outcome, text = s.errorText(log, err)
	}
	metrics.ToolCallsTotal.WithLabelValues(name, outcome).Inc()

	log.Info("Tool call finished",
		zap.String("outcome", outcome),
		zap.Duration("duration", time.Since(start)),
	)
	return []mcpgo.Content{mcpgo.NewTextContent(text)}, nil
}

func (s *Server) errorText(log *zap.Logger, err error) (string, string) {
	for _, h := range s.errorHandlers {
		if outcome, text, ok := h(err); ok {
			log.Warn("search failed", zap.String("outcome", outcome), zap.Error(err))
			return outcome, text
		}
	}
	log.Error("unexpected error during search", zap.Error(err))
	return outcomeUnexpected, unexpectedText
}

func (s *Server) handleCall(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	content, err := s.Invoke(ctx, req.Params.Name, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return &mcpgo.CallToolResult{Content: content}, nil
}

// ServeStdio serves MCP over in/out until ctx is done or in is closed.
// out carries protocol frames only; logs go through the zap logger.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := mcpserver.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))
	return stdio.Listen(ctx, in, out)
}

// HTTPHandler returns the streamable HTTP transport for mounting on a router.
func (s *Server) HTTPHandler() http.Handler {
	return mcpserver.NewStreamableHTTPServer(s.mcp)
}

// searchTool builds the tool definition. The schema is raw so limit is
// advertised as an integer with its bounds.
func searchTool(b request.Bounds) mcpgo.Tool {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"search": map[string]any{
				"type":        "string",
				"description": "Search query (device name, class, specialty, etc.)",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Number of results to return (max " + strconv.Itoa(b.MaxLimit) + ")",
				"minimum":     b.MinLimit,
				"maximum":     b.MaxLimit,
				"default":     b.DefaultLimit,
			},
		},
		"required": []string{},
	}
	raw, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(schema)
	if err != nil {
		// static map of strings and ints
		panic(err)
	}

	tool := mcpgo.NewToolWithRawSchema(ToolName, toolDescription, raw)
	tool.Annotations = mcpgo.ToolAnnotation{
		Title:           "Search FDA device classifications",
		ReadOnlyHint:    boolPtr(true),
		DestructiveHint: boolPtr(false),
		IdempotentHint:  boolPtr(true),
		OpenWorldHint:   boolPtr(true),
	}
	return tool
}

func boolPtr(b bool) *bool { return &b }
