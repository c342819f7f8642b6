package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/edge-filter-mcp/internal/filter"
	"github.com/ironsheep/edge-filter-mcp/internal/imaging"
)

// Version is reported in the initialize handshake.
const Version = "0.2.0"

// Options configures a Server.
//
// Zero values are usable: an empty registry, no presets, default tiling and
// the standard logrus logger.
type Options struct {
	// Registry holds the filters exposed by the filter_* tools. Plugins
	// are expected to have populated it already.
	Registry *filter.Registry

	// Presets are the named configurations offered through the preset
	// argument and the filter_presets tool.
	Presets filter.Presets

	// Tiles sets the tile size and worker count of filter_apply. A Size of
	// 0 runs filters in a single pass.
	Tiles filter.TileOptions

	// Logger receives request and filter logs. It must not write to
	// stdout, which carries the protocol.
	Logger logrus.FieldLogger
}

// Server handles MCP protocol communication
type Server struct {
	cache    *imaging.ImageCache
	registry *filter.Registry
	presets  filter.Presets
	tiles    filter.TileOptions
	log      logrus.FieldLogger
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance.
//
// Parameters:
//   - opts: Registry, presets, tiling and logger. Nil fields get defaults.
//
// Returns:
//   - *Server: A server with an empty image cache, ready for Run or Serve.
func New(opts Options) *Server {
	s := &Server{
		cache:    imaging.NewImageCache(),
		registry: opts.Registry,
		presets:  opts.Presets,
		tiles:    opts.Tiles,
		log:      opts.Logger,
	}
	if s.registry == nil {
		s.registry = filter.NewRegistry()
	}
	if s.presets == nil {
		s.presets = filter.Presets{}
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s
}

// Run serves requests from stdin until EOF or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to w.
//
// Parameters:
//   - ctx: Cancelling ctx stops the loop before the next request and aborts
//     running filters.
//   - r: Newline-delimited JSON-RPC 2.0 requests. Lines may be up to 16 MB.
//   - w: Receives one JSON response per request. Notifications get none.
//
// Returns:
//   - error: ctx.Err() if cancelled, a scanner error if r fails, nil at EOF.
//
// Unparseable lines are logged at warn level and skipped.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.WithError(err).Warn("failed to parse request")
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.WithError(err).Error("failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.log.WithField("method", req.Method).Debug("request")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return s.errorResponse(req.ID, -32601, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "edge-filter-mcp",
				"version": Version,
			},
		},
	}
}
