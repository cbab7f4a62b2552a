package mcp

import (
	"net/http"

	"github.com/bobmcallan/finance-portal/internal/common"
	"github.com/bobmcallan/finance-portal/internal/config"
	"github.com/bobmcallan/finance-portal/internal/store"
	"github.com/bobmcallan/finance-portal/internal/symbols"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
	tools      []string
}

// NewServer builds the MCP server with every tool registered. The same
// server backs the /mcp endpoint and the stdio transport of finance-mcp.
func NewServer(s *store.Store, resolver *symbols.Resolver) (*mcpserver.MCPServer, []string) {
	mcpSrv := mcpserver.NewMCPServer(
		"finance-portal",
		config.Version,
		mcpserver.WithToolCapabilities(true),
	)
	return mcpSrv, registerTools(mcpSrv, s, resolver)
}

// NewHandler creates an MCP handler whose tools run store actions.
func NewHandler(s *store.Store, resolver *symbols.Resolver, logger *common.Logger) *Handler {
	mcpSrv, names := NewServer(s, resolver)

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().
		Int("tools", len(names)).
		Msg("MCP handler initialized")

	return &Handler{
		streamable: streamable,
		logger:     logger,
		tools:      names,
	}
}

// Tools returns the registered tool names in registration order.
func (h *Handler) Tools() []string {
	return append([]string{}, h.tools...)
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}
