package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/simplybook-mcp/sbmcp/pkg/auth"
	"github.com/simplybook-mcp/sbmcp/pkg/bookings"
	"github.com/simplybook-mcp/sbmcp/pkg/config"
	"github.com/simplybook-mcp/sbmcp/pkg/credstore"
	"github.com/simplybook-mcp/sbmcp/pkg/guard"
	"github.com/simplybook-mcp/sbmcp/pkg/httpclient"
	"github.com/simplybook-mcp/sbmcp/pkg/ratelimit"
	"github.com/simplybook-mcp/sbmcp/pkg/util"
	"go.uber.org/zap"
)

// Server exposes the SimplyBook booking tools over MCP. Every tool handler
// runs the auth guard before touching the API, so callers never deal with
// tokens themselves.
type Server struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	guard    *guard.Guard
	bookings *bookings.Client
	mcp      *server.MCPServer
}

// New wires the credential store, rate limiter, authenticator, guard and
// bookings client together and registers the tool set.
func New(cfg *config.Config, logger *zap.SugaredLogger) *Server {
	store := credstore.NewFileStore(cfg.TokenDir, logger)
	limiter := ratelimit.New(ratelimit.MinAuthInterval)

	api := httpclient.New(cfg.BaseURL, map[string]string{
		"Content-Type": "application/json",
		"User-Agent":   util.UserAgent,
	}, logger)

	authenticator := auth.New(api, store, limiter, logger)
	g := guard.New(store, authenticator, logger)

	s := &Server{
		cfg:      cfg,
		log:      logger,
		guard:    g,
		bookings: bookings.New(cfg.BaseURL, cfg.Company, g, logger),
		mcp: server.NewMCPServer(
			"simplybook",
			util.Version,
			server.WithToolCapabilities(false),
		),
	}

	s.registerTools()
	return s
}

// ServeStdio blocks serving the MCP protocol over stdin/stdout.
func (s *Server) ServeStdio() error {
	s.log.Info("Starting SimplyBook MCP server on stdio")
	return server.ServeStdio(s.mcp)
}

// ServeHTTP blocks serving the streamable HTTP transport on addr.
func (s *Server) ServeHTTP(addr string) error {
	s.log.Infof("Starting SimplyBook MCP server on %s", addr)
	return server.NewStreamableHTTPServer(s.mcp).Start(addr)
}
