// Package mcp serves reveal over the Model Context Protocol, so assistants
// resolve locators through the same pipeline as the command line.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/reveal-cli/internal/core/ports/driving"
	"github.com/custodia-labs/reveal-cli/internal/logger"
)

// DefaultVersion is reported when NewServer is given no version.
const DefaultVersion = "dev"

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

var (
	ErrMissingQueryService   = errors.New("mcp: query service is required")
	ErrMissingSchemeRegistry = errors.New("mcp: scheme registry is required")
)

const instructions = `reveal resolves locators of the form scheme://resource/element?query.
Call list_schemes first, then describe_scheme for the fields, operators and
elements of a scheme. Query parameters filter (field=value, field>N,
field~=regex), order (sort=-field), page (limit, offset), project (fields=a,b)
and bound output (max-items, max-bytes).`

// Ports are the services the server exposes. Batch is optional; without it
// the batch tool is not offered.
type Ports struct {
	Query   driving.QueryService
	Batch   driving.BatchService
	Schemes driving.SchemeRegistry
}

// Validate reports the first required port that is missing.
func (p *Ports) Validate() error {
	switch {
	case p.Query == nil:
		return ErrMissingQueryService
	case p.Schemes == nil:
		return ErrMissingSchemeRegistry
	}
	return nil
}

// Server is the reveal MCP server.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer registers the tools and resources backed by ports.
func NewServer(ports *Ports, version string) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if version == "" {
		version = DefaultVersion
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "reveal", Version: version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves one client over stdin and stdout until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	logger.Info("MCP server on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler serves streamable HTTP sessions.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves streamable HTTP on addr until ctx ends, then shuts down
// gracefully.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("MCP server on %s", ln.Addr())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP server shutdown: %v", err)
		}
		return nil
	})
	return g.Wait()
}
