// SPDX-License-Identifier: Apache-2.0

// Package server hosts the normalization tools over MCP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gemaraproj/fieldmap/internal/logger"
	"github.com/gemaraproj/fieldmap/internal/metrics"
	"github.com/gemaraproj/fieldmap/internal/tool"
)

// Name is the MCP implementation name.
const Name = "fieldmap"

// Server is the MCP server for the normalization tools.
type Server struct {
	server  *mcp.Server
	metrics *metrics.Registry
	log     logger.Logger
}

// New creates a Server exposing tools. metrics may be nil, in which case
// HTTP mode serves no /metrics endpoint.
func New(version string, tools *tool.Toolset, reg *metrics.Registry, log logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	impl := &mcp.Implementation{
		Name:    Name,
		Version: version,
	}
	s := &Server{
		server:  mcp.NewServer(impl, nil),
		metrics: reg,
		log:     log,
	}

	mcp.AddTool(s.server, tool.MetadataNormalizeDocument, tools.NormalizeDocument)
	mcp.AddTool(s.server, tool.MetadataExtractionGuidance, tools.ExtractionGuidance)
	mcp.AddTool(s.server, tool.MetadataValidateProfile, tools.ValidateProfile)
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Run serves over stdio until ctx is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("serving MCP over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the HTTP handler: the streamable MCP endpoint at / and,
// when metrics are enabled, Prometheus metrics at /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil))
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return mux
}

// RunHTTP serves over streamable HTTP on addr until ctx is canceled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	s.log.Info("serving MCP over HTTP", "addr", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
