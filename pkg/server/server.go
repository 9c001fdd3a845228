// Package server wires configuration, upstream clients and the trail
// pipeline into an MCP server and an optional HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/NERVsystems/trailmcp/pkg/config"
	"github.com/NERVsystems/trailmcp/pkg/geocode"
	"github.com/NERVsystems/trailmcp/pkg/httpapi"
	"github.com/NERVsystems/trailmcp/pkg/pipeline"
	"github.com/NERVsystems/trailmcp/pkg/tools"
	"github.com/NERVsystems/trailmcp/pkg/tools/prompts"
	"github.com/NERVsystems/trailmcp/pkg/trails"
	"github.com/NERVsystems/trailmcp/pkg/upstream"
	"github.com/NERVsystems/trailmcp/pkg/version"
	"github.com/NERVsystems/trailmcp/pkg/weather"
)

const (
	// ServerName is the name of the MCP server
	ServerName = "trail-mcp-server"
)

// Server encapsulates the MCP server with the trail tools.
type Server struct {
	cfg    *config.Config
	srv    *server.MCPServer
	svc    *pipeline.Service
	logger *slog.Logger
}

// NewServer creates a new trail MCP server with all tools and prompts registered.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("initializing trail MCP server",
		"name", ServerName,
		"version", version.BuildVersion,
		"region", cfg.Region.Name,
		"transport", cfg.Server.Transport)

	svc := NewService(cfg, logger)

	// Create MCP server with options
	srv := server.NewMCPServer(
		ServerName,
		version.BuildVersion,
		server.WithToolCapabilities(false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)

	// Create tool registry and register all tools
	registry := tools.NewRegistry(svc, logger)
	registry.RegisterTools(srv)

	prompts.RegisterTrailPrompts(srv, prompts.LoadSystemPrompt(cfg.Prompt.File, logger))

	return &Server{cfg: cfg, srv: srv, svc: svc, logger: logger}, nil
}

// NewService builds the pipeline and its upstream clients from cfg.
func NewService(cfg *config.Config, logger *slog.Logger) *pipeline.Service {
	httpClient := upstream.NewClient(
		upstream.WithRateLimiter(upstream.NewRateLimiter(cfg.Upstream.Limits())),
		upstream.WithUserAgent(cfg.Upstream.UserAgent),
		upstream.WithLogger(logger),
	)

	geocoder := geocode.NewClient(httpClient,
		geocode.WithBaseURL(cfg.Upstream.NominatimURL),
		geocode.WithRegion(cfg.Region.Name),
		geocode.WithTimeout(cfg.Timeouts.Geocode),
		geocode.WithLogger(logger),
	)

	finder := trails.NewFinder(httpClient,
		trails.WithOverpassURL(cfg.Upstream.OverpassURL),
		trails.WithTimeouts(cfg.Timeouts.TrailsNear, cfg.Timeouts.TrailsBbox),
		trails.WithCacheSizes(cfg.Cache.TrailsNear, cfg.Cache.TrailsBbox, cfg.Cache.TTL),
		trails.WithFinderLogger(logger),
	)

	fetcher := weather.NewFetcher(httpClient,
		weather.WithBaseURL(cfg.Upstream.OpenMeteoURL),
		weather.WithTimezone(cfg.Region.Timezone),
		weather.WithTimeout(cfg.Timeouts.Weather),
		weather.WithCache(cfg.Cache.Weather, cfg.Cache.TTL),
		weather.WithLogger(logger),
	)

	return pipeline.NewService(geocoder, finder, fetcher,
		pipeline.WithMatcher(trails.NewMatcher(trails.WithThreshold(cfg.Matcher.Threshold))),
		pipeline.WithRegion(cfg.Region.BBox),
		pipeline.WithLogger(logger),
	)
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.srv
}

// Service returns the pipeline behind the tools.
func (s *Server) Service() *pipeline.Service {
	return s.svc
}

// HTTPHandler returns the traced JSON API handler.
func (s *Server) HTTPHandler() http.Handler {
	gin.SetMode(s.cfg.Server.GinMode)
	router := httpapi.NewRouter(s.svc, s.logger)
	return otelhttp.NewHandler(router, ServerName)
}

// Run serves the configured transport until ctx is cancelled or the
// transport fails.
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Server.Transport {
	case config.TransportHTTP:
		return s.runHTTP(ctx)
	case config.TransportStdio:
		// ServeStdio returns on EOF or SIGINT/SIGTERM
		return server.ServeStdio(s.srv)
	default:
		return fmt.Errorf("unsupported transport %q", s.cfg.Server.Transport)
	}
}

func (s *Server) runHTTP(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.HTTPHandler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", "addr", s.cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP API", "timeout", s.cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	return nil
}
