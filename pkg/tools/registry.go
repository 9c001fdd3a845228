// Package tools provides the trail and weather MCP tool implementations.
package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/NERVsystems/trailmcp/pkg/geo"
	"github.com/NERVsystems/trailmcp/pkg/pipeline"
	"github.com/NERVsystems/trailmcp/pkg/trails"
	"github.com/NERVsystems/trailmcp/pkg/weather"
)

// Service is the pipeline surface the tools call into.
type Service interface {
	Geocode(ctx context.Context, place string) (pipeline.PlaceResult, error)
	FindNear(ctx context.Context, lat, lon, radiusKm float64, filters trails.Filters) ([]trails.Feature, error)
	FindInBbox(ctx context.Context, bb geo.BoundingBox, filters trails.Filters) ([]trails.Feature, error)
	GetWeather(ctx context.Context, lat, lon float64, hours int) (weather.Forecast, error)
	RecommendNearPlace(ctx context.Context, req pipeline.NearPlaceRequest) (pipeline.Recommendation, error)
	WeatherForTrail(ctx context.Context, req pipeline.TrailWeatherRequest) (pipeline.TrailWeather, error)
}

// HandlerFunc is the signature of an MCP tool handler.
type HandlerFunc = server.ToolHandlerFunc

// Registry holds all MCP tool registrations for the trail service.
type Registry struct {
	svc    Service
	logger *slog.Logger
}

// NewRegistry creates a new MCP tool registry.
func NewRegistry(svc Service, logger *slog.Logger) *Registry {
	return &Registry{
		svc:    svc,
		logger: logger,
	}
}

// ToolDefinition represents a trail MCP tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Tool        mcp.Tool
	Handler     HandlerFunc
}

// GetToolDefinitions returns all trail MCP tool definitions.
func (r *Registry) GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		// Pipeline Tools
		{
			Name:        "recommend_near_place",
			Description: "Recommend trails near a place together with the local forecast",
			Tool:        RecommendNearPlaceTool(),
			Handler:     r.HandleRecommendNearPlace,
		},
		{
			Name:        "weather_for_trail",
			Description: "Find a trail by name and return its hourly forecast",
			Tool:        WeatherForTrailTool(),
			Handler:     r.HandleWeatherForTrail,
		},

		// Geocoding Tools
		{
			Name:        "geocode_place",
			Description: "Convert a place name in the configured region to coordinates",
			Tool:        GeocodePlaceTool(),
			Handler:     r.HandleGeocodePlace,
		},

		// Trail Search Tools
		{
			Name:        "get_trails_near",
			Description: "Find hiking and running trails around a point",
			Tool:        TrailsNearTool(),
			Handler:     r.HandleTrailsNear,
		},
		{
			Name:        "get_trails_in_bbox",
			Description: "Find hiking and running trails inside a bounding box",
			Tool:        TrailsInBboxTool(),
			Handler:     r.HandleTrailsInBbox,
		},

		// Weather Tools
		{
			Name:        "get_weather",
			Description: "Get a trimmed hourly forecast for a point",
			Tool:        GetWeatherTool(),
			Handler:     r.HandleGetWeather,
		},
	}
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.GetToolDefinitions() {
		r.logger.Info("registering tool", "name", def.Name)
		mcpServer.AddTool(def.Tool, r.withRequestLogging(def.Name, def.Handler))
	}
}
