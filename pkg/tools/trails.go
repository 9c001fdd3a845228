package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/trailmcp/pkg/geo"
	"github.com/NERVsystems/trailmcp/pkg/trails"
)

// TrailsOutput wraps a trail list
type TrailsOutput struct {
	Trails []trails.Feature `json:"trails"`
	Count  int              `json:"count"`
}

func trailFilterOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithBoolean("hard_only",
			mcp.Description("Only return trails graded SAC T3 or harder"),
			mcp.DefaultBool(false),
		),
		mcp.WithBoolean("natural_only",
			mcp.Description("Exclude paved paths (asphalt, concrete, paving stones, cement)"),
			mcp.DefaultBool(true),
		),
	}
}

func parseFilters(req mcp.CallToolRequest) trails.Filters {
	return trails.Filters{
		HardOnly:    mcp.ParseBoolean(req, "hard_only", false),
		NaturalOnly: mcp.ParseBoolean(req, "natural_only", true),
	}
}

// TrailsNearTool returns a tool definition for finding trails around a point
func TrailsNearTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Find up to 20 named hiking/running routes and footpaths around a point"),
		mcp.WithNumber("lat",
			mcp.Required(),
			mcp.Description("Latitude of the search center"),
		),
		mcp.WithNumber("lon",
			mcp.Required(),
			mcp.Description("Longitude of the search center"),
		),
		mcp.WithNumber("radius_km",
			mcp.Description("Search radius in kilometers (clamped to 0.5-60)"),
			mcp.DefaultNumber(12),
		),
	}
	return mcp.NewTool("get_trails_near", append(opts, trailFilterOptions()...)...)
}

// HandleTrailsNear implements the trail search around a point
func (r *Registry) HandleTrailsNear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lat := mcp.ParseFloat64(req, "lat", 0)
	lon := mcp.ParseFloat64(req, "lon", 0)
	radiusKm := mcp.ParseFloat64(req, "radius_km", 12)

	found, err := r.svc.FindNear(ctx, lat, lon, radiusKm, parseFilters(req))
	if err != nil {
		return ErrorWithGuidance(err), nil
	}
	return jsonResult(TrailsOutput{Trails: found, Count: len(found)})
}

// TrailsInBboxTool returns a tool definition for finding trails in a bounding box
func TrailsInBboxTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Find up to 20 named hiking/running routes and footpaths inside a bounding box"),
		mcp.WithNumber("min_lat",
			mcp.Required(),
			mcp.Description("Southern edge"),
		),
		mcp.WithNumber("min_lon",
			mcp.Required(),
			mcp.Description("Western edge"),
		),
		mcp.WithNumber("max_lat",
			mcp.Required(),
			mcp.Description("Northern edge"),
		),
		mcp.WithNumber("max_lon",
			mcp.Required(),
			mcp.Description("Eastern edge"),
		),
	}
	return mcp.NewTool("get_trails_in_bbox", append(opts, trailFilterOptions()...)...)
}

// HandleTrailsInBbox implements the trail search inside a bounding box
func (r *Registry) HandleTrailsInBbox(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bb := geo.BoundingBox{
		MinLat: mcp.ParseFloat64(req, "min_lat", 0),
		MinLon: mcp.ParseFloat64(req, "min_lon", 0),
		MaxLat: mcp.ParseFloat64(req, "max_lat", 0),
		MaxLon: mcp.ParseFloat64(req, "max_lon", 0),
	}

	found, err := r.svc.FindInBbox(ctx, bb, parseFilters(req))
	if err != nil {
		return ErrorWithGuidance(err), nil
	}
	return jsonResult(TrailsOutput{Trails: found, Count: len(found)})
}
