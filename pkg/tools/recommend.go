package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/trailmcp/pkg/pipeline"
)

// RecommendNearPlaceTool returns a tool definition for trail recommendations
func RecommendNearPlaceTool() mcp.Tool {
	return mcp.NewTool("recommend_near_place",
		mcp.WithDescription("Geocode a place, then return nearby trails and the forecast at the place in one call. "+
			"Set hard_only to keep only SAC T3+ trails."),
		mcp.WithString("place",
			mcp.Required(),
			mcp.Description("Town or landmark, for example 'Canmore'"),
		),
		mcp.WithNumber("radius_km",
			mcp.Description("Trail search radius in kilometers (clamped to 0.5-60)"),
			mcp.DefaultNumber(pipeline.DefaultNearRadiusKm),
		),
		mcp.WithNumber("hours",
			mcp.Description("Number of forecast hours (clamped to 1-24)"),
			mcp.DefaultNumber(pipeline.DefaultNearHours),
		),
		mcp.WithBoolean("hard_only",
			mcp.Description("Only return trails graded SAC T3 or harder"),
			mcp.DefaultBool(false),
		),
		mcp.WithBoolean("natural_only",
			mcp.Description("Exclude paved paths"),
			mcp.DefaultBool(true),
		),
	)
}

// HandleRecommendNearPlace implements the recommendation pipeline
func (r *Registry) HandleRecommendNearPlace(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := pipeline.NewNearPlaceRequest(mcp.ParseString(req, "place", ""))
	in.RadiusKm = mcp.ParseFloat64(req, "radius_km", pipeline.DefaultNearRadiusKm)
	in.Hours = parseHours(req, pipeline.DefaultNearHours)
	in.HardOnly = mcp.ParseBoolean(req, "hard_only", false)
	in.NaturalOnly = mcp.ParseBoolean(req, "natural_only", true)

	result, err := r.svc.RecommendNearPlace(ctx, in)
	if err != nil {
		return ErrorWithGuidance(err), nil
	}
	return jsonResult(result)
}
