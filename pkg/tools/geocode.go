package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// GeocodePlaceTool returns a tool definition for geocoding a place name
func GeocodePlaceTool() mcp.Tool {
	return mcp.NewTool("geocode_place",
		mcp.WithDescription("Convert a place name (town, park, landmark) in the configured region to coordinates"),
		mcp.WithString("place",
			mcp.Required(),
			mcp.Description("The place name to geocode, for example 'Canmore'"),
		),
	)
}

// HandleGeocodePlace implements the geocoding functionality
func (r *Registry) HandleGeocodePlace(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	place := mcp.ParseString(req, "place", "")

	result, err := r.svc.Geocode(ctx, place)
	if err != nil {
		return ErrorWithGuidance(err), nil
	}
	return jsonResult(result)
}
