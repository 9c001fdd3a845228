package tools

import (
	"context"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/trailmcp/pkg/pipeline"
	"github.com/NERVsystems/trailmcp/pkg/weather"
)

// GetWeatherTool returns a tool definition for a point forecast
func GetWeatherTool() mcp.Tool {
	return mcp.NewTool("get_weather",
		mcp.WithDescription("Get the next hours of temperature and precipitation for a point, with a summary"),
		mcp.WithNumber("lat",
			mcp.Required(),
			mcp.Description("Latitude"),
		),
		mcp.WithNumber("lon",
			mcp.Required(),
			mcp.Description("Longitude"),
		),
		mcp.WithNumber("hours",
			mcp.Description("Number of hours to return (clamped to 1-24)"),
			mcp.DefaultNumber(24),
		),
	)
}

// HandleGetWeather implements the point forecast
func (r *Registry) HandleGetWeather(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lat := mcp.ParseFloat64(req, "lat", 0)
	lon := mcp.ParseFloat64(req, "lon", 0)
	hours := parseHours(req, weather.MaxHours)

	forecast, err := r.svc.GetWeather(ctx, lat, lon, hours)
	if err != nil {
		return ErrorWithGuidance(err), nil
	}
	return jsonResult(forecast)
}

// WeatherForTrailTool returns a tool definition for the trail forecast
func WeatherForTrailTool() mcp.Tool {
	return mcp.NewTool("weather_for_trail",
		mcp.WithDescription("Find a trail by (partial) name and return its location and hourly forecast. "+
			"Pass lat and lon to search near a point; otherwise the whole region is searched."),
		mcp.WithString("trail_name",
			mcp.Required(),
			mcp.Description("Trail name, for example 'Ha Ling Peak'"),
		),
		mcp.WithNumber("hours",
			mcp.Description("Number of forecast hours (clamped to 1-24)"),
			mcp.DefaultNumber(pipeline.DefaultTrailHours),
		),
		mcp.WithNumber("lat",
			mcp.Description("Optional latitude near the trail"),
		),
		mcp.WithNumber("lon",
			mcp.Description("Optional longitude near the trail"),
		),
		mcp.WithNumber("radius_km",
			mcp.Description("Search radius around lat/lon in kilometers"),
			mcp.DefaultNumber(pipeline.DefaultTrailRadiusKm),
		),
	)
}

// HandleWeatherForTrail implements the trail forecast
func (r *Registry) HandleWeatherForTrail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := pipeline.NewTrailWeatherRequest(mcp.ParseString(req, "trail_name", ""))
	in.Hours = parseHours(req, pipeline.DefaultTrailHours)
	in.RadiusKm = mcp.ParseFloat64(req, "radius_km", pipeline.DefaultTrailRadiusKm)
	in.Lat = optionalFloat(req, "lat")
	in.Lon = optionalFloat(req, "lon")

	result, err := r.svc.WeatherForTrail(ctx, in)
	if err != nil {
		return ErrorWithGuidance(err), nil
	}
	return jsonResult(result)
}

// optionalFloat returns nil when key is absent or null.
func optionalFloat(req mcp.CallToolRequest, key string) *float64 {
	if mcp.ParseArgument(req, key, nil) == nil {
		return nil
	}
	v := mcp.ParseFloat64(req, key, 0)
	return &v
}

// parseHours reads the hours argument, clamped to the forecast window before
// converting so oversized numbers cannot overflow.
func parseHours(req mcp.CallToolRequest, def int) int {
	v := mcp.ParseFloat64(req, "hours", float64(def))
	if math.IsNaN(v) {
		return def
	}
	return int(max(weather.MinHours, min(v, weather.MaxHours)))
}
