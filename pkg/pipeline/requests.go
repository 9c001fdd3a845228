package pipeline

import "github.com/NERVsystems/trailmcp/pkg/trails"

// Request defaults
const (
	DefaultNearRadiusKm  = 12.0
	DefaultNearHours     = 12
	DefaultTrailRadiusKm = 15.0
	DefaultTrailHours    = 24
)

// NearPlaceRequest are the inputs of RecommendNearPlace.
type NearPlaceRequest struct {
	Place       string  `json:"place" form:"place"`
	RadiusKm    float64 `json:"radius_km" form:"radius_km"`
	Hours       int     `json:"hours" form:"hours"`
	HardOnly    bool    `json:"hard_only" form:"hard_only"`
	NaturalOnly bool    `json:"natural_only" form:"natural_only"`
}

// NewNearPlaceRequest returns a request for place with the default radius,
// hours and filters.
func NewNearPlaceRequest(place string) NearPlaceRequest {
	return NearPlaceRequest{
		Place:       place,
		RadiusKm:    DefaultNearRadiusKm,
		Hours:       DefaultNearHours,
		NaturalOnly: true,
	}
}

// Filters returns the trail filters carried by the request.
func (r NearPlaceRequest) Filters() trails.Filters {
	return trails.Filters{HardOnly: r.HardOnly, NaturalOnly: r.NaturalOnly}
}

// TrailWeatherRequest are the inputs of WeatherForTrail. Lat and Lon are
// used only when both are set.
type TrailWeatherRequest struct {
	TrailName string   `json:"trail_name" form:"trail_name"`
	Hours     int      `json:"hours" form:"hours"`
	Lat       *float64 `json:"lat,omitempty" form:"lat"`
	Lon       *float64 `json:"lon,omitempty" form:"lon"`
	RadiusKm  float64  `json:"radius_km" form:"radius_km"`
}

// NewTrailWeatherRequest returns a request for name with the default hours
// and radius and no coordinates.
func NewTrailWeatherRequest(name string) TrailWeatherRequest {
	return TrailWeatherRequest{
		TrailName: name,
		Hours:     DefaultTrailHours,
		RadiusKm:  DefaultTrailRadiusKm,
	}
}
