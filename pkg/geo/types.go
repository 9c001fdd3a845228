// Package geo provides common geographic types and calculations.
// It centralizes coordinate and bounding-box handling so every component
// validates and formats locations the same way.
package geo

import (
	"fmt"
	"math"
	"strconv"

	"github.com/NERVsystems/trailmcp/pkg/apperr"
)

// Coordinate represents a geographic coordinate (latitude and longitude)
// with the JSON field names used on the wire.
//
// Example:
//
//	c := geo.Coordinate{Lat: 51.0890, Lon: -115.3441}
//	if err := c.Validate(); err != nil { ... }
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the coordinate is finite and within range.
func (c Coordinate) Validate() error {
	return ValidateCoords(c.Lat, c.Lon)
}

// Valid reports whether Validate would succeed.
func (c Coordinate) Valid() bool {
	return c.Validate() == nil
}

// ValidateCoords returns a validation error for an out-of-range latitude or longitude.
func ValidateCoords(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return apperr.Validation("invalid latitude value: %v (must be between -90 and 90)", lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return apperr.Validation("invalid longitude value: %v (must be between -180 and 180)", lon)
	}
	return nil
}

// BoundingBox represents a geographic bounding box with southwest and northeast corners
type BoundingBox struct {
	MinLat float64 `json:"min_lat" mapstructure:"min_lat"` // Southern edge
	MinLon float64 `json:"min_lon" mapstructure:"min_lon"` // Western edge
	MaxLat float64 `json:"max_lat" mapstructure:"max_lat"` // Northern edge
	MaxLon float64 `json:"max_lon" mapstructure:"max_lon"` // Eastern edge
}

// AlbertaBBox is the approximate extent of Alberta, Canada (S, W, N, E).
var AlbertaBBox = BoundingBox{MinLat: 49.0, MinLon: -120.0, MaxLat: 60.0, MaxLon: -110.0}

// Validate checks both corners and rejects inverted bounds.
func (bb BoundingBox) Validate() error {
	if err := ValidateCoords(bb.MinLat, bb.MinLon); err != nil {
		return err
	}
	if err := ValidateCoords(bb.MaxLat, bb.MaxLon); err != nil {
		return err
	}
	if bb.MinLat > bb.MaxLat {
		return apperr.Validation("invalid bbox: min_lat %v is greater than max_lat %v", bb.MinLat, bb.MaxLat)
	}
	if bb.MinLon > bb.MaxLon {
		return apperr.Validation("invalid bbox: min_lon %v is greater than max_lon %v", bb.MinLon, bb.MaxLon)
	}
	return nil
}

// String returns the bounding box in Overpass order: (south,west,north,east).
// Values keep the precision they were given with.
func (bb BoundingBox) String() string {
	return fmt.Sprintf("(%s,%s,%s,%s)",
		FormatDegrees(bb.MinLat), FormatDegrees(bb.MinLon),
		FormatDegrees(bb.MaxLat), FormatDegrees(bb.MaxLon))
}

// FormatDegrees formats a coordinate without padding or loss of precision.
func FormatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
