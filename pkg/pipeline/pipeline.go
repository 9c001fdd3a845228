// Package pipeline composes the geocoder, trail finder and weather fetcher
// into the two end-to-end operations exposed to clients: trail
// recommendations near a place and the forecast for a named trail.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/NERVsystems/trailmcp/pkg/apperr"
	"github.com/NERVsystems/trailmcp/pkg/geo"
	"github.com/NERVsystems/trailmcp/pkg/trails"
	"github.com/NERVsystems/trailmcp/pkg/weather"
)

// Geocoder resolves a place name to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (geo.Coordinate, error)
}

// TrailFinder searches for trails.
type TrailFinder interface {
	FindNear(ctx context.Context, lat, lon, radiusKm float64, filters trails.Filters) ([]trails.Feature, error)
	FindInBbox(ctx context.Context, bb geo.BoundingBox, filters trails.Filters) ([]trails.Feature, error)
}

// WeatherFetcher retrieves trimmed forecasts.
type WeatherFetcher interface {
	GetWeather(ctx context.Context, lat, lon float64, hours int) (weather.Forecast, error)
}

// PlaceResult is a geocoded place; Name is the input string as given.
type PlaceResult struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Recommendation is the result of RecommendNearPlace.
type Recommendation struct {
	Place   PlaceResult      `json:"place"`
	Trails  []trails.Feature `json:"trails"`
	Weather weather.Forecast `json:"weather"`
}

// TrailWeather is the result of WeatherForTrail.
type TrailWeather struct {
	Trail    trails.Feature   `json:"trail"`
	Forecast weather.Forecast `json:"forecast"`
}

// Service runs the pipeline operations against its collaborators.
type Service struct {
	geocoder Geocoder
	finder   TrailFinder
	weather  WeatherFetcher
	matcher  *trails.Matcher
	region   geo.BoundingBox
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMatcher replaces the trail name matcher.
func WithMatcher(m *trails.Matcher) Option {
	return func(s *Service) {
		if m != nil {
			s.matcher = m
		}
	}
}

// WithRegion sets the bounding box searched when a trail lookup has no
// coordinates.
func WithRegion(bb geo.BoundingBox) Option {
	return func(s *Service) {
		s.region = bb
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a pipeline service.
func NewService(g Geocoder, f TrailFinder, w WeatherFetcher, opts ...Option) *Service {
	s := &Service{
		geocoder: g,
		finder:   f,
		weather:  w,
		matcher:  trails.NewMatcher(),
		region:   geo.AlbertaBBox,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "pipeline")
	return s
}

// Region returns the default trail search region.
func (s *Service) Region() geo.BoundingBox {
	return s.region
}

// Geocode resolves place to a PlaceResult.
func (s *Service) Geocode(ctx context.Context, place string) (PlaceResult, error) {
	coord, err := s.geocoder.Geocode(ctx, place)
	if err != nil {
		return PlaceResult{}, err
	}
	return PlaceResult{Name: place, Lat: coord.Lat, Lon: coord.Lon}, nil
}

// FindNear returns trails around a point.
func (s *Service) FindNear(ctx context.Context, lat, lon, radiusKm float64, filters trails.Filters) ([]trails.Feature, error) {
	return s.finder.FindNear(ctx, lat, lon, radiusKm, filters)
}

// FindInBbox returns trails inside a bounding box.
func (s *Service) FindInBbox(ctx context.Context, bb geo.BoundingBox, filters trails.Filters) ([]trails.Feature, error) {
	return s.finder.FindInBbox(ctx, bb, filters)
}

// GetWeather returns the forecast at a point.
func (s *Service) GetWeather(ctx context.Context, lat, lon float64, hours int) (weather.Forecast, error) {
	return s.weather.GetWeather(ctx, lat, lon, hours)
}

// RecommendNearPlace geocodes the place, then fetches nearby trails and
// the forecast at the place. Any failure aborts the whole operation.
func (s *Service) RecommendNearPlace(ctx context.Context, req NearPlaceRequest) (Recommendation, error) {
	start := time.Now()

	place, err := s.Geocode(ctx, req.Place)
	if err != nil {
		return Recommendation{}, err
	}

	found, err := s.finder.FindNear(ctx, place.Lat, place.Lon, req.RadiusKm, req.Filters())
	if err != nil {
		return Recommendation{}, err
	}

	forecast, err := s.weather.GetWeather(ctx, place.Lat, place.Lon, req.Hours)
	if err != nil {
		return Recommendation{}, err
	}

	s.logger.Info("recommendation ready",
		"place", req.Place,
		"trails", len(found),
		"duration", time.Since(start))

	return Recommendation{Place: place, Trails: found, Weather: forecast}, nil
}

// WeatherForTrail finds the named trail, near the given coordinates when
// both are set or in the default region otherwise, and returns its
// forecast.
func (s *Service) WeatherForTrail(ctx context.Context, req TrailWeatherRequest) (TrailWeather, error) {
	name := strings.TrimSpace(req.TrailName)
	if name == "" {
		return TrailWeather{}, apperr.Validation("trail name must not be empty")
	}

	var (
		candidates []trails.Feature
		err        error
	)
	filters := trails.Filters{NaturalOnly: true}
	if req.Lat != nil && req.Lon != nil {
		candidates, err = s.finder.FindNear(ctx, *req.Lat, *req.Lon, req.RadiusKm, filters)
	} else {
		candidates, err = s.finder.FindInBbox(ctx, s.region, filters)
	}
	if err != nil {
		return TrailWeather{}, err
	}
	if len(candidates) == 0 {
		return TrailWeather{}, apperr.NotFound(apperr.GuidanceNoTrails, "no trails found in the search area")
	}

	match, err := s.matcher.Pick(candidates, name)
	if err != nil {
		return TrailWeather{}, err
	}
	chosen := match.Feature
	if !chosen.HasCoordinates() {
		return TrailWeather{}, apperr.NotFound(apperr.GuidanceTrailNotFound,
			"trail %q has no coordinates in OSM center data", chosen.Name)
	}

	s.logger.Debug("trail matched",
		"query", name,
		"trail", chosen.Name,
		"osm_id", fmt.Sprintf("%s/%d", chosen.OSMType, chosen.ID),
		"method", match.Method,
		"score", match.Score)

	forecast, err := s.weather.GetWeather(ctx, chosen.Lat, chosen.Lon, req.Hours)
	if err != nil {
		return TrailWeather{}, err
	}

	return TrailWeather{Trail: chosen, Forecast: forecast}, nil
}
