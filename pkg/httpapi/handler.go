// Package httpapi exposes the trail and weather operations as a JSON API.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NERVsystems/trailmcp/pkg/geo"
	"github.com/NERVsystems/trailmcp/pkg/pipeline"
	"github.com/NERVsystems/trailmcp/pkg/trails"
	"github.com/NERVsystems/trailmcp/pkg/version"
	"github.com/NERVsystems/trailmcp/pkg/weather"
)

// Service is the pipeline surface the handlers call into.
type Service interface {
	Geocode(ctx context.Context, place string) (pipeline.PlaceResult, error)
	FindNear(ctx context.Context, lat, lon, radiusKm float64, filters trails.Filters) ([]trails.Feature, error)
	FindInBbox(ctx context.Context, bb geo.BoundingBox, filters trails.Filters) ([]trails.Feature, error)
	GetWeather(ctx context.Context, lat, lon float64, hours int) (weather.Forecast, error)
	RecommendNearPlace(ctx context.Context, req pipeline.NearPlaceRequest) (pipeline.Recommendation, error)
	WeatherForTrail(ctx context.Context, req pipeline.TrailWeatherRequest) (pipeline.TrailWeather, error)
}

// Handler serves the JSON API.
type Handler struct {
	svc    Service
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.With("component", "httpapi")}
}

// NewRouter builds a gin engine with the middleware and all routes.
func NewRouter(svc Service, logger *slog.Logger) *gin.Engine {
	h := NewHandler(svc, logger)

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Logger(h.logger))
	h.RegisterRoutes(&r.RouterGroup)
	return r
}

// RegisterRoutes registers all API routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/healthz", h.Health)

	v1 := r.Group("/v1")
	{
		v1.GET("/geocode", h.Geocode)
		v1.GET("/trails/near", h.TrailsNear)
		v1.GET("/trails/bbox", h.TrailsInBbox)
		v1.GET("/trails/weather", h.WeatherForTrail)
		v1.GET("/weather", h.Weather)
		v1.GET("/recommend", h.Recommend)
	}
}

// Health reports liveness and the build metadata.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "build": version.Info()})
}

type geocodeInput struct {
	Place string `form:"place" binding:"required"`
}

// Geocode resolves a place name.
func (h *Handler) Geocode(c *gin.Context) {
	var in geocodeInput
	if err := c.ShouldBindQuery(&in); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.Geocode(c.Request.Context(), in.Place)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, result)
}

type filterInput struct {
	HardOnly    bool `form:"hard_only"`
	NaturalOnly bool `form:"natural_only,default=true"`
}

func (f filterInput) filters() trails.Filters {
	return trails.Filters{HardOnly: f.HardOnly, NaturalOnly: f.NaturalOnly}
}

type nearInput struct {
	Lat      *float64 `form:"lat" binding:"required"`
	Lon      *float64 `form:"lon" binding:"required"`
	RadiusKm float64  `form:"radius_km,default=12"`
	filterInput
}

// TrailsNear finds trails around a point.
func (h *Handler) TrailsNear(c *gin.Context) {
	var in nearInput
	if err := c.ShouldBindQuery(&in); err != nil {
		BadRequest(c, err.Error())
		return
	}

	found, err := h.svc.FindNear(c.Request.Context(), *in.Lat, *in.Lon, in.RadiusKm, in.filters())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, found)
}

type bboxInput struct {
	MinLat *float64 `form:"min_lat" binding:"required"`
	MinLon *float64 `form:"min_lon" binding:"required"`
	MaxLat *float64 `form:"max_lat" binding:"required"`
	MaxLon *float64 `form:"max_lon" binding:"required"`
	filterInput
}

// TrailsInBbox finds trails inside a bounding box.
func (h *Handler) TrailsInBbox(c *gin.Context) {
	var in bboxInput
	if err := c.ShouldBindQuery(&in); err != nil {
		BadRequest(c, err.Error())
		return
	}

	bb := geo.BoundingBox{MinLat: *in.MinLat, MinLon: *in.MinLon, MaxLat: *in.MaxLat, MaxLon: *in.MaxLon}
	found, err := h.svc.FindInBbox(c.Request.Context(), bb, in.filters())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, found)
}

type weatherInput struct {
	Lat   *float64 `form:"lat" binding:"required"`
	Lon   *float64 `form:"lon" binding:"required"`
	Hours int      `form:"hours,default=24"`
}

// Weather returns the forecast at a point.
func (h *Handler) Weather(c *gin.Context) {
	var in weatherInput
	if err := c.ShouldBindQuery(&in); err != nil {
		BadRequest(c, err.Error())
		return
	}

	forecast, err := h.svc.GetWeather(c.Request.Context(), *in.Lat, *in.Lon, in.Hours)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, forecast)
}

// WeatherForTrail finds a trail by name and returns its forecast.
func (h *Handler) WeatherForTrail(c *gin.Context) {
	in := pipeline.NewTrailWeatherRequest("")
	if err := c.ShouldBindQuery(&in); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.WeatherForTrail(c.Request.Context(), in)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, result)
}

// Recommend runs the recommendation pipeline for a place.
func (h *Handler) Recommend(c *gin.Context) {
	in := pipeline.NewNearPlaceRequest("")
	if err := c.ShouldBindQuery(&in); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.RecommendNearPlace(c.Request.Context(), in)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, result)
}
