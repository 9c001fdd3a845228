// Package geocode resolves place names to coordinates with OSM Nominatim.
package geocode

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NERVsystems/trailmcp/pkg/apperr"
	"github.com/NERVsystems/trailmcp/pkg/geo"
	"github.com/NERVsystems/trailmcp/pkg/osm"
	"github.com/NERVsystems/trailmcp/pkg/upstream"
)

const (
	// DefaultRegion disambiguates place names within the target region
	DefaultRegion = "Alberta, Canada"

	// DefaultTimeout bounds one geocoding call
	DefaultTimeout = 10 * time.Second
)

// Client geocodes place names. Results are not cached.
type Client struct {
	http    *upstream.Client
	baseURL string
	region  string
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Nominatim base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithRegion sets the region qualifier appended to every query.
func WithRegion(region string) Option {
	return func(c *Client) {
		c.region = region
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Nominatim geocoder.
func NewClient(client *upstream.Client, opts ...Option) *Client {
	c := &Client{
		http:    client,
		baseURL: osm.NominatimBaseURL,
		region:  DefaultRegion,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "geocoder")
	return c
}

// Region returns the configured region qualifier.
func (c *Client) Region() string {
	return c.region
}

// Geocode resolves place within the configured region.
func (c *Client) Geocode(ctx context.Context, place string) (geo.Coordinate, error) {
	return c.GeocodeInRegion(ctx, place, c.region)
}

// searchResult is one Nominatim /search hit; lat and lon are string-encoded.
type searchResult struct {
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Type        string  `json:"type"`
	Importance  float64 `json:"importance"`
}

// GeocodeInRegion resolves place, qualified with region when it is not empty.
func (c *Client) GeocodeInRegion(ctx context.Context, place, region string) (geo.Coordinate, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return geo.Coordinate{}, apperr.Validation("place must not be empty")
	}

	query := place
	if region = strings.TrimSpace(region); region != "" {
		query = place + ", " + region
	}

	var results []searchResult
	err := c.http.FetchJSON(ctx, upstream.Request{
		Service: upstream.ServiceNominatim,
		URL:     c.baseURL + "/search",
		Query: url.Values{
			"q":      {query},
			"format": {"json"},
			"limit":  {"1"},
		},
		Timeout: c.timeout,
	}, &results)
	if err != nil {
		return geo.Coordinate{}, err
	}

	// Handle no results
	if len(results) == 0 {
		c.logger.Info("no geocoding results", "query", query)
		return geo.Coordinate{}, apperr.NotFound(apperr.GuidanceGeocodeNoResults,
			"could not geocode %q in %s", place, regionOrAnywhere(region))
	}

	// Convert lat/lon to float64
	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return geo.Coordinate{}, apperr.Upstream(upstream.ServiceNominatim, 0,
			"result has malformed coordinates", apperr.GuidanceDataError, nil)
	}

	coord := geo.Coordinate{Lat: lat, Lon: lon}
	if err := coord.Validate(); err != nil {
		return geo.Coordinate{}, apperr.Upstream(upstream.ServiceNominatim, 0,
			"result has out-of-range coordinates", apperr.GuidanceDataError, err)
	}

	c.logger.Debug("geocoded place",
		"query", query,
		"display_name", results[0].DisplayName,
		"lat", lat,
		"lon", lon)
	return coord, nil
}

func regionOrAnywhere(region string) string {
	if region == "" {
		return "any region"
	}
	return region
}
