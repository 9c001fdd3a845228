package weather

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NERVsystems/trailmcp/pkg/cache"
	"github.com/NERVsystems/trailmcp/pkg/geo"
	"github.com/NERVsystems/trailmcp/pkg/upstream"
)

const (
	DefaultBaseURL   = "https://api.open-meteo.com/v1/forecast"
	DefaultTimezone  = "America/Edmonton"
	DefaultTimeout   = 10 * time.Second
	DefaultCacheSize = 256
)

type cacheKey struct {
	Lat, Lon float64
	Hours    int
}

// Fetcher retrieves forecasts from Open-Meteo. Results are memoized per
// (lat, lon, clamped hours).
type Fetcher struct {
	http     *upstream.Client
	baseURL  string
	timezone string
	timeout  time.Duration
	cache    *cache.LRU[cacheKey, Forecast]
	logger   *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL overrides the forecast endpoint.
func WithBaseURL(u string) Option {
	return func(f *Fetcher) {
		f.baseURL = u
	}
}

// WithTimezone sets the time zone used for the hourly timestamps.
func WithTimezone(tz string) Option {
	return func(f *Fetcher) {
		if tz != "" {
			f.timezone = tz
		}
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithCache sets the cache capacity and entry TTL (0 keeps entries until
// evicted).
func WithCache(size int, ttl time.Duration) Option {
	return func(f *Fetcher) {
		f.cache = cache.NewLRU[cacheKey, Forecast](size, ttl)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a weather fetcher.
func NewFetcher(client *upstream.Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		http:     client,
		baseURL:  DefaultBaseURL,
		timezone: DefaultTimezone,
		timeout:  DefaultTimeout,
		cache:    cache.NewLRU[cacheKey, Forecast](DefaultCacheSize, 0),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("component", "weather_fetcher")
	return f
}

// Timezone returns the configured forecast time zone.
func (f *Fetcher) Timezone() string {
	return f.timezone
}

type forecastResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Hourly    Hourly  `json:"hourly"`
}

// GetWeather returns the trimmed forecast for the next hours (clamped to
// [1, 24]) at a point.
func (f *Fetcher) GetWeather(ctx context.Context, lat, lon float64, hours int) (Forecast, error) {
	if err := geo.ValidateCoords(lat, lon); err != nil {
		return Forecast{}, err
	}
	hours = ClampHours(hours)

	key := cacheKey{Lat: lat, Lon: lon, Hours: hours}
	forecast, hit, err := f.cache.GetOrLoad(key, func() (Forecast, error) {
		var resp forecastResponse
		err := f.http.FetchJSON(ctx, upstream.Request{
			Service: upstream.ServiceOpenMeteo,
			Method:  http.MethodGet,
			URL:     f.baseURL,
			Query: url.Values{
				"latitude":       {geo.FormatDegrees(lat)},
				"longitude":      {geo.FormatDegrees(lon)},
				"hourly":         {strings.Join(HourlySeries, ",")},
				"forecast_hours": {strconv.Itoa(hours)},
				"timezone":       {f.timezone},
			},
			Timeout: f.timeout,
		}, &resp)
		if err != nil {
			return Forecast{}, err
		}
		return Slim(resp.Hourly, hours), nil
	})
	if err != nil {
		return Forecast{}, err
	}

	f.logger.Debug("forecast",
		"lat", lat,
		"lon", lon,
		"hours", hours,
		"samples", len(forecast.Hourly.Time),
		"has_summary", forecast.Summary != nil,
		"cache_hit", hit)
	return forecast.clone(), nil
}

// clone copies the series so callers cannot mutate cached data.
func (fc Forecast) clone() Forecast {
	out := Forecast{
		Hourly: Hourly{
			Time:                     truncate(fc.Hourly.Time, len(fc.Hourly.Time)),
			Temperature2m:            truncate(fc.Hourly.Temperature2m, len(fc.Hourly.Temperature2m)),
			PrecipitationProbability: truncate(fc.Hourly.PrecipitationProbability, len(fc.Hourly.PrecipitationProbability)),
			Precipitation:            truncate(fc.Hourly.Precipitation, len(fc.Hourly.Precipitation)),
		},
	}
	if fc.Summary != nil {
		s := *fc.Summary
		out.Summary = &s
	}
	return out
}
