// Package config loads trailmcp settings from an optional YAML file and
// TRAILMCP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/NERVsystems/trailmcp/pkg/geo"
	"github.com/NERVsystems/trailmcp/pkg/osm"
	"github.com/NERVsystems/trailmcp/pkg/upstream"
	"github.com/NERVsystems/trailmcp/pkg/weather"
)

// EnvPrefix is prepended to every environment override, e.g.
// TRAILMCP_REGION_NAME for region.name.
const EnvPrefix = "TRAILMCP"

// Transports
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Region   RegionConfig   `mapstructure:"region"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Timeouts TimeoutConfig  `mapstructure:"timeouts"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Matcher  MatcherConfig  `mapstructure:"matcher"`
	Prompt   PromptConfig   `mapstructure:"prompt"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Transport       string        `mapstructure:"transport"` // stdio, http
	Addr            string        `mapstructure:"addr"`
	GinMode         string        `mapstructure:"gin_mode"` // debug, release, test
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// RegionConfig describes the area the service is tuned for
type RegionConfig struct {
	Name     string          `mapstructure:"name"`     // appended to geocoding queries
	Timezone string          `mapstructure:"timezone"` // forecast timestamps
	BBox     geo.BoundingBox `mapstructure:"bbox"`     // searched by weather_for_trail without coordinates
}

// UpstreamConfig holds the external service endpoints and limits
type UpstreamConfig struct {
	UserAgent    string         `mapstructure:"user_agent"`
	NominatimURL string         `mapstructure:"nominatim_url"`
	OverpassURL  string         `mapstructure:"overpass_url"`
	OpenMeteoURL string         `mapstructure:"open_meteo_url"`
	Nominatim    upstream.Limit `mapstructure:"nominatim"`
	Overpass     upstream.Limit `mapstructure:"overpass"`
	OpenMeteo    upstream.Limit `mapstructure:"open_meteo"`
}

// Limits returns the rate limits keyed by service name.
func (u UpstreamConfig) Limits() map[string]upstream.Limit {
	return map[string]upstream.Limit{
		upstream.ServiceNominatim: u.Nominatim,
		upstream.ServiceOverpass:  u.Overpass,
		upstream.ServiceOpenMeteo: u.OpenMeteo,
	}
}

// TimeoutConfig holds per-call upstream timeouts
type TimeoutConfig struct {
	Geocode    time.Duration `mapstructure:"geocode"`
	TrailsNear time.Duration `mapstructure:"trails_near"`
	TrailsBbox time.Duration `mapstructure:"trails_bbox"`
	Weather    time.Duration `mapstructure:"weather"`
}

// CacheConfig holds cache capacities; a zero TTL keeps entries until evicted
type CacheConfig struct {
	TrailsNear int           `mapstructure:"trails_near"`
	TrailsBbox int           `mapstructure:"trails_bbox"`
	Weather    int           `mapstructure:"weather"`
	TTL        time.Duration `mapstructure:"ttl"`
}

// MatcherConfig tunes trail name matching
type MatcherConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

// PromptConfig locates the agent system prompt
type PromptConfig struct {
	File string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	limits := upstream.DefaultLimits()

	v.SetDefault("server.transport", TransportStdio)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("region.name", "Alberta, Canada")
	v.SetDefault("region.timezone", weather.DefaultTimezone)
	v.SetDefault("region.bbox.min_lat", geo.AlbertaBBox.MinLat)
	v.SetDefault("region.bbox.min_lon", geo.AlbertaBBox.MinLon)
	v.SetDefault("region.bbox.max_lat", geo.AlbertaBBox.MaxLat)
	v.SetDefault("region.bbox.max_lon", geo.AlbertaBBox.MaxLon)

	v.SetDefault("upstream.user_agent", upstream.DefaultUserAgent)
	v.SetDefault("upstream.nominatim_url", osm.NominatimBaseURL)
	v.SetDefault("upstream.overpass_url", osm.OverpassBaseURL)
	v.SetDefault("upstream.open_meteo_url", weather.DefaultBaseURL)
	for key, service := range map[string]string{
		"nominatim":  upstream.ServiceNominatim,
		"overpass":   upstream.ServiceOverpass,
		"open_meteo": upstream.ServiceOpenMeteo,
	} {
		v.SetDefault("upstream."+key+".rps", limits[service].RPS)
		v.SetDefault("upstream."+key+".burst", limits[service].Burst)
	}

	v.SetDefault("timeouts.geocode", 10*time.Second)
	v.SetDefault("timeouts.trails_near", 30*time.Second)
	v.SetDefault("timeouts.trails_bbox", 60*time.Second)
	v.SetDefault("timeouts.weather", weather.DefaultTimeout)

	v.SetDefault("cache.trails_near", 256)
	v.SetDefault("cache.trails_bbox", 64)
	v.SetDefault("cache.weather", weather.DefaultCacheSize)
	v.SetDefault("cache.ttl", time.Duration(0))

	v.SetDefault("matcher.threshold", 0.6)

	v.SetDefault("prompt.file", "prompts/parse_pref.txt")
}

// Load reads configuration from file and environment variables. When path
// is empty, config.yaml is searched in ., ./config and $HOME/.trailmcp and
// a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.trailmcp")
	}

	// Read from environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail only at request time.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("invalid server.transport %q (want %q or %q)", c.Server.Transport, TransportStdio, TransportHTTP)
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server.gin_mode %q (want debug, release or test)", c.Server.GinMode)
	}
	if err := c.Region.BBox.Validate(); err != nil {
		return fmt.Errorf("invalid region.bbox: %w", err)
	}
	if c.Matcher.Threshold <= 0 || c.Matcher.Threshold > 1 {
		return fmt.Errorf("invalid matcher.threshold %v (want a value in (0, 1])", c.Matcher.Threshold)
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a logger on stderr; stdout carries MCP frames.
func (c *Config) NewLogger() *slog.Logger {
	return c.NewLoggerTo(os.Stderr)
}

// NewLoggerTo creates a logger writing to w in the configured format.
func (c *Config) NewLoggerTo(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(c.Log.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default: // "text" or anything else
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
