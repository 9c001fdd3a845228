package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NERVsystems/trailmcp/pkg/geo"
	"github.com/NERVsystems/trailmcp/pkg/upstream"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, TransportStdio, cfg.Server.Transport)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "Alberta, Canada", cfg.Region.Name)
	assert.Equal(t, "America/Edmonton", cfg.Region.Timezone)
	assert.Equal(t, geo.AlbertaBBox, cfg.Region.BBox)
	assert.Equal(t, upstream.DefaultUserAgent, cfg.Upstream.UserAgent)
	assert.Equal(t, upstream.Limit{RPS: 1, Burst: 1}, cfg.Upstream.Nominatim)
	assert.Equal(t, 30*time.Second, cfg.Timeouts.TrailsNear)
	assert.Equal(t, 60*time.Second, cfg.Timeouts.TrailsBbox)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Weather)
	assert.Equal(t, 256, cfg.Cache.TrailsNear)
	assert.Equal(t, 64, cfg.Cache.TrailsBbox)
	assert.Equal(t, 256, cfg.Cache.Weather)
	assert.Zero(t, cfg.Cache.TTL)
	assert.Equal(t, 0.6, cfg.Matcher.Threshold)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  transport: http
  addr: ":9090"
region:
  name: "British Columbia, Canada"
  timezone: America/Vancouver
  bbox:
    min_lat: 48.3
    min_lon: -139.1
    max_lat: 60
    max_lon: -114
upstream:
  overpass:
    rps: 0.5
    burst: 1
cache:
  ttl: 15m
timeouts:
  trails_bbox: 90s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, TransportHTTP, cfg.Server.Transport)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "British Columbia, Canada", cfg.Region.Name)
	assert.Equal(t, "America/Vancouver", cfg.Region.Timezone)
	assert.Equal(t, geo.BoundingBox{MinLat: 48.3, MinLon: -139.1, MaxLat: 60, MaxLon: -114}, cfg.Region.BBox)
	assert.Equal(t, upstream.Limit{RPS: 0.5, Burst: 1}, cfg.Upstream.Overpass)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 90*time.Second, cfg.Timeouts.TrailsBbox)
	// untouched keys keep their defaults
	assert.Equal(t, 30*time.Second, cfg.Timeouts.TrailsNear)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRAILMCP_REGION_NAME", "Yukon, Canada")
	t.Setenv("TRAILMCP_LOG_LEVEL", "debug")
	t.Setenv("TRAILMCP_CACHE_WEATHER", "32")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Yukon, Canada", cfg.Region.Name)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 32, cfg.Cache.Weather)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad transport", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server:\n  transport: grpc\n"))
		assert.ErrorContains(t, err, "server.transport")
	})

	t.Run("inverted bbox", func(t *testing.T) {
		_, err := Load(writeConfig(t, "region:\n  bbox:\n    min_lat: 60\n    max_lat: 49\n"))
		assert.ErrorContains(t, err, "region.bbox")
	})

	t.Run("bad threshold", func(t *testing.T) {
		_, err := Load(writeConfig(t, "matcher:\n  threshold: 1.5\n"))
		assert.ErrorContains(t, err, "matcher.threshold")
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLoggerTo(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Log: LogConfig{Level: "warn", Format: "json"}}
	logger := cfg.NewLoggerTo(&buf)

	logger.Info("dropped")
	logger.Warn("kept", "k", "v")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
}
