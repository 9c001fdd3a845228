package weather

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NERVsystems/trailmcp/pkg/apperr"
	"github.com/NERVsystems/trailmcp/pkg/testutil"
	"github.com/NERVsystems/trailmcp/pkg/upstream"
)

const openMeteoBody = `{
  "latitude": 51.08,
  "longitude": -115.35,
  "timezone": "America/Edmonton",
  "hourly": {
    "time": ["2025-07-01T00:00", "2025-07-01T01:00", "2025-07-01T02:00"],
    "temperature_2m": [12.34, 10.01, 9.5],
    "relative_humidity_2m": [50, 55, 60],
    "precipitation_probability": [0, 15, 30],
    "precipitation": [0, 0, 0.4]
  }
}`

func newTestFetcher(srv *testutil.FakeUpstream, opts ...Option) *Fetcher {
	httpClient := upstream.NewClient(
		upstream.WithRateLimiter(upstream.Unlimited()),
		upstream.WithLogger(testutil.DiscardLogger()),
	)
	opts = append([]Option{WithBaseURL(srv.URL), WithLogger(testutil.DiscardLogger())}, opts...)
	return NewFetcher(httpClient, opts...)
}

func TestGetWeather(t *testing.T) {
	srv := testutil.NewFakeUpstream(t, http.StatusOK, openMeteoBody)
	f := newTestFetcher(srv)

	fc, err := f.GetWeather(context.Background(), 51.08, -115.35, 2)
	require.NoError(t, err)
	assert.Len(t, fc.Hourly.Time, 2)
	require.NotNil(t, fc.Summary)
	assert.Equal(t, 10.0, fc.Summary.MinTemp)
	assert.Equal(t, 12.3, fc.Summary.MaxTemp)
	assert.False(t, fc.Summary.AnyPrecip)
	assert.Equal(t, 15, fc.Summary.MaxPrecipProb)

	q := srv.LastRequest().Query
	assert.Equal(t, "51.08", q.Get("latitude"))
	assert.Equal(t, "-115.35", q.Get("longitude"))
	assert.Equal(t, "temperature_2m,precipitation_probability,precipitation", q.Get("hourly"))
	assert.Equal(t, "2", q.Get("forecast_hours"))
	assert.Equal(t, "America/Edmonton", q.Get("timezone"))
}

func TestGetWeatherClampsHours(t *testing.T) {
	srv := testutil.NewFakeUpstream(t, http.StatusOK, openMeteoBody)
	f := newTestFetcher(srv, WithTimezone("America/Vancouver"))

	_, err := f.GetWeather(context.Background(), 51, -115, 500)
	require.NoError(t, err)
	assert.Equal(t, "24", srv.LastRequest().Query.Get("forecast_hours"))
	assert.Equal(t, "America/Vancouver", srv.LastRequest().Query.Get("timezone"))

	_, err = f.GetWeather(context.Background(), 51, -115, 0)
	require.NoError(t, err)
	assert.Equal(t, "1", srv.LastRequest().Query.Get("forecast_hours"))
}

func TestGetWeatherCache(t *testing.T) {
	srv := testutil.NewFakeUpstream(t, http.StatusOK, openMeteoBody)
	f := newTestFetcher(srv)
	ctx := context.Background()

	first, err := f.GetWeather(ctx, 51, -115, 24)
	require.NoError(t, err)
	first.Hourly.Time[0] = "mutated"

	second, err := f.GetWeather(ctx, 51, -115, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Calls())
	assert.Equal(t, "2025-07-01T00:00", second.Hourly.Time[0])

	_, err = f.GetWeather(ctx, 51, -115, 6)
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Calls())
}

func TestGetWeatherErrors(t *testing.T) {
	srv := testutil.NewFakeUpstream(t, http.StatusBadRequest, `{"error": true, "reason": "bad"}`)
	f := newTestFetcher(srv)

	_, err := f.GetWeather(context.Background(), 100, 0, 6)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, 0, srv.Calls())

	_, err = f.GetWeather(context.Background(), 51, -115, 6)
	assert.True(t, errors.Is(err, apperr.ErrUpstream))
}
