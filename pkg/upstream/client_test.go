package upstream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NERVsystems/trailmcp/pkg/apperr"
	"github.com/NERVsystems/trailmcp/pkg/testutil"
)

func newTestClient(w io.Writer) *Client {
	return NewClient(
		WithRateLimiter(Unlimited()),
		WithUserAgent("TrailMCP-test/1.0"),
		WithLogger(testutil.NewTestLogger(w)),
	)
}

func TestFetchJSONGet(t *testing.T) {
	srv := testutil.NewFakeUpstream(t, http.StatusOK, `{"name":"Canmore"}`)
	c := newTestClient(nil)

	var out struct {
		Name string `json:"name"`
	}
	err := c.FetchJSON(context.Background(), Request{
		Service: ServiceNominatim,
		URL:     srv.URL + "/search",
		Query:   url.Values{"q": {"Canmore, Alberta, Canada"}, "limit": {"1"}},
		Timeout: time.Second,
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Canmore", out.Name)

	last := srv.LastRequest()
	assert.Equal(t, http.MethodGet, last.Method)
	assert.Equal(t, "/search", last.Path)
	assert.Equal(t, "Canmore, Alberta, Canada", last.Query.Get("q"))
	assert.Equal(t, "TrailMCP-test/1.0", last.Header.Get("User-Agent"))
}

func TestFetchJSONPostForm(t *testing.T) {
	srv := testutil.NewFakeUpstream(t, http.StatusOK, `{"elements":[]}`)
	c := newTestClient(nil)

	var out map[string]any
	err := c.FetchJSON(context.Background(), Request{
		Service: ServiceOverpass,
		Method:  http.MethodPost,
		URL:     srv.URL,
		Form:    url.Values{"data": {"[out:json];way(1,2,3,4);out;"}},
	}, &out)
	require.NoError(t, err)

	last := srv.LastRequest()
	assert.Equal(t, http.MethodPost, last.Method)
	assert.Equal(t, "[out:json];way(1,2,3,4);out;", last.Form.Get("data"))
	assert.Equal(t, "application/x-www-form-urlencoded", last.Header.Get("Content-Type"))
}

func TestFetchJSONErrorStatusLogsBody(t *testing.T) {
	srv := testutil.NewFakeUpstream(t, http.StatusTooManyRequests, `rate_limited: please slow down`)
	buf := &bytes.Buffer{}
	c := newTestClient(buf)

	var out map[string]any
	err := c.FetchJSON(context.Background(), Request{Service: ServiceOverpass, URL: srv.URL}, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUpstream)

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusTooManyRequests, appErr.StatusCode)
	assert.Equal(t, ServiceOverpass, appErr.Service)
	assert.Contains(t, buf.String(), "please slow down")
}

func TestFetchJSONTimeout(t *testing.T) {
	srv := testutil.NewFakeUpstream(t, http.StatusOK, `{}`)
	srv.SetDelay(500 * time.Millisecond)
	c := newTestClient(nil)

	var out map[string]any
	err := c.FetchJSON(context.Background(), Request{
		Service: ServiceOpenMeteo,
		URL:     srv.URL,
		Timeout: 20 * time.Millisecond,
	}, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUpstream)
	assert.Equal(t, apperr.GuidanceTimeout, apperr.GuidanceOf(err))
}

func TestFetchJSONMalformedBody(t *testing.T) {
	srv := testutil.NewFakeUpstream(t, http.StatusOK, `not json`)
	c := newTestClient(nil)

	var out map[string]any
	err := c.FetchJSON(context.Background(), Request{Service: ServiceOpenMeteo, URL: srv.URL}, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUpstream)
	assert.Equal(t, apperr.GuidanceDataError, apperr.GuidanceOf(err))
}

func TestFetchJSONUnreachable(t *testing.T) {
	c := newTestClient(nil)

	var out map[string]any
	err := c.FetchJSON(context.Background(), Request{
		Service: ServiceNominatim,
		URL:     "http://127.0.0.1:1/search",
		Timeout: time.Second,
	}, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUpstream)
}

func TestRateLimiterWait(t *testing.T) {
	rl := NewRateLimiter(map[string]Limit{
		ServiceNominatim: {RPS: 0.01, Burst: 1},
	})

	// First event is covered by the burst
	require.NoError(t, rl.Wait(context.Background(), ServiceNominatim))

	// Second one would wait ~100s and must give up with the context
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.Wait(ctx, ServiceNominatim))

	// Unknown services are not limited
	assert.NoError(t, rl.Wait(ctx, "unknown"))

	// Disabled limit never blocks
	rl.SetLimit(ServiceNominatim, Limit{RPS: 0})
	assert.NoError(t, rl.Wait(context.Background(), ServiceNominatim))
}
