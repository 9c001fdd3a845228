// Package upstream performs the outbound HTTP calls to the geocoding, trail
// query and forecast services with shared rate limiting, timeouts and error
// classification.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/NERVsystems/trailmcp/pkg/apperr"
	"github.com/NERVsystems/trailmcp/pkg/version"
)

const (
	// Service names, used for rate limiting and error messages
	ServiceNominatim = "Nominatim"
	ServiceOverpass  = "Overpass"
	ServiceOpenMeteo = "Open-Meteo"

	// maxErrorBody bounds how much of a failed response is read for diagnostics
	maxErrorBody = 2000
)

// DefaultUserAgent is sent with every request unless overridden.
var DefaultUserAgent = version.UserAgent()

// Client is the shared HTTP client for all upstream services.
type Client struct {
	httpClient *http.Client
	limiter    *RateLimiter
	userAgent  string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimiter replaces the default per-service rate limiter.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(c *Client) {
		c.limiter = rl
	}
}

// WithUserAgent sets the User-Agent string.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client with connection pooling, tracing and the
// default rate limits.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: NewTracedHTTPClient(nil),
		limiter:    NewRateLimiter(DefaultLimits()),
		userAgent:  DefaultUserAgent,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewTracedHTTPClient wraps base (or a pooled default transport) with
// OpenTelemetry instrumentation. Without an installed tracer provider the
// instrumentation is a no-op. Per-call timeouts come from Request.Timeout.
func NewTracedHTTPClient(base http.RoundTripper) *http.Client {
	if base == nil {
		base = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}
	}
	return &http.Client{
		Transport: otelhttp.NewTransport(base),
	}
}

// UserAgent returns the User-Agent string sent with every request.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Request describes one outbound call.
type Request struct {
	Service string
	Method  string // defaults to GET
	URL     string
	Query   url.Values // appended to URL when non-empty
	Form    url.Values // sent as an urlencoded body when non-nil
	Timeout time.Duration
}

// FetchJSON performs r and decodes a successful JSON response into out.
// Every failure is returned as an *apperr.Error of kind upstream; bodies of
// non-success responses are logged before the error is returned.
func (c *Client) FetchJSON(ctx context.Context, r Request, out any) error {
	logger := c.logger.With("service", r.Service)

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	// Wait for rate limit
	if err := c.limiter.Wait(ctx, r.Service); err != nil {
		return apperr.Upstream(r.Service, 0, "request aborted while waiting for rate limit", apperr.GuidanceTimeout, err)
	}

	req, err := c.newRequest(ctx, r)
	if err != nil {
		logger.Error("failed to create request", "error", err)
		return apperr.Upstream(r.Service, 0, "failed to create request", apperr.GuidanceGeneral, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Error("request timed out", "timeout", r.Timeout, "error", err)
			return apperr.Upstream(r.Service, 0, fmt.Sprintf("request timed out after %s", r.Timeout), apperr.GuidanceTimeout, err)
		}
		logger.Error("failed to execute request", "error", err)
		return apperr.Upstream(r.Service, 0, "failed to communicate with service", "", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	// Process response
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logger.Error("service returned error",
			"status", resp.StatusCode,
			"body", string(body))
		return apperr.Upstream(r.Service, resp.StatusCode,
			fmt.Sprintf("unexpected status %s", resp.Status), "", nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logger.Error("failed to decode response", "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return apperr.Upstream(r.Service, 0, fmt.Sprintf("request timed out after %s", r.Timeout), apperr.GuidanceTimeout, err)
		}
		return apperr.Upstream(r.Service, resp.StatusCode, "failed to parse response", apperr.GuidanceDataError, err)
	}

	logger.Debug("request completed",
		"status", resp.StatusCode,
		"duration", time.Since(start))
	return nil
}

func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	reqURL, err := url.Parse(r.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if len(r.Query) > 0 {
		q := reqURL.Query()
		for k, vs := range r.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		reqURL.RawQuery = q.Encode()
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if r.Form != nil {
		body = strings.NewReader(r.Form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if r.Form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}
