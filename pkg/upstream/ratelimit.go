package upstream

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"
)

// Limit describes the sustained rate and burst allowed for one service.
// A non-positive RPS disables limiting for that service.
type Limit struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// DefaultLimits returns per-service limits following the public usage policies.
func DefaultLimits() map[string]Limit {
	return map[string]Limit{
		// Nominatim: 1 request per second
		// https://operations.osmfoundation.org/policies/nominatim/
		ServiceNominatim: {RPS: 1, Burst: 1},
		// Overpass mirrors tolerate short bursts; trail queries are heavy so keep it low
		ServiceOverpass: {RPS: 1, Burst: 2},
		ServiceOpenMeteo: {RPS: 5, Burst: 5},
	}
}

// RateLimiter manages rate limiting for the upstream services
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
}

// NewRateLimiter creates a limiter per configured service.
func NewRateLimiter(limits map[string]Limit) *RateLimiter {
	rl := &RateLimiter{limiters: make(map[string]*rate.Limiter, len(limits))}
	for service, l := range limits {
		rl.limiters[service] = newLimiter(l)
	}
	return rl
}

// Unlimited returns a limiter that never blocks.
func Unlimited() *RateLimiter {
	return NewRateLimiter(nil)
}

func newLimiter(l Limit) *rate.Limiter {
	if l.RPS <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := l.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(l.RPS), burst)
}

// SetLimit replaces the limit for a service.
func (rl *RateLimiter) SetLimit(service string, l Limit) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.limiters[service] = newLimiter(l)
}

// Wait blocks until the rate limit for the specified service allows an event
// or the context is canceled. Services without a limiter are not limited.
func (rl *RateLimiter) Wait(ctx context.Context, service string) error {
	rl.mu.RLock()
	limiter, exists := rl.limiters[service]
	rl.mu.RUnlock()

	if !exists {
		return nil
	}

	if err := limiter.Wait(ctx); err != nil {
		slog.Debug("rate limiter wait error", "service", service, "error", err)
		return err
	}

	return nil
}
