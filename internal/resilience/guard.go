package resilience

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter wraps a rate.Limiter for outgoing requests.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a new rate limiter.
// reqPerSec is the sustained rate, burst is the maximum burst size.
// A non-positive reqPerSec disables limiting.
func NewRateLimiter(reqPerSec float64, burst int) *RateLimiter {
	if reqPerSec <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(time.Duration(float64(time.Second)/reqPerSec)), burst),
	}
}

// Wait blocks until a request may be sent or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if err := rl.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

// Guard combines a rate limiter and a circuit breaker in front of one remote
// endpoint. The zero value is not usable; use NewGuard.
type Guard struct {
	limiter *RateLimiter
	breaker *CircuitBreaker
}

// GuardConfig configures NewGuard.
type GuardConfig struct {
	RequestsPerSecond float64
	Burst             int
	Breaker           CircuitBreakerConfig
}

// NewGuard builds a Guard from config.
func NewGuard(config GuardConfig) *Guard {
	return &Guard{
		limiter: NewRateLimiter(config.RequestsPerSecond, config.Burst),
		breaker: NewCircuitBreakerWithConfig(config.Breaker),
	}
}

// Do waits for the rate limiter, then runs fn through the circuit breaker.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := g.breaker.Execute(ctx, func() (interface{}, error) {
		return nil, fn(ctx)
	})
	return err
}

// Breaker exposes the underlying circuit breaker for state and metrics.
func (g *Guard) Breaker() *CircuitBreaker {
	return g.breaker
}
