// Package retrylimit wraps remote calls (media metadata lookups, stream link
// extraction) with an adaptive token bucket and bounded exponential backoff.
//
//	lim := retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
//	err := retrylimit.Do(ctx, lim, retrylimit.Attempts(3), func(ctx context.Context) error {
//	    return fetch(ctx)
//	})
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// AdaptiveLimiter is a token bucket whose rate climbs after quiet successes
// and drops multiplicatively when the remote side pushes back.
type AdaptiveLimiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	cooldown  time.Duration
	lastError time.Time
}

// NewAdaptiveLimiter starts at initial requests per second and stays within
// [min, max]. stepUp is added on success, stepDown multiplies on pushback.
func NewAdaptiveLimiter(initial, min, max, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if min < 1 {
		min = 1
	}
	if initial < min {
		initial = min
	}
	if max < initial {
		max = initial
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, max1(int(initial))),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
		cooldown: 10 * time.Second,
	}
}

func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate unless the last pushback was recent.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > a.cooldown {
		a.setLocked(a.limiter.Limit() + a.stepUp)
	}
}

// Backoff lowers the rate after the remote side signalled overload.
func (a *AdaptiveLimiter) Backoff() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.setLocked(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// Limit reports the current requests per second.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.limiter.Limit()
}

func (a *AdaptiveLimiter) setLocked(l rate.Limit) {
	l = max(a.minLimit, min(a.maxLimit, l))
	if l == a.limiter.Limit() {
		return
	}
	a.limiter.SetLimit(l)
	a.limiter.SetBurst(max1(int(l)))
}

// StatusError is implemented by errors that carry an HTTP status code.
type StatusError interface {
	error
	StatusCode() int
}

// FatalError stops retrying immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// Fatal marks err as not worth retrying. A nil err stays nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// Config controls the retry loop.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
}

// Option adjusts a Config.
type Option func(*Config)

// Attempts caps the number of calls to fn.
func Attempts(n int) Option {
	return func(c *Config) { c.MaxAttempts = n }
}

// Delays sets the first and the largest wait between attempts.
func Delays(initial, maxDelay time.Duration) Option {
	return func(c *Config) {
		c.InitialDelay = initial
		c.MaxDelay = maxDelay
	}
}

// NoJitter makes waits deterministic.
func NoJitter() Option {
	return func(c *Config) { c.Jitter = false }
}

func defaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     8 * time.Second,
		Multiplier:   2,
		Jitter:       true,
	}
}

// ErrExhausted is wrapped around the last error once every attempt failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// Do calls fn until it succeeds, returns a FatalError, the context ends or
// the attempts run out. lim may be nil.
func Do(ctx context.Context, lim *AdaptiveLimiter, opts []Option, fn func(ctx context.Context) error) error {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	delay := cfg.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			if lim != nil {
				lim.Success()
			}
			if attempt > 1 {
				log.Debug().Int("attempt", attempt).Msg("retry: succeeded")
			}
			return nil
		}

		var fatal *FatalError
		if errors.As(lastErr, &fatal) {
			return fatal.Err
		}
		if pushback(lastErr) && lim != nil {
			lim.Backoff()
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		wait := delay
		if cfg.Jitter && wait > 0 {
			wait += time.Duration(rand.Int64N(int64(wait)/4 + 1))
		}
		log.Warn().Err(lastErr).Int("attempt", attempt).Dur("wait", wait).Msg("retry: call failed")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay = min(time.Duration(float64(delay)*cfg.Multiplier), cfg.MaxDelay)
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, cfg.MaxAttempts, lastErr)
}

// pushback reports 429 and 5xx responses.
func pushback(err error) bool {
	var se StatusError
	if !errors.As(err, &se) {
		return false
	}
	code := se.StatusCode()
	return code == http.StatusTooManyRequests || code >= 500 && code < 600
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
