// Package retry runs remote calls under an explicit retry policy.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/proteoparc/proteoparc/internal/domain"
)

// Default policy values.
const (
	DefaultMaxAttempts = 5
	DefaultInitial     = 250 * time.Millisecond
	DefaultMax         = 10 * time.Second
)

// Policy decides how often and how patiently a failing call is retried.
// It is passed by value into the components that need it.
type Policy struct {
	// MaxAttempts bounds the total number of tries, first one included.
	MaxAttempts int

	// Initial is the wait before the second attempt; it doubles per retry.
	Initial time.Duration

	// Max caps a single wait.
	Max time.Duration

	// RetryableStatus lists the HTTP statuses worth retrying.
	RetryableStatus []int
}

// DefaultPolicy retries rate limiting and gateway/server failures.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Initial:     DefaultInitial,
		Max:         DefaultMax,
		RetryableStatus: []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// Retryable reports whether err is worth another attempt under p.
func (p Policy) Retryable(err error) bool {
	var te *domain.TransportError
	if errors.As(err, &te) {
		return true
	}
	var se *domain.ServiceError
	if errors.As(err, &se) {
		for _, s := range p.RetryableStatus {
			if s == se.StatusCode {
				return true
			}
		}
	}
	return false
}

// Do calls fn until it succeeds, returns a non-retryable error, the
// context ends, or MaxAttempts is reached. The last error is returned.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	b := newBackoff(p.Initial, p.Max)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if !p.Retryable(err) || attempt == attempts {
			return err
		}
		if werr := b.Wait(ctx); werr != nil {
			return err
		}
	}
	return err
}

// backoff implements exponential backoff with jitter.
type backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

func newBackoff(initial, max time.Duration) *backoff {
	return &backoff{
		initial: initial,
		max:     max,
		current: initial,
	}
}

// Wait sleeps for the current duration, then doubles it up to max.
// It returns early with the context error when ctx ends.
func (b *backoff) Wait(ctx context.Context) error {
	// jitter: ±20%
	jitter := float64(b.current) * 0.2 * (rand.Float64()*2 - 1)
	d := time.Duration(float64(b.current) + jitter)

	t := time.NewTimer(d)
	defer t.Stop()

	b.current *= 2
	if b.max > 0 && b.current > b.max {
		b.current = b.max
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Current returns the next wait before jitter.
func (b *backoff) Current() time.Duration {
	return b.current
}
