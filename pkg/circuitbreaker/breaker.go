package circuitbreaker

import (
	"errors"
	"fmt"
	"time"

	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Settings tunes a Breaker. Zero values fall back to the defaults below.
type Settings struct {
	MaxRequests  uint32        // probes allowed while half-open
	Interval     time.Duration // closed-state window after which counts reset
	Timeout      time.Duration // how long the breaker stays open
	MinRequests  uint32        // requests in the window before tripping is considered
	FailureRatio float64
}

func (s Settings) withDefaults() Settings {
	if s.MaxRequests == 0 {
		s.MaxRequests = 3
	}
	if s.Interval == 0 {
		s.Interval = 60 * time.Second
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	if s.MinRequests == 0 {
		s.MinRequests = 3
	}
	if s.FailureRatio == 0 {
		s.FailureRatio = 0.6
	}
	return s
}

// Breaker guards calls to one outbound dependency
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// RejectedError is returned when the breaker refuses a call without running it
type RejectedError struct {
	Breaker string
	Err     error // gobreaker.ErrOpenState or gobreaker.ErrTooManyRequests
}

func (e *RejectedError) Error() string {
	if errors.Is(e.Err, gobreaker.ErrOpenState) {
		return fmt.Sprintf("circuit breaker '%s' is open", e.Breaker)
	}
	return fmt.Sprintf("circuit breaker '%s' has too many requests", e.Breaker)
}

func (e *RejectedError) Unwrap() error { return e.Err }

// Retryable is false so retry loops stop hammering an open circuit
func (e *RejectedError) Retryable() bool { return false }

// New creates a breaker named after the dependency it guards
func New(name string, s Settings) *Breaker {
	s = s.withDefaults()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	return &Breaker{cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})}
}

// Run calls fn unless the circuit is open
func (b *Breaker) Run(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &RejectedError{Breaker: b.cb.Name(), Err: err}
	}
	return err
}

// Name returns the breaker name
func (b *Breaker) Name() string {
	return b.cb.Name()
}

// State returns "closed", "half-open" or "open"
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Open reports whether calls are currently rejected
func (b *Breaker) Open() bool {
	return b.cb.State() == gobreaker.StateOpen
}
