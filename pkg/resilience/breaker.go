package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/richxcame/currencies/pkg/logger"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned when the breaker rejects a call
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Settings configures a circuit breaker
type Settings struct {
	Name             string
	Interval         time.Duration // closed-state counts reset after this window
	Timeout          time.Duration // open state lasts this long before probing
	FailureThreshold uint32        // consecutive failures that open the breaker
	SuccessThreshold uint32        // probes admitted while half-open
}

// BuildSettings fills in defaults for zero or negative knobs
func BuildSettings(name string, interval, timeout time.Duration, failureThreshold, successThreshold uint32) Settings {
	s := Settings{
		Name:             name,
		Interval:         interval,
		Timeout:          timeout,
		FailureThreshold: failureThreshold,
		SuccessThreshold: successThreshold,
	}
	if s.Interval <= 0 {
		s.Interval = time.Minute
	}
	if s.Timeout <= 0 {
		s.Timeout = 30 * time.Second
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	if s.SuccessThreshold == 0 {
		s.SuccessThreshold = 1
	}
	return s
}

// Operation is a unit of work run through the breaker or the retry helpers
type Operation func(ctx context.Context) (interface{}, error)

// FallbackFunc decides the result of a call the breaker rejected
type FallbackFunc func(ctx context.Context, err error) (interface{}, error)

// NoopFallback returns ErrCircuitOpen
func NoopFallback(ctx context.Context, err error) (interface{}, error) {
	return nil, ErrCircuitOpen
}

// GracefulDegradation logs the rejection against service and returns
// ErrCircuitOpen, leaving the degraded path to the caller.
func GracefulDegradation(service string) FallbackFunc {
	return func(ctx context.Context, err error) (interface{}, error) {
		logger.WithContext(ctx).Warn("circuit breaker open, service degraded",
			zap.String("service", service),
			zap.Error(err),
		)
		return nil, ErrCircuitOpen
	}
}

// CircuitBreaker wraps gobreaker with a fallback and Prometheus metrics
type CircuitBreaker struct {
	cb       *gobreaker.CircuitBreaker
	fallback FallbackFunc
	observer breakerObserver
}

// NewCircuitBreaker creates a breaker. A nil fallback behaves like NoopFallback.
func NewCircuitBreaker(settings Settings, fallback FallbackFunc) *CircuitBreaker {
	settings = BuildSettings(settings.Name, settings.Interval, settings.Timeout,
		settings.FailureThreshold, settings.SuccessThreshold)
	if fallback == nil {
		fallback = NoopFallback
	}

	observer := newBreakerObserver(settings.Name)
	threshold := settings.FailureThreshold

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        observer.name,
		MaxRequests: settings.SuccessThreshold,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			observer.transition(from, to)
		},
	})
	observer.state(gobreaker.StateClosed)

	return &CircuitBreaker{cb: cb, fallback: fallback, observer: observer}
}

// Name returns the breaker name used in logs and metrics
func (b *CircuitBreaker) Name() string {
	return b.observer.name
}

// State returns the current breaker state
func (b *CircuitBreaker) State() gobreaker.State {
	return b.cb.State()
}

// Execute runs op through the breaker; rejected calls go to the fallback
func (b *CircuitBreaker) Execute(ctx context.Context, op Operation) (interface{}, error) {
	start := time.Now()
	result, err := b.cb.Execute(func() (interface{}, error) {
		return op(ctx)
	})

	switch {
	case err == nil:
		b.observer.execution(outcomeSuccess, time.Since(start))
		return result, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		b.observer.execution(outcomeRejected, 0)
		return b.fallback(ctx, err)
	default:
		b.observer.execution(outcomeFailure, time.Since(start))
		return nil, err
	}
}
