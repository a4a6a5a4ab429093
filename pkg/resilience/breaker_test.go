package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_TripsAfterThreshold(t *testing.T) {
	breaker := NewCircuitBreaker(BuildSettings("test-trip", time.Minute, time.Minute, 2, 1), nil)
	failing := func(ctx context.Context) (interface{}, error) { return nil, errTransient }

	_, err := breaker.Execute(context.Background(), failing)
	assert.ErrorIs(t, err, errTransient)
	_, err = breaker.Execute(context.Background(), failing)
	assert.ErrorIs(t, err, errTransient)

	assert.Equal(t, gobreaker.StateOpen, breaker.State())

	calls := 0
	_, err = breaker.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		return "ok", nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, calls, "open breaker must not run the operation")
}

func TestCircuitBreaker_GracefulDegradation(t *testing.T) {
	breaker := NewCircuitBreaker(BuildSettings("test-degraded", time.Minute, time.Minute, 1, 1), GracefulDegradation("quotes"))

	_, _ = breaker.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("down")
	})

	_, err := breaker.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		return "ok", nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestRetryWithBreaker(t *testing.T) {
	breaker := NewCircuitBreaker(BuildSettings("test-retry", time.Minute, time.Second, 5, 1), NoopFallback)

	attempts := 0
	result, err := RetryWithBreaker(context.Background(), fastRetryConfig(3), breaker, func(ctx context.Context) (interface{}, error) {
		attempts++
		if attempts < 2 {
			return nil, errTransient
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, attempts)
}

func TestBuildSettings_Defaults(t *testing.T) {
	s := BuildSettings("", 0, -1, 0, 0)

	assert.Equal(t, time.Minute, s.Interval)
	assert.Equal(t, 30*time.Second, s.Timeout)
	assert.Equal(t, uint32(5), s.FailureThreshold)
	assert.Equal(t, uint32(1), s.SuccessThreshold)
	assert.Equal(t, "breaker-", newBreakerObserver("").name[:8])
}

func TestCircuitBreaker_NameAndStateValue(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{Name: "quote-service-test"}, nil)

	assert.Equal(t, "quote-service-test", breaker.Name())
	assert.Equal(t, gobreaker.StateClosed, breaker.State())
	assert.Equal(t, 0.5, stateValue(gobreaker.StateHalfOpen))
	assert.Equal(t, float64(1), stateValue(gobreaker.StateOpen))
}
