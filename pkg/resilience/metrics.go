package resilience

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// Breaker outcomes recorded per execution
const (
	outcomeSuccess  = "success"
	outcomeFailure  = "failure"
	outcomeRejected = "rejected"
)

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Current breaker state (0=closed, 0.5=half-open, 1=open)",
	}, []string{"breaker"})

	breakerExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circuit_breaker_executions_total",
		Help: "Breaker executions by outcome (success, failure, rejected)",
	}, []string{"breaker", "outcome"})

	breakerExecutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "circuit_breaker_execution_duration_seconds",
		Help:    "Duration of operations admitted by the breaker",
		Buckets: prometheus.DefBuckets,
	}, []string{"breaker"})

	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circuit_breaker_state_changes_total",
		Help: "Breaker state transitions",
	}, []string{"breaker", "from", "to"})

	anonymousBreakers uint64
)

// breakerObserver records the metrics of one named breaker
type breakerObserver struct {
	name string
}

func newBreakerObserver(name string) breakerObserver {
	if name == "" {
		id := atomic.AddUint64(&anonymousBreakers, 1)
		name = "breaker-" + strconv.FormatUint(id, 10)
	}
	return breakerObserver{name: name}
}

func (o breakerObserver) state(state gobreaker.State) {
	breakerState.WithLabelValues(o.name).Set(stateValue(state))
}

func (o breakerObserver) transition(from, to gobreaker.State) {
	breakerTransitions.WithLabelValues(o.name, from.String(), to.String()).Inc()
	o.state(to)
}

func (o breakerObserver) execution(outcome string, elapsed time.Duration) {
	breakerExecutions.WithLabelValues(o.name, outcome).Inc()
	if outcome != outcomeRejected {
		breakerExecutionDuration.WithLabelValues(o.name).Observe(elapsed.Seconds())
	}
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 0.5
	case gobreaker.StateOpen:
		return 1
	default:
		return -1
	}
}
