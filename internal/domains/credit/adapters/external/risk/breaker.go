package risk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

// ErrCircuitOpen is wrapped into the unavailable error while the breaker fails fast.
var ErrCircuitOpen = errors.New("risk circuit open")

const (
	DefaultBreakerThreshold = 5
	DefaultBreakerCooldown  = 30 * time.Second
)

type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitHalfOpen
)

// CircuitBreaker opens after threshold consecutive failures and stays open for cooldown.
// After the cooldown a single trial call is let through while every other call is refused;
// the trial result closes or reopens the circuit.
type CircuitBreaker struct {
	mu sync.Mutex

	threshold int
	cooldown  time.Duration
	now       func() time.Time

	state     circuitState
	failures  int
	openUntil time.Time
	probing   bool
}

// NewCircuitBreaker creates a closed breaker. Non-positive arguments take the defaults.
func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = DefaultBreakerThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultBreakerCooldown
	}
	return &CircuitBreaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

// Allow reports whether a call may proceed. A true result must be followed by
// RecordSuccess or RecordFailure.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case circuitClosed:
		return true
	case circuitOpen:
		if cb.now().Before(cb.openUntil) {
			return false
		}
		cb.state = circuitHalfOpen
		cb.probing = true
		return true
	default:
		if cb.probing {
			return false
		}
		cb.probing = true
		return true
	}
}

// RecordSuccess closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.closeLocked()
}

// RecordFailure counts a failure and opens the circuit at the threshold.
// A failed trial call reopens it immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == circuitHalfOpen {
		cb.openLocked()
		return
	}
	cb.failures++
	if cb.failures >= cb.threshold {
		cb.openLocked()
	}
}

// IsOpen reports whether the circuit is failing fast, including while a trial call is in flight.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state != circuitClosed
}

// Reset closes the circuit.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.closeLocked()
}

func (cb *CircuitBreaker) openLocked() {
	cb.state = circuitOpen
	cb.openUntil = cb.now().Add(cb.cooldown)
	cb.probing = false
	cb.failures = 0
}

func (cb *CircuitBreaker) closeLocked() {
	cb.state = circuitClosed
	cb.failures = 0
	cb.probing = false
}

type breakerMetrics struct {
	state    prometheus.Gauge
	rejected prometheus.Counter
}

func (m *breakerMetrics) setState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.state.Set(1)
		return
	}
	m.state.Set(0)
}

// Breaker guards a RiskClient with a CircuitBreaker. It never retries.
type Breaker struct {
	next    ports.RiskClient
	circuit *CircuitBreaker
	metrics *breakerMetrics
}

var _ ports.RiskClient = (*Breaker)(nil)

// BreakerOption configures the Breaker.
type BreakerOption func(*Breaker)

// WithBreakerRegisterer exposes the circuit state on reg.
func WithBreakerRegisterer(reg prometheus.Registerer) BreakerOption {
	return func(b *Breaker) {
		if reg == nil {
			return
		}
		factory := promauto.With(reg)
		b.metrics = &breakerMetrics{
			state: factory.NewGauge(prometheus.GaugeOpts{
				Name: "coopcredit_risk_circuit_breaker_state",
				Help: "Risk central circuit state (0=closed, 1=open)",
			}),
			rejected: factory.NewCounter(prometheus.CounterOpts{
				Name: "coopcredit_risk_circuit_breaker_rejected_total",
				Help: "Risk calls refused while the circuit was open",
			}),
		}
	}
}

// NewBreaker decorates next with circuit.
func NewBreaker(next ports.RiskClient, circuit *CircuitBreaker, opts ...BreakerOption) *Breaker {
	if circuit == nil {
		circuit = NewCircuitBreaker(0, 0)
	}
	b := &Breaker{next: next, circuit: circuit}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// EvaluateRisk fails fast while the circuit is open.
func (b *Breaker) EvaluateRisk(ctx context.Context, documentNumber string) (*domain.RiskEvaluation, error) {
	if !b.circuit.Allow() {
		if b.metrics != nil {
			b.metrics.rejected.Inc()
		}
		return nil, fmt.Errorf("%w: %w", ports.ErrRiskServiceUnavailable, ErrCircuitOpen)
	}
	eval, err := b.next.EvaluateRisk(ctx, documentNumber)
	if err != nil {
		b.circuit.RecordFailure()
	} else {
		b.circuit.RecordSuccess()
	}
	b.metrics.setState(b.circuit.IsOpen())
	return eval, err
}
