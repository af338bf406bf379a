package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

type scriptedRisk struct {
	errs  []error
	calls int
}

func (s *scriptedRisk) EvaluateRisk(context.Context, string) (*domain.RiskEvaluation, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &domain.RiskEvaluation{Score: 700, Level: domain.RiskLevelLow}, nil
}

type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time { return c.t }

func TestCircuitBreaker_OpensAtThreshold(t *testing.T) {
	clock := &manualClock{t: time.Unix(0, 0)}
	cb := NewCircuitBreaker(2, time.Minute)
	cb.now = clock.now

	require.True(t, cb.Allow())
	cb.RecordFailure()
	assert.False(t, cb.IsOpen())
	cb.RecordFailure()
	assert.True(t, cb.IsOpen())
	assert.False(t, cb.Allow())

	clock.t = clock.t.Add(time.Minute + time.Second)
	assert.True(t, cb.Allow(), "half-open after cooldown")
	cb.RecordFailure()
	assert.True(t, cb.IsOpen(), "a half-open failure reopens")

	clock.t = clock.t.Add(2 * time.Minute)
	require.True(t, cb.Allow())
	cb.RecordSuccess()
	assert.False(t, cb.IsOpen())
}

func TestCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker(0, 0)
	assert.Equal(t, DefaultBreakerThreshold, cb.threshold)
	assert.Equal(t, DefaultBreakerCooldown, cb.cooldown)
	cb.RecordFailure()
	cb.Reset()
	assert.False(t, cb.IsOpen())
}

func TestBreaker_FailsFastWithoutCallingDownstream(t *testing.T) {
	boom := errors.New("boom")
	next := &scriptedRisk{errs: []error{boom, boom}}
	reg := prometheus.NewRegistry()
	b := NewBreaker(next, NewCircuitBreaker(2, time.Hour), WithBreakerRegisterer(reg))

	for i := 0; i < 2; i++ {
		_, err := b.EvaluateRisk(context.Background(), "80123456")
		require.ErrorIs(t, err, boom)
	}
	_, err := b.EvaluateRisk(context.Background(), "80123456")
	require.ErrorIs(t, err, ports.ErrRiskServiceUnavailable)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, next.calls)
	assert.Equal(t, float64(1), testutil.ToFloat64(b.metrics.state))
	assert.Equal(t, float64(1), testutil.ToFloat64(b.metrics.rejected))
}

func TestBreaker_SuccessKeepsCircuitClosed(t *testing.T) {
	next := &scriptedRisk{errs: []error{errors.New("once")}}
	b := NewBreaker(next, NewCircuitBreaker(2, time.Hour))

	_, err := b.EvaluateRisk(context.Background(), "1")
	require.Error(t, err)
	eval, err := b.EvaluateRisk(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 700, eval.Score)
	_, err = b.EvaluateRisk(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, b.circuit.IsOpen())
}

func TestCircuitBreaker_HalfOpenAdmitsSingleTrial(t *testing.T) {
	clock := &manualClock{t: time.Unix(0, 0)}
	cb := NewCircuitBreaker(1, time.Millisecond)
	cb.now = clock.now

	cb.RecordFailure()
	require.True(t, cb.IsOpen())
	clock.t = clock.t.Add(time.Second)

	admitted := 0
	for i := 0; i < 5; i++ {
		if cb.Allow() {
			admitted++
		}
	}
	assert.Equal(t, 1, admitted, "only the trial call passes before its result is known")
	assert.True(t, cb.IsOpen())

	cb.RecordSuccess()
	assert.False(t, cb.IsOpen())
	assert.True(t, cb.Allow())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_FailedTrialReopensForFullCooldown(t *testing.T) {
	clock := &manualClock{t: time.Unix(0, 0)}
	cb := NewCircuitBreaker(3, time.Minute)
	cb.now = clock.now

	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	clock.t = clock.t.Add(time.Minute)
	require.True(t, cb.Allow())
	cb.RecordFailure()

	assert.False(t, cb.Allow())
	clock.t = clock.t.Add(30 * time.Second)
	assert.False(t, cb.Allow(), "still cooling down after the failed trial")
	clock.t = clock.t.Add(30 * time.Second)
	assert.True(t, cb.Allow())
}
