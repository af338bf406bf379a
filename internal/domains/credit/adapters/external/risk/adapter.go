package risk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	riskclient "github.com/Apurer/coopcredit-api-server/internal/clients/http/risk"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

// Evaluator is the outbound call the adapter depends on.
type Evaluator interface {
	Evaluate(ctx context.Context, documentNumber string) (*riskclient.EvaluationResponse, error)
}

// Adapter implements ports.RiskClient over the risk central HTTP client.
type Adapter struct {
	client  Evaluator
	metrics *clientMetrics
}

var _ ports.RiskClient = (*Adapter)(nil)

type clientMetrics struct {
	duration *prometheus.HistogramVec
	failures prometheus.Counter
}

// AdapterOption configures the Adapter.
type AdapterOption func(*Adapter)

// WithRegisterer records call latency and failures on reg.
func WithRegisterer(reg prometheus.Registerer) AdapterOption {
	return func(a *Adapter) {
		if reg == nil {
			return
		}
		factory := promauto.With(reg)
		a.metrics = &clientMetrics{
			duration: factory.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "coopcredit_risk_request_duration_seconds",
				Help:    "Latency of risk central calls",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			}, []string{"result"}),
			failures: factory.NewCounter(prometheus.CounterOpts{
				Name: "coopcredit_risk_request_errors_total",
				Help: "Risk central calls that ended in an error",
			}),
		}
	}
}

// NewAdapter wraps the risk central client.
func NewAdapter(client Evaluator, opts ...AdapterOption) *Adapter {
	a := &Adapter{client: client}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// EvaluateRisk scores a document number. Every failure wraps ports.ErrRiskServiceUnavailable.
func (a *Adapter) EvaluateRisk(ctx context.Context, documentNumber string) (*domain.RiskEvaluation, error) {
	if a == nil || a.client == nil {
		return nil, fmt.Errorf("%w: risk client not configured", ports.ErrRiskServiceUnavailable)
	}
	start := time.Now()
	eval, err := a.evaluate(ctx, documentNumber)
	a.observe(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrRiskServiceUnavailable, err)
	}
	return eval, nil
}

func (a *Adapter) evaluate(ctx context.Context, documentNumber string) (*domain.RiskEvaluation, error) {
	resp, err := a.client.Evaluate(ctx, documentNumber)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, riskclient.ErrEmptyResponse
	}
	eval, err := ToRiskEvaluation(*resp)
	if err != nil {
		return nil, err
	}
	if eval.DocumentNumber == "" {
		eval.DocumentNumber = documentNumber
	}
	return &eval, nil
}

func (a *Adapter) observe(elapsed time.Duration, err error) {
	if a.metrics == nil {
		return
	}
	result := "ok"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		result = "timeout"
	case err != nil:
		result = "error"
	}
	a.metrics.duration.WithLabelValues(result).Observe(elapsed.Seconds())
	if err != nil {
		a.metrics.failures.Inc()
	}
}
