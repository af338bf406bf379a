package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

// MeterRecorder reports evaluation attempts through OpenTelemetry instruments.
type MeterRecorder struct {
	attempts metric.Int64Counter
	outcomes metric.Int64Counter
	manual   metric.Int64Counter
	duration metric.Float64Histogram
}

var _ ports.EvaluationRecorder = (*MeterRecorder)(nil)

// NewMeterRecorder creates the instruments on m. A nil meter yields a recorder that drops data.
func NewMeterRecorder(m metric.Meter) *MeterRecorder {
	if m == nil {
		return &MeterRecorder{}
	}
	attempts, _ := m.Int64Counter("credit.evaluations.attempts", metric.WithDescription("Automatic evaluations started"))
	outcomes, _ := m.Int64Counter("credit.evaluations.outcomes", metric.WithDescription("Automatic evaluations finished by outcome"))
	manual, _ := m.Int64Counter("credit.evaluations.manual", metric.WithDescription("Manual approvals and rejections"))
	duration, _ := m.Float64Histogram("credit.evaluations.duration", metric.WithUnit("s"), metric.WithDescription("Automatic evaluation latency"))
	return &MeterRecorder{attempts: attempts, outcomes: outcomes, manual: manual, duration: duration}
}

func (r *MeterRecorder) EvaluationStarted(ctx context.Context) {
	addCounter(ctx, r.attempts, 1)
}

func (r *MeterRecorder) EvaluationFinished(ctx context.Context, outcome ports.EvaluationOutcome, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("credit.outcome", string(outcome)))
	if r.outcomes != nil {
		r.outcomes.Add(ctx, 1, attrs)
	}
	if r.duration != nil {
		r.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

func (r *MeterRecorder) ManualDecision(ctx context.Context, status domain.Status) {
	addCounter(ctx, r.manual, 1, attribute.String("credit.status", string(status)))
}

// PrometheusRecorder exposes the same observations for scraping.
type PrometheusRecorder struct {
	attempts prometheus.Counter
	outcomes *prometheus.CounterVec
	manual   *prometheus.CounterVec
	duration prometheus.Histogram
}

var _ ports.EvaluationRecorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder registers the collectors on reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		attempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "coopcredit_evaluations_total",
			Help: "Automatic credit evaluations started",
		}),
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coopcredit_evaluation_outcomes_total",
			Help: "Automatic credit evaluations finished by outcome",
		}, []string{"outcome"}),
		manual: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coopcredit_manual_decisions_total",
			Help: "Manual approvals and rejections",
		}, []string{"status"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "coopcredit_evaluation_duration_seconds",
			Help:    "Automatic evaluation latency",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (r *PrometheusRecorder) EvaluationStarted(context.Context) {
	r.attempts.Inc()
}

func (r *PrometheusRecorder) EvaluationFinished(_ context.Context, outcome ports.EvaluationOutcome, elapsed time.Duration) {
	r.outcomes.WithLabelValues(string(outcome)).Inc()
	r.duration.Observe(elapsed.Seconds())
}

func (r *PrometheusRecorder) ManualDecision(_ context.Context, status domain.Status) {
	r.manual.WithLabelValues(string(status)).Inc()
}
