package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

type stubService struct {
	ports.Service
	app *domain.CreditApplication
	err error
}

func (s stubService) Evaluate(context.Context, int64, string) (*domain.CreditApplication, error) {
	return s.app, s.err
}

func pendingApplication(t *testing.T) *domain.CreditApplication {
	t.Helper()
	app, err := domain.NewCreditApplication(domain.NewApplicationParams{
		AffiliateID:     1,
		RequestedAmount: decimal.NewFromInt(1000000),
		TermMonths:      12,
		SubmittedAt:     time.Now(),
	})
	require.NoError(t, err)
	app.ID = 7
	return app
}

func TestService_EvaluateRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	app := pendingApplication(t)
	require.NoError(t, app.Approve("analyst", time.Now()))

	svc := New(stubService{app: app}, WithTracer(provider.Tracer("test")))
	got, err := svc.Evaluate(context.Background(), 7, "analyst")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status())

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "Service.Evaluate", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestService_EvaluateErrorIsLoggedAndReturned(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	boom := errors.New("boom")

	svc := New(stubService{err: boom}, WithTracer(provider.Tracer("test")), WithLogger(logger))
	_, err := svc.Evaluate(context.Background(), 7, "analyst")
	require.ErrorIs(t, err, boom)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, buf.String(), "failed to evaluate credit application")
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorder(reg)
	ctx := context.Background()

	rec.EvaluationStarted(ctx)
	rec.EvaluationFinished(ctx, ports.OutcomeApproved, 120*time.Millisecond)
	rec.EvaluationStarted(ctx)
	rec.EvaluationFinished(ctx, ports.OutcomeRiskUnavailable, time.Second)
	rec.ManualDecision(ctx, domain.StatusRejected)

	assert.Equal(t, float64(2), testutil.ToFloat64(rec.attempts))
	assert.Equal(t, float64(1), testutil.ToFloat64(rec.outcomes.WithLabelValues("approved")))
	assert.Equal(t, float64(1), testutil.ToFloat64(rec.outcomes.WithLabelValues("risk_unavailable")))
	assert.Equal(t, float64(1), testutil.ToFloat64(rec.manual.WithLabelValues("REJECTED")))
}

func TestMeterRecorder_NilMeterIsSafe(t *testing.T) {
	rec := NewMeterRecorder(nil)
	ctx := context.Background()
	rec.EvaluationStarted(ctx)
	rec.EvaluationFinished(ctx, ports.OutcomeFailed, time.Millisecond)
	rec.ManualDecision(ctx, domain.StatusApproved)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))
	pub.Publish(context.Background(), domain.ApplicationRejected{
		BaseEvent:     domain.BaseEvent{Timestamp: time.Now()},
		ApplicationID: 9,
		EvaluatedBy:   "analyst",
		Reason:        "Score de riesgo insuficiente: 450",
	})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "credit.application.rejected", line["event"])
	assert.Equal(t, "Score de riesgo insuficiente: 450", line["reason"])
	assert.Equal(t, float64(9), line["credit.application.id"])
}

func TestLogPublisher_SubmittedCarriesApplicationID(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))
	pub.Publish(context.Background(), domain.ApplicationSubmitted{
		BaseEvent:       domain.BaseEvent{Timestamp: time.Now()},
		ApplicationID:   4,
		AffiliateID:     2,
		RequestedAmount: decimal.NewFromInt(1_000_000),
		TermMonths:      12,
	})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "credit.application.submitted", line["event"])
	assert.Equal(t, float64(4), line["credit.application.id"])
	assert.Equal(t, "1000000.00", line["requestedAmount"])
}
