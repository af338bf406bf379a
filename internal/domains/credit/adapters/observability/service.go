package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

const tracerName = "github.com/Apurer/coopcredit-api-server/internal/domains/credit/adapters/observability/service"

// Service decorates the credit service port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// CreateApplication submits a new application with instrumentation.
func (s *Service) CreateApplication(ctx context.Context, input ports.CreateApplicationInput) (*domain.CreditApplication, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateApplication",
		attribute.Int64("affiliate.id", input.AffiliateID),
		attribute.Int("credit.term_months", input.TermMonths),
	)
	defer span.End()

	s.logInfo(ctx, "submitting credit application", slog.Int64("affiliate.id", input.AffiliateID))
	app, err := s.inner.CreateApplication(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to submit credit application", slog.Int64("affiliate.id", input.AffiliateID))
	}
	span.SetAttributes(attribute.Int64("credit.application.id", app.ID))
	s.metrics.recordSubmitted(ctx)
	s.logInfo(ctx, "credit application submitted", applicationAttrs(app)...)
	return app, nil
}

// GetByID loads a single application.
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.CreditApplication, error) {
	ctx, span := s.startSpan(ctx, "Service.GetByID", attribute.Int64("credit.application.id", id))
	defer span.End()

	app, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load credit application", slog.Int64("credit.application.id", id))
	}
	return app, nil
}

// ListByAffiliate lists the applications of one affiliate.
func (s *Service) ListByAffiliate(ctx context.Context, affiliateID int64) ([]*domain.CreditApplication, error) {
	ctx, span := s.startSpan(ctx, "Service.ListByAffiliate", attribute.Int64("affiliate.id", affiliateID))
	defer span.End()

	apps, err := s.inner.ListByAffiliate(ctx, affiliateID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list affiliate applications", slog.Int64("affiliate.id", affiliateID))
	}
	span.SetAttributes(attribute.Int("credit.result.count", len(apps)))
	return apps, nil
}

// ListAll lists every application.
func (s *Service) ListAll(ctx context.Context) ([]*domain.CreditApplication, error) {
	ctx, span := s.startSpan(ctx, "Service.ListAll")
	defer span.End()

	apps, err := s.inner.ListAll(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list credit applications")
	}
	span.SetAttributes(attribute.Int("credit.result.count", len(apps)))
	s.logInfo(ctx, "listed credit applications", slog.Int("count", len(apps)))
	return apps, nil
}

// Cancel withdraws a pending application.
func (s *Service) Cancel(ctx context.Context, id, affiliateID int64) (*domain.CreditApplication, error) {
	ctx, span := s.startSpan(ctx, "Service.Cancel",
		attribute.Int64("credit.application.id", id),
		attribute.Int64("affiliate.id", affiliateID),
	)
	defer span.End()

	s.logInfo(ctx, "cancelling credit application", slog.Int64("credit.application.id", id), slog.Int64("affiliate.id", affiliateID))
	app, err := s.inner.Cancel(ctx, id, affiliateID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel credit application", slog.Int64("credit.application.id", id))
	}
	s.metrics.recordDecision(ctx, app.Status(), "owner")
	s.logInfo(ctx, "credit application cancelled", applicationAttrs(app)...)
	return app, nil
}

// Evaluate runs the automatic risk-based decision.
func (s *Service) Evaluate(ctx context.Context, id int64, evaluatorID string) (*domain.CreditApplication, error) {
	ctx, span := s.startSpan(ctx, "Service.Evaluate",
		attribute.Int64("credit.application.id", id),
		attribute.String("credit.evaluator", evaluatorID),
	)
	defer span.End()

	s.logInfo(ctx, "evaluating credit application", slog.Int64("credit.application.id", id), slog.String("evaluator", evaluatorID))
	app, err := s.inner.Evaluate(ctx, id, evaluatorID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to evaluate credit application", slog.Int64("credit.application.id", id))
	}
	if risk, ok := app.RiskEvaluation(); ok {
		span.SetAttributes(
			attribute.Int("credit.risk.score", risk.Score),
			attribute.String("credit.risk.level", string(risk.Level)),
		)
	}
	span.SetAttributes(attribute.String("credit.status", string(app.Status())))
	s.metrics.recordDecision(ctx, app.Status(), "automatic")
	s.logInfo(ctx, "credit application evaluated", applicationAttrs(app)...)
	return app, nil
}

// ApproveManually approves without consulting the risk client.
func (s *Service) ApproveManually(ctx context.Context, id int64, evaluatorID string) (*domain.CreditApplication, error) {
	ctx, span := s.startSpan(ctx, "Service.ApproveManually",
		attribute.Int64("credit.application.id", id),
		attribute.String("credit.evaluator", evaluatorID),
	)
	defer span.End()

	s.logInfo(ctx, "approving credit application", slog.Int64("credit.application.id", id), slog.String("evaluator", evaluatorID))
	app, err := s.inner.ApproveManually(ctx, id, evaluatorID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to approve credit application", slog.Int64("credit.application.id", id))
	}
	s.metrics.recordDecision(ctx, app.Status(), "manual")
	s.logInfo(ctx, "credit application approved", applicationAttrs(app)...)
	return app, nil
}

// RejectManually rejects with a reason.
func (s *Service) RejectManually(ctx context.Context, id int64, evaluatorID, reason string) (*domain.CreditApplication, error) {
	ctx, span := s.startSpan(ctx, "Service.RejectManually",
		attribute.Int64("credit.application.id", id),
		attribute.String("credit.evaluator", evaluatorID),
	)
	defer span.End()

	s.logInfo(ctx, "rejecting credit application", slog.Int64("credit.application.id", id), slog.String("evaluator", evaluatorID))
	app, err := s.inner.RejectManually(ctx, id, evaluatorID, reason)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to reject credit application", slog.Int64("credit.application.id", id))
	}
	s.metrics.recordDecision(ctx, app.Status(), "manual")
	s.logInfo(ctx, "credit application rejected", applicationAttrs(app)...)
	return app, nil
}

func applicationAttrs(app *domain.CreditApplication) []slog.Attr {
	return []slog.Attr{
		slog.Int64("credit.application.id", app.ID),
		slog.Int64("affiliate.id", app.AffiliateID),
		slog.String("status", string(app.Status())),
	}
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	submitted metric.Int64Counter
	decisions metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	submitted, _ := m.Int64Counter("credit.service.submitted", metric.WithDescription("Number of credit applications submitted"))
	decisions, _ := m.Int64Counter("credit.service.decisions", metric.WithDescription("Number of terminal dispositions reached"))
	return serviceMetrics{submitted: submitted, decisions: decisions}
}

func (m serviceMetrics) recordSubmitted(ctx context.Context) {
	addCounter(ctx, m.submitted, 1)
}

func (m serviceMetrics) recordDecision(ctx context.Context, status domain.Status, path string) {
	addCounter(ctx, m.decisions, 1,
		attribute.String("credit.status", string(status)),
		attribute.String("credit.decision.path", path),
	)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
