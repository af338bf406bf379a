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

	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/ports"
)

const tracerName = "github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/adapters/observability/service"

// Service decorates the affiliate registry with tracing, logging, and a registration counter.
type Service struct {
	inner      ports.Service
	tracer     trace.Tracer
	logger     *slog.Logger
	registered metric.Int64Counter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m == nil {
			return
		}
		s.registered, _ = m.Int64Counter("affiliates.service.registered", metric.WithDescription("Number of affiliates registered"))
	}
}

// New wires a decorator around the core registry.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{inner: inner}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) Register(ctx context.Context, params domain.RegistrationParams) (*domain.Affiliate, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Register", trace.WithAttributes(attribute.String("affiliate.document_type", params.DocumentType)))
	defer span.End()

	affiliate, err := s.inner.Register(ctx, params)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to register affiliate")
	}
	span.SetAttributes(attribute.Int64("affiliate.id", affiliate.ID))
	if s.registered != nil {
		s.registered.Add(ctx, 1)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "affiliate registered", slog.Int64("affiliate.id", affiliate.ID))
	return affiliate, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Affiliate, error) {
	ctx, span := s.tracer.Start(ctx, "Service.GetByID", trace.WithAttributes(attribute.Int64("affiliate.id", id)))
	defer span.End()

	affiliate, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to load affiliate", slog.Int64("affiliate.id", id))
	}
	return affiliate, nil
}

func (s *Service) GetByDocumentNumber(ctx context.Context, documentNumber string) (*domain.Affiliate, error) {
	ctx, span := s.tracer.Start(ctx, "Service.GetByDocumentNumber")
	defer span.End()

	affiliate, err := s.inner.GetByDocumentNumber(ctx, documentNumber)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to load affiliate by document")
	}
	span.SetAttributes(attribute.Int64("affiliate.id", affiliate.ID))
	return affiliate, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Affiliate, error) {
	ctx, span := s.tracer.Start(ctx, "Service.List")
	defer span.End()

	affiliates, err := s.inner.List(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to list affiliates")
	}
	span.SetAttributes(attribute.Int("affiliates.count", len(affiliates)))
	return affiliates, nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, append(attrs, slog.String("error", err.Error()))...)
	return err
}

var _ ports.Service = (*Service)(nil)
