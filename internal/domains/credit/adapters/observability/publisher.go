package observability

import (
	"context"
	"log/slog"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

// LogPublisher writes each domain event as a structured log line.
type LogPublisher struct {
	logger *slog.Logger
}

var _ ports.EventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = defaultLogger()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, events ...domain.Event) {
	for _, ev := range events {
		attrs := []slog.Attr{
			slog.String("event", ev.EventName()),
			slog.Time("occurredAt", ev.OccurredAt()),
		}
		attrs = append(attrs, eventAttrs(ev)...)
		p.logger.LogAttrs(ctx, slog.LevelInfo, "domain event", attrs...)
	}
}

func eventAttrs(ev domain.Event) []slog.Attr {
	switch e := ev.(type) {
	case domain.ApplicationSubmitted:
		return []slog.Attr{
			slog.Int64("credit.application.id", e.ApplicationID),
			slog.Int64("affiliate.id", e.AffiliateID),
			slog.String("requestedAmount", e.RequestedAmount.StringFixed(2)),
			slog.Int("termMonths", e.TermMonths),
		}
	case domain.RiskEvaluated:
		return []slog.Attr{
			slog.Int64("credit.application.id", e.ApplicationID),
			slog.Int("score", e.Score),
			slog.String("riskLevel", string(e.Level)),
		}
	case domain.ApplicationApproved:
		return []slog.Attr{
			slog.Int64("credit.application.id", e.ApplicationID),
			slog.String("evaluatedBy", e.EvaluatedBy),
		}
	case domain.ApplicationRejected:
		return []slog.Attr{
			slog.Int64("credit.application.id", e.ApplicationID),
			slog.String("evaluatedBy", e.EvaluatedBy),
			slog.String("reason", e.Reason),
		}
	case domain.ApplicationCancelled:
		return []slog.Attr{
			slog.Int64("credit.application.id", e.ApplicationID),
			slog.Int64("affiliate.id", e.AffiliateID),
		}
	default:
		return nil
	}
}
