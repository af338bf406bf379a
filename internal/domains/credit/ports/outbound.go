package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
)

var (
	// ErrAffiliateNotFound signals the owning affiliate record is missing.
	ErrAffiliateNotFound = errors.New("affiliate not found")
	// ErrRiskServiceUnavailable is the single failure branch of RiskClient.
	ErrRiskServiceUnavailable = errors.New("risk service unavailable")
)

// Affiliate is the subset of the member profile the credit context needs.
type Affiliate struct {
	ID             int64
	DocumentNumber string
	FullName       string
}

// AffiliateLookup resolves the owner of an application.
type AffiliateLookup interface {
	FindByID(ctx context.Context, affiliateID int64) (*Affiliate, error)
}

// RiskClient scores a member by document number. Implementations must return within
// the context deadline and wrap every failure in ErrRiskServiceUnavailable.
type RiskClient interface {
	EvaluateRisk(ctx context.Context, documentNumber string) (*domain.RiskEvaluation, error)
}

// EvaluationOutcome classifies a finished automatic evaluation attempt.
type EvaluationOutcome string

const (
	OutcomeApproved        EvaluationOutcome = "approved"
	OutcomeRejected        EvaluationOutcome = "rejected"
	OutcomeRiskUnavailable EvaluationOutcome = "risk_unavailable"
	OutcomeFailed          EvaluationOutcome = "failed"
)

// EvaluationRecorder receives instrumentation from the evaluation flow.
type EvaluationRecorder interface {
	EvaluationStarted(ctx context.Context)
	EvaluationFinished(ctx context.Context, outcome EvaluationOutcome, elapsed time.Duration)
	ManualDecision(ctx context.Context, status domain.Status)
}

// NoopRecorder discards every observation.
type NoopRecorder struct{}

func (NoopRecorder) EvaluationStarted(context.Context) {}

func (NoopRecorder) EvaluationFinished(context.Context, EvaluationOutcome, time.Duration) {}

func (NoopRecorder) ManualDecision(context.Context, domain.Status) {}

// Recorders fans observations out to several recorders.
type Recorders []EvaluationRecorder

func (rs Recorders) EvaluationStarted(ctx context.Context) {
	for _, r := range rs {
		r.EvaluationStarted(ctx)
	}
}

func (rs Recorders) EvaluationFinished(ctx context.Context, outcome EvaluationOutcome, elapsed time.Duration) {
	for _, r := range rs {
		r.EvaluationFinished(ctx, outcome, elapsed)
	}
}

func (rs Recorders) ManualDecision(ctx context.Context, status domain.Status) {
	for _, r := range rs {
		r.ManualDecision(ctx, status)
	}
}

var (
	_ EvaluationRecorder = NoopRecorder{}
	_ EvaluationRecorder = Recorders(nil)
)

// EventPublisher receives the domain events of a persisted change.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event)
}

// NoopPublisher drops events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...domain.Event) {}
