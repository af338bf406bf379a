package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

// DefaultRiskTimeout bounds a single risk client call.
const DefaultRiskTimeout = 5 * time.Second

// Service orchestrates the credit application use cases.
type Service struct {
	repo         ports.Repository
	affiliates   ports.AffiliateLookup
	risk         ports.RiskClient
	recorder     ports.EvaluationRecorder
	publisher    ports.EventPublisher
	now          func() time.Time
	interestRate decimal.Decimal
	riskTimeout  time.Duration
	idempotency  ports.IdempotencyStore
}

// Option configures the Service.
type Option func(*Service)

// WithRecorder injects evaluation instrumentation.
func WithRecorder(r ports.EvaluationRecorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithEventPublisher injects the sink for domain events.
func WithEventPublisher(p ports.EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithClock overrides the time source used to stamp transitions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithInterestRate sets the annual rate assigned to new applications.
func WithInterestRate(rate decimal.Decimal) Option {
	return func(s *Service) {
		if rate.IsPositive() {
			s.interestRate = rate
		}
	}
}

// WithRiskTimeout bounds each risk client call.
func WithRiskTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.riskTimeout = d
		}
	}
}

// WithIdempotencyStore enables Idempotency-Key handling on CreateApplication.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// NewService wires the credit service with its dependencies.
func NewService(repo ports.Repository, affiliates ports.AffiliateLookup, risk ports.RiskClient, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		affiliates:   affiliates,
		risk:         risk,
		recorder:     ports.NoopRecorder{},
		publisher:    ports.NoopPublisher{},
		now:          func() time.Time { return time.Now().UTC() },
		interestRate: domain.DefaultInterestRate,
		riskTimeout:  DefaultRiskTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateApplication submits a new PENDING application for an existing affiliate. With an
// idempotency store configured, a repeated key returns the application it first created.
func (s *Service) CreateApplication(ctx context.Context, input ports.CreateApplicationInput) (*domain.CreditApplication, error) {
	if s.idempotency == nil || input.IdempotencyKey == "" {
		return s.create(ctx, input)
	}
	hash, err := FingerprintCreate(input)
	if err != nil {
		return nil, err
	}
	existing, err := s.replay(ctx, input.IdempotencyKey, hash)
	if err != nil {
		return nil, mapError(err)
	}
	if existing != nil {
		return existing, nil
	}
	app, err := s.create(ctx, input)
	if err != nil {
		return nil, err
	}
	app, err = s.remember(ctx, input.IdempotencyKey, hash, app)
	return app, mapError(err)
}

func (s *Service) create(ctx context.Context, input ports.CreateApplicationInput) (*domain.CreditApplication, error) {
	if _, err := s.affiliates.FindByID(ctx, input.AffiliateID); err != nil {
		return nil, mapError(err)
	}
	app, err := domain.NewCreditApplication(domain.NewApplicationParams{
		AffiliateID:     input.AffiliateID,
		RequestedAmount: input.RequestedAmount,
		TermMonths:      input.TermMonths,
		InterestRate:    s.interestRate,
		Purpose:         input.Purpose,
		SubmittedAt:     s.now(),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return s.persist(ctx, app)
}

// GetByID loads a single application.
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.CreditApplication, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return app, nil
}

// ListByAffiliate returns the applications owned by one affiliate.
func (s *Service) ListByAffiliate(ctx context.Context, affiliateID int64) ([]*domain.CreditApplication, error) {
	apps, err := s.repo.ListByAffiliate(ctx, affiliateID)
	if err != nil {
		return nil, mapError(err)
	}
	return apps, nil
}

// ListAll returns every application.
func (s *Service) ListAll(ctx context.Context) ([]*domain.CreditApplication, error) {
	apps, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return apps, nil
}

// Cancel withdraws a pending application on behalf of its owner.
func (s *Service) Cancel(ctx context.Context, id, affiliateID int64) (*domain.CreditApplication, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if err := app.Cancel(affiliateID, s.now()); err != nil {
		return nil, mapError(err)
	}
	return s.persist(ctx, app)
}

// Evaluate scores the application through the risk client and decides it automatically.
// Any risk failure leaves the stored application untouched.
func (s *Service) Evaluate(ctx context.Context, id int64, evaluatorID string) (*domain.CreditApplication, error) {
	started := time.Now()
	s.recorder.EvaluationStarted(ctx)

	app, err := s.evaluate(ctx, id, evaluatorID)
	s.recorder.EvaluationFinished(ctx, outcomeOf(app, err), time.Since(started))
	if err != nil {
		return nil, mapError(err)
	}
	return app, nil
}

func (s *Service) evaluate(ctx context.Context, id int64, evaluatorID string) (*domain.CreditApplication, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !app.IsPending() {
		return nil, fmt.Errorf("%w: cannot evaluate application %d in status %s", domain.ErrInvalidState, app.ID, app.Status())
	}

	affiliate, err := s.affiliates.FindByID(ctx, app.AffiliateID)
	if err != nil {
		return nil, err
	}

	riskCtx, cancel := context.WithTimeout(ctx, s.riskTimeout)
	evaluation, err := s.risk.EvaluateRisk(riskCtx, affiliate.DocumentNumber)
	cancel()
	if err != nil || evaluation == nil {
		return nil, riskUnavailable(err)
	}

	now := s.now()
	if err := app.AttachRiskEvaluation(evaluation.Stamp(app.ID, affiliate.DocumentNumber, now)); err != nil {
		return nil, err
	}
	if err := app.DecideByScore(evaluatorID, now); err != nil {
		return nil, err
	}
	return s.save(ctx, app)
}

// ApproveManually approves a pending application without consulting the risk client.
func (s *Service) ApproveManually(ctx context.Context, id int64, evaluatorID string) (*domain.CreditApplication, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if err := app.Approve(evaluatorID, s.now()); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.persist(ctx, app)
	if err != nil {
		return nil, err
	}
	s.recorder.ManualDecision(ctx, saved.Status())
	return saved, nil
}

// RejectManually rejects a pending application with a mandatory reason.
func (s *Service) RejectManually(ctx context.Context, id int64, evaluatorID, reason string) (*domain.CreditApplication, error) {
	if err := domain.ValidateRejectionReason(reason); err != nil {
		return nil, mapError(err)
	}
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if err := app.Reject(evaluatorID, reason, s.now()); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.persist(ctx, app)
	if err != nil {
		return nil, err
	}
	s.recorder.ManualDecision(ctx, saved.Status())
	return saved, nil
}

func (s *Service) persist(ctx context.Context, app *domain.CreditApplication) (*domain.CreditApplication, error) {
	saved, err := s.save(ctx, app)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// save stores the aggregate and publishes the events it recorded.
func (s *Service) save(ctx context.Context, app *domain.CreditApplication) (*domain.CreditApplication, error) {
	events := app.Events()
	saved, err := s.repo.Save(ctx, app)
	if err != nil {
		return nil, err
	}
	app.ClearEvents()
	if len(events) > 0 {
		s.publisher.Publish(ctx, domain.BindApplicationID(events, saved.ID)...)
	}
	return saved, nil
}

func outcomeOf(app *domain.CreditApplication, err error) ports.EvaluationOutcome {
	switch {
	case err == nil && app.Status() == domain.StatusApproved:
		return ports.OutcomeApproved
	case err == nil:
		return ports.OutcomeRejected
	case isRiskUnavailable(err):
		return ports.OutcomeRiskUnavailable
	default:
		return ports.OutcomeFailed
	}
}

var _ ports.Service = (*Service)(nil)
