package ports

import (
	"context"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/shopspring/decimal"
)

// CreateApplicationInput is the submission payload. InterestRate is system-assigned.
type CreateApplicationInput struct {
	AffiliateID     int64
	RequestedAmount decimal.Decimal
	TermMonths      int
	Purpose         string
	// IdempotencyKey makes retried submissions return the first application. Optional.
	IdempotencyKey string
}

// Service exposes the credit application use cases to adapters (inbound/driving port).
type Service interface {
	CreateApplication(ctx context.Context, input CreateApplicationInput) (*domain.CreditApplication, error)
	GetByID(ctx context.Context, id int64) (*domain.CreditApplication, error)
	ListByAffiliate(ctx context.Context, affiliateID int64) ([]*domain.CreditApplication, error)
	ListAll(ctx context.Context) ([]*domain.CreditApplication, error)
	Cancel(ctx context.Context, id, affiliateID int64) (*domain.CreditApplication, error)
	Evaluate(ctx context.Context, id int64, evaluatorID string) (*domain.CreditApplication, error)
	ApproveManually(ctx context.Context, id int64, evaluatorID string) (*domain.CreditApplication, error)
	RejectManually(ctx context.Context, id int64, evaluatorID, reason string) (*domain.CreditApplication, error)
}

// WorkflowOrchestrator runs the automatic evaluation as a durable workflow.
type WorkflowOrchestrator interface {
	Evaluate(ctx context.Context, id int64, evaluatorID string) (*domain.CreditApplication, error)
}
