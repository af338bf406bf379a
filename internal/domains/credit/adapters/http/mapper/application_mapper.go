package mapper

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

// CreateApplication is the inbound submission payload. AffiliateID is only honoured for
// administrators; members always submit for their own profile.
type CreateApplication struct {
	AffiliateID     *int64          `json:"affiliateId,omitempty"`
	RequestedAmount decimal.Decimal `json:"requestedAmount"`
	TermMonths      int             `json:"termMonths"`
	Purpose         string          `json:"purpose,omitempty"`
}

// RejectApplication carries the mandatory rejection reason.
type RejectApplication struct {
	Reason string `json:"reason"`
}

// RiskEvaluation is the HTTP representation of the attached score.
type RiskEvaluation struct {
	ID             int64     `json:"id,omitempty"`
	DocumentNumber string    `json:"documentNumber"`
	Score          int       `json:"score"`
	RiskLevel      string    `json:"riskLevel"`
	Recommendation string    `json:"recommendation,omitempty"`
	EvaluatedAt    time.Time `json:"evaluatedAt"`
}

// Application is the HTTP representation of a credit application.
type Application struct {
	ID              int64           `json:"id"`
	AffiliateID     int64           `json:"affiliateId"`
	AffiliateName   string          `json:"affiliateName,omitempty"`
	RequestedAmount decimal.Decimal `json:"requestedAmount"`
	TermMonths      int             `json:"termMonths"`
	InterestRate    decimal.Decimal `json:"interestRate"`
	MonthlyPayment  decimal.Decimal `json:"monthlyPayment"`
	Purpose         string          `json:"purpose,omitempty"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	EvaluatedAt     *time.Time      `json:"evaluatedAt,omitempty"`
	EvaluatedBy     *string         `json:"evaluatedBy,omitempty"`
	RejectionReason *string         `json:"rejectionReason,omitempty"`
	RiskEvaluation  *RiskEvaluation `json:"riskEvaluation,omitempty"`
}

// ToCreateInput builds the service input for the resolved owner.
func ToCreateInput(payload CreateApplication, affiliateID int64, idempotencyKey string) ports.CreateApplicationInput {
	return ports.CreateApplicationInput{
		AffiliateID:     affiliateID,
		RequestedAmount: payload.RequestedAmount,
		TermMonths:      payload.TermMonths,
		Purpose:         payload.Purpose,
		IdempotencyKey:  strings.TrimSpace(idempotencyKey),
	}
}

// FromDomain maps an application. affiliateName may be empty when the owner could not be resolved.
func FromDomain(app *domain.CreditApplication, affiliateName string) Application {
	out := Application{
		ID:              app.ID,
		AffiliateID:     app.AffiliateID,
		AffiliateName:   affiliateName,
		RequestedAmount: app.RequestedAmount,
		TermMonths:      app.TermMonths,
		InterestRate:    app.InterestRate,
		MonthlyPayment:  app.MonthlyPayment(),
		Purpose:         app.Purpose,
		Status:          string(app.Status()),
		CreatedAt:       app.CreatedAt,
		UpdatedAt:       app.UpdatedAt,
	}
	if at, ok := app.EvaluatedAt(); ok {
		out.EvaluatedAt = &at
	}
	if by, ok := app.EvaluatedBy(); ok {
		out.EvaluatedBy = &by
	}
	if reason, ok := app.RejectionReason(); ok {
		out.RejectionReason = &reason
	}
	if risk, ok := app.RiskEvaluation(); ok {
		out.RiskEvaluation = &RiskEvaluation{
			ID:             risk.ID,
			DocumentNumber: risk.DocumentNumber,
			Score:          risk.Score,
			RiskLevel:      string(risk.Level),
			Recommendation: risk.Recommendation,
			EvaluatedAt:    risk.EvaluatedAt,
		}
	}
	return out
}
