package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinTermMonths           = 6
	MaxTermMonths           = 60
	MinimumScoreForApproval = 600
	MaxPurposeLength        = 500
	MaxReasonLength         = 500
	// AmountScale and RateScale are the fractional digits kept for money and rates.
	AmountScale = 2
	RateScale   = 2

	insufficientScoreReason = "Score de riesgo insuficiente: "
)

var (
	MinAmount           = decimal.NewFromInt(100_000)
	MaxAmount           = decimal.NewFromInt(50_000_000)
	DefaultInterestRate = decimal.RequireFromString("12.5")
	MaxInterestRate     = decimal.RequireFromString("999.99")
)

// exceedsScale reports whether d carries more than places fractional digits.
func exceedsScale(d decimal.Decimal, places int32) bool {
	return !d.Equal(d.Round(places))
}

// ValidateInterestRate checks a rate percentage against the stored precision.
func ValidateInterestRate(rate decimal.Decimal) error {
	switch {
	case rate.IsNegative():
		return fmt.Errorf("must not be negative")
	case rate.GreaterThan(MaxInterestRate):
		return fmt.Errorf("must be at most %s", MaxInterestRate)
	case exceedsScale(rate, RateScale):
		return fmt.Errorf("must have at most %d decimal places", RateScale)
	}
	return nil
}

// CreditApplication is the aggregate managed by the credit bounded context. The status and
// its per-state fields live in the disposition and only change through the transition methods.
type CreditApplication struct {
	ID              int64
	AffiliateID     int64
	RequestedAmount decimal.Decimal
	TermMonths      int
	InterestRate    decimal.Decimal
	Purpose         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	// Version is the optimistic concurrency token owned by the repository.
	Version int64

	disposition Disposition
	risk        *RiskEvaluation
	events      []Event
}

// NewApplicationParams carries the submission input.
type NewApplicationParams struct {
	AffiliateID     int64
	RequestedAmount decimal.Decimal
	TermMonths      int
	InterestRate    decimal.Decimal
	Purpose         string
	SubmittedAt     time.Time
}

// NewCreditApplication validates the submission and builds a PENDING application.
func NewCreditApplication(p NewApplicationParams) (*CreditApplication, error) {
	rate := p.InterestRate
	if rate.IsZero() {
		rate = DefaultInterestRate
	}
	app := &CreditApplication{
		AffiliateID:     p.AffiliateID,
		RequestedAmount: p.RequestedAmount,
		TermMonths:      p.TermMonths,
		InterestRate:    rate,
		Purpose:         strings.TrimSpace(p.Purpose),
		CreatedAt:       p.SubmittedAt,
		UpdatedAt:       p.SubmittedAt,
		disposition:     Pending{},
	}

	verr := &ValidationError{}
	if app.AffiliateID <= 0 {
		verr.add("affiliateId", "must be a positive identifier")
	}
	if !app.IsValidAmount() {
		verr.add("requestedAmount", fmt.Sprintf("must be between %s and %s", MinAmount, MaxAmount))
	} else if exceedsScale(app.RequestedAmount, AmountScale) {
		verr.add("requestedAmount", fmt.Sprintf("must have at most %d decimal places", AmountScale))
	}
	if !app.IsValidTerm() {
		verr.add("termMonths", fmt.Sprintf("must be between %d and %d", MinTermMonths, MaxTermMonths))
	}
	if err := ValidateInterestRate(rate); err != nil {
		verr.add("interestRate", err.Error())
	}
	if len([]rune(app.Purpose)) > MaxPurposeLength {
		verr.add("purpose", fmt.Sprintf("must be at most %d characters", MaxPurposeLength))
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	app.record(ApplicationSubmitted{
		BaseEvent:       BaseEvent{Timestamp: p.SubmittedAt},
		AffiliateID:     app.AffiliateID,
		RequestedAmount: app.RequestedAmount,
		TermMonths:      app.TermMonths,
	})
	return app, nil
}

// IsValidAmount reports whether the requested amount is within the accepted range.
func (a *CreditApplication) IsValidAmount() bool {
	return a.RequestedAmount.GreaterThanOrEqual(MinAmount) && a.RequestedAmount.LessThanOrEqual(MaxAmount)
}

// IsValidTerm reports whether the term is within the accepted range.
func (a *CreditApplication) IsValidTerm() bool {
	return a.TermMonths >= MinTermMonths && a.TermMonths <= MaxTermMonths
}

// Status returns the lifecycle state.
func (a *CreditApplication) Status() Status {
	return a.currentDisposition().Status()
}

// Disposition returns the status-specific fields.
func (a *CreditApplication) Disposition() Disposition {
	return a.currentDisposition()
}

func (a *CreditApplication) IsPending() bool {
	return a.Status() == StatusPending
}

// IsOwnedBy reports whether the affiliate owns the application.
func (a *CreditApplication) IsOwnedBy(affiliateID int64) bool {
	return a.AffiliateID == affiliateID
}

// RiskEvaluation returns the attached evaluation, if any.
func (a *CreditApplication) RiskEvaluation() (RiskEvaluation, bool) {
	if a.risk == nil {
		return RiskEvaluation{}, false
	}
	return *a.risk, true
}

// RejectionReason is present only for REJECTED applications.
func (a *CreditApplication) RejectionReason() (string, bool) {
	if r, ok := a.currentDisposition().(Rejected); ok {
		return r.Reason, true
	}
	return "", false
}

// EvaluatedAt is present for APPROVED and REJECTED applications.
func (a *CreditApplication) EvaluatedAt() (time.Time, bool) {
	switch d := a.currentDisposition().(type) {
	case Approved:
		return d.EvaluatedAt, true
	case Rejected:
		return d.EvaluatedAt, true
	default:
		return time.Time{}, false
	}
}

// EvaluatedBy is present for APPROVED and REJECTED applications.
func (a *CreditApplication) EvaluatedBy() (string, bool) {
	switch d := a.currentDisposition().(type) {
	case Approved:
		return d.EvaluatedBy, true
	case Rejected:
		return d.EvaluatedBy, true
	default:
		return "", false
	}
}

// MonthlyPayment computes the installment for the application terms.
func (a *CreditApplication) MonthlyPayment() decimal.Decimal {
	term := a.TermMonths
	return MonthlyPayment(
		decimal.NewNullDecimal(a.RequestedAmount),
		decimal.NewNullDecimal(a.InterestRate),
		&term,
	)
}

// Approve moves a pending application to APPROVED.
func (a *CreditApplication) Approve(evaluator string, at time.Time) error {
	if !a.IsPending() {
		return invalidState("cannot approve application in status %s", a.Status())
	}
	a.disposition = Approved{EvaluatedAt: at, EvaluatedBy: evaluator}
	a.UpdatedAt = at
	a.record(ApplicationApproved{BaseEvent: BaseEvent{Timestamp: at}, ApplicationID: a.ID, EvaluatedBy: evaluator})
	return nil
}

// Reject moves a pending application to REJECTED. The reason is mandatory.
func (a *CreditApplication) Reject(evaluator, reason string, at time.Time) error {
	if !a.IsPending() {
		return invalidState("cannot reject application in status %s", a.Status())
	}
	reason = strings.TrimSpace(reason)
	if err := ValidateRejectionReason(reason); err != nil {
		return err
	}
	a.disposition = Rejected{EvaluatedAt: at, EvaluatedBy: evaluator, Reason: reason}
	a.UpdatedAt = at
	a.record(ApplicationRejected{BaseEvent: BaseEvent{Timestamp: at}, ApplicationID: a.ID, EvaluatedBy: evaluator, Reason: reason})
	return nil
}

// ValidateRejectionReason checks a manual or automatic rejection reason.
func ValidateRejectionReason(reason string) error {
	reason = strings.TrimSpace(reason)
	verr := &ValidationError{}
	switch {
	case reason == "":
		verr.add("reason", "is required")
	case len([]rune(reason)) > MaxReasonLength:
		verr.add("reason", fmt.Sprintf("must be at most %d characters", MaxReasonLength))
	}
	return verr.orNil()
}

// Cancel withdraws a pending application. Only the owner may cancel.
func (a *CreditApplication) Cancel(requestingAffiliateID int64, at time.Time) error {
	if !a.IsOwnedBy(requestingAffiliateID) {
		return invalidState("affiliate %d does not own application %d", requestingAffiliateID, a.ID)
	}
	if !a.IsPending() {
		return invalidState("only pending applications can be cancelled, current status %s", a.Status())
	}
	a.disposition = Cancelled{CancelledAt: at}
	a.UpdatedAt = at
	a.record(ApplicationCancelled{BaseEvent: BaseEvent{Timestamp: at}, ApplicationID: a.ID, AffiliateID: a.AffiliateID})
	return nil
}

// AttachRiskEvaluation replaces the evaluation reference while the application is pending.
func (a *CreditApplication) AttachRiskEvaluation(r RiskEvaluation) error {
	if !a.IsPending() {
		return invalidState("risk evaluation can only be attached to pending applications, current status %s", a.Status())
	}
	attached := r
	a.risk = &attached
	a.record(RiskEvaluated{BaseEvent: BaseEvent{Timestamp: r.EvaluatedAt}, ApplicationID: a.ID, Score: r.Score, Level: r.Level})
	return nil
}

// DecideByScore applies the approval threshold to the attached evaluation.
func (a *CreditApplication) DecideByScore(evaluator string, at time.Time) error {
	if a.risk == nil {
		return ErrNoRiskEvaluation
	}
	if a.risk.MeetsMinimumScore(MinimumScoreForApproval) {
		return a.Approve(evaluator, at)
	}
	return a.Reject(evaluator, InsufficientScoreReason(a.risk.Score), at)
}

// InsufficientScoreReason is the rejection text used by automatic decisions.
func InsufficientScoreReason(score int) string {
	return fmt.Sprintf("%s%d", insufficientScoreReason, score)
}

// Events returns the events recorded since the last ClearEvents.
func (a *CreditApplication) Events() []Event {
	return append([]Event(nil), a.events...)
}

// ClearEvents drops recorded events.
func (a *CreditApplication) ClearEvents() {
	a.events = nil
}

func (a *CreditApplication) record(e Event) {
	a.events = append(a.events, e)
}

func (a *CreditApplication) currentDisposition() Disposition {
	if a.disposition == nil {
		return Pending{}
	}
	return a.disposition
}

var _ AggregateWithEvents = (*CreditApplication)(nil)
