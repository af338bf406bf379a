package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the flattened representation adapters use to store and rebuild applications.
type Snapshot struct {
	ID              int64
	AffiliateID     int64
	RequestedAmount decimal.Decimal
	TermMonths      int
	InterestRate    decimal.Decimal
	Purpose         string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
	EvaluatedAt     *time.Time
	EvaluatedBy     *string
	RejectionReason *string
	CancelledAt     *time.Time
	Version         int64
	Risk            *RiskEvaluation
}

// Snapshot flattens the aggregate.
func (a *CreditApplication) Snapshot() Snapshot {
	s := Snapshot{
		ID:              a.ID,
		AffiliateID:     a.AffiliateID,
		RequestedAmount: a.RequestedAmount,
		TermMonths:      a.TermMonths,
		InterestRate:    a.InterestRate,
		Purpose:         a.Purpose,
		Status:          a.Status(),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
		Version:         a.Version,
	}
	switch d := a.currentDisposition().(type) {
	case Approved:
		s.EvaluatedAt, s.EvaluatedBy = ptr(d.EvaluatedAt), ptr(d.EvaluatedBy)
	case Rejected:
		s.EvaluatedAt, s.EvaluatedBy, s.RejectionReason = ptr(d.EvaluatedAt), ptr(d.EvaluatedBy), ptr(d.Reason)
	case Cancelled:
		s.CancelledAt = ptr(d.CancelledAt)
	}
	if a.risk != nil {
		s.Risk = ptr(*a.risk)
	}
	return s
}

// Restore rebuilds an application from a stored snapshot, rejecting inconsistent state.
func Restore(s Snapshot) (*CreditApplication, error) {
	app := &CreditApplication{
		ID:              s.ID,
		AffiliateID:     s.AffiliateID,
		RequestedAmount: s.RequestedAmount,
		TermMonths:      s.TermMonths,
		InterestRate:    s.InterestRate,
		Purpose:         s.Purpose,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		Version:         s.Version,
	}
	status, ok := ParseStatus(string(s.Status))
	if !ok {
		return nil, fmt.Errorf("application %d: unknown status %q", s.ID, s.Status)
	}
	if s.RejectionReason != nil && status != StatusRejected {
		return nil, fmt.Errorf("application %d: rejection reason present with status %s", s.ID, status)
	}
	switch status {
	case StatusPending:
		app.disposition = Pending{}
	case StatusApproved:
		app.disposition = Approved{EvaluatedAt: deref(s.EvaluatedAt, s.UpdatedAt), EvaluatedBy: deref(s.EvaluatedBy, "")}
	case StatusRejected:
		if s.RejectionReason == nil || *s.RejectionReason == "" {
			return nil, fmt.Errorf("application %d: rejected without reason", s.ID)
		}
		app.disposition = Rejected{
			EvaluatedAt: deref(s.EvaluatedAt, s.UpdatedAt),
			EvaluatedBy: deref(s.EvaluatedBy, ""),
			Reason:      *s.RejectionReason,
		}
	case StatusCancelled:
		app.disposition = Cancelled{CancelledAt: deref(s.CancelledAt, s.UpdatedAt)}
	}
	if s.Risk != nil {
		app.risk = ptr(*s.Risk)
	}
	return app, nil
}

func ptr[T any](v T) *T {
	return &v
}

func deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
