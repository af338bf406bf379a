package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// ApplicationSubmitted is raised when a new application enters PENDING. ApplicationID is
// zero until the application is first stored; see BindApplicationID.
type ApplicationSubmitted struct {
	BaseEvent
	ApplicationID   int64
	AffiliateID     int64
	RequestedAmount decimal.Decimal
	TermMonths      int
}

func (e ApplicationSubmitted) EventName() string { return "credit.application.submitted" }

// RiskEvaluated is raised when a risk evaluation is attached.
type RiskEvaluated struct {
	BaseEvent
	ApplicationID int64
	Score         int
	Level         RiskLevel
}

func (e RiskEvaluated) EventName() string { return "credit.application.risk_evaluated" }

// ApplicationApproved is raised on PENDING → APPROVED.
type ApplicationApproved struct {
	BaseEvent
	ApplicationID int64
	EvaluatedBy   string
}

func (e ApplicationApproved) EventName() string { return "credit.application.approved" }

// ApplicationRejected is raised on PENDING → REJECTED.
type ApplicationRejected struct {
	BaseEvent
	ApplicationID int64
	EvaluatedBy   string
	Reason        string
}

func (e ApplicationRejected) EventName() string { return "credit.application.rejected" }

// ApplicationCancelled is raised when the owner withdraws a pending application.
type ApplicationCancelled struct {
	BaseEvent
	ApplicationID int64
	AffiliateID   int64
}

func (e ApplicationCancelled) EventName() string { return "credit.application.cancelled" }

// BindApplicationID returns events with unstamped submission events bound to id.
func BindApplicationID(events []Event, id int64) []Event {
	out := make([]Event, len(events))
	for i, ev := range events {
		if sub, ok := ev.(ApplicationSubmitted); ok && sub.ApplicationID == 0 {
			sub.ApplicationID = id
			ev = sub
		}
		out[i] = ev
	}
	return out
}

// AggregateWithEvents is implemented by aggregates that track domain events.
type AggregateWithEvents interface {
	Events() []Event
	ClearEvents()
}
