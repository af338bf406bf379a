package domain

import "time"

// Status is the lifecycle state of a credit application.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus validates a stored or transported status label.
func ParseStatus(raw string) (Status, bool) {
	switch s := Status(raw); s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return s, true
	default:
		return "", false
	}
}

// Disposition is the status-specific part of an application. Each variant only carries
// the fields that are meaningful in its state, so a rejection reason cannot exist outside
// Rejected and an approval stamp cannot exist on a pending application.
type Disposition interface {
	Status() Status
	sealed()
}

// Pending is the initial disposition.
type Pending struct{}

// Approved records who approved the application and when.
type Approved struct {
	EvaluatedAt time.Time
	EvaluatedBy string
}

// Rejected records who rejected the application, when and why.
type Rejected struct {
	EvaluatedAt time.Time
	EvaluatedBy string
	Reason      string
}

// Cancelled records the owner withdrawal.
type Cancelled struct {
	CancelledAt time.Time
}

func (Pending) Status() Status   { return StatusPending }
func (Approved) Status() Status  { return StatusApproved }
func (Rejected) Status() Status  { return StatusRejected }
func (Cancelled) Status() Status { return StatusCancelled }

func (Pending) sealed()   {}
func (Approved) sealed()  {}
func (Rejected) sealed()  {}
func (Cancelled) sealed() {}
