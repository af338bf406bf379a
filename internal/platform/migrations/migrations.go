package migrations

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Repositories do not migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&affiliateRecord{},
		&creditApplicationRecord{},
		&riskEvaluationRecord{},
		&idempotencyKeyRecord{},
	)
}

// Affiliate schema mirrors the affiliates Postgres adapter.
type affiliateRecord struct {
	ID             int64     `gorm:"primaryKey;column:id"`
	DocumentNumber string    `gorm:"column:document_number;size:20;not null;uniqueIndex"`
	DocumentType   string    `gorm:"column:document_type;size:20;not null"`
	FirstName      string    `gorm:"column:first_name;size:100;not null"`
	LastName       string    `gorm:"column:last_name;size:100;not null"`
	Email          string    `gorm:"column:email;size:100;not null;uniqueIndex"`
	Phone          string    `gorm:"column:phone;size:20"`
	Address        string    `gorm:"column:address;size:255"`
	BirthDate      time.Time `gorm:"column:birth_date;type:date;not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (affiliateRecord) TableName() string { return "affiliates" }

// Credit application schema mirrors the credit Postgres adapter. Version backs the
// optimistic conditional update.
type creditApplicationRecord struct {
	ID              int64           `gorm:"primaryKey;column:id"`
	AffiliateID     int64           `gorm:"column:affiliate_id;not null;index"`
	RequestedAmount decimal.Decimal `gorm:"column:requested_amount;type:numeric(15,2);not null"`
	TermMonths      int             `gorm:"column:term_months;not null"`
	InterestRate    decimal.Decimal `gorm:"column:interest_rate;type:numeric(5,2);not null"`
	Purpose         string          `gorm:"column:purpose;size:500"`
	Status          string          `gorm:"column:status;type:varchar(20);not null;index"`
	EvaluatedAt     *time.Time      `gorm:"column:evaluated_at"`
	EvaluatedBy     *string         `gorm:"column:evaluated_by"`
	RejectionReason *string         `gorm:"column:rejection_reason;size:500"`
	CancelledAt     *time.Time      `gorm:"column:cancelled_at"`
	Version         int64           `gorm:"column:version;not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (creditApplicationRecord) TableName() string { return "credit_applications" }

// Risk evaluation schema mirrors the credit Postgres adapter.
type riskEvaluationRecord struct {
	ID             int64     `gorm:"primaryKey;column:id"`
	ApplicationID  int64     `gorm:"column:credit_application_id;not null;uniqueIndex"`
	DocumentNumber string    `gorm:"column:document_number;not null"`
	Score          int       `gorm:"column:score;not null"`
	RiskLevel      string    `gorm:"column:risk_level;type:varchar(10);not null"`
	Recommendation string    `gorm:"column:recommendation;size:1000"`
	EvaluatedAt    time.Time `gorm:"column:evaluated_at"`
}

func (riskEvaluationRecord) TableName() string { return "risk_evaluations" }

// Idempotency key schema mirrors the credit Postgres idempotency store.
type idempotencyKeyRecord struct {
	Key           string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash   string    `gorm:"column:request_hash;size:128;not null"`
	ApplicationID int64     `gorm:"column:credit_application_id;not null"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (idempotencyKeyRecord) TableName() string { return "credit_idempotency_keys" }
