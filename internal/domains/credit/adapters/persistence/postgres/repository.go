package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists credit applications in PostgreSQL using GORM. The schema is owned by
// platform/migrations.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type applicationRecord struct {
	ID              int64           `gorm:"primaryKey;column:id"`
	AffiliateID     int64           `gorm:"column:affiliate_id;index"`
	RequestedAmount decimal.Decimal `gorm:"column:requested_amount;type:numeric(15,2)"`
	TermMonths      int             `gorm:"column:term_months"`
	InterestRate    decimal.Decimal `gorm:"column:interest_rate;type:numeric(5,2)"`
	Purpose         string          `gorm:"column:purpose;size:500"`
	Status          string          `gorm:"column:status;type:varchar(20);index"`
	EvaluatedAt     *time.Time      `gorm:"column:evaluated_at"`
	EvaluatedBy     *string         `gorm:"column:evaluated_by"`
	RejectionReason *string         `gorm:"column:rejection_reason;size:500"`
	CancelledAt     *time.Time      `gorm:"column:cancelled_at"`
	Version         int64           `gorm:"column:version;not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (applicationRecord) TableName() string { return "credit_applications" }

type riskEvaluationRecord struct {
	ID             int64     `gorm:"primaryKey;column:id"`
	ApplicationID  int64     `gorm:"column:credit_application_id;uniqueIndex"`
	DocumentNumber string    `gorm:"column:document_number"`
	Score          int       `gorm:"column:score"`
	RiskLevel      string    `gorm:"column:risk_level;type:varchar(10)"`
	Recommendation string    `gorm:"column:recommendation;size:1000"`
	EvaluatedAt    time.Time `gorm:"column:evaluated_at"`
}

func (riskEvaluationRecord) TableName() string { return "risk_evaluations" }

// Save inserts new applications and conditionally updates existing ones on their version.
// A freshly attached risk evaluation replaces the stored one in the same transaction.
func (r *Repository) Save(ctx context.Context, app *domain.CreditApplication) (*domain.CreditApplication, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if app == nil {
		return nil, errors.New("credit application is nil")
	}
	snap := app.Snapshot()
	record := toRecord(snap)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if record.ID == 0 {
			record.Version = 0
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		} else {
			result := tx.Model(&applicationRecord{}).
				Where("id = ? AND version = ?", record.ID, snap.Version).
				Updates(map[string]any{
					"status":           record.Status,
					"purpose":          record.Purpose,
					"evaluated_at":     record.EvaluatedAt,
					"evaluated_by":     record.EvaluatedBy,
					"rejection_reason": record.RejectionReason,
					"cancelled_at":     record.CancelledAt,
					"updated_at":       record.UpdatedAt,
					"version":          gorm.Expr("version + 1"),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return r.missingOrStale(tx, record.ID, snap.Version)
			}
		}
		if snap.Risk != nil && snap.Risk.ID == 0 {
			if err := tx.Where("credit_application_id = ?", record.ID).Delete(&riskEvaluationRecord{}).Error; err != nil {
				return err
			}
			risk := toRiskRecord(record.ID, *snap.Risk)
			if err := tx.Create(&risk).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

func (r *Repository) missingOrStale(tx *gorm.DB, id, expected int64) error {
	var count int64
	if err := tx.Model(&applicationRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: id %d", ports.ErrNotFound, id)
	}
	return fmt.Errorf("%w: id %d expected version %d", ports.ErrConcurrentUpdate, id, expected)
}

// GetByID fetches an application with its risk evaluation.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.CreditApplication, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record applicationRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	apps, err := r.hydrate(ctx, []applicationRecord{record})
	if err != nil {
		return nil, err
	}
	return apps[0], nil
}

// ListByAffiliate returns the applications of one affiliate ordered by id.
func (r *Repository) ListByAffiliate(ctx context.Context, affiliateID int64) ([]*domain.CreditApplication, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []applicationRecord
	if err := r.db.WithContext(ctx).Where("affiliate_id = ?", affiliateID).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, records)
}

// List returns all applications ordered by id.
func (r *Repository) List(ctx context.Context) ([]*domain.CreditApplication, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []applicationRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, records)
}

func (r *Repository) hydrate(ctx context.Context, records []applicationRecord) ([]*domain.CreditApplication, error) {
	if len(records) == 0 {
		return []*domain.CreditApplication{}, nil
	}
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	var risks []riskEvaluationRecord
	if err := r.db.WithContext(ctx).Where("credit_application_id IN ?", ids).Find(&risks).Error; err != nil {
		return nil, err
	}
	byApp := make(map[int64]riskEvaluationRecord, len(risks))
	for _, risk := range risks {
		byApp[risk.ApplicationID] = risk
	}
	apps := make([]*domain.CreditApplication, 0, len(records))
	for _, rec := range records {
		snap := rec.toSnapshot()
		if risk, ok := byApp[rec.ID]; ok {
			eval := risk.toDomain()
			snap.Risk = &eval
		}
		app, err := domain.Restore(snap)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres credit application repository not configured")
	}
	return nil
}

func toRecord(s domain.Snapshot) applicationRecord {
	return applicationRecord{
		ID:              s.ID,
		AffiliateID:     s.AffiliateID,
		RequestedAmount: s.RequestedAmount,
		TermMonths:      s.TermMonths,
		InterestRate:    s.InterestRate,
		Purpose:         s.Purpose,
		Status:          string(s.Status),
		EvaluatedAt:     s.EvaluatedAt,
		EvaluatedBy:     s.EvaluatedBy,
		RejectionReason: s.RejectionReason,
		CancelledAt:     s.CancelledAt,
		Version:         s.Version,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (r applicationRecord) toSnapshot() domain.Snapshot {
	return domain.Snapshot{
		ID:              r.ID,
		AffiliateID:     r.AffiliateID,
		RequestedAmount: r.RequestedAmount,
		TermMonths:      r.TermMonths,
		InterestRate:    r.InterestRate,
		Purpose:         r.Purpose,
		Status:          domain.Status(r.Status),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		EvaluatedAt:     r.EvaluatedAt,
		EvaluatedBy:     r.EvaluatedBy,
		RejectionReason: r.RejectionReason,
		CancelledAt:     r.CancelledAt,
		Version:         r.Version,
	}
}

func toRiskRecord(applicationID int64, e domain.RiskEvaluation) riskEvaluationRecord {
	return riskEvaluationRecord{
		ApplicationID:  applicationID,
		DocumentNumber: e.DocumentNumber,
		Score:          e.Score,
		RiskLevel:      string(e.Level),
		Recommendation: e.Recommendation,
		EvaluatedAt:    e.EvaluatedAt,
	}
}

func (r riskEvaluationRecord) toDomain() domain.RiskEvaluation {
	return domain.RiskEvaluation{
		ID:             r.ID,
		ApplicationID:  r.ApplicationID,
		DocumentNumber: r.DocumentNumber,
		Score:          r.Score,
		Level:          domain.RiskLevel(r.RiskLevel),
		Recommendation: r.Recommendation,
		EvaluatedAt:    r.EvaluatedAt,
	}
}
