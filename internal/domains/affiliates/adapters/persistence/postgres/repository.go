package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists affiliates in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type affiliateRecord struct {
	ID             int64     `gorm:"primaryKey;column:id"`
	DocumentNumber string    `gorm:"column:document_number;size:20;uniqueIndex"`
	DocumentType   string    `gorm:"column:document_type;size:20"`
	FirstName      string    `gorm:"column:first_name;size:100"`
	LastName       string    `gorm:"column:last_name;size:100"`
	Email          string    `gorm:"column:email;size:100;uniqueIndex"`
	Phone          string    `gorm:"column:phone;size:20"`
	Address        string    `gorm:"column:address;size:255"`
	BirthDate      time.Time `gorm:"column:birth_date;type:date"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (affiliateRecord) TableName() string { return "affiliates" }

// Create inserts a new affiliate. Unique violations surface as duplicate errors.
func (r *Repository) Create(ctx context.Context, affiliate *domain.Affiliate) (*domain.Affiliate, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if affiliate == nil {
		return nil, errors.New("affiliate is nil")
	}
	record := toRecord(affiliate)
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, r.duplicateCause(ctx, affiliate)
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) duplicateCause(ctx context.Context, affiliate *domain.Affiliate) error {
	if taken, err := r.ExistsByDocumentNumber(ctx, affiliate.DocumentNumber); err == nil && taken {
		return ports.ErrDuplicateDocument
	}
	return ports.ErrDuplicateEmail
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Affiliate, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) GetByDocumentNumber(ctx context.Context, documentNumber string) (*domain.Affiliate, error) {
	return r.first(ctx, "document_number = ?", documentNumber)
}

func (r *Repository) ExistsByDocumentNumber(ctx context.Context, documentNumber string) (bool, error) {
	return r.exists(ctx, "document_number = ?", documentNumber)
}

func (r *Repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *Repository) List(ctx context.Context) ([]*domain.Affiliate, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []affiliateRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.Affiliate, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*domain.Affiliate, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record affiliateRecord
	if err := r.db.WithContext(ctx).First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) exists(ctx context.Context, query string, arg any) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&affiliateRecord{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres affiliate repository not configured")
	}
	return nil
}

func toRecord(a *domain.Affiliate) affiliateRecord {
	return affiliateRecord{
		ID:             a.ID,
		DocumentNumber: a.DocumentNumber,
		DocumentType:   string(a.DocumentType),
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Email:          a.Email,
		Phone:          a.Phone,
		Address:        a.Address,
		BirthDate:      a.BirthDate,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func (r affiliateRecord) toDomain() *domain.Affiliate {
	return &domain.Affiliate{
		ID:             r.ID,
		DocumentNumber: r.DocumentNumber,
		DocumentType:   domain.DocumentType(r.DocumentType),
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Phone:          r.Phone,
		Address:        r.Address,
		BirthDate:      r.BirthDate,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
