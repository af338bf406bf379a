package mapper

import (
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/domain"
)

const dateLayout = time.DateOnly

// RegisterAffiliate is the inbound registration payload. BirthDate uses YYYY-MM-DD.
type RegisterAffiliate struct {
	DocumentNumber string `json:"documentNumber"`
	DocumentType   string `json:"documentType"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	BirthDate      string `json:"birthDate"`
}

// Affiliate is the HTTP representation of a member profile.
type Affiliate struct {
	ID             int64     `json:"id"`
	DocumentNumber string    `json:"documentNumber"`
	DocumentType   string    `json:"documentType"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	BirthDate      string    `json:"birthDate"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ToRegistrationParams parses the payload. A malformed birth date is reported per field.
func ToRegistrationParams(payload RegisterAffiliate) (domain.RegistrationParams, map[string]string) {
	params := domain.RegistrationParams{
		DocumentNumber: payload.DocumentNumber,
		DocumentType:   payload.DocumentType,
		FirstName:      payload.FirstName,
		LastName:       payload.LastName,
		Email:          payload.Email,
		Phone:          payload.Phone,
		Address:        payload.Address,
	}
	raw := strings.TrimSpace(payload.BirthDate)
	if raw == "" {
		return params, nil
	}
	birth, err := time.Parse(dateLayout, raw)
	if err != nil {
		return params, map[string]string{"birthDate": fmt.Sprintf("must use the %s format", dateLayout)}
	}
	params.BirthDate = birth
	return params, nil
}

// FromDomain maps an affiliate.
func FromDomain(a *domain.Affiliate) Affiliate {
	return Affiliate{
		ID:             a.ID,
		DocumentNumber: a.DocumentNumber,
		DocumentType:   string(a.DocumentType),
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		FullName:       a.FullName(),
		Email:          a.Email,
		Phone:          a.Phone,
		Address:        a.Address,
		BirthDate:      a.BirthDate.Format(dateLayout),
		CreatedAt:      a.CreatedAt,
	}
}

// FromDomainList maps a slice of affiliates.
func FromDomainList(items []*domain.Affiliate) []Affiliate {
	out := make([]Affiliate, 0, len(items))
	for _, a := range items {
		out = append(out, FromDomain(a))
	}
	return out
}
