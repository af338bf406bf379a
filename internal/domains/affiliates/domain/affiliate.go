package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"
	"unicode"
)

// DocumentType is the identity document kind accepted for members.
type DocumentType string

const (
	DocumentCC       DocumentType = "CC"
	DocumentCE       DocumentType = "CE"
	DocumentNIT      DocumentType = "NIT"
	DocumentPassport DocumentType = "PASAPORTE"
)

const (
	adultAgeYears     = 18
	minDocumentLength = 5
	maxDocumentLength = 20
	maxAddressLength  = 255
)

var (
	ErrValidation = errors.New("affiliate validation failed")
	// ErrNotAdult is returned when the member is younger than 18 at registration time.
	ErrNotAdult = errors.New("affiliate must be an adult")
)

// ValidationError carries field-level details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s (%s)", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) FieldErrors() map[string]string { return e.Fields }

// Affiliate is a cooperative member eligible to apply for credit.
type Affiliate struct {
	ID             int64
	DocumentNumber string
	DocumentType   DocumentType
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Address        string
	BirthDate      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RegistrationParams is the raw registration input.
type RegistrationParams struct {
	DocumentNumber string
	DocumentType   string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Address        string
	BirthDate      time.Time
}

// NewAffiliate normalizes and validates a registration.
func NewAffiliate(p RegistrationParams, now time.Time) (*Affiliate, error) {
	a := &Affiliate{
		DocumentNumber: strings.TrimSpace(p.DocumentNumber),
		DocumentType:   DocumentType(strings.ToUpper(strings.TrimSpace(p.DocumentType))),
		FirstName:      strings.TrimSpace(p.FirstName),
		LastName:       strings.TrimSpace(p.LastName),
		Email:          strings.ToLower(strings.TrimSpace(p.Email)),
		Phone:          strings.TrimSpace(p.Phone),
		Address:        strings.TrimSpace(p.Address),
		BirthDate:      p.BirthDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	fields := map[string]string{}
	if n := len(a.DocumentNumber); n < minDocumentLength || n > maxDocumentLength {
		fields["documentNumber"] = fmt.Sprintf("must have between %d and %d characters", minDocumentLength, maxDocumentLength)
	}
	switch a.DocumentType {
	case DocumentCC, DocumentCE, DocumentNIT, DocumentPassport:
	default:
		fields["documentType"] = "must be one of CC, CE, NIT, PASAPORTE"
	}
	if n := len([]rune(a.FirstName)); n < 2 || n > 100 {
		fields["firstName"] = "must have between 2 and 100 characters"
	}
	if n := len([]rune(a.LastName)); n < 2 || n > 100 {
		fields["lastName"] = "must have between 2 and 100 characters"
	}
	if _, err := mail.ParseAddress(a.Email); err != nil || a.Email == "" {
		fields["email"] = "must be a valid email address"
	}
	if a.Phone != "" && !validPhone(a.Phone) {
		fields["phone"] = "must contain 7 to 20 digits"
	}
	if len([]rune(a.Address)) > maxAddressLength {
		fields["address"] = fmt.Sprintf("must be at most %d characters", maxAddressLength)
	}
	if a.BirthDate.IsZero() || !a.BirthDate.Before(now) {
		fields["birthDate"] = "must be in the past"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if !a.IsAdultAt(now) {
		return nil, ErrNotAdult
	}
	return a, nil
}

// HasValidDocument reports whether both document fields are present.
func (a *Affiliate) HasValidDocument() bool {
	return a.DocumentNumber != "" && a.DocumentType != ""
}

// IsAdultAt reports whether the member is at least 18 on the given date.
func (a *Affiliate) IsAdultAt(now time.Time) bool {
	if a.BirthDate.IsZero() {
		return false
	}
	threshold := now.AddDate(-adultAgeYears, 0, 0)
	return !a.BirthDate.After(threshold)
}

// FullName joins first and last name.
func (a *Affiliate) FullName() string {
	return a.FirstName + " " + a.LastName
}

func validPhone(phone string) bool {
	if len(phone) < 7 || len(phone) > 20 {
		return false
	}
	for _, r := range phone {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
