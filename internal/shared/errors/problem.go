// Package errors holds the error kinds shared by every bounded context and their
// RFC 7807 Problem Details rendering for the HTTP API.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail represents an RFC 7807 Problem Details response.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithInstance returns a copy with the given instance URI.
func (p ProblemDetail) WithInstance(instance string) ProblemDetail {
	p.Instance = instance
	return p
}

// WithExtension returns a copy with an additional extension property.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

// Problem type URI references.
const (
	TypeValidation         = "/problems/validation-error"
	TypeNotFound           = "/problems/not-found"
	TypeInvalidState       = "/problems/invalid-state"
	TypeDuplicateResource  = "/problems/duplicate-resource"
	TypeServiceUnavailable = "/problems/risk-service-unavailable"
	TypeInternal           = "/problems/internal-error"
	TypeUnauthorized       = "/problems/unauthorized"
	TypeForbidden          = "/problems/forbidden"
	TypeBadRequest         = "/problems/bad-request"
)

// Problem templates.
var (
	ProblemNotFound = ProblemDetail{
		Type:   TypeNotFound,
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
	}
	ProblemValidation = ProblemDetail{
		Type:   TypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
	}
	ProblemBadRequest = ProblemDetail{
		Type:   TypeBadRequest,
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
	}
	// ProblemInvalidState covers state machine guard violations.
	ProblemInvalidState = ProblemDetail{
		Type:   TypeInvalidState,
		Title:  "Invalid State",
		Status: http.StatusConflict,
	}
	ProblemDuplicate = ProblemDetail{
		Type:   TypeDuplicateResource,
		Title:  "Duplicate Resource",
		Status: http.StatusConflict,
	}
	// ProblemRiskUnavailable is returned when the risk central could not produce a score.
	// The application is left untouched so the caller may retry.
	ProblemRiskUnavailable = ProblemDetail{
		Type:   TypeServiceUnavailable,
		Title:  "Risk Service Unavailable",
		Status: http.StatusServiceUnavailable,
	}
	ProblemInternal = ProblemDetail{
		Type:   TypeInternal,
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}
	ProblemUnauthorized = ProblemDetail{
		Type:   TypeUnauthorized,
		Title:  "Unauthorized",
		Status: http.StatusUnauthorized,
	}
	ProblemForbidden = ProblemDetail{
		Type:   TypeForbidden,
		Title:  "Forbidden",
		Status: http.StatusForbidden,
	}
)

// NewValidationProblem creates a validation error with field-level details.
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	return ProblemValidation.WithExtension("fields", fieldErrors)
}

// NewNotFoundProblem creates a not found error for a specific resource.
func NewNotFoundProblem(resourceType string, identifier any) ProblemDetail {
	return ProblemNotFound.
		WithDetail(fmt.Sprintf("%s with identifier '%v' not found", resourceType, identifier)).
		WithExtension("resourceType", resourceType).
		WithExtension("identifier", identifier)
}
