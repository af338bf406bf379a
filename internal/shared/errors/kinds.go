package errors

import "errors"

// Error kinds surfaced by the application services. Services wrap the underlying cause
// with fmt.Errorf("%w: %w", kind, cause) so callers branch with errors.Is.
var (
	ErrValidationFailed       = errors.New("validation failed")
	ErrNotFound               = errors.New("not found")
	ErrInvalidState           = errors.New("invalid state")
	ErrDuplicateResource      = errors.New("duplicate resource")
	ErrRiskServiceUnavailable = errors.New("risk service unavailable")
)

// FieldErrors is implemented by validation errors that carry per-field messages.
type FieldErrors interface {
	FieldErrors() map[string]string
}

// KindMapper translates the shared kinds into problem details.
func KindMapper(err error) (ProblemDetail, bool) {
	switch {
	case errors.Is(err, ErrValidationFailed):
		var fe FieldErrors
		if errors.As(err, &fe) && len(fe.FieldErrors()) > 0 {
			return NewValidationProblem(fe.FieldErrors()).WithDetail(err.Error()), true
		}
		return ProblemValidation.WithDetail(err.Error()), true
	case errors.Is(err, ErrNotFound):
		return ProblemNotFound.WithDetail(err.Error()), true
	case errors.Is(err, ErrInvalidState):
		return ProblemInvalidState.WithDetail(err.Error()), true
	case errors.Is(err, ErrDuplicateResource):
		return ProblemDuplicate.WithDetail(err.Error()), true
	case errors.Is(err, ErrRiskServiceUnavailable):
		return ProblemRiskUnavailable.WithDetail(err.Error()), true
	default:
		return ProblemDetail{}, false
	}
}

var kindNames = []struct {
	name string
	kind error
}{
	{"ValidationFailed", ErrValidationFailed},
	{"NotFound", ErrNotFound},
	{"InvalidState", ErrInvalidState},
	{"DuplicateResource", ErrDuplicateResource},
	{"RiskServiceUnavailable", ErrRiskServiceUnavailable},
}

// KindName returns a stable name for the kind err carries, or "" when it carries none.
// It lets kinds survive transports that only keep a type string.
func KindName(err error) string {
	for _, k := range kindNames {
		if errors.Is(err, k.kind) {
			return k.name
		}
	}
	return ""
}

// KindFromName is the inverse of KindName.
func KindFromName(name string) (error, bool) {
	for _, k := range kindNames {
		if k.name == name {
			return k.kind, true
		}
	}
	return nil, false
}
