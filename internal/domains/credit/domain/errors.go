package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidState is returned when a transition is attempted outside its guard.
	ErrInvalidState = errors.New("credit application is not in a valid state for this operation")
	// ErrValidation marks creation-time invariant violations. Use errors.As with *ValidationError for field details.
	ErrValidation = errors.New("credit application validation failed")
	// ErrNoRiskEvaluation is returned when a score decision is requested before a risk evaluation is attached.
	ErrNoRiskEvaluation = errors.New("credit application has no risk evaluation attached")
)

// ValidationError carries field-level details for a rejected application.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s (%s)", ErrValidation.Error(), strings.Join(parts, "; "))
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// FieldErrors exposes the per-field messages.
func (e *ValidationError) FieldErrors() map[string]string {
	return e.Fields
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func invalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}
