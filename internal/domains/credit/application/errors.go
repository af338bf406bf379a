package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
	apperrors "github.com/Apurer/coopcredit-api-server/internal/shared/errors"
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fmt.Errorf("%w: %w", apperrors.ErrValidationFailed, err)
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrNoRiskEvaluation),
		errors.Is(err, ports.ErrConcurrentUpdate),
		errors.Is(err, ports.ErrIdempotencyConflict):
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidState, err)
	case errors.Is(err, ports.ErrNotFound),
		errors.Is(err, ports.ErrAffiliateNotFound):
		return fmt.Errorf("%w: %w", apperrors.ErrNotFound, err)
	case errors.Is(err, ports.ErrRiskServiceUnavailable):
		return fmt.Errorf("%w: %w", apperrors.ErrRiskServiceUnavailable, err)
	}
	return err
}

// riskUnavailable normalizes any risk client failure to the single failure branch.
func riskUnavailable(err error) error {
	if err == nil {
		return ports.ErrRiskServiceUnavailable
	}
	if errors.Is(err, ports.ErrRiskServiceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ports.ErrRiskServiceUnavailable, err)
}

func isRiskUnavailable(err error) bool {
	return errors.Is(err, ports.ErrRiskServiceUnavailable)
}
