package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/ports"
	apperrors "github.com/Apurer/coopcredit-api-server/internal/shared/errors"
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotAdult) {
		return fmt.Errorf("%w: %w", apperrors.ErrValidationFailed, err)
	}
	if errors.Is(err, ports.ErrDuplicateDocument) ||
		errors.Is(err, ports.ErrDuplicateEmail) {
		return fmt.Errorf("%w: %w", apperrors.ErrDuplicateResource, err)
	}
	if errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("%w: %w", apperrors.ErrNotFound, err)
	}
	return err
}
