package coopcreditserver

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	apierrors "github.com/Apurer/coopcredit-api-server/internal/shared/errors"
)

// newProblemResponder maps the shared error kinds to RFC 7807 responses.
func newProblemResponder() *apierrors.ChainedResponder {
	return apierrors.NewKindResponder("")
}

// respondServiceError renders err and logs the ones that map to a 5xx.
func respondServiceError(c *gin.Context, responder *apierrors.ChainedResponder, logger *slog.Logger, err error) {
	if err == nil {
		return
	}
	if status := apierrors.HTTPStatusFromError(err); status >= 500 && logger != nil {
		logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	responder.RespondError(c, err)
}
