package credit

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	creditports "github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
	apierrors "github.com/Apurer/coopcredit-api-server/internal/shared/errors"
)

// EvaluateApplicationActivityName runs the automatic evaluation of one application.
const EvaluateApplicationActivityName = "credit.activities.EvaluateApplication"

// EvaluateApplicationInput identifies the application and the analyst requesting the decision.
type EvaluateApplicationInput struct {
	ApplicationID int64
	EvaluatorID   string
}

// Activities groups activities that operate on the credit bounded context.
type Activities struct {
	service creditports.Service
}

func NewActivities(service creditports.Service) *Activities {
	return &Activities{service: service}
}

// EvaluateApplication decides the application and returns its persisted state. Failures are
// non-retryable application errors typed with the shared error kind name.
func (a *Activities) EvaluateApplication(ctx context.Context, input EvaluateApplicationInput) (*domain.Snapshot, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("credit evaluation activity not initialized", "applicationId", input.ApplicationID)
		return nil, errors.New("credit evaluation activity not initialized")
	}
	logger.Info("EvaluateApplication activity started", "applicationId", input.ApplicationID)
	app, err := a.service.Evaluate(ctx, input.ApplicationID, input.EvaluatorID)
	if err != nil {
		logger.Error("EvaluateApplication activity failed", "applicationId", input.ApplicationID, "error", err)
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), apierrors.KindName(err), err)
	}
	snapshot := app.Snapshot()
	logger.Info("EvaluateApplication activity completed", "applicationId", app.ID, "status", string(snapshot.Status))
	return &snapshot, nil
}
