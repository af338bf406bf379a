package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	creditactivities "github.com/Apurer/coopcredit-api-server/internal/durable/temporal/activities/credit"
)

const (
	// EvaluationActivityTimeout bounds one run of the evaluate activity, risk call included.
	EvaluationActivityTimeout = 30 * time.Second
	// EvaluationScheduleTimeout also covers the wait for a worker to pick the activity up.
	EvaluationScheduleTimeout = 45 * time.Second
)

// EvaluationActivityOptions runs the activity once, within EvaluationScheduleTimeout.
func EvaluationActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		ScheduleToCloseTimeout: EvaluationScheduleTimeout,
		StartToCloseTimeout:    EvaluationActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
}

// RunEvaluationSequence executes the single evaluation activity. The risk call is never retried.
func RunEvaluationSequence(ctx workflow.Context, input creditactivities.EvaluateApplicationInput) (*domain.Snapshot, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("evaluation sequence started", "applicationId", input.ApplicationID)
	ctx = workflow.WithActivityOptions(ctx, EvaluationActivityOptions())

	var snapshot domain.Snapshot
	err := workflow.ExecuteActivity(ctx, creditactivities.EvaluateApplicationActivityName, input).Get(ctx, &snapshot)
	if err != nil {
		logger.Error("evaluation sequence failed", "applicationId", input.ApplicationID, "error", err)
		return nil, err
	}
	logger.Info("evaluation sequence completed", "applicationId", snapshot.ID, "status", string(snapshot.Status))
	return &snapshot, nil
}
