package credit

import (
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	creditactivities "github.com/Apurer/coopcredit-api-server/internal/durable/temporal/activities/credit"
	"github.com/Apurer/coopcredit-api-server/internal/durable/temporal/sequences"
)

const (
	// EvaluationWorkflowName is the public identifier for registering the workflow.
	EvaluationWorkflowName = "credit.workflows.Evaluation"
	// EvaluationTaskQueue is the queue consumed by the worker processing evaluations.
	EvaluationTaskQueue = "CREDIT_EVALUATION"
	// EvaluationWorkflowTimeout bounds the whole execution so a stuck worker cannot hold the
	// workflow ID open.
	EvaluationWorkflowTimeout = sequences.EvaluationScheduleTimeout + 15*time.Second
)

// EvaluationWorkflowInput captures the evaluation command.
type EvaluationWorkflowInput struct {
	Command creditactivities.EvaluateApplicationInput
	TraceID string
}

// EvaluationWorkflow runs the automatic decision for one application.
func EvaluationWorkflow(ctx workflow.Context, input EvaluationWorkflowInput) (*domain.Snapshot, error) {
	logger := workflow.GetLogger(ctx)
	appID := input.Command.ApplicationID
	logger.Info("EvaluationWorkflow started", withTraceID(input.TraceID, "applicationId", appID)...)
	snapshot, err := sequences.RunEvaluationSequence(ctx, input.Command)
	if err != nil {
		logger.Error("EvaluationWorkflow failed", withTraceID(input.TraceID, "applicationId", appID, "error", err)...)
		return nil, err
	}
	logger.Info("EvaluationWorkflow completed", withTraceID(input.TraceID, "applicationId", appID, "status", string(snapshot.Status))...)
	return snapshot, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
