package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
	creditactivities "github.com/Apurer/coopcredit-api-server/internal/durable/temporal/activities/credit"
	creditworkflows "github.com/Apurer/coopcredit-api-server/internal/durable/temporal/workflows/credit"
	apierrors "github.com/Apurer/coopcredit-api-server/internal/shared/errors"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalEvaluations)(nil)
	_ ports.WorkflowOrchestrator = (*InlineEvaluations)(nil)
)

// WorkflowStarter is the subset of the Temporal client the orchestrator uses.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// TemporalEvaluations starts evaluation workflows on a Temporal cluster.
type TemporalEvaluations struct {
	client    WorkflowStarter
	taskQueue string
	timeout   time.Duration
}

// TemporalOption configures TemporalEvaluations.
type TemporalOption func(*TemporalEvaluations)

// WithExecutionTimeout overrides how long a workflow may run and how long Evaluate waits for it.
func WithExecutionTimeout(d time.Duration) TemporalOption {
	return func(o *TemporalEvaluations) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// NewTemporalEvaluations wires a Temporal client into the orchestrator.
func NewTemporalEvaluations(c WorkflowStarter, opts ...TemporalOption) *TemporalEvaluations {
	o := &TemporalEvaluations{
		client:    c,
		taskQueue: creditworkflows.EvaluationTaskQueue,
		timeout:   creditworkflows.EvaluationWorkflowTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// EvaluationWorkflowID is the workflow ID for an application. At most one evaluation runs per
// application; a closed run does not block a retry.
func EvaluationWorkflowID(applicationID int64) string {
	return fmt.Sprintf("credit-evaluation-%d", applicationID)
}

// Evaluate runs the evaluation workflow and waits for the decided application. A concurrent
// evaluation of the same application fails with the invalid state kind. A workflow that does
// not finish within the execution timeout fails with the risk unavailable kind and the
// application stays pending.
func (o *TemporalEvaluations) Evaluate(ctx context.Context, id int64, evaluatorID string) (*domain.CreditApplication, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal evaluation workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	options := client.StartWorkflowOptions{
		ID:                                       EvaluationWorkflowID(id),
		TaskQueue:                                o.taskQueue,
		WorkflowExecutionTimeout:                 o.timeout,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		creditworkflows.EvaluationWorkflowName,
		creditworkflows.EvaluationWorkflowInput{
			Command: creditactivities.EvaluateApplicationInput{ApplicationID: id, EvaluatorID: evaluatorID},
			TraceID: traceComponent,
		},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil, fmt.Errorf("%w: application %d is already being evaluated", apierrors.ErrInvalidState, id)
		}
		return nil, err
	}
	var snapshot domain.Snapshot
	if err := run.Get(ctx, &snapshot); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || temporal.IsTimeoutError(err) {
			return nil, fmt.Errorf("%w: evaluation of application %d did not finish within %s: %w",
				apierrors.ErrRiskServiceUnavailable, id, o.timeout, err)
		}
		return nil, unwrapKind(err)
	}
	return domain.Restore(snapshot)
}

// unwrapKind restores the shared error kind carried in the application error type.
func unwrapKind(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	if kind, ok := apierrors.KindFromName(appErr.Type()); ok {
		return fmt.Errorf("%w: %s", kind, appErr.Error())
	}
	return err
}

// InlineEvaluations executes the service directly, used when Temporal is unavailable.
type InlineEvaluations struct {
	service ports.Service
}

func NewInlineEvaluations(service ports.Service) *InlineEvaluations {
	return &InlineEvaluations{service: service}
}

// Evaluate delegates to the application service without durable orchestration.
func (o *InlineEvaluations) Evaluate(ctx context.Context, id int64, evaluatorID string) (*domain.CreditApplication, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline evaluation workflows not configured")
	}
	return o.service.Evaluate(ctx, id, evaluatorID)
}

func workflowTraceComponent(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() && spanCtx.TraceID().IsValid() {
		return spanCtx.TraceID().String()
	}
	return uuid.NewString()
}
