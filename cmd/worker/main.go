package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/coopcredit-api-server/internal/app/api"
	creditactivities "github.com/Apurer/coopcredit-api-server/internal/durable/temporal/activities/credit"
	creditworkflows "github.com/Apurer/coopcredit-api-server/internal/durable/temporal/workflows/credit"
	platformobservability "github.com/Apurer/coopcredit-api-server/internal/platform/observability"
)

func main() {
	ctx := context.Background()
	const serviceName = "coopcredit-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	components, cleanup := api.Build(ctx, cfg, instruments)
	defer cleanup()
	evaluationActivities := creditactivities.NewActivities(components.Credit)

	cfg.TemporalDisabled = false
	temporalClient, err := api.ConnectTemporal(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, creditworkflows.EvaluationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(creditworkflows.EvaluationWorkflow, workflow.RegisterOptions{Name: creditworkflows.EvaluationWorkflowName})
	w.RegisterActivityWithOptions(evaluationActivities.EvaluateApplication, activity.RegisterOptions{Name: creditactivities.EvaluateApplicationActivityName})

	logger.Info("worker listening", slog.String("taskQueue", creditworkflows.EvaluationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
