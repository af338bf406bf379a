package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	coopcreditserver "github.com/Apurer/coopcredit-api-server/go"

	creditworkflows "github.com/Apurer/coopcredit-api-server/internal/domains/credit/adapters/workflows"
	creditports "github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
	platformobservability "github.com/Apurer/coopcredit-api-server/internal/platform/observability"
)

const serviceName = "coopcredit-api"

// Run boots the CoopCredit HTTP API and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	components, cleanup := Build(ctx, cfg, instruments)
	defer cleanup()

	var evaluations creditports.WorkflowOrchestrator = creditworkflows.NewInlineEvaluations(components.Credit)
	if temporalClient, err := ConnectTemporal(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running evaluations inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		evaluations = creditworkflows.NewTemporalEvaluations(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := coopcreditserver.ApiHandleFunctions{
		CreditAPI:    coopcreditserver.NewCreditAPI(components.Credit, evaluations, components.Lookup, logger),
		AffiliateAPI: coopcreditserver.NewAffiliateAPI(components.Affiliates, logger),
	}
	opts := []coopcreditserver.RouterOption{coopcreditserver.WithMiddleware(otelgin.Middleware(serviceName))}
	if cfg.MetricsEnabled {
		opts = append(opts, coopcreditserver.WithMetricsHandler(instruments.MetricsHandler()))
	}
	router := coopcreditserver.NewRouter(handlers, opts...)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("CoopCredit API listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("CoopCredit API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down CoopCredit API")
		return server.Shutdown(shutdownCtx)
	}
}
