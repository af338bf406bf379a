package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	platformobservability "github.com/Apurer/coopcredit-api-server/internal/platform/observability"
	"github.com/Apurer/coopcredit-api-server/internal/riskcentral"
)

func main() {
	ctx := context.Background()
	const serviceName = "risk-central-mock"
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

	router := riskcentral.NewRouter(riskcentral.NewHandler(logger, riskcentral.DefaultLatency), otelgin.Middleware(serviceName))
	addr := ":8081"
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		addr = ":" + v
	}
	logger.Info("Risk Central mock listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("Risk Central mock exited", slog.String("addr", addr), slog.String("error", err.Error()))
	}
}
