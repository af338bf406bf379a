package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	riskclient "github.com/Apurer/coopcredit-api-server/internal/clients/http/risk"
	affiliatesmemory "github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/adapters/memory"
	affiliatesobs "github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/adapters/observability"
	affiliatespostgres "github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/adapters/persistence/postgres"
	affiliatesapp "github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/application"
	affiliatesports "github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/ports"
	creditaffiliates "github.com/Apurer/coopcredit-api-server/internal/domains/credit/adapters/affiliates"
	creditrisk "github.com/Apurer/coopcredit-api-server/internal/domains/credit/adapters/external/risk"
	creditmemory "github.com/Apurer/coopcredit-api-server/internal/domains/credit/adapters/memory"
	creditobs "github.com/Apurer/coopcredit-api-server/internal/domains/credit/adapters/observability"
	creditpostgres "github.com/Apurer/coopcredit-api-server/internal/domains/credit/adapters/persistence/postgres"
	creditapp "github.com/Apurer/coopcredit-api-server/internal/domains/credit/application"
	creditports "github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
	"github.com/Apurer/coopcredit-api-server/internal/platform/migrations"
	platformobservability "github.com/Apurer/coopcredit-api-server/internal/platform/observability"
	platformpostgres "github.com/Apurer/coopcredit-api-server/internal/platform/postgres"
	platformredis "github.com/Apurer/coopcredit-api-server/internal/platform/redis"
)

// Components are the instrumented services shared by the API and the worker.
type Components struct {
	Affiliates affiliatesports.Service
	Credit     creditports.Service
	Lookup     creditports.AffiliateLookup
}

// Build wires repositories, the affiliate lookup, the risk client, and both services.
// The returned cleanup releases database and cache connections.
func Build(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Components, func()) {
	logger := instruments.Logger
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	db, closeDB := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	cleanups = append(cleanups, closeDB)
	if db != nil {
		if err := migrations.Run(db); err != nil {
			logger.Warn("failed to migrate postgres schema, falling back to in-memory repositories", slog.String("error", err.Error()))
			db = nil
		}
	}

	affiliateService := affiliatesobs.New(
		affiliatesapp.NewService(affiliateRepository(db)),
		affiliatesobs.WithLogger(logger),
		affiliatesobs.WithTracer(instruments.Tracer("internal.affiliates.application")),
		affiliatesobs.WithMeter(instruments.Meter("internal.affiliates.application")),
	)

	var lookup creditports.AffiliateLookup = creditaffiliates.NewLookup(affiliateService)
	if rdb := connectRedis(ctx, cfg, logger); rdb != nil {
		cleanups = append(cleanups, func() { _ = rdb.Close() })
		lookup = creditaffiliates.NewCachedLookup(lookup, rdb, cfg.AffiliateCacheTTL, logger)
	}

	recorders := creditports.Recorders{creditobs.NewMeterRecorder(instruments.Meter("internal.credit.evaluations"))}
	if reg := instruments.Registerer(); reg != nil {
		recorders = append(recorders, creditobs.NewPrometheusRecorder(reg))
	}
	core := creditapp.NewService(
		creditRepository(db),
		lookup,
		riskClient(cfg, instruments),
		creditapp.WithRecorder(recorders),
		creditapp.WithEventPublisher(creditobs.NewLogPublisher(logger)),
		creditapp.WithInterestRate(cfg.DefaultInterestRate),
		creditapp.WithRiskTimeout(cfg.RiskServiceTimeout),
		creditapp.WithIdempotencyStore(idempotencyStore(db)),
	)
	creditService := creditobs.New(
		core,
		creditobs.WithLogger(logger),
		creditobs.WithTracer(instruments.Tracer("internal.credit.application")),
		creditobs.WithMeter(instruments.Meter("internal.credit.application")),
	)

	return &Components{Affiliates: affiliateService, Credit: creditService, Lookup: lookup}, cleanup
}

func affiliateRepository(db *gorm.DB) affiliatesports.Repository {
	if db == nil {
		return affiliatesmemory.NewRepository()
	}
	return affiliatespostgres.NewRepository(db)
}

func creditRepository(db *gorm.DB) creditports.Repository {
	if db == nil {
		return creditmemory.NewRepository()
	}
	return creditpostgres.NewRepository(db)
}

func idempotencyStore(db *gorm.DB) creditports.IdempotencyStore {
	if db == nil {
		return creditmemory.NewIdempotencyStore()
	}
	return creditpostgres.NewIdempotencyStore(db)
}

func connectRedis(ctx context.Context, cfg Config, logger *slog.Logger) *goredis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb, err := platformredis.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, affiliate lookups are not cached", slog.String("error", err.Error()))
		return nil
	}
	logger.Info("affiliate lookup cache enabled", slog.Duration("ttl", cfg.AffiliateCacheTTL))
	return rdb
}

func riskClient(cfg Config, instruments *platformobservability.Instruments) creditports.RiskClient {
	logger := instruments.Logger
	if cfg.RiskServiceURL == "" {
		logger.Warn("RISK_SERVICE_URL not set, scoring in-process")
		return creditrisk.MockClient{}
	}
	httpClient := &http.Client{
		Timeout:   cfg.RiskServiceTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	client, err := riskclient.NewRiskClient(cfg.RiskServiceURL, httpClient)
	if err != nil {
		logger.Warn("invalid risk central configuration, scoring in-process", slog.String("error", err.Error()))
		return creditrisk.MockClient{}
	}
	reg := instruments.Registerer()
	return creditrisk.NewBreaker(
		creditrisk.NewAdapter(client, creditrisk.WithRegisterer(reg)),
		creditrisk.NewCircuitBreaker(cfg.RiskBreakerFailures, cfg.RiskBreakerCooldown),
		creditrisk.WithBreakerRegisterer(reg),
	)
}

// ConnectTemporal dials Temporal with tracing and the process logger.
func ConnectTemporal(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer("temporal-client"),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(instruments.Logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
