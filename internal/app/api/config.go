package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/client"

	riskclient "github.com/Apurer/coopcredit-api-server/internal/clients/http/risk"
	creditaffiliates "github.com/Apurer/coopcredit-api-server/internal/domains/credit/adapters/affiliates"
	creditrisk "github.com/Apurer/coopcredit-api-server/internal/domains/credit/adapters/external/risk"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port        string
	PostgresDSN string

	RedisAddr         string
	AffiliateCacheTTL time.Duration

	// RiskServiceURL selects the HTTP risk central; empty uses the in-process scorer.
	RiskServiceURL      string
	RiskServiceTimeout  time.Duration
	RiskBreakerFailures int
	RiskBreakerCooldown time.Duration

	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	DefaultInterestRate decimal.Decimal
	MetricsEnabled      bool
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:                envDefault("PORT", "8080"),
		PostgresDSN:         strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:           strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		AffiliateCacheTTL:   creditaffiliates.DefaultTTL,
		RiskServiceURL:      strings.TrimSpace(os.Getenv("RISK_SERVICE_URL")),
		RiskServiceTimeout:  riskclient.DefaultTimeout,
		RiskBreakerFailures: creditrisk.DefaultBreakerThreshold,
		RiskBreakerCooldown: creditrisk.DefaultBreakerCooldown,
		TemporalAddress:     envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:   envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:    isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		DefaultInterestRate: domain.DefaultInterestRate,
		MetricsEnabled:      isTruthy(envDefault("METRICS_ENABLED", "true")),
	}

	var err error
	if cfg.AffiliateCacheTTL, err = positiveDuration("AFFILIATE_CACHE_TTL_SECONDS", time.Second, cfg.AffiliateCacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.RiskServiceTimeout, err = positiveDuration("RISK_SERVICE_TIMEOUT_MS", time.Millisecond, cfg.RiskServiceTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RiskBreakerCooldown, err = positiveDuration("RISK_BREAKER_COOLDOWN_SECONDS", time.Second, cfg.RiskBreakerCooldown); err != nil {
		return Config{}, err
	}
	if cfg.RiskBreakerFailures, err = positiveInt("RISK_BREAKER_FAILURES", cfg.RiskBreakerFailures); err != nil {
		return Config{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("DEFAULT_INTEREST_RATE")); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return Config{}, fmt.Errorf("DEFAULT_INTEREST_RATE must be a decimal")
		}
		if err := domain.ValidateInterestRate(rate); err != nil {
			return Config{}, fmt.Errorf("DEFAULT_INTEREST_RATE %w", err)
		}
		cfg.DefaultInterestRate = rate
	}
	return cfg, nil
}

func positiveInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

func positiveDuration(key string, unit time.Duration, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := positiveInt(key, 0)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * unit, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
