package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string
	CurrencyCode       string

	CartTTL        time.Duration
	CouponCacheTTL time.Duration
	DishCacheTTL   time.Duration
	IdempotencyTTL time.Duration

	CouponLookupTimeout time.Duration
	CouponApplyRateMax  int
	CouponApplyWindow   time.Duration

	CircuitCatalogMinReq      int
	CircuitCatalogFailureRate float64
	CircuitCatalogOpenFor     time.Duration

	NotifyQueue       string
	WorkerConcurrency int
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		CurrencyCode:       valueOrDefault(k.String("CURRENCY_CODE"), "USD"),

		CartTTL:        parseDuration(k.String("CART_TTL"), "168h"),
		CouponCacheTTL: parseDuration(k.String("COUPON_CACHE_TTL"), "2m"),
		DishCacheTTL:   parseDuration(k.String("DISH_CACHE_TTL"), "5m"),
		IdempotencyTTL: parseDuration(k.String("IDEMPOTENCY_TTL"), "10m"),

		CouponLookupTimeout: parseDuration(k.String("COUPON_LOOKUP_TIMEOUT"), "3s"),
		CouponApplyRateMax:  intOrDefault(k, "COUPON_APPLY_RATE_MAX", 20),
		CouponApplyWindow:   parseDuration(k.String("COUPON_APPLY_WINDOW"), "1m"),

		CircuitCatalogMinReq:      intOrDefault(k, "CIRCUIT_CATALOG_MIN_REQUESTS", 10),
		CircuitCatalogFailureRate: floatOrDefault(k, "CIRCUIT_CATALOG_FAILURE_RATE", 0.5),
		CircuitCatalogOpenFor:     parseDuration(k.String("CIRCUIT_CATALOG_OPEN_FOR"), "30s"),

		NotifyQueue:       valueOrDefault(k.String("NOTIFY_QUEUE"), "notifications"),
		WorkerConcurrency: intOrDefault(k, "WORKER_CONCURRENCY", 10),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func intOrDefault(k *koanf.Koanf, key string, fallback int) int {
	if strings.TrimSpace(k.String(key)) == "" {
		return fallback
	}
	v := k.Int(key)
	if v <= 0 {
		return fallback
	}
	return v
}

func floatOrDefault(k *koanf.Koanf, key string, fallback float64) float64 {
	if strings.TrimSpace(k.String(key)) == "" {
		return fallback
	}
	v := k.Float64(key)
	if v <= 0 {
		return fallback
	}
	return v
}

// MustLoad behaves like Load but panics on error. Useful for command
// entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without
// touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
