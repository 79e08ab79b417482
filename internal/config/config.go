package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
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
	DBMaxConns         int
	MigrateOnStart     bool
	ShutdownTimeout    time.Duration

	NegotiationMessageURL  string
	NegotiationStrategyURL string
	NegotiationAPIKey      string
	RateLimitNegotiation   string

	OutboundTimeout     time.Duration
	RetryMaxAttempts    int
	RetryBase           time.Duration
	RetryJitterPercent  float64
	CircuitMinRequests  int
	CircuitFailureRatio float64
	CircuitOpenFor      time.Duration

	SearchCacheTTL   time.Duration
	ReportCacheTTL   time.Duration
	IdempotencyTTL   time.Duration
	LockTTL          time.Duration
	LockRetryBackoff time.Duration

	BodyMaxBytes    int64
	UploadMaxBytes  int64
	SecurityHeaders bool
	EnableHSTS      bool

	ComplianceSweepSpec     string
	ComplianceExpiryWarning time.Duration
	WorkerConcurrency       int

	ServiceName         string
	LogFormat           string
	LogLevel            string
	MetricsEnabled      bool
	MetricsBuckets      string
	PprofEnabled        bool
	PprofUser           string
	PprofPass           string
	TracingExporter     string
	TracingEndpoint     string
	TracingSamplingRate float64
}

// Load reads configuration from environment variables and optional .env files.
// DATABASE_URL and REDIS_URL are optional: without them the API runs on
// in-memory stores seeded with fixtures and skips Redis-backed features.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        strings.TrimSpace(k.String("DATABASE_URL")),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins: splitAndTrim(valueOrDefault(k.String("CORS_ALLOWED_ORIGINS"), "http://localhost:5173")),
		DBMaxConns:         parseInt(k.String("DB_MAX_CONNS"), 10),
		MigrateOnStart:     parseBool(k.String("MIGRATE_ON_START"), true),
		ShutdownTimeout:    parseDuration(k.String("SHUTDOWN_TIMEOUT"), "15s"),

		NegotiationMessageURL:  strings.TrimSpace(k.String("NEGOTIATION_MESSAGE_URL")),
		NegotiationStrategyURL: strings.TrimSpace(k.String("NEGOTIATION_STRATEGY_URL")),
		NegotiationAPIKey:      strings.TrimSpace(k.String("NEGOTIATION_API_KEY")),
		RateLimitNegotiation:   valueOrDefault(k.String("RATE_LIMIT_NEGOTIATION"), "30-M"),

		OutboundTimeout:     parseDuration(k.String("OUTBOUND_TIMEOUT"), "8s"),
		RetryMaxAttempts:    parseInt(k.String("RETRY_MAX_ATTEMPTS"), 3),
		RetryBase:           parseDuration(k.String("RETRY_BASE"), "200ms"),
		RetryJitterPercent:  parseFloat(k.String("RETRY_JITTER_PERCENT"), 0.2),
		CircuitMinRequests:  parseInt(k.String("CIRCUIT_MIN_REQUESTS"), 5),
		CircuitFailureRatio: parseFloat(k.String("CIRCUIT_FAILURE_RATIO"), 0.5),
		CircuitOpenFor:      parseDuration(k.String("CIRCUIT_OPEN_FOR"), "30s"),

		SearchCacheTTL:   parseDuration(k.String("SEARCH_CACHE_TTL"), "60s"),
		ReportCacheTTL:   parseDuration(k.String("REPORT_CACHE_TTL"), "5m"),
		IdempotencyTTL:   parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		LockTTL:          parseDuration(k.String("LOCK_TTL"), "10s"),
		LockRetryBackoff: parseDuration(k.String("LOCK_RETRY_BACKOFF"), "50ms"),

		BodyMaxBytes:    int64(parseInt(k.String("BODY_MAX_BYTES"), 1<<20)),
		UploadMaxBytes:  int64(parseInt(k.String("UPLOAD_MAX_BYTES"), 10<<20)),
		SecurityHeaders: parseBool(k.String("SECURITY_HEADERS"), true),
		EnableHSTS:      parseBool(k.String("SECURITY_HSTS"), false),

		ComplianceSweepSpec:     valueOrDefault(k.String("COMPLIANCE_SWEEP_SPEC"), "@every 1h"),
		ComplianceExpiryWarning: parseDuration(k.String("COMPLIANCE_EXPIRY_WARNING"), "720h"),
		WorkerConcurrency:       parseInt(k.String("WORKER_CONCURRENCY"), 5),

		ServiceName:         valueOrDefault(k.String("OBS_SERVICE_NAME"), "procure-api"),
		LogFormat:           valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:            valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsEnabled:      parseBool(k.String("OBS_METRICS_ENABLED"), true),
		MetricsBuckets:      strings.TrimSpace(k.String("OBS_METRICS_BUCKETS_MS")),
		PprofEnabled:        parseBool(k.String("OBS_ENABLE_PPROF"), false),
		PprofUser:           strings.TrimSpace(k.String("SECURE_PPROF_BASIC_AUTH_USER")),
		PprofPass:           strings.TrimSpace(k.String("SECURE_PPROF_BASIC_AUTH_PASS")),
		TracingExporter:     valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "none"),
		TracingEndpoint:     strings.TrimSpace(k.String("OBS_TRACING_ENDPOINT")),
		TracingSamplingRate: parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.RetryMaxAttempts < 1 {
		errs = append(errs, errors.New("RETRY_MAX_ATTEMPTS must be at least 1"))
	}
	if c.CircuitFailureRatio <= 0 || c.CircuitFailureRatio > 1 {
		errs = append(errs, errors.New("CIRCUIT_FAILURE_RATIO must be in (0, 1]"))
	}
	if c.CircuitMinRequests < 1 {
		errs = append(errs, errors.New("CIRCUIT_MIN_REQUESTS must be at least 1"))
	}
	if c.UploadMaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}
	if c.WorkerConcurrency < 1 {
		errs = append(errs, errors.New("WORKER_CONCURRENCY must be at least 1"))
	}
	return errors.Join(errs...)
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

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production") || strings.EqualFold(c.AppEnv, "prod")
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
		return strings.TrimSpace(value)
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

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
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
