package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-procure/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":         "",
		"REDIS_URL":            "",
		"PORT":                 "",
		"RETRY_MAX_ATTEMPTS":   "",
		"SEARCH_CACHE_TTL":     "",
		"MIGRATE_ON_START":     "",
		"CORS_ALLOWED_ORIGINS": "",
		"OBS_ENABLE_PPROF":     "",
	})
	require.NoError(t, err)
	require.Empty(t, cfg.DatabaseURL)
	require.Empty(t, cfg.RedisURL)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, 3, cfg.RetryMaxAttempts)
	require.Equal(t, time.Minute, cfg.SearchCacheTTL)
	require.True(t, cfg.MigrateOnStart)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
	require.False(t, cfg.PprofEnabled)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"APP_ENV":                   "production",
		"PORT":                      ":9090",
		"CORS_ALLOWED_ORIGINS":      "https://a.example, ,https://b.example",
		"NEGOTIATION_MESSAGE_URL":   "https://gen.example/message",
		"RATE_LIMIT_NEGOTIATION":    "5-S",
		"CIRCUIT_FAILURE_RATIO":     "0.25",
		"COMPLIANCE_EXPIRY_WARNING": "168h",
		"MIGRATE_ON_START":          "off",
		"OUTBOUND_TIMEOUT":          "not-a-duration",
	})
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.Equal(t, "https://gen.example/message", cfg.NegotiationMessageURL)
	require.Equal(t, "5-S", cfg.RateLimitNegotiation)
	require.Equal(t, 0.25, cfg.CircuitFailureRatio)
	require.Equal(t, 7*24*time.Hour, cfg.ComplianceExpiryWarning)
	require.False(t, cfg.MigrateOnStart)
	require.Equal(t, 8*time.Second, cfg.OutboundTimeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"RETRY_MAX_ATTEMPTS":    "0",
		"CIRCUIT_FAILURE_RATIO": "1.5",
	})
	require.ErrorContains(t, err, "RETRY_MAX_ATTEMPTS")
	require.ErrorContains(t, err, "CIRCUIT_FAILURE_RATIO")
}
