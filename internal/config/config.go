package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Supabase
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	// Aggregator (Plaid)
	PlaidBaseURL  string
	PlaidClientID string
	PlaidSecret   string

	// Admin API: bcrypt hash of the bearer token accepted on /v1/admin routes.
	// Empty disables the admin surface entirely.
	AdminTokenHash string

	// Sweep
	SweepConcurrency int

	// Derivation tuning. Zero means "use the built-in default"; these exist
	// so cycle-shape constants can be changed without a deploy of new code.
	DefaultCycleDays   int
	HistoryMonths      int
	OpenDateSkewDays   int
	OpenDateBufferDays int
	MinExpectedHistory int
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 15*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 20),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),

		PlaidBaseURL:  getEnv("PLAID_BASE_URL", "https://sandbox.plaid.com"),
		PlaidClientID: getEnv("PLAID_CLIENT_ID", ""),
		PlaidSecret:   getEnv("PLAID_SECRET", ""),

		AdminTokenHash: getEnv("ADMIN_TOKEN_BCRYPT", ""),

		SweepConcurrency: getEnvInt("SWEEP_CONCURRENCY", 4),

		DefaultCycleDays:   getEnvInt("CYCLE_DEFAULT_DAYS", 0),
		HistoryMonths:      getEnvInt("CYCLE_HISTORY_MONTHS", 0),
		OpenDateSkewDays:   getEnvInt("CYCLE_OPEN_DATE_SKEW_DAYS", 0),
		OpenDateBufferDays: getEnvInt("CYCLE_OPEN_DATE_BUFFER_DAYS", 0),
		MinExpectedHistory: getEnvInt("CYCLE_MIN_EXPECTED_HISTORY", 0),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
