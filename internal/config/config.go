package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Matching     MatchingConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	ScoreCacheTTL time.Duration
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret               string
	AccessTokenTTLMinutes   int
	PasswordResetTTLMinutes int
	BcryptCost              int
}

// MatchingConfig carries the match-scoring and override policy inputs.
// Passed to the scorer and override service at construction time so
// multiple policy versions can run side by side.
type MatchingConfig struct {
	Algorithm        string
	TagWeight        float64
	StageWeight      float64
	ReputationWeight float64
	StageProximity   []float64
	GapCredit        []float64
	// Tier gap at or above which a booking requires coordinator override.
	OverrideGapThreshold int
	// How long an override request stays actionable.
	RequestExpiration time.Duration
	// How often the expiration sweep runs; zero disables the worker.
	ExpirationSweepInterval time.Duration
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	stageProximity, err := getEnvAsFloats("MATCH_STAGE_PROXIMITY", []float64{1.0, 0.5, 0.0})
	if err != nil {
		return nil, fmt.Errorf("invalid MATCH_STAGE_PROXIMITY: %w", err)
	}
	gapCredit, err := getEnvAsFloats("MATCH_GAP_CREDIT", []float64{1.0, 1.0, 0.6, 0.2})
	if err != nil {
		return nil, fmt.Errorf("invalid MATCH_GAP_CREDIT: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "mentorship-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:          getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:      os.Getenv("REDIS_PASSWORD"),
			DB:            redisDB,
			ScoreCacheTTL: time.Duration(getEnvAsInt("REDIS_SCORE_CACHE_TTL_MINUTES", 15)) * time.Minute,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 30),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Matching: MatchingConfig{
			Algorithm:               getEnv("MATCH_ALGORITHM", "tag-based-v1"),
			TagWeight:               getEnvAsFloat("MATCH_TAG_WEIGHT", 60),
			StageWeight:             getEnvAsFloat("MATCH_STAGE_WEIGHT", 20),
			ReputationWeight:        getEnvAsFloat("MATCH_REPUTATION_WEIGHT", 20),
			StageProximity:          stageProximity,
			GapCredit:               gapCredit,
			OverrideGapThreshold:    getEnvAsInt("OVERRIDE_GAP_THRESHOLD", 2),
			RequestExpiration:       time.Duration(getEnvAsInt("OVERRIDE_EXPIRATION_HOURS", 72)) * time.Hour,
			ExpirationSweepInterval: time.Duration(getEnvAsInt("OVERRIDE_SWEEP_INTERVAL_MINUTES", 10)) * time.Minute,
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if cfg.Matching.OverrideGapThreshold < 1 {
		return nil, fmt.Errorf("OVERRIDE_GAP_THRESHOLD must be >= 1, got %d", cfg.Matching.OverrideGapThreshold)
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloats(key string, fallback []float64) ([]float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	parts := strings.Split(val, ",")
	parsed := make([]float64, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, f)
	}
	return parsed, nil
}
