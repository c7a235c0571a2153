package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Token store backends.
const (
	TokenStorePostgres = "postgres"
	TokenStoreRedis    = "redis"
)

// Email providers.
const (
	EmailProviderLog    = "log"
	EmailProviderSMTP   = "smtp"
	EmailProviderResend = "resend"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Email    EmailConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string `validate:"required,numeric"`
	Version               string
	RequestTimeoutSeconds int `validate:"gte=0"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN             string `validate:"required"`
	ApplicationName string
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	ConnMaxIdleSec  int32
	ConnMaxLifeSec  int32
	ConnectRetries  int `validate:"gte=0"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	// URL, when set, takes precedence over Addr, Password and DB.
	URL            string
	Addr           string
	Password       string
	DB             int
	ConnectRetries int `validate:"gte=0"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Format      string `validate:"oneof=json console"`
	Service     string
	Development bool
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret            string `validate:"required"`
	RefreshSecret        string `validate:"required,nefield=JWTSecret"`
	AccessTokenTTLHours  int    `validate:"gt=0"`
	RefreshTokenTTLHours int    `validate:"gtfield=AccessTokenTTLHours"`
	LoginTokenTTLHours   int    `validate:"gt=0"`
	LoginTokenBytes      int    `validate:"gte=3,lte=64"`
	BcryptCost           int    `validate:"gte=4,lte=31"`
	TokenStore           string `validate:"oneof=postgres redis"`
	TokenSweepSchedule   string
}

// EmailConfig configures the outbound email transport.
type EmailConfig struct {
	Provider     string `validate:"oneof=log smtp resend"`
	User         string `validate:"required_if=Provider smtp"`
	Pass         string `validate:"required_if=Provider smtp"`
	From         string `validate:"required,email"`
	SMTPHost     string `validate:"required_if=Provider smtp"`
	SMTPPort     int
	ResendAPIKey string `validate:"required_if=Provider resend"`
	MaxRetries   int    `validate:"gte=0,lte=10"`
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "staff-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", getEnv("PORT", "8080")),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			ApplicationName: getEnv("APP_NAME", "staff-service"),
			MaxConns:        int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:        int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:   getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			ConnectRetries:  getEnvAsInt("POSTGRES_CONNECT_RETRIES", 5),
		},
		Redis: RedisConfig{
			URL:            os.Getenv("REDIS_URL"),
			Addr:           getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:       os.Getenv("REDIS_PASSWORD"),
			DB:             redisDB,
			ConnectRetries: getEnvAsInt("REDIS_CONNECT_RETRIES", 3),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Format:      getEnv("LOG_FORMAT", "json"),
			Service:     getEnv("APP_NAME", "staff-service"),
			Development: getEnv("APP_ENV", "development") == "development",
		},
		Auth: AuthConfig{
			JWTSecret:            os.Getenv("AUTH_JWT_SECRET"),
			RefreshSecret:        os.Getenv("AUTH_REFRESH_SECRET"),
			AccessTokenTTLHours:  getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_HOURS", 168),
			RefreshTokenTTLHours: getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_HOURS", 672),
			LoginTokenTTLHours:   getEnvAsInt("AUTH_LOGIN_TOKEN_TTL_HOURS", 24),
			LoginTokenBytes:      getEnvAsInt("AUTH_LOGIN_TOKEN_BYTES", 16),
			BcryptCost:           getEnvAsInt("AUTH_BCRYPT_COST", 10),
			TokenStore:           getEnv("AUTH_TOKEN_STORE", TokenStorePostgres),
			TokenSweepSchedule:   getEnv("AUTH_TOKEN_SWEEP_SCHEDULE", "@every 15m"),
		},
		Email: EmailConfig{
			Provider:     getEnv("EMAIL_PROVIDER", EmailProviderLog),
			User:         os.Getenv("EMAIL_USER"),
			Pass:         os.Getenv("EMAIL_PASS"),
			From:         getEnv("EMAIL_FROM", "noreply@example.com"),
			SMTPHost:     getEnv("EMAIL_SMTP_HOST", "sandbox.smtp.mailtrap.io"),
			SMTPPort:     getEnvAsInt("EMAIL_SMTP_PORT", 2525),
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
			MaxRetries:   getEnvAsInt("EMAIL_MAX_RETRIES", 3),
		},
	}

	return cfg, nil
}

// Validate checks the assembled configuration. Commands that only touch the
// database (migrate) skip it.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
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

// AccessTTL returns the access credential lifetime.
func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLHours) * time.Hour
}

// RefreshTTL returns the refresh credential lifetime.
func (a AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshTokenTTLHours) * time.Hour
}

// LoginTokenTTL returns how long an emailed one-time token stays redeemable.
func (a AuthConfig) LoginTokenTTL() time.Duration {
	return time.Duration(a.LoginTokenTTLHours) * time.Hour
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
