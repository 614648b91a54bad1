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
	Blob         BlobConfig
	Telemetry    TelemetryConfig
	Chat         ChatConfig
	Site         SiteConfig
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
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines admin session parameters.
type AuthConfig struct {
	AdminPassword     string
	JWTSecret         string
	SessionTTLMinutes int
	BcryptCost        int
	CookieSecure      bool
}

// BlobConfig selects and configures the blob store.
type BlobConfig struct {
	Backend           string
	CredentialsFile   string
	TicketsBucket     string
	UpdatesBucket     string
	Public            bool
	SignedURLTTLHours int
	MemoryBaseURL     string
}

// TelemetryConfig configures the game-server status poller.
type TelemetryConfig struct {
	ServerHost  string
	APIBase     string
	PollSeconds int
}

// ChatConfig configures the generative chat assistant.
type ChatConfig struct {
	GeminiAPIKey    string
	Model           string
	Temperature     float64
	MaxOutputTokens int
}

// SiteConfig holds public site settings.
type SiteConfig struct {
	Origin    string
	StaticDir string
}

// NotificationConfig holds the operator webhook. Empty disables delivery.
type NotificationConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	temperature, err := strconv.ParseFloat(getEnv("GEMINI_TEMPERATURE", "0.7"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GEMINI_TEMPERATURE: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "gmm-site"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            firstEnv("POSTGRES_DSN", "DATABASE_URL"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
			JWTSecret:         getEnv("AUTH_JWT_SECRET", "dev-secret"),
			SessionTTLMinutes: getEnvAsInt("AUTH_SESSION_TTL_MINUTES", 720),
			BcryptCost:        getEnvAsInt("AUTH_BCRYPT_COST", 12),
			CookieSecure:      getEnvAsBool("AUTH_COOKIE_SECURE", false),
		},
		Blob: BlobConfig{
			Backend:           strings.ToLower(getEnv("BLOB_BACKEND", "memory")),
			CredentialsFile:   os.Getenv("BLOB_GCS_CREDENTIALS"),
			TicketsBucket:     getEnv("BLOB_TICKETS_BUCKET", "tickets"),
			UpdatesBucket:     getEnv("BLOB_UPDATES_BUCKET", "updates"),
			Public:            getEnvAsBool("BLOB_PUBLIC", true),
			SignedURLTTLHours: getEnvAsInt("BLOB_SIGNED_URL_TTL_HOURS", 24*7),
			MemoryBaseURL:     strings.TrimRight(getEnv("BLOB_MEMORY_BASE_URL", "/blobs"), "/"),
		},
		Telemetry: TelemetryConfig{
			ServerHost:  os.Getenv("SERVER_HOST"),
			APIBase:     getEnv("TELEMETRY_API_BASE", "https://api.mcsrvstat.us/2"),
			PollSeconds: getEnvAsInt("TELEMETRY_POLL_SECONDS", 15),
		},
		Chat: ChatConfig{
			GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
			Model:           getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
			Temperature:     temperature,
			MaxOutputTokens: getEnvAsInt("GEMINI_MAX_OUTPUT_TOKENS", 500),
		},
		Site: SiteConfig{
			Origin:    strings.TrimRight(getEnv("SITE_ORIGIN", "https://your-site.example"), "/"),
			StaticDir: os.Getenv("STATIC_DIR"),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Disabled lists subsystems that will run inert because their configuration is missing.
func (c *Config) Disabled() []string {
	var off []string
	if c.Postgres.DSN == "" {
		off = append(off, "record store (POSTGRES_DSN)")
	}
	if c.Redis.Addr == "" {
		off = append(off, "shared cache (REDIS_ADDR)")
	}
	if c.Auth.AdminPassword == "" {
		off = append(off, "admin login (ADMIN_PASSWORD)")
	}
	if c.Telemetry.ServerHost == "" {
		off = append(off, "server telemetry (SERVER_HOST)")
	}
	if c.Chat.GeminiAPIKey == "" {
		off = append(off, "chat assistant (GEMINI_API_KEY)")
	}
	if c.Blob.Backend == "gcs" && c.Blob.CredentialsFile == "" {
		off = append(off, "blob store credentials (BLOB_GCS_CREDENTIALS)")
	}
	return off
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

// SessionTTL returns the admin session lifetime.
func (a AuthConfig) SessionTTL() time.Duration {
	if a.SessionTTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(a.SessionTTLMinutes) * time.Minute
}

// SignedURLTTL returns the lifetime of signed blob URLs.
func (b BlobConfig) SignedURLTTL() time.Duration {
	if b.SignedURLTTLHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(b.SignedURLTTLHours) * time.Hour
}

// PollInterval returns the telemetry polling interval.
func (t TelemetryConfig) PollInterval() time.Duration {
	if t.PollSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(t.PollSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return ""
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
