package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration. Values come from the environment,
// optionally seeded from a .env file, with demo-friendly defaults so the
// service runs with no configuration at all.
type Config struct {
	Environment string

	Server   ServerConfig
	Logging  LoggingConfig
	Snapshot SnapshotConfig
	Redis    RedisConfig
	Relay    RelayConfig
	OTP      OTPConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

// SnapshotConfig selects where the whole-database snapshot lives.
// Backend is "file" (default) or "redis".
type SnapshotConfig struct {
	Backend string
	Dir     string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

// RelayConfig configures best-effort email/SMS delivery. An empty endpoint
// means that channel is unconfigured and the local fallback is used.
type RelayConfig struct {
	EmailEndpoint   string
	EmailServiceID  string
	EmailTemplateID string
	EmailPublicKey  string
	SMSEndpoint     string
	SMSKey          string
	Timeout         time.Duration
}

type OTPConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// LoadConfig reads configuration from the environment. A missing .env file
// is not an error.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Snapshot: SnapshotConfig{
			Backend: strings.ToLower(getEnv("SNAPSHOT_BACKEND", "file")),
			Dir:     getEnv("SNAPSHOT_DIR", "./data"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 10),
		},
		Relay: RelayConfig{
			EmailEndpoint:   getEnv("RELAY_EMAIL_ENDPOINT", ""),
			EmailServiceID:  getEnv("RELAY_EMAIL_SERVICE_ID", "service_bookmanager"),
			EmailTemplateID: getEnv("RELAY_EMAIL_TEMPLATE_ID", "template_otp"),
			EmailPublicKey:  getEnv("RELAY_EMAIL_PUBLIC_KEY", ""),
			SMSEndpoint:     getEnv("RELAY_SMS_ENDPOINT", ""),
			SMSKey:          getEnv("RELAY_SMS_KEY", "textbelt"),
			Timeout:         getEnvDuration("RELAY_TIMEOUT", 10*time.Second),
		},
		OTP: OTPConfig{
			TTL:             getEnvDuration("OTP_TTL", 10*time.Minute),
			CleanupInterval: getEnvDuration("OTP_CLEANUP_INTERVAL", time.Minute),
		},
	}
}

// GetServerAddress returns host:port for the HTTP listener.
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
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
