package app

import (
	"os"
	"strconv"
	"time"

	"github.com/chatblast/chatblast/internal/auth/service"
	"github.com/chatblast/chatblast/pkg/cryptox"
)

type Config struct {
	DatabaseFile  string // Path to SQLite database file (default: ./auth.db)
	PublicBaseURL string // Public origin confirmation links are built on

	SessionTTL       time.Duration // Server-side session lifetime ceiling (default: 48h)
	RefreshCookieTTL time.Duration // Client-visible refresh cookie lifetime (default: 168h)
	VerificationTTL  time.Duration // Verification code lifetime (default: 15m)
	SweepInterval    time.Duration // Expiry sweep interval (default: 30m)
	BcryptCost       int           // Password hashing work factor (default: bcrypt default)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile:  getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PublicBaseURL: getEnvOrDefault("AUTH_PUBLIC_BASE_URL", "http://localhost:8080"),

		SessionTTL:       getEnvDurationOrDefault("AUTH_SESSION_TTL", service.DefaultSessionTTL),
		RefreshCookieTTL: getEnvDurationOrDefault("AUTH_REFRESH_COOKIE_TTL", service.DefaultRefreshCookieTTL),
		VerificationTTL:  getEnvDurationOrDefault("AUTH_VERIFICATION_TTL", service.DefaultCodeTTL),
		SweepInterval:    getEnvDurationOrDefault("AUTH_SWEEP_INTERVAL", service.DefaultSweepInterval),
		BcryptCost:       getEnvIntOrDefault("AUTH_BCRYPT_COST", cryptox.DefaultCost),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are taken as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
