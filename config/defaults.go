// Package config provides centralized default values for the gNomi backend
package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

// loadEnvFile loads environment variables from .env file
func loadEnvFile() {
	envLoaded.Do(func() {
		loadEnvFileOnce()
	})
}

func loadEnvFileOnce() {
	file, err := os.Open(".env")
	if err != nil {
		// .env file is optional, don't error if it doesn't exist
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Split on first = sign
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Only set if not already set in environment
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

func init() {
	// Ensure .env is loaded before any config access
	loadEnvFile()
}

// getEnvInt reads environment variable with fallback to default
func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvString reads environment variable with string fallback
func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// getEnvDuration reads environment variable as duration with fallback
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		// Try as integer seconds
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

// Server Configuration
var (
	Port       = getEnvString("PORT", "8080")
	SiteOrigin = getEnvString("SITE_ORIGIN", "http://localhost:3000")
)

// Database Configuration
var (
	DatabaseURL              = getEnvString("DATABASE_URL", "")
	SQLitePath               = getEnvString("SQLITE_PATH", "data/gnomi.db")
	DBMaxOpenConns           = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns           = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBReadRetries            = getEnvInt("DB_READ_RETRIES", 3)
	DBReadRetryDelay         = getEnvDuration("DB_READ_RETRY_DELAY", 500*time.Millisecond)
)

// Cache and validation timing
var (
	AverageCacheTTL      = getEnvDuration("AVERAGE_CACHE_TTL", time.Hour)
	AverageFetchTimeout  = getEnvDuration("AVERAGE_FETCH_TIMEOUT", 10*time.Second)
	PayloadCacheTTL      = getEnvDuration("PAYLOAD_CACHE_TTL", 30*time.Minute)
	RevalidationInterval = getEnvDuration("REVALIDATION_INTERVAL", 2*time.Minute)
	CacheCleanupInterval = getEnvDuration("CACHE_CLEANUP_INTERVAL", 30*time.Minute)
)

// Report request lifecycle
var (
	RequestExpiryHours = getEnvInt("REQUEST_EXPIRY_HOURS", 72)
)

// Email dispatch
var (
	EmailBatchSize   = getEnvInt("EMAIL_BATCH_SIZE", 20)
	ResendAPIKey     = getEnvString("RESEND_API_KEY", "")
	EmailFrom        = getEnvString("EMAIL_FROM", "reports@gnomi.health")
	EmailFromName    = getEnvString("EMAIL_FROM_NAME", "gNomi Reports")
	TeamEmail        = getEnvString("TEAM_NOTIFICATION_EMAIL", "")
	DispatchInterval = getEnvDuration("EMAIL_DISPATCH_INTERVAL", 0) // 0 disables the interval loop
)

// Admin auth
var (
	AdminPasswordHash = getEnvString("ADMIN_PASSWORD_HASH", "")
	JWTSecret         = getEnvString("JWT_SECRET", "")
)
