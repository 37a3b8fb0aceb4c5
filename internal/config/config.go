package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Role routing
	SuperAdminEmail string
	BlockedDomains  string

	// Listing expiry (approved lost items / product requests)
	ListingExpiry time.Duration

	// Push gateway
	PushGatewayURL string
	PushAPIKey     string
	PushTimeout    time.Duration

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "circlebuy"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		SuperAdminEmail: getEnv("SUPER_ADMIN_EMAIL", "circlebuy0018@gmail.com"),
		BlockedDomains: getEnv("BLOCKED_EMAIL_DOMAINS",
			"gmail.com,yahoo.com,hotmail.com,outlook.com,aol.com,icloud.com,live.com,msn.com,protonmail.com,mail.com"),

		ListingExpiry: parseDuration(getEnv("LISTING_EXPIRY", "168h"), 168*time.Hour),

		PushGatewayURL: getEnv("PUSH_GATEWAY_URL", ""),
		PushAPIKey:     getEnv("PUSH_API_KEY", ""),
		PushTimeout:    parseDuration(getEnv("PUSH_TIMEOUT", "10s"), 10*time.Second),

		Port:        getEnv("PORT", "8000"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// BlockedDomainList returns the configured public-provider domains, lowercased.
func (c *Config) BlockedDomainList() []string {
	parts := strings.Split(c.BlockedDomains, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.ToLower(strings.TrimSpace(p)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
