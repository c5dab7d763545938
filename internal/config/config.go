package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Env       string
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	PinAPI    PinAPIConfig
	Oracle    OracleConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds token signing configuration. The secret is process-wide;
// rotating it invalidates every previously issued token.
type JWTConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// RateLimitConfig bounds login attempts per client IP.
type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
}

// PinAPIConfig points at the external PIN verification oracle.
type PinAPIConfig struct {
	URL       string
	HealthURL string
	Timeout   time.Duration
}

// OracleConfig configures the PIN oracle process itself. The accepted PIN is
// provisioned through the environment, never hardcoded.
type OracleConfig struct {
	Host          string
	Port          string
	ValidPIN      string
	ResponseDelay time.Duration
	RateWindow    time.Duration
	RateMax       int
}

// CORSConfig holds the allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env: getEnv("ENV", "development"),
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "pinlogin"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Expiry: getDurationEnv("JWT_EXPIRES_IN", time.Hour),
			Issuer: getEnv("JWT_ISSUER", "pinlogin"),
		},
		RateLimit: RateLimitConfig{
			Window:      getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),
			MaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 5),
		},
		PinAPI: PinAPIConfig{
			URL:       getEnv("EXTERNAL_PIN_API_URL", "http://localhost:3001/api/verify-pin"),
			HealthURL: getEnv("EXTERNAL_PIN_API_HEALTH_URL", "http://localhost:3001/api/health"),
			Timeout:   getDurationEnv("EXTERNAL_PIN_API_TIMEOUT", 5*time.Second),
		},
		Oracle: OracleConfig{
			Host:          getEnv("ORACLE_HOST", "0.0.0.0"),
			Port:          getEnv("ORACLE_PORT", "3001"),
			ValidPIN:      getEnv("VALID_PIN", "123456"),
			ResponseDelay: getDurationEnv("ORACLE_RESPONSE_DELAY", 300*time.Millisecond),
			RateWindow:    getDurationEnv("ORACLE_RATE_LIMIT_WINDOW", time.Minute),
			RateMax:       getIntEnv("ORACLE_RATE_LIMIT_MAX_REQUESTS", 10),
		},
		CORS: CORSConfig{
			AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		},
	}
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return "host=" + d.Host +
		" port=" + d.Port +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.DBName +
		" sslmode=" + d.SSLMode
}

// IsDevelopment reports whether diagnostic detail may be included in responses.
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv returns duration from environment variable or default.
// Accepts time.ParseDuration syntax ("5s", "15m").
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getIntEnv returns an integer from environment variable or default
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getListEnv returns a comma-separated list from environment variable or default
func getListEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
