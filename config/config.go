package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	MaxBodyBytes   int64
	AllowedOrigins []string
	// AuthEnforce makes data routes require a valid session token.
	// Off by default: the role returned at login is advisory.
	AuthEnforce bool
}

type DatabaseConfig struct {
	Driver   string // postgres, sqlite or mongo
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	SQLitePath string

	MongoURI      string
	MongoDatabase string
}

type JWTConfig struct {
	Secret string
	Expiry string
}

type AdminConfig struct {
	Username string
	Password string
	Role     string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "5000"),
			Mode:           getEnv("GIN_MODE", "debug"),
			MaxBodyBytes:   getInt64Env("MAX_BODY_BYTES", 50<<20),
			AllowedOrigins: splitAndTrim(getEnv("ALLOWED_ORIGINS", "")),
			AuthEnforce:    getBoolEnv("AUTH_ENFORCE", false),
		},
		Database: DatabaseConfig{
			Driver:        getEnv("DB_DRIVER", "postgres"),
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", "postgres"),
			DBName:        getEnv("DB_NAME", "surveillance_reports"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			SQLitePath:    getEnv("SQLITE_PATH", "surveillance_reports.db"),
			MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			MongoDatabase: getEnv("MONGODB_DATABASE", "surveillance_reports"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			Expiry: getEnv("JWT_EXPIRY", "24h"),
		},
		Admin: AdminConfig{
			Username: getEnv("DEFAULT_ADMIN_USERNAME", "admin"),
			Password: getEnv("DEFAULT_ADMIN_PASSWORD", "admin1234"),
			Role:     getEnv("DEFAULT_ADMIN_ROLE", "admin"),
		},
	}
}

func (c *Config) IsRelease() bool {
	return c.Server.Mode == "release"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
