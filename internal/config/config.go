package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Backend selectors for the external collaborators.
const (
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"

	AuthBackendAuthorizer = "authorizer"
	AuthBackendFake       = "fake"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Preference database configuration
	DBType            string // mysql, postgres, sqlite, sqlserver, etc.
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Remote document store configuration
	StoreBackend string
	RedisURL     string
	RedisPrefix  string

	// Authorizer configuration
	AuthBackend      string
	AuthzURL         string
	AuthzClientID    string
	AuthzRedirectURL string

	// Bounded timeout for sign-in and the initial profile fetch
	AuthTimeout time.Duration

	// Text generation configuration (empty API key selects the static
	// generator)
	OpenAIAPIKey string
	OpenAIModel  string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		DBType:            getEnv("DB_TYPE", "sqlite"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBDatabase:        getEnv("DB_DATABASE", "kazi-prefs.db"),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		StoreBackend:      getEnv("STORE_BACKEND", StoreBackendRedis),
		RedisURL:          getEnv("REDIS_URL", ""),
		RedisPrefix:       getEnv("REDIS_PREFIX", "kazi:"),
		AuthBackend:       getEnv("AUTH_BACKEND", AuthBackendAuthorizer),
		AuthzURL:          getEnv("AUTHZ_URL", ""),
		AuthzClientID:     getEnv("AUTHZ_CLIENT_ID", ""),
		AuthzRedirectURL:  getEnv("AUTHZ_REDIRECT_URL", "http://localhost:3000"),
		AuthTimeout:       time.Duration(getEnvAsInt("AUTH_TIMEOUT", 10)) * time.Second,
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", ""),
	}

	// Validate required fields
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	switch cfg.StoreBackend {
	case StoreBackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when STORE_BACKEND is %s", StoreBackendRedis)
		}
	case StoreBackendMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND: %s", cfg.StoreBackend)
	}
	switch cfg.AuthBackend {
	case AuthBackendAuthorizer:
		if cfg.AuthzURL == "" {
			return nil, fmt.Errorf("AUTHZ_URL is required when AUTH_BACKEND is %s", AuthBackendAuthorizer)
		}
		if cfg.AuthzClientID == "" {
			return nil, fmt.Errorf("AUTHZ_CLIENT_ID is required when AUTH_BACKEND is %s", AuthBackendAuthorizer)
		}
	case AuthBackendFake:
	default:
		return nil, fmt.Errorf("unsupported AUTH_BACKEND: %s", cfg.AuthBackend)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
