package services

import (
	"fmt"
	"log"

	"github.com/kaziflow/kazi-sync/internal/config"
	"github.com/kaziflow/kazi-sync/internal/utils"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Store        string            `json:"store"`
	Authorizer   string            `json:"authorizer"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(component, detail, msg string) {
	r.Status = "unhealthy"
	r.Details[detail] = msg
	if r.ErrorMessage == "" {
		r.ErrorMessage = msg
	} else {
		r.ErrorMessage += "; " + msg
	}
	log.Printf("Health check failed - %s: %s", component, msg)
}

// HealthCheck performs a comprehensive health check of the service
func HealthCheck(cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check preference database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.fail("database connection", "database_error", fmt.Sprintf("Database connection error: %v", err))
	} else if err := sqlDB.Ping(); err != nil {
		result.Database = "unreachable"
		result.fail("database ping", "database_ping_error", fmt.Sprintf("Database ping failed: %v", err))
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	// Check document store connectivity
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		if err := utils.PingRedis(cfg.RedisURL); err != nil {
			result.Store = "unreachable"
			result.fail("store ping", "store_error", fmt.Sprintf("Store ping failed: %v", err))
		} else {
			result.Store = "ok"
			result.Details["store_backend"] = cfg.StoreBackend
		}
	default:
		result.Store = "ok"
		result.Details["store_backend"] = cfg.StoreBackend
	}

	// Check Authorizer connectivity
	if cfg.AuthBackend == config.AuthBackendAuthorizer {
		if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
			result.Authorizer = "unreachable"
			result.fail("authorizer ping", "authorizer_error", fmt.Sprintf("Authorizer ping failed: %v", err))
		} else {
			result.Authorizer = "ok"
			result.Details["authorizer_url"] = cfg.AuthzURL
		}
	} else {
		result.Authorizer = "ok"
		result.Details["auth_backend"] = cfg.AuthBackend
	}

	if result.Status == "healthy" {
		log.Println("Health check passed - all systems operational")
	}

	return result
}
