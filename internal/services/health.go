package services

import (
	"fmt"
	"log"

	"github.com/localnerve/carddeck/internal/config"
	"github.com/localnerve/carddeck/internal/utils"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Backend      string            `json:"backend"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck performs a comprehensive health check of the service
func HealthCheck(cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check local cache database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		log.Printf("Health check failed - database connection: %v", err)
	} else {
		if err := sqlDB.Ping(); err != nil {
			result.Status = "unhealthy"
			result.Database = "unreachable"
			result.Details["database_ping_error"] = err.Error()
			result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
			log.Printf("Health check failed - database ping: %v", err)
		} else {
			result.Database = "ok"
			result.Details["database_type"] = cfg.DBType
			result.Details["database_name"] = cfg.DBDatabase
		}
	}

	// Check content backend connectivity. The resolver degrades to static
	// content when the backend is down, so this only degrades the status.
	if err := utils.PingBackend(cfg.BackendURL); err != nil {
		if result.Status == "healthy" {
			result.Status = "degraded"
		}
		result.Backend = "unreachable"
		result.Details["backend_error"] = err.Error()
		if result.ErrorMessage == "" {
			result.ErrorMessage = fmt.Sprintf("Backend ping failed: %v", err)
		} else {
			result.ErrorMessage += fmt.Sprintf("; Backend ping failed: %v", err)
		}
		log.Printf("Health check degraded - backend ping: %v", err)
	} else {
		result.Backend = "ok"
		result.Details["backend_url"] = cfg.BackendURL
	}

	return result
}
