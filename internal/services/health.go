package services

import (
	"fmt"
	"log"

	"github.com/quicktify/quicktify-api/internal/config"
	"github.com/quicktify/quicktify-api/internal/utils"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer"`
	Scraper      string            `json:"scraper"`
	Model        string            `json:"model"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck verifies database connectivity and the reachability of the
// identity provider and both collaborators.
func HealthCheck(cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check database connectivity
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

	// Check Authorizer connectivity
	if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
		result.Status = "unhealthy"
		result.Authorizer = "unreachable"
		result.Details["authorizer_error"] = err.Error()
		appendError(&result, fmt.Sprintf("Authorizer ping failed: %v", err))
		log.Printf("Health check failed - authorizer ping: %v", err)
	} else {
		result.Authorizer = "ok"
	}

	// Collaborator reachability. Degraded collaborators are reported but do
	// not mark the service unhealthy: the API itself still serves history.
	if err := utils.PingCollaborator(cfg.ScraperAPIURL); err != nil {
		result.Scraper = "unreachable"
		result.Details["scraper_error"] = err.Error()
		log.Printf("Health check - scraper ping failed: %v", err)
	} else {
		result.Scraper = "ok"
	}

	if err := utils.PingCollaborator(cfg.ModelAPIURL); err != nil {
		result.Model = "unreachable"
		result.Details["model_error"] = err.Error()
		log.Printf("Health check - model ping failed: %v", err)
	} else {
		result.Model = "ok"
	}

	if result.Status == "healthy" {
		log.Println("Health check passed")
	}

	return result
}

func appendError(result *HealthCheckResult, message string) {
	if result.ErrorMessage == "" {
		result.ErrorMessage = message
	} else {
		result.ErrorMessage += "; " + message
	}
}
