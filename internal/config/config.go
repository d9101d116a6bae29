package config

import (
	"fmt"
	"os"
	"strconv"
)

// Collaborator base URLs per deployment mode.
const (
	modelAPIProduction   = "https://model-api-752562206940.asia-southeast2.run.app"
	scraperAPIProduction = "https://scraper-api-752562206940.asia-southeast2.run.app"
	modelAPILocal        = "http://localhost:9000"
	scraperAPILocal      = "http://localhost:8181"
)

// Preset monthly ceilings.
const (
	DemoLimit    = 5
	DefaultLimit = 30
)

// LimitPolicy describes how monthly usage ceilings are applied.
type LimitPolicy struct {
	Enabled         bool
	AnalysisLimit   int
	EstimationLimit int
	DisplayMode     string // CUSTOM, DEMO, DEFAULT or UNLIMITED
}

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlserver, etc.
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Authorizer configuration
	AuthzURL      string
	AuthzClientID string

	// Shared secret guarding the identity-provider event webhook
	WebhookSecret string

	// Collaborator base URLs
	ModelAPIURL   string
	ScraperAPIURL string

	// Monthly usage limit policy
	Limits LimitPolicy
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	mode := getEnv("QUICKTIFY_MODE", "production")

	// Anything other than production gets the local collaborator URLs.
	modelURL := modelAPIProduction
	scraperURL := scraperAPIProduction
	if mode != "production" {
		modelURL = modelAPILocal
		scraperURL = scraperAPILocal
	}

	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		DBType:            getEnv("DB_TYPE", "mysql"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBDatabase:        getEnv("DB_DATABASE", ""),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		AuthzURL:          getEnv("AUTHZ_URL", ""),
		AuthzClientID:     getEnv("AUTHZ_CLIENT_ID", ""),
		WebhookSecret:     getEnv("WEBHOOK_SECRET", ""),
		ModelAPIURL:       getEnv("MODEL_API_URL", modelURL),
		ScraperAPIURL:     getEnv("SCRAPER_API_URL", scraperURL),
		Limits:            loadLimitPolicy(),
	}

	// Validate required fields
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.DBUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	if cfg.AuthzURL == "" {
		return nil, fmt.Errorf("AUTHZ_URL is required")
	}
	if cfg.AuthzClientID == "" {
		return nil, fmt.Errorf("AUTHZ_CLIENT_ID is required")
	}

	return cfg, nil
}

// loadLimitPolicy resolves the usage-limit policy.
// Precedence: custom ceilings, then SHOW_MODE presets, then unlimited.
func loadLimitPolicy() LimitPolicy {
	customAnalysis := os.Getenv("ANALYSIS_LIMIT")
	customEstimation := os.Getenv("ESTIMATION_LIMIT")

	if customAnalysis != "" || customEstimation != "" {
		return LimitPolicy{
			Enabled:         true,
			AnalysisLimit:   parseLimit(customAnalysis, DefaultLimit),
			EstimationLimit: parseLimit(customEstimation, DefaultLimit),
			DisplayMode:     "CUSTOM",
		}
	}

	switch os.Getenv("SHOW_MODE") {
	case "DEMO":
		return LimitPolicy{
			Enabled:         true,
			AnalysisLimit:   DemoLimit,
			EstimationLimit: DemoLimit,
			DisplayMode:     "DEMO",
		}
	case "DEFAULT":
		return LimitPolicy{
			Enabled:         true,
			AnalysisLimit:   DefaultLimit,
			EstimationLimit: DefaultLimit,
			DisplayMode:     "DEFAULT",
		}
	}

	// Nothing configured: 0 means unlimited
	return LimitPolicy{DisplayMode: "UNLIMITED"}
}

func parseLimit(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit <= 0 {
		return defaultValue
	}
	return limit
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
