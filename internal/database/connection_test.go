package database_test

import (
	"os"
	"testing"
	"time"

	"github.com/quicktify/quicktify-api/internal/config"
	"github.com/quicktify/quicktify-api/internal/database"
	"github.com/quicktify/quicktify-api/internal/models"
	"github.com/quicktify/quicktify-api/internal/testinfra"
)

// TestConnectSqlite tests connection and migration against SQLite
func TestConnectSqlite(t *testing.T) {
	cfg := &config.Config{
		DBType:            "sqlite",
		DBDatabase:        ":memory:",
		DBConnectionLimit: 2,
	}

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	analysis := models.Analysis{
		UserID:          "user-1",
		InputType:       models.InputTypeAppID,
		InputValue:      "com.example.app",
		SentimentResult: models.NewJSON([]byte(`{"sentiment_analysis":{"percentages":{"Positive":100}}}`)),
		CreatedAt:       time.Now(),
	}
	if err := db.Create(&analysis).Error; err != nil {
		t.Fatalf("Failed to create analysis: %v", err)
	}

	var loaded models.Analysis
	if err := db.First(&loaded, "id = ?", analysis.ID).Error; err != nil {
		t.Fatalf("Failed to load analysis: %v", err)
	}
	if len(loaded.SentimentResult.JSON) == 0 {
		t.Error("Expected the JSON column to round-trip")
	}
}

// TestConnectUnsupportedType tests the dialector switch
func TestConnectUnsupportedType(t *testing.T) {
	cfg := &config.Config{DBType: "oracle"}
	if _, err := database.Connect(cfg); err == nil {
		t.Error("Expected error for an unsupported database type")
	}
}

// TestConnectMariaDB tests connection and migration against a real MariaDB
// started with testcontainers. Requires Docker and the DB_* environment,
// so it is skipped in short mode and when DB_IMAGE is not set.
func TestConnectMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}
	if os.Getenv("DB_IMAGE") == "" {
		t.Skip("DB_IMAGE not set, skipping container test")
	}

	containers, err := testinfra.CreateTestContainers(t)
	if err != nil {
		t.Fatalf("Failed to create test containers: %v", err)
	}
	defer containers.Terminate(t)

	cfg := &config.Config{
		DBType:            "mariadb",
		DBHost:            containers.DBHost,
		DBPort:            containers.DBPort,
		DBDatabase:        os.Getenv("DB_DATABASE"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBConnectionLimit: 5,
	}

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	estimation := models.RatingEstimation{
		UserID:          "user-1",
		PredictedRating: 4.2,
		ModelUsed:       "rf_tuned",
		Input:           models.NewJSON([]byte(`{"category":"Tools"}`)),
		CreatedAt:       time.Now(),
	}
	if err := db.Create(&estimation).Error; err != nil {
		t.Fatalf("Failed to create estimation: %v", err)
	}

	var loaded models.RatingEstimation
	if err := db.First(&loaded, "id = ?", estimation.ID).Error; err != nil {
		t.Fatalf("Failed to load estimation: %v", err)
	}
	if loaded.PredictedRating != 4.2 {
		t.Errorf("Expected predicted rating 4.2, got %f", loaded.PredictedRating)
	}
}
