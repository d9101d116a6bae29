package services_test

import (
	"testing"
	"time"

	"github.com/quicktify/quicktify-api/internal/models"
	"github.com/quicktify/quicktify-api/internal/services"
)

// TestCreateUserIdempotent tests that re-delivered sign-in events are tolerated
func TestCreateUserIdempotent(t *testing.T) {
	db := setupTestDB(t)

	if err := services.CreateUser(db, "authz-1", "one@example.com"); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if err := services.CreateUser(db, "authz-1", "one@example.com"); err != nil {
		t.Fatalf("Failed on repeated create: %v", err)
	}

	var count int64
	if err := db.Model(&models.User{}).Where("user_id = ?", "authz-1").Count(&count).Error; err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 user row, got %d", count)
	}

	if err := services.CreateUser(db, "", "nobody@example.com"); err == nil {
		t.Error("Expected error for empty user id")
	}
}

// TestGetUser tests fetching a user row
func TestGetUser(t *testing.T) {
	db := setupTestDB(t)

	if err := services.CreateUser(db, "authz-1", "one@example.com"); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	user, err := services.GetUser(db, "authz-1")
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if user.Email != "one@example.com" {
		t.Errorf("Expected email one@example.com, got %s", user.Email)
	}

	if _, err := services.GetUser(db, "missing"); err == nil {
		t.Error("Expected error for unknown user")
	}
}

// TestDeleteUserCascade tests that deletion removes only the user's own data
func TestDeleteUserCascade(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()

	if err := services.CreateUser(db, "authz-1", "one@example.com"); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if err := services.CreateUser(db, "authz-2", "two@example.com"); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	createAnalysisAt(t, db, "authz-1", now)
	createAnalysisAt(t, db, "authz-2", now)
	for _, userID := range []string{"authz-1", "authz-2"} {
		estimation := models.RatingEstimation{UserID: userID, ModelUsed: "rf_tuned", CreatedAt: now}
		if err := db.Create(&estimation).Error; err != nil {
			t.Fatalf("Failed to create estimation: %v", err)
		}
	}

	if err := services.DeleteUser(db, "authz-1"); err != nil {
		t.Fatalf("Failed to delete user: %v", err)
	}

	var count int64
	db.Model(&models.User{}).Where("user_id = ?", "authz-1").Count(&count)
	if count != 0 {
		t.Error("Expected user row to be deleted")
	}
	db.Model(&models.Analysis{}).Where("user_id = ?", "authz-1").Count(&count)
	if count != 0 {
		t.Error("Expected analyses to be deleted")
	}
	db.Model(&models.RatingEstimation{}).Where("user_id = ?", "authz-1").Count(&count)
	if count != 0 {
		t.Error("Expected estimations to be deleted")
	}

	// The other user's data survives
	db.Model(&models.User{}).Where("user_id = ?", "authz-2").Count(&count)
	if count != 1 {
		t.Error("Expected the other user's row to survive")
	}
	db.Model(&models.Analysis{}).Where("user_id = ?", "authz-2").Count(&count)
	if count != 1 {
		t.Error("Expected the other user's analyses to survive")
	}
	db.Model(&models.RatingEstimation{}).Where("user_id = ?", "authz-2").Count(&count)
	if count != 1 {
		t.Error("Expected the other user's estimations to survive")
	}
}
