package handlers_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/quicktify/quicktify-api/internal/handlers"
	"github.com/quicktify/quicktify-api/internal/models"
	"github.com/quicktify/quicktify-api/internal/services"
)

// TestIdentityWebhookUserCreated tests the sign-in event
func TestIdentityWebhookUserCreated(t *testing.T) {
	db := setupTestDB(t)
	handler := &handlers.UsersHandler{DB: db}

	app := fiber.New()
	app.Post("/api/webhooks/identity", handler.IdentityWebhook)

	body := `{"event":"user.created","user":{"id":"authz-1","email":"one@example.com"}}`
	req := httptest.NewRequest("POST", "/api/webhooks/identity", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	user, err := services.GetUser(db, "authz-1")
	if err != nil {
		t.Fatalf("Expected the user row to exist: %v", err)
	}
	if user.Email != "one@example.com" {
		t.Errorf("Expected email one@example.com, got %s", user.Email)
	}
}

// TestIdentityWebhookUserDeleted tests the account-deletion cascade
func TestIdentityWebhookUserDeleted(t *testing.T) {
	db := setupTestDB(t)
	if err := services.CreateUser(db, "authz-1", "one@example.com"); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	analysis := models.Analysis{UserID: "authz-1", InputType: models.InputTypeAppID, InputValue: "com.example.app", CreatedAt: time.Now()}
	if err := db.Create(&analysis).Error; err != nil {
		t.Fatalf("Failed to seed analysis: %v", err)
	}

	handler := &handlers.UsersHandler{DB: db}
	app := fiber.New()
	app.Post("/api/webhooks/identity", handler.IdentityWebhook)

	body := `{"event":"user.deleted","user":{"id":"authz-1"}}`
	req := httptest.NewRequest("POST", "/api/webhooks/identity", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var count int64
	db.Model(&models.Analysis{}).Where("user_id = ?", "authz-1").Count(&count)
	if count != 0 {
		t.Error("Expected the user's analyses to be deleted")
	}
	if _, err := services.GetUser(db, "authz-1"); err == nil {
		t.Error("Expected the user row to be deleted")
	}
}

// TestIdentityWebhookRejectsBadEvents tests unknown events and missing ids
func TestIdentityWebhookRejectsBadEvents(t *testing.T) {
	db := setupTestDB(t)
	handler := &handlers.UsersHandler{DB: db}
	app := fiber.New()
	app.Post("/api/webhooks/identity", handler.IdentityWebhook)

	cases := []string{
		`{"event":"user.suspended","user":{"id":"authz-1"}}`,
		`{"event":"user.created","user":{"email":"no-id@example.com"}}`,
		`not json`,
	}
	for _, body := range cases {
		req := httptest.NewRequest("POST", "/api/webhooks/identity", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("Expected status 400 for %q, got %d", body, resp.StatusCode)
		}
	}
}

// TestGetMe tests the signed-in user lookup
func TestGetMe(t *testing.T) {
	db := setupTestDB(t)
	if err := services.CreateUser(db, "authz-1", "one@example.com"); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	handler := &handlers.UsersHandler{DB: db}
	app := fiber.New()
	app.Get("/api/users/me", asUser("authz-1"), handler.GetMe)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/users/me", nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	result := decodeBody(t, resp)
	if result["email"] != "one@example.com" {
		t.Errorf("Expected email one@example.com, got %v", result["email"])
	}

	// A signed-in user without a provisioned row is a 404
	app = fiber.New()
	app.Get("/api/users/me", asUser("authz-2"), handler.GetMe)
	resp, err = app.Test(httptest.NewRequest("GET", "/api/users/me", nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}
