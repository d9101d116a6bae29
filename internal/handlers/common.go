package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/quicktify/quicktify-api/internal/services"
)

// getAuthUser extracts the signed-in user from context (set by auth middleware)
func getAuthUser(c *fiber.Ctx) (*services.AuthUser, error) {
	user, ok := c.Locals("user").(*services.AuthUser)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	if user.ID == "" {
		return nil, fmt.Errorf("user ID not found")
	}
	return user, nil
}

// getUserID extracts just the user id from context
func getUserID(c *fiber.Ctx) (string, error) {
	user, err := getAuthUser(c)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
