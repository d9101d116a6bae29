package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/quicktify/quicktify-api/internal/config"
	"github.com/quicktify/quicktify-api/internal/services"
	"github.com/quicktify/quicktify-api/internal/types"
)

// AuthUser validates the identity-provider session cookie and stores the
// signed-in user in the request context. Authorization is a boolean
// signed-in check; there are no finer roles.
func AuthUser(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !services.IsAuthorizerInitialized() {
			if err := services.InitAuthorizer(cfg, c.Protocol(), c.Hostname()); err != nil {
				return &types.CustomError{
					Code:    fiber.StatusServiceUnavailable,
					Message: fmt.Sprintf("Identity provider unavailable: %v", err),
					Type:    "authorization.init",
				}
			}
		}

		session := c.Cookies("cookie_session")
		if session == "" {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: "Authorizer cookie \"cookie_session\" not found",
				Type:    "authorization.user",
			}
		}

		user, err := services.ValidateSession(session)
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: fmt.Sprintf("Invalid session: %v", err),
				Type:    "authorization.user",
			}
		}

		c.Locals("user", user)

		return c.Next()
	}
}

// WebhookSecret guards the identity-event webhook with a shared secret header.
func WebhookSecret(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.WebhookSecret == "" || c.Get("X-Webhook-Secret") != cfg.WebhookSecret {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: "Invalid webhook secret",
				Type:    "authorization.webhook",
			}
		}
		return c.Next()
	}
}
