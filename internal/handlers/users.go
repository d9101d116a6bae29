package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/quicktify/quicktify-api/internal/services"
	"github.com/quicktify/quicktify-api/internal/utils"
	"gorm.io/gorm"
)

// UsersHandler handles user routes and identity-provider events
type UsersHandler struct {
	DB *gorm.DB
}

// identityEvent is the payload delivered by the identity provider's webhook.
type identityEvent struct {
	Event string `json:"event"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// GetMe handles GET /api/users/me
// @Summary Get the signed-in user's record
// @Tags Users
// @Produce json
// @Success 200 {object} models.User
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /users/me [get]
func (h *UsersHandler) GetMe(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "authorization.user")
	}

	user, err := services.GetUser(h.DB, userID)
	if err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, "User not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "users.get")
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// IdentityWebhook handles POST /api/webhooks/identity
// @Summary Identity-provider event webhook
// @Description Creates a user row on first sign-in and cascades deletion of all owned records on account deletion
// @Tags Users
// @Accept json
// @Produce json
// @Param X-Webhook-Secret header string true "Shared webhook secret"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /webhooks/identity [post]
func (h *UsersHandler) IdentityWebhook(c *fiber.Ctx) error {
	var event identityEvent
	if err := c.BodyParser(&event); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}
	if event.User.ID == "" {
		return utils.ErrorResponse(c, "Event user id is required", fiber.StatusBadRequest, "validation.input")
	}

	switch event.Event {
	case "user.created":
		if err := services.CreateUser(h.DB, event.User.ID, event.User.Email); err != nil {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "users.create")
		}
	case "user.deleted":
		if err := services.DeleteUser(h.DB, event.User.ID); err != nil {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "users.delete")
		}
	default:
		return utils.ErrorResponse(c, "Unknown event: "+event.Event, fiber.StatusBadRequest, "validation.input")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
