package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/quicktify/quicktify-api/internal/clients"
	"github.com/quicktify/quicktify-api/internal/config"
	"github.com/quicktify/quicktify-api/internal/services"
	"github.com/quicktify/quicktify-api/internal/types"
	"github.com/quicktify/quicktify-api/internal/utils"
)

// EstimationHandler handles rating-estimation routes
type EstimationHandler struct {
	Cfg        *config.Config
	Service    *services.EstimationService
	Summarizer *services.Summarizer
}

// SubmitEstimation handles POST /api/estimations
// @Summary Submit a rating estimation
// @Description Predict an app's rating from its structured attributes
// @Tags Estimations
// @Accept json
// @Produce json
// @Success 201 {object} models.RatingEstimation
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 429 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /estimations [post]
func (h *EstimationHandler) SubmitEstimation(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "authorization.user")
	}

	if h.Cfg.Limits.Enabled {
		check, err := services.CheckLimit(h.Service.DB, userID, services.LimitEstimation, h.Cfg.Limits.EstimationLimit)
		if err != nil {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "limits.check")
		}
		if check.HasReachedLimit {
			return utils.LimitResponse(c, "Monthly estimation limit reached, try again next month", check.CurrentCount, h.Cfg.Limits.EstimationLimit)
		}
	}

	var input clients.EstimationInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}

	estimation, err := h.Service.Run(c.Context(), userID, input)
	if err != nil {
		if custom, ok := err.(*types.CustomError); ok {
			return utils.ErrorResponse(c, custom.Message, custom.Code, custom.Type)
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "estimation.run")
	}

	return c.Status(fiber.StatusCreated).JSON(estimation)
}

// GetEstimations handles GET /api/estimations
// @Summary List own rating estimations
// @Tags Estimations
// @Produce json
// @Success 200 {array} models.RatingEstimation
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /estimations [get]
func (h *EstimationHandler) GetEstimations(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "authorization.user")
	}

	estimations, err := h.Service.GetUserEstimations(userID)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "estimation.list")
	}

	return c.Status(fiber.StatusOK).JSON(estimations)
}

// GetLastEstimation handles GET /api/estimations/last
// @Summary Get the most recent rating estimation
// @Tags Estimations
// @Produce json
// @Success 200 {object} models.RatingEstimation
// @Success 204 "No estimations yet"
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /estimations/last [get]
func (h *EstimationHandler) GetLastEstimation(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "authorization.user")
	}

	estimation, err := h.Service.GetLastEstimation(userID)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "estimation.last")
	}
	if estimation == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	return c.Status(fiber.StatusOK).JSON(estimation)
}

// GetEstimation handles GET /api/estimations/:id
// @Summary Get one rating estimation
// @Tags Estimations
// @Produce json
// @Param id path string true "Estimation ID"
// @Success 200 {object} models.RatingEstimation
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /estimations/{id} [get]
func (h *EstimationHandler) GetEstimation(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "authorization.user")
	}

	estimation, err := h.Service.GetEstimation(userID, c.Params("id"))
	if err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, "Rating estimation not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "estimation.get")
	}

	return c.Status(fiber.StatusOK).JSON(estimation)
}

// GetEstimationSummary handles GET /api/estimations/:id/summary
// @Summary Get an estimation summary and its generation status
// @Tags Estimations
// @Produce json
// @Param id path string true "Estimation ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /estimations/{id}/summary [get]
func (h *EstimationHandler) GetEstimationSummary(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "authorization.user")
	}

	estimation, err := h.Service.GetEstimation(userID, c.Params("id"))
	if err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, "Rating estimation not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "estimation.get")
	}

	state := h.Summarizer.Status(estimation.ID)
	if estimation.Summary != nil {
		state = services.SummaryState{Status: services.SummaryDone}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"summary": estimation.Summary,
		"status":  state.Status,
		"error":   state.Error,
	})
}
