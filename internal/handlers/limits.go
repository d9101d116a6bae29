package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/quicktify/quicktify-api/internal/config"
	"github.com/quicktify/quicktify-api/internal/services"
	"github.com/quicktify/quicktify-api/internal/utils"
	"gorm.io/gorm"
)

// LimitsHandler handles usage-limit routes
type LimitsHandler struct {
	Cfg *config.Config
	DB  *gorm.DB
}

// limitStatus is the limit-check response shape.
type limitStatus struct {
	HasReachedLimit bool   `json:"hasReachedLimit"`
	CurrentCount    int    `json:"currentCount"`
	Limit           int    `json:"limit"`
	LimitsEnabled   bool   `json:"limitsEnabled"`
	DisplayMode     string `json:"displayMode"`
}

// CheckAnalysisLimit handles GET /api/limits/analysis
// @Summary Check the monthly analysis limit
// @Tags Limits
// @Produce json
// @Success 200 {object} handlers.limitStatus
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /limits/analysis [get]
func (h *LimitsHandler) CheckAnalysisLimit(c *fiber.Ctx) error {
	return h.checkLimit(c, services.LimitAnalysis, h.Cfg.Limits.AnalysisLimit)
}

// CheckEstimationLimit handles GET /api/limits/estimation
// @Summary Check the monthly estimation limit
// @Tags Limits
// @Produce json
// @Success 200 {object} handlers.limitStatus
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /limits/estimation [get]
func (h *LimitsHandler) CheckEstimationLimit(c *fiber.Ctx) error {
	return h.checkLimit(c, services.LimitEstimation, h.Cfg.Limits.EstimationLimit)
}

func (h *LimitsHandler) checkLimit(c *fiber.Ctx, kind services.LimitKind, ceiling int) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "authorization.user")
	}

	status := limitStatus{
		Limit:         ceiling,
		LimitsEnabled: h.Cfg.Limits.Enabled,
		DisplayMode:   h.Cfg.Limits.DisplayMode,
	}

	// Disabled policy short-circuits to not-reached.
	if !h.Cfg.Limits.Enabled {
		return c.Status(fiber.StatusOK).JSON(status)
	}

	check, err := services.CheckLimit(h.DB, userID, kind, ceiling)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "limits.check")
	}

	status.HasReachedLimit = check.HasReachedLimit
	status.CurrentCount = check.CurrentCount

	return c.Status(fiber.StatusOK).JSON(status)
}

// GetUsage handles GET /api/usage
// @Summary Get this month's usage counts
// @Tags Limits
// @Produce json
// @Success 200 {object} services.UsageCounts
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /usage [get]
func (h *LimitsHandler) GetUsage(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "authorization.user")
	}

	usage, err := services.GetUsageCounts(h.DB, userID)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "limits.usage")
	}

	return c.Status(fiber.StatusOK).JSON(usage)
}
