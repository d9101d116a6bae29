package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/quicktify/quicktify-api/internal/clients"
	"github.com/quicktify/quicktify-api/internal/config"
	"github.com/quicktify/quicktify-api/internal/services"
	"github.com/quicktify/quicktify-api/internal/types"
	"github.com/quicktify/quicktify-api/internal/utils"
)

// AnalysisHandler handles analysis routes
type AnalysisHandler struct {
	Cfg        *config.Config
	Service    *services.AnalysisService
	Summarizer *services.Summarizer
	Details    *clients.DetailClient
}

// analysisSubmitBody is the JSON body for app-identifier submissions.
type analysisSubmitBody struct {
	AppID string `json:"appId"`
	Sort  string `json:"sort"`
	Num   int    `json:"num"`
}

// SubmitAnalysis handles POST /api/analyses
// @Summary Submit a review analysis
// @Description Analyze Google Play reviews by app ID (JSON body) or uploaded CSV (multipart form)
// @Tags Analyses
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} models.Analysis
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 429 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /analyses [post]
func (h *AnalysisHandler) SubmitAnalysis(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "authorization.user")
	}

	// Advisory limit check. Racy near the boundary, by contract.
	if h.Cfg.Limits.Enabled {
		check, err := services.CheckLimit(h.Service.DB, userID, services.LimitAnalysis, h.Cfg.Limits.AnalysisLimit)
		if err != nil {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "limits.check")
		}
		if check.HasReachedLimit {
			return utils.LimitResponse(c, "Monthly analysis limit reached, try again next month", check.CurrentCount, h.Cfg.Limits.AnalysisLimit)
		}
	}

	sub, err := h.parseSubmission(c)
	if err != nil {
		if custom, ok := err.(*types.CustomError); ok {
			return utils.ErrorResponse(c, custom.Message, custom.Code, custom.Type)
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "validation.input")
	}

	analysis, err := h.Service.Run(c.Context(), userID, sub, nil)
	if err != nil {
		if custom, ok := err.(*types.CustomError); ok {
			return utils.ErrorResponse(c, custom.Message, custom.Code, custom.Type)
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "analysis.run")
	}

	return c.Status(fiber.StatusCreated).JSON(analysis)
}

// parseSubmission builds the tagged submission union from either a multipart
// CSV upload or a JSON app-identifier body. Exactly one input is accepted.
func (h *AnalysisHandler) parseSubmission(c *fiber.Ctx) (*services.Submission, error) {
	contentType := c.Get(fiber.HeaderContentType)

	if strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return nil, types.NewValidationError("a CSV file is required")
		}
		if c.FormValue("appId") != "" {
			return nil, types.NewValidationError("provide either an app ID or a CSV file, not both")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return nil, types.NewValidationError("unable to read the uploaded file")
		}
		return services.CSVSubmission(fileHeader.Filename, fileHeader.Header.Get(fiber.HeaderContentType), fileHeader.Size, file)
	}

	var body analysisSubmitBody
	if err := c.BodyParser(&body); err != nil {
		return nil, types.NewValidationError("invalid input")
	}
	if body.Num == 0 {
		body.Num = 1000
	}
	return services.AppIDSubmission(body.AppID, body.Sort, body.Num)
}

// GetAnalyses handles GET /api/analyses
// @Summary List own analyses
// @Description Get the signed-in user's analysis history, newest first
// @Tags Analyses
// @Produce json
// @Success 200 {array} models.Analysis
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /analyses [get]
func (h *AnalysisHandler) GetAnalyses(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "authorization.user")
	}

	analyses, err := h.Service.GetUserAnalyses(userID)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "analysis.list")
	}

	return c.Status(fiber.StatusOK).JSON(analyses)
}

// GetAnalysis handles GET /api/analyses/:id
// @Summary Get one analysis
// @Tags Analyses
// @Produce json
// @Param id path string true "Analysis ID"
// @Success 200 {object} models.Analysis
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /analyses/{id} [get]
func (h *AnalysisHandler) GetAnalysis(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "authorization.user")
	}

	analysis, err := h.Service.GetAnalysis(userID, c.Params("id"))
	if err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, "Analysis not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "analysis.get")
	}

	return c.Status(fiber.StatusOK).JSON(analysis)
}

// GetAnalysisSummary handles GET /api/analyses/:id/summary
// @Summary Get an analysis summary and its generation status
// @Description Summary is generated in the background after the analysis is saved; absence is a normal state
// @Tags Analyses
// @Produce json
// @Param id path string true "Analysis ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /analyses/{id}/summary [get]
func (h *AnalysisHandler) GetAnalysisSummary(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "authorization.user")
	}

	analysis, err := h.Service.GetAnalysis(userID, c.Params("id"))
	if err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, "Analysis not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "analysis.get")
	}

	state := h.Summarizer.Status(analysis.ID)
	if analysis.Summary != nil {
		state = services.SummaryState{Status: services.SummaryDone}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"summary": analysis.Summary,
		"status":  state.Status,
		"error":   state.Error,
	})
}

// GetAnalysisDetails handles GET /api/analyses/:id/details
// @Summary Get the per-review detail blobs for an analysis
// @Description Fetches both externally hosted detail blobs; each blob's failure degrades only its own section
// @Tags Analyses
// @Produce json
// @Param id path string true "Analysis ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /analyses/{id}/details [get]
func (h *AnalysisHandler) GetAnalysisDetails(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "authorization.user")
	}

	analysis, err := h.Service.GetAnalysis(userID, c.Params("id"))
	if err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, "Analysis not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "analysis.get")
	}

	ctx := context.Background()
	response := fiber.Map{}

	sentimentDetail, err := h.Details.FetchSentimentDetail(ctx, analysis.SentimentFileURL)
	if err != nil {
		response["sentimentError"] = err.Error()
	} else {
		response["sentiment"] = sentimentDetail
	}

	spamDetail, err := h.Details.FetchSpamDetail(ctx, analysis.SpamFileURL)
	if err != nil {
		response["spamError"] = err.Error()
	} else {
		response["spam"] = spamDetail
	}

	return c.Status(fiber.StatusOK).JSON(response)
}
