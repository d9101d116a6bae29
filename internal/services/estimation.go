package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quicktify/quicktify-api/internal/clients"
	"github.com/quicktify/quicktify-api/internal/models"
	"github.com/quicktify/quicktify-api/internal/types"
	"gorm.io/gorm"
)

// DefaultModelChoice selects the tuned random forest on the model service.
const DefaultModelChoice = "rf_tuned"

// EstimationService runs the rating-estimation pipeline: predict, persist,
// then summarize detached.
type EstimationService struct {
	DB         *gorm.DB
	Model      *clients.ModelClient
	Summarizer *Summarizer
}

// Run predicts a rating for the structured input and persists the result.
// The AI summary is generated in the background; its failure surfaces only
// through the summarizer's status.
func (s *EstimationService) Run(ctx context.Context, userID string, input clients.EstimationInput) (*models.RatingEstimation, error) {
	if err := checkEstimationInput(input); err != nil {
		return nil, err
	}

	prediction, err := s.Model.PredictRating(ctx, input, DefaultModelChoice)
	if err != nil {
		return nil, types.NewCollaboratorError("model", err.Error())
	}

	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	plotsJSON, err := json.Marshal(prediction.ShapPlots)
	if err != nil {
		return nil, err
	}

	estimation := &models.RatingEstimation{
		UserID:             userID,
		Input:              models.NewJSON(inputJSON),
		PredictedRating:    prediction.PredictedRating,
		ModelUsed:          prediction.ModelUsed,
		ConfidenceInterval: models.NewJSON(prediction.ConfidenceInterval),
		InputSummary:       models.NewJSON(prediction.InputSummary),
		FeatureImportance:  models.NewJSON(prediction.FeatureImportance),
		ShapLocal:          models.NewJSON(prediction.ShapLocal),
		ShapPlots:          models.NewJSON(plotsJSON),
		CreatedAt:          time.Now(),
	}
	if err := s.DB.Create(estimation).Error; err != nil {
		return nil, fmt.Errorf("failed to save rating estimation: %w", err)
	}

	if s.Summarizer != nil {
		go s.Summarizer.SummarizeEstimation(estimation, prediction)
	}

	return estimation, nil
}

func checkEstimationInput(input clients.EstimationInput) error {
	if input.Category == "" {
		return types.NewValidationError("category is required")
	}
	if input.ContentRating == "" {
		return types.NewValidationError("content rating is required")
	}
	if input.AppType == "" {
		return types.NewValidationError("app type is required")
	}
	if input.RatingCount < 0 || input.Installs < 0 || input.Size < 0 {
		return types.NewValidationError("rating count, installs and size must not be negative")
	}
	return nil
}

// GetUserEstimations returns the user's rating estimations, newest first.
func (s *EstimationService) GetUserEstimations(userID string) ([]models.RatingEstimation, error) {
	var estimations []models.RatingEstimation
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&estimations).Error
	return estimations, err
}

// GetLastEstimation returns the user's most recent estimation, or nil.
func (s *EstimationService) GetLastEstimation(userID string) (*models.RatingEstimation, error) {
	var estimation models.RatingEstimation
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&estimation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &estimation, nil
}

// GetEstimation returns one estimation owned by the user.
func (s *EstimationService) GetEstimation(userID, id string) (*models.RatingEstimation, error) {
	var estimation models.RatingEstimation
	err := s.DB.Where("id = ? AND user_id = ?", id, userID).First(&estimation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("not found")
		}
		return nil, err
	}
	return &estimation, nil
}
