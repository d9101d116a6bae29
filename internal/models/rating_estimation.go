package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RatingEstimation is one app-rating prediction run. The model collaborator's
// explanation payloads (SHAP attributions, feature importances, plot URLs)
// are stored verbatim as JSON. Summary is patched asynchronously.
type RatingEstimation struct {
	ID                 string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID             string    `gorm:"size:255;not null;index:idx_estimations_user_created,priority:1" json:"userId"`
	Input              JSON      `json:"input"`
	PredictedRating    float64   `gorm:"not null" json:"predicted_rating"`
	ModelUsed          string    `gorm:"size:255;not null" json:"model_used"`
	ConfidenceInterval JSON      `json:"confidence_interval,omitempty"`
	InputSummary       JSON      `json:"input_summary"`
	FeatureImportance  JSON      `json:"feature_importance"`
	ShapLocal          JSON      `json:"shap_local"`
	ShapPlots          JSON      `json:"shap_plots"`
	CreatedAt          time.Time `gorm:"index:idx_estimations_user_created,priority:2" json:"createdAt"`
	Summary            *string   `gorm:"type:text" json:"summary,omitempty"`
}

// TableName overrides the table name for RatingEstimation
func (RatingEstimation) TableName() string {
	return "rating_estimations"
}

// BeforeCreate assigns a UUID primary key
func (r *RatingEstimation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
