package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Input kinds for an analysis submission.
const (
	InputTypeAppID = "appId"
	InputTypeCSV   = "csv"
)

// Analysis is one review-analysis run. Only summary statistics are stored;
// the per-review detail blobs stay external, referenced by URL. The record
// is immutable except for the asynchronously patched Summary.
type Analysis struct {
	ID               string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID           string    `gorm:"size:255;not null;index:idx_analyses_user_created,priority:1" json:"userId"`
	InputType        string    `gorm:"size:16;not null" json:"inputType"`
	InputValue       string    `gorm:"size:255;not null" json:"inputValue"`
	ReviewsCount     int       `gorm:"not null" json:"reviewsCount"`
	SentimentResult  JSON      `json:"sentimentResult"`
	SpamResult       JSON      `json:"spamResult"`
	SentimentFileURL string    `gorm:"size:1024;not null" json:"sentimentFileUrl"`
	SpamFileURL      string    `gorm:"size:1024;not null" json:"spamFileUrl"`
	CreatedAt        time.Time `gorm:"index:idx_analyses_user_created,priority:2" json:"createdAt"`
	Summary          *string   `gorm:"type:text" json:"summary,omitempty"`
}

// TableName overrides the table name for Analysis
func (Analysis) TableName() string {
	return "analyses"
}

// BeforeCreate assigns a UUID primary key
func (a *Analysis) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
