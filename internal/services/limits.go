package services

import (
	"fmt"
	"time"

	"github.com/quicktify/quicktify-api/internal/models"
	"gorm.io/gorm"
)

// LimitKind selects which record kind a usage check counts.
type LimitKind string

const (
	LimitAnalysis   LimitKind = "analysis"
	LimitEstimation LimitKind = "estimation"
)

// LimitCheck is the result of a monthly usage check.
type LimitCheck struct {
	HasReachedLimit bool `json:"hasReachedLimit"`
	CurrentCount    int  `json:"currentCount"`
}

// UsageCounts reports this month's record counts for both kinds.
type UsageCounts struct {
	AnalysisCount   int `json:"analysisCount"`
	EstimationCount int `json:"estimationCount"`
}

// StartOfMonth returns day 1, 00:00 of now's calendar month, in now's
// location.
func StartOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// CheckLimit counts records of the given kind owned by userID created at or
// after the start of the current month and compares against the ceiling.
// This is a pure read: nothing is reserved, so concurrent submissions near
// the ceiling can all pass. The limit is advisory.
func CheckLimit(db *gorm.DB, userID string, kind LimitKind, ceiling int) (LimitCheck, error) {
	count, err := countSince(db, userID, kind, StartOfMonth(time.Now()))
	if err != nil {
		return LimitCheck{}, err
	}

	return LimitCheck{
		HasReachedLimit: count >= ceiling,
		CurrentCount:    count,
	}, nil
}

// GetUsageCounts reports how many analyses and estimations the user has
// created since the start of the current month.
func GetUsageCounts(db *gorm.DB, userID string) (UsageCounts, error) {
	since := StartOfMonth(time.Now())

	analysisCount, err := countSince(db, userID, LimitAnalysis, since)
	if err != nil {
		return UsageCounts{}, err
	}

	estimationCount, err := countSince(db, userID, LimitEstimation, since)
	if err != nil {
		return UsageCounts{}, err
	}

	return UsageCounts{
		AnalysisCount:   analysisCount,
		EstimationCount: estimationCount,
	}, nil
}

func countSince(db *gorm.DB, userID string, kind LimitKind, since time.Time) (int, error) {
	var model interface{}
	switch kind {
	case LimitAnalysis:
		model = &models.Analysis{}
	case LimitEstimation:
		model = &models.RatingEstimation{}
	default:
		return 0, fmt.Errorf("unknown limit kind: %s", kind)
	}

	var count int64
	err := db.Model(model).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return int(count), nil
}
