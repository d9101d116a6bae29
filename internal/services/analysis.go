package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/quicktify/quicktify-api/internal/clients"
	"github.com/quicktify/quicktify-api/internal/models"
	"github.com/quicktify/quicktify-api/internal/types"
	"github.com/quicktify/quicktify-api/internal/validation"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// RunState is a pipeline stage, named with the labels shown to users.
type RunState string

const (
	StateIdle            RunState = "idle"
	StateFetchingReviews RunState = "fetching-reviews"
	StateAnalyzing       RunState = "analyzing"
	StateSucceeded       RunState = "success"
	StateFailed          RunState = "error"
)

// SubmissionKind tags which input variant a submission carries.
type SubmissionKind string

const (
	SubmissionAppID SubmissionKind = models.InputTypeAppID
	SubmissionCSV   SubmissionKind = models.InputTypeCSV
)

// Submission is the validated analysis input: exactly one of a Google Play
// app identifier or an uploaded CSV of reviews.
type Submission struct {
	Kind SubmissionKind

	// App identifier variant
	AppID string
	Sort  string
	Num   int

	// CSV variant
	FileName string
	File     io.Reader
}

// AppIDSubmission validates and builds an app-identifier submission.
func AppIDSubmission(appID, sort string, num int) (*Submission, error) {
	if err := validation.CheckAppID(appID); err != nil {
		return nil, err
	}
	if num <= 0 {
		return nil, types.NewValidationError("review count must be positive")
	}
	return &Submission{Kind: SubmissionAppID, AppID: appID, Sort: sort, Num: num}, nil
}

// CSVSubmission validates and builds a CSV submission.
func CSVSubmission(filename, contentType string, size int64, file io.Reader) (*Submission, error) {
	if err := validation.CheckCSV(filename, contentType, size); err != nil {
		return nil, err
	}
	return &Submission{Kind: SubmissionCSV, FileName: filename, File: file}, nil
}

// InputValue is the persisted input descriptor: the app id or the filename.
func (s *Submission) InputValue() string {
	if s.Kind == SubmissionAppID {
		return s.AppID
	}
	return s.FileName
}

// sentimentResult is the stats-only sentiment/emotion shape persisted on an
// analysis record. Per-review detail stays external.
type sentimentResult struct {
	SentimentAnalysis clients.ClassStats `json:"sentiment_analysis"`
	EmotionAnalysis   clients.ClassStats `json:"emotion_analysis"`
}

// AnalysisService runs the review-analysis pipeline:
// fetch reviews, analyze concurrently, persist, then summarize detached.
type AnalysisService struct {
	DB         *gorm.DB
	Scraper    *clients.ScraperClient
	Model      *clients.ModelClient
	Summarizer *Summarizer
}

// Run executes the pipeline for one submission. Stage transitions are
// reported through progress when non-nil. On success the saved record is
// returned and summary generation continues in the background; its failure
// never affects the returned record.
func (s *AnalysisService) Run(ctx context.Context, userID string, sub *Submission, progress func(RunState, string)) (*models.Analysis, error) {
	report := func(state RunState, message string) {
		if progress != nil {
			progress(state, message)
		}
	}

	// 1. Fetch reviews
	var (
		reviews *clients.ReviewsResponse
		err     error
	)
	switch sub.Kind {
	case SubmissionAppID:
		report(StateFetchingReviews, fmt.Sprintf("Collecting review data for app %s", sub.AppID))
		reviews, err = s.Scraper.ScrapeGooglePlay(ctx, sub.AppID, sub.Sort, sub.Num)
	case SubmissionCSV:
		report(StateFetchingReviews, fmt.Sprintf("Collecting review data from file %s", sub.FileName))
		reviews, err = s.Scraper.ParseCSV(ctx, sub.FileName, sub.File)
	default:
		report(StateFailed, "unknown submission kind")
		return nil, types.NewValidationError("either an app ID or a CSV file is required")
	}
	if err != nil {
		report(StateFailed, err.Error())
		return nil, types.NewCollaboratorError("scraper", err.Error())
	}
	if len(reviews.Reviews) == 0 {
		message := "no reviews were found"
		report(StateFailed, message)
		return nil, types.NewCollaboratorError("scraper", message)
	}

	// 2. Analyze: spam detection and sentiment/emotion run concurrently,
	// either failure aborts the whole operation.
	report(StateAnalyzing, "Analyzing sentiment, emotion and spam...")

	var (
		spamRes      *clients.SpamDetectionResult
		sentimentRes *clients.SentimentEmotionResult
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var gerr error
		spamRes, gerr = s.Model.DetectSpam(groupCtx, reviews.Reviews)
		return gerr
	})
	group.Go(func() error {
		var gerr error
		sentimentRes, gerr = s.Model.AnalyzeSentimentEmotion(groupCtx, reviews.Reviews)
		return gerr
	})
	if err := group.Wait(); err != nil {
		report(StateFailed, err.Error())
		return nil, types.NewCollaboratorError("model", err.Error())
	}

	// 3. Persist summary statistics and the detail blob URLs only.
	sentimentStats := sentimentResult{
		SentimentAnalysis: sentimentRes.SentimentAnalysis,
		EmotionAnalysis:   sentimentRes.EmotionAnalysis,
	}
	spamStats := clients.ClassStats{
		Percentages: spamRes.Percentages,
		Counts:      spamRes.Counts,
	}

	sentimentJSON, err := json.Marshal(sentimentStats)
	if err != nil {
		report(StateFailed, err.Error())
		return nil, err
	}
	spamJSON, err := json.Marshal(spamStats)
	if err != nil {
		report(StateFailed, err.Error())
		return nil, err
	}

	analysis := &models.Analysis{
		UserID:           userID,
		InputType:        string(sub.Kind),
		InputValue:       sub.InputValue(),
		ReviewsCount:     reviews.ReviewsCount,
		SentimentResult:  models.NewJSON(sentimentJSON),
		SpamResult:       models.NewJSON(spamJSON),
		SentimentFileURL: sentimentRes.FileURL,
		SpamFileURL:      spamRes.FileURL,
		CreatedAt:        time.Now(),
	}
	if err := s.DB.Create(analysis).Error; err != nil {
		report(StateFailed, err.Error())
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}

	report(StateSucceeded, fmt.Sprintf("Analyzed %d reviews", len(reviews.Reviews)))

	// 4. Detached summary generation. Failure surfaces only through the
	// summarizer's own status, never here.
	if s.Summarizer != nil {
		go s.Summarizer.SummarizeAnalysis(analysis, sentimentStats.SentimentAnalysis, sentimentStats.EmotionAnalysis, spamStats)
	}

	return analysis, nil
}

// GetUserAnalyses returns the user's analyses, newest first.
func (s *AnalysisService) GetUserAnalyses(userID string) ([]models.Analysis, error) {
	var analyses []models.Analysis
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&analyses).Error
	return analyses, err
}

// GetAnalysis returns one analysis owned by the user.
func (s *AnalysisService) GetAnalysis(userID, id string) (*models.Analysis, error) {
	var analysis models.Analysis
	err := s.DB.Where("id = ? AND user_id = ?", id, userID).First(&analysis).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("not found")
		}
		return nil, err
	}
	return &analysis, nil
}
