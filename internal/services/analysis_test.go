package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/quicktify/quicktify-api/internal/clients"
	"github.com/quicktify/quicktify-api/internal/models"
	"github.com/quicktify/quicktify-api/internal/services"
	"github.com/quicktify/quicktify-api/internal/types"
	"gorm.io/gorm"
)

// fakeScraper serves the scraper collaborator's review endpoints
func fakeScraper(t *testing.T, reviews []string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/reviews/google-play-scraper", "/api/reviews/google-play-csv":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"status":"success","reviews":[%s],"reviewsCount":%d}`,
				strings.Join(reviews, ","), len(reviews))
		default:
			t.Errorf("Unexpected scraper request: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

// fakeModel serves the model collaborator's classification endpoints and
// counts how often they are hit
func fakeModel(calls *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/spam-detection":
			fmt.Fprint(w, `{
				"percentages": {"not_spam": 75.0, "explicit_spam": 25.0},
				"counts": {"not_spam": 3, "explicit_spam": 1},
				"file_url": "https://blobs.test/spam.json"
			}`)
		case "/api/sentiment-emotion":
			fmt.Fprint(w, `{
				"sentiment_analysis": {"percentages": {"Positive": 50.0, "Negative": 50.0}, "counts": {"Positive": 2, "Negative": 2}},
				"emotion_analysis": {"percentages": {"Happy": 100.0}, "counts": {"Happy": 4}},
				"file_url": "https://blobs.test/sentiment.json"
			}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newAnalysisService(db *gorm.DB, scraperURL, modelURL string) *services.AnalysisService {
	return &services.AnalysisService{
		DB:      db,
		Scraper: clients.NewScraperClient(scraperURL),
		Model:   clients.NewModelClient(modelURL),
	}
}

// TestAnalysisRunPersistsStats tests the happy path end to end
func TestAnalysisRunPersistsStats(t *testing.T) {
	db := setupTestDB(t)

	reviews := []string{
		`{"content":"love it","score":5}`,
		`{"content":"broken after update","score":1}`,
	}
	scraper := fakeScraper(t, reviews)
	defer scraper.Close()
	var modelCalls atomic.Int32
	model := fakeModel(&modelCalls)
	defer model.Close()

	svc := newAnalysisService(db, scraper.URL, model.URL)

	sub, err := services.AppIDSubmission("com.example.app", "newest", 100)
	if err != nil {
		t.Fatalf("Failed to build submission: %v", err)
	}

	var states []services.RunState
	analysis, err := svc.Run(context.Background(), "user-1", sub, func(state services.RunState, message string) {
		states = append(states, state)
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if analysis.ID == "" {
		t.Error("Expected a generated analysis ID")
	}
	if analysis.InputType != models.InputTypeAppID || analysis.InputValue != "com.example.app" {
		t.Errorf("Unexpected input descriptor: %s %s", analysis.InputType, analysis.InputValue)
	}
	if analysis.ReviewsCount != 2 {
		t.Errorf("Expected 2 reviews, got %d", analysis.ReviewsCount)
	}
	if analysis.SentimentFileURL != "https://blobs.test/sentiment.json" {
		t.Errorf("Unexpected sentiment file URL: %s", analysis.SentimentFileURL)
	}
	if analysis.SpamFileURL != "https://blobs.test/spam.json" {
		t.Errorf("Unexpected spam file URL: %s", analysis.SpamFileURL)
	}
	if modelCalls.Load() != 2 {
		t.Errorf("Expected 2 model calls, got %d", modelCalls.Load())
	}

	// Both classification endpoints ran, ending in success
	want := []services.RunState{
		services.StateFetchingReviews,
		services.StateAnalyzing,
		services.StateSucceeded,
	}
	if len(states) != len(want) {
		t.Fatalf("Expected states %v, got %v", want, states)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("Expected state %s at step %d, got %s", want[i], i, states[i])
		}
	}

	// Only summary statistics are persisted, never review texts
	var saved models.Analysis
	if err := db.First(&saved, "id = ?", analysis.ID).Error; err != nil {
		t.Fatalf("Failed to reload analysis: %v", err)
	}
	var stats struct {
		SentimentAnalysis clients.ClassStats `json:"sentiment_analysis"`
		EmotionAnalysis   clients.ClassStats `json:"emotion_analysis"`
	}
	if err := json.Unmarshal(saved.SentimentResult.JSON, &stats); err != nil {
		t.Fatalf("Failed to decode persisted sentiment result: %v", err)
	}
	if stats.SentimentAnalysis.Counts["Positive"] != 2 {
		t.Errorf("Expected 2 positive reviews in stats, got %d", stats.SentimentAnalysis.Counts["Positive"])
	}
	if strings.Contains(string(saved.SentimentResult.JSON), "love it") {
		t.Error("Persisted result must not contain review texts")
	}
	if saved.Summary != nil {
		t.Error("Expected no summary before generation")
	}
}

// TestAnalysisRunCSV tests the CSV submission variant
func TestAnalysisRunCSV(t *testing.T) {
	db := setupTestDB(t)

	scraper := fakeScraper(t, []string{`{"content":"ok","score":3}`})
	defer scraper.Close()
	var modelCalls atomic.Int32
	model := fakeModel(&modelCalls)
	defer model.Close()

	svc := newAnalysisService(db, scraper.URL, model.URL)

	sub, err := services.CSVSubmission("reviews.csv", "text/csv", 64, strings.NewReader("content,score\nok,3\n"))
	if err != nil {
		t.Fatalf("Failed to build submission: %v", err)
	}

	analysis, err := svc.Run(context.Background(), "user-1", sub, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if analysis.InputType != models.InputTypeCSV || analysis.InputValue != "reviews.csv" {
		t.Errorf("Unexpected input descriptor: %s %s", analysis.InputType, analysis.InputValue)
	}
}

// TestAnalysisRunNoReviews tests that an empty scrape fails before any
// classification runs
func TestAnalysisRunNoReviews(t *testing.T) {
	db := setupTestDB(t)

	scraper := fakeScraper(t, nil)
	defer scraper.Close()
	var modelCalls atomic.Int32
	model := fakeModel(&modelCalls)
	defer model.Close()

	svc := newAnalysisService(db, scraper.URL, model.URL)

	sub, err := services.AppIDSubmission("com.example.app", "newest", 100)
	if err != nil {
		t.Fatalf("Failed to build submission: %v", err)
	}

	_, err = svc.Run(context.Background(), "user-1", sub, nil)
	if err == nil {
		t.Fatal("Expected error for an empty review set")
	}
	customErr, ok := err.(*types.CustomError)
	if !ok || customErr.Type != "collaborator.scraper" {
		t.Errorf("Expected a scraper collaborator error, got %v", err)
	}
	if modelCalls.Load() != 0 {
		t.Errorf("Expected no model calls, got %d", modelCalls.Load())
	}

	var count int64
	db.Model(&models.Analysis{}).Count(&count)
	if count != 0 {
		t.Error("Expected no analysis record for a failed run")
	}
}

// TestAnalysisRunModelFailure tests that a classification failure aborts the run
func TestAnalysisRunModelFailure(t *testing.T) {
	db := setupTestDB(t)

	scraper := fakeScraper(t, []string{`{"content":"ok","score":3}`})
	defer scraper.Close()
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"model backend exploded"}`)
	}))
	defer model.Close()

	svc := newAnalysisService(db, scraper.URL, model.URL)

	sub, err := services.AppIDSubmission("com.example.app", "newest", 100)
	if err != nil {
		t.Fatalf("Failed to build submission: %v", err)
	}

	_, err = svc.Run(context.Background(), "user-1", sub, nil)
	if err == nil {
		t.Fatal("Expected error when classification fails")
	}
	if !strings.Contains(err.Error(), "model backend exploded") {
		t.Errorf("Expected the collaborator's message, got %v", err)
	}

	var count int64
	db.Model(&models.Analysis{}).Count(&count)
	if count != 0 {
		t.Error("Expected no analysis record for a failed run")
	}
}

// TestAppIDSubmissionValidation tests pre-network input rejection
func TestAppIDSubmissionValidation(t *testing.T) {
	if _, err := services.AppIDSubmission("com", "newest", 100); err == nil {
		t.Error("Expected error for a malformed app ID")
	}
	if _, err := services.AppIDSubmission("com.example.app", "newest", 0); err == nil {
		t.Error("Expected error for a non-positive review count")
	}
	if _, err := services.CSVSubmission("reviews.txt", "text/plain", 64, strings.NewReader("x")); err == nil {
		t.Error("Expected error for a non-CSV upload")
	}
}
