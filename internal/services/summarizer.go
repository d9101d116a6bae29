package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/quicktify/quicktify-api/internal/clients"
	"github.com/quicktify/quicktify-api/internal/models"
	"gorm.io/gorm"
)

// maxSummaryExamples caps the example texts per category sent to the
// summary endpoint.
const maxSummaryExamples = 20

// SummaryStatus is the lifecycle of a detached summary generation.
type SummaryStatus string

const (
	SummaryNone    SummaryStatus = "none"
	SummaryPending SummaryStatus = "pending"
	SummaryDone    SummaryStatus = "done"
	SummaryFailed  SummaryStatus = "failed"
)

// SummaryState is the queryable outcome of a summary generation. A failed
// generation never invalidates the saved record; it only surfaces here.
type SummaryState struct {
	Status SummaryStatus `json:"status"`
	Error  string        `json:"error,omitempty"`
}

// Summarizer generates AI text summaries in the background and patches them
// onto already-saved records. It keeps an in-memory per-record status so a
// failure is visible separately from the record itself.
type Summarizer struct {
	DB      *gorm.DB
	Scraper *clients.ScraperClient
	Details *clients.DetailClient

	mu     sync.Mutex
	states map[string]SummaryState
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(db *gorm.DB, scraper *clients.ScraperClient, details *clients.DetailClient) *Summarizer {
	return &Summarizer{
		DB:      db,
		Scraper: scraper,
		Details: details,
		states:  make(map[string]SummaryState),
	}
}

// Status reports the summary generation state for a record id.
func (s *Summarizer) Status(recordID string) SummaryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states[recordID]; ok {
		return state
	}
	return SummaryState{Status: SummaryNone}
}

func (s *Summarizer) setState(recordID string, state SummaryState) {
	s.mu.Lock()
	s.states[recordID] = state
	s.mu.Unlock()
}

// analysisSummaryData is the condensed payload for the review summary
// endpoint: summary statistics plus top words and a few example texts.
type analysisSummaryData struct {
	Sentiment clients.ClassStats  `json:"sentiment"`
	Emotion   clients.ClassStats  `json:"emotion"`
	Spam      clients.ClassStats  `json:"spam"`
	TopWords  map[string][]string `json:"top_words"`
	Examples  map[string][]string `json:"examples"`
}

// SummarizeAnalysis builds the condensed payload for a saved analysis,
// requests a summary and patches it onto the record. Detail blob failures
// are tolerated: the summary is then generated from statistics alone.
// Runs detached from the triggering request.
func (s *Summarizer) SummarizeAnalysis(analysis *models.Analysis, sentiment clients.ClassStats, emotion clients.ClassStats, spam clients.ClassStats) {
	s.setState(analysis.ID, SummaryState{Status: SummaryPending})

	ctx := context.Background()

	data := analysisSummaryData{
		Sentiment: sentiment,
		Emotion:   emotion,
		Spam:      spam,
		TopWords: map[string][]string{
			"positive": {},
			"neutral":  {},
			"negative": {},
		},
		Examples: map[string][]string{
			"positive":           {},
			"neutral":            {},
			"negative":           {},
			"explicit_spam":      {},
			"irrelevant_content": {},
		},
	}

	sentimentDetail, err := s.Details.FetchSentimentDetail(ctx, analysis.SentimentFileURL)
	if err != nil {
		log.Printf("Summary detail fetch failed for analysis %s: %v", analysis.ID, err)
	} else {
		data.TopWords["positive"] = wordList(sentimentDetail.SentimentAnalysis.WordClouds["Positive"])
		data.TopWords["neutral"] = wordList(sentimentDetail.SentimentAnalysis.WordClouds["Neutral"])
		data.TopWords["negative"] = wordList(sentimentDetail.SentimentAnalysis.WordClouds["Negative"])
		data.Examples["positive"] = exampleTexts(sentimentDetail.SentimentAnalysis.ReviewsBySentiment["Positive"])
		data.Examples["neutral"] = exampleTexts(sentimentDetail.SentimentAnalysis.ReviewsBySentiment["Neutral"])
		data.Examples["negative"] = exampleTexts(sentimentDetail.SentimentAnalysis.ReviewsBySentiment["Negative"])
	}

	spamDetail, err := s.Details.FetchSpamDetail(ctx, analysis.SpamFileURL)
	if err != nil {
		log.Printf("Summary detail fetch failed for analysis %s: %v", analysis.ID, err)
	} else {
		data.Examples["explicit_spam"] = exampleTexts(spamDetail.ReviewsByCategory["explicit_spam"])
		data.Examples["irrelevant_content"] = exampleTexts(spamDetail.ReviewsByCategory["irrelevant_content"])
	}

	summary, err := s.Scraper.GenerateReviewSummary(ctx, data)
	if err != nil {
		log.Printf("Summary generation failed for analysis %s: %v", analysis.ID, err)
		s.setState(analysis.ID, SummaryState{Status: SummaryFailed, Error: err.Error()})
		return
	}

	if err := s.DB.Model(&models.Analysis{}).Where("id = ?", analysis.ID).Update("summary", summary).Error; err != nil {
		log.Printf("Summary patch failed for analysis %s: %v", analysis.ID, err)
		s.setState(analysis.ID, SummaryState{Status: SummaryFailed, Error: err.Error()})
		return
	}

	s.setState(analysis.ID, SummaryState{Status: SummaryDone})
}

// estimationSummaryData is the payload for the rating-estimation summary
// endpoint: the prediction and its explanation, nothing else.
type estimationSummaryData struct {
	PredictedRating    float64     `json:"predicted_rating"`
	ConfidenceInterval interface{} `json:"confidence_interval,omitempty"`
	InputSummary       interface{} `json:"input_summary"`
	FeatureImportance  interface{} `json:"feature_importance"`
	ShapLocal          interface{} `json:"shap_local"`
	ShapPlots          interface{} `json:"shap_plots"`
}

// SummarizeEstimation requests a summary for a saved rating estimation and
// patches it onto the record. Runs detached from the triggering request.
func (s *Summarizer) SummarizeEstimation(estimation *models.RatingEstimation, prediction *clients.RatingPrediction) {
	s.setState(estimation.ID, SummaryState{Status: SummaryPending})

	data := estimationSummaryData{
		PredictedRating:    prediction.PredictedRating,
		ConfidenceInterval: rawOrNil(prediction.ConfidenceInterval),
		InputSummary:       rawOrNil(prediction.InputSummary),
		FeatureImportance:  rawOrNil(prediction.FeatureImportance),
		ShapLocal:          rawOrNil(prediction.ShapLocal),
		ShapPlots:          prediction.ShapPlots,
	}

	summary, err := s.Scraper.GenerateEstimationSummary(context.Background(), data)
	if err != nil {
		log.Printf("Summary generation failed for estimation %s: %v", estimation.ID, err)
		s.setState(estimation.ID, SummaryState{Status: SummaryFailed, Error: err.Error()})
		return
	}

	if err := s.DB.Model(&models.RatingEstimation{}).Where("id = ?", estimation.ID).Update("summary", summary).Error; err != nil {
		log.Printf("Summary patch failed for estimation %s: %v", estimation.ID, err)
		s.setState(estimation.ID, SummaryState{Status: SummaryFailed, Error: err.Error()})
		return
	}

	s.setState(estimation.ID, SummaryState{Status: SummaryDone})
}

func wordList(words []clients.WordCount) []string {
	list := make([]string, 0, len(words))
	for _, w := range words {
		list = append(list, w.Word)
	}
	return list
}

func exampleTexts(reviews []clients.ReviewDetail) []string {
	n := len(reviews)
	if n > maxSummaryExamples {
		n = maxSummaryExamples
	}
	texts := make([]string, 0, n)
	for _, r := range reviews[:n] {
		texts = append(texts, r.Text)
	}
	return texts
}

func rawOrNil(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return json.RawMessage(raw)
}
