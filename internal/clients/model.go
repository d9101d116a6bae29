package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// ClassStats are the per-class percentages and counts the model service
// reports for a classification.
type ClassStats struct {
	Percentages map[string]float64 `json:"percentages"`
	Counts      map[string]int     `json:"counts"`
}

// SpamDetectionResult is the model service's spam-detection response.
// FileURL points at the externally hosted per-review detail blob.
type SpamDetectionResult struct {
	Percentages map[string]float64 `json:"percentages"`
	Counts      map[string]int     `json:"counts"`
	FileURL     string             `json:"file_url"`
}

// SentimentEmotionResult is the model service's combined sentiment and
// emotion response.
type SentimentEmotionResult struct {
	SentimentAnalysis ClassStats `json:"sentiment_analysis"`
	EmotionAnalysis   ClassStats `json:"emotion_analysis"`
	FileURL           string     `json:"file_url"`
}

// EstimationInput is the structured input for a rating prediction.
type EstimationInput struct {
	Category       string  `json:"category"`
	RatingCount    float64 `json:"rating_count"`
	Installs       float64 `json:"installs"`
	Size           float64 `json:"size"`
	ContentRating  string  `json:"content_rating"`
	AdSupported    bool    `json:"ad_supported"`
	InAppPurchases bool    `json:"in_app_purchases"`
	EditorsChoice  bool    `json:"editors_choice"`
	AppType        string  `json:"app_type"`
}

// ShapPlots are the explanation plot images rendered by the model service.
type ShapPlots struct {
	BarPlotURL       string `json:"bar_plot_url"`
	WaterfallPlotURL string `json:"waterfall_plot_url"`
	ForcePlotURL     string `json:"force_plot_url"`
}

// RatingPrediction is the model service's rating-estimation response. The
// explanation payloads are displayed verbatim, so they stay raw JSON.
type RatingPrediction struct {
	PredictedRating    float64         `json:"predicted_rating"`
	ModelUsed          string          `json:"model_used"`
	ConfidenceInterval json.RawMessage `json:"confidence_interval,omitempty"`
	InputSummary       json.RawMessage `json:"input_summary"`
	FeatureImportance  json.RawMessage `json:"feature_importance"`
	ShapLocal          json.RawMessage `json:"shap_local"`
	ShapPlots          ShapPlots       `json:"shap_plots"`
}

// ModelClient talks to the model-inference collaborator.
type ModelClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewModelClient creates a model client for the given base URL.
func NewModelClient(baseURL string) *ModelClient {
	return &ModelClient{
		baseURL:    baseURL,
		httpClient: newHTTPClient(),
	}
}

// DetectSpam classifies reviews into spam categories.
// POST /api/spam-detection
func (c *ModelClient) DetectSpam(ctx context.Context, reviews []json.RawMessage) (*SpamDetectionResult, error) {
	status, body, err := postJSON(ctx, c.httpClient, c.baseURL+"/api/spam-detection", map[string]interface{}{"reviews": reviews})
	if err != nil {
		return nil, fmt.Errorf("spam detection request failed: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%s", extractAPIError(body, "spam detection failed"))
	}

	var result SpamDetectionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("invalid spam detection response: %w", err)
	}

	return &result, nil
}

// AnalyzeSentimentEmotion classifies reviews into sentiment and emotion classes.
// POST /api/sentiment-emotion
func (c *ModelClient) AnalyzeSentimentEmotion(ctx context.Context, reviews []json.RawMessage) (*SentimentEmotionResult, error) {
	status, body, err := postJSON(ctx, c.httpClient, c.baseURL+"/api/sentiment-emotion", map[string]interface{}{"reviews": reviews})
	if err != nil {
		return nil, fmt.Errorf("sentiment emotion request failed: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%s", extractAPIError(body, "sentiment emotion analysis failed"))
	}

	var result SentimentEmotionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("invalid sentiment emotion response: %w", err)
	}

	return &result, nil
}

// PredictRating predicts an app rating for the structured input.
// POST /api/app-rating-prediction?model_choice=...
func (c *ModelClient) PredictRating(ctx context.Context, input EstimationInput, modelChoice string) (*RatingPrediction, error) {
	endpoint := c.baseURL + "/api/app-rating-prediction?model_choice=" + url.QueryEscape(modelChoice)

	status, body, err := postJSON(ctx, c.httpClient, endpoint, input)
	if err != nil {
		return nil, fmt.Errorf("rating prediction request failed: %w", err)
	}

	var result RatingPrediction
	decodeErr := json.Unmarshal(body, &result)

	// A success body without a predicted rating is still a failure.
	if status < 200 || status >= 300 || decodeErr != nil || result.PredictedRating == 0 {
		return nil, fmt.Errorf("%s", extractAPIError(body, "failed to predict app rating"))
	}

	return &result, nil
}
