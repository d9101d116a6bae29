package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ReviewDetail is one classified review inside a detail blob.
type ReviewDetail struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// WordCount is one word-frequency entry inside a detail blob.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// SentimentDetail is the externally hosted per-review sentiment/emotion blob.
// Maps are keyed by class name (Positive/Neutral/Negative, Happy/Sad/...).
type SentimentDetail struct {
	SentimentAnalysis struct {
		ReviewsBySentiment map[string][]ReviewDetail `json:"reviews_by_sentiment"`
		WordClouds         map[string][]WordCount    `json:"word_clouds"`
	} `json:"sentiment_analysis"`
	EmotionAnalysis struct {
		ReviewsByEmotion map[string][]ReviewDetail `json:"reviews_by_emotion"`
		WordClouds       map[string][]WordCount    `json:"word_clouds"`
	} `json:"emotion_analysis"`
}

// SpamDetail is the externally hosted per-review spam blob, keyed by
// category (explicit_spam, irrelevant_content).
type SpamDetail struct {
	ReviewsByCategory map[string][]ReviewDetail `json:"reviews_by_category"`
}

// DetailClient fetches the externally hosted detail blobs referenced by the
// file_url values the model service returns.
type DetailClient struct {
	httpClient *http.Client
}

// NewDetailClient creates a detail blob fetcher.
func NewDetailClient() *DetailClient {
	return &DetailClient{httpClient: newHTTPClient()}
}

// FetchSentimentDetail retrieves and decodes a sentiment detail blob.
func (c *DetailClient) FetchSentimentDetail(ctx context.Context, fileURL string) (*SentimentDetail, error) {
	var detail SentimentDetail
	if err := c.fetch(ctx, fileURL, &detail); err != nil {
		return nil, fmt.Errorf("failed to retrieve sentiment detail: %w", err)
	}
	return &detail, nil
}

// FetchSpamDetail retrieves and decodes a spam detail blob.
func (c *DetailClient) FetchSpamDetail(ctx context.Context, fileURL string) (*SpamDetail, error) {
	var detail SpamDetail
	if err := c.fetch(ctx, fileURL, &detail); err != nil {
		return nil, fmt.Errorf("failed to retrieve spam detail: %w", err)
	}
	return &detail, nil
}

func (c *DetailClient) fetch(ctx context.Context, fileURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(body, out)
}
