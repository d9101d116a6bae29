package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// ReviewsResponse is the scraper service's response for both the Google Play
// scrape and the CSV parse endpoints. Review elements are passed through to
// the model service untouched.
type ReviewsResponse struct {
	Status       string            `json:"status"`
	Reviews      []json.RawMessage `json:"reviews"`
	ReviewsCount int               `json:"reviewsCount"`
}

// ScraperClient talks to the scraper collaborator.
type ScraperClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewScraperClient creates a scraper client for the given base URL.
func NewScraperClient(baseURL string) *ScraperClient {
	return &ScraperClient{
		baseURL:    baseURL,
		httpClient: newHTTPClient(),
	}
}

// ScrapeGooglePlay retrieves reviews for an app identifier.
// POST /api/reviews/google-play-scraper
func (c *ScraperClient) ScrapeGooglePlay(ctx context.Context, appID, sort string, num int) (*ReviewsResponse, error) {
	payload := map[string]interface{}{
		"appId": appID,
		"sort":  sort,
		"num":   num,
	}

	status, body, err := postJSON(ctx, c.httpClient, c.baseURL+"/api/reviews/google-play-scraper", payload)
	if err != nil {
		return nil, fmt.Errorf("scraper request failed: %w", err)
	}

	return decodeReviewsResponse(status, body, "failed to retrieve reviews from Google Play")
}

// ParseCSV uploads a CSV of reviews as a multipart form.
// POST /api/reviews/google-play-csv
func (c *ScraperClient) ParseCSV(ctx context.Context, filename string, file io.Reader) (*ReviewsResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/reviews/google-play-csv", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraper request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return decodeReviewsResponse(resp.StatusCode, body, "failed to upload or process CSV file")
}

// decodeReviewsResponse enforces the HTTP status and the body-level
// status flag; either failing surfaces the collaborator's own message.
func decodeReviewsResponse(status int, body []byte, fallback string) (*ReviewsResponse, error) {
	var result ReviewsResponse
	decodeErr := json.Unmarshal(body, &result)

	if status < 200 || status >= 300 || decodeErr != nil || result.Status != "success" {
		return nil, fmt.Errorf("%s", extractAPIError(body, fallback))
	}

	if result.ReviewsCount == 0 {
		result.ReviewsCount = len(result.Reviews)
	}

	return &result, nil
}

// GenerateReviewSummary asks for an AI text summary of an analysis run.
// POST /api/reviews/generate-summary
func (c *ScraperClient) GenerateReviewSummary(ctx context.Context, data interface{}) (string, error) {
	status, body, err := postJSON(ctx, c.httpClient, c.baseURL+"/api/reviews/generate-summary", map[string]interface{}{"data": data})
	if err != nil {
		return "", fmt.Errorf("summary request failed: %w", err)
	}

	if status < 200 || status >= 300 {
		return "", fmt.Errorf("%s", extractAPIError(body, "summary service returned an error"))
	}

	var result struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("invalid summary response: %w", err)
	}
	if result.Summary == "" {
		return "", fmt.Errorf("summary service returned an empty summary")
	}

	return result.Summary, nil
}

// GenerateEstimationSummary asks for an AI text summary of a rating estimation.
// POST /api/rating-estimation/summary
func (c *ScraperClient) GenerateEstimationSummary(ctx context.Context, data interface{}) (string, error) {
	status, body, err := postJSON(ctx, c.httpClient, c.baseURL+"/api/rating-estimation/summary", map[string]interface{}{"data": data})
	if err != nil {
		return "", fmt.Errorf("summary request failed: %w", err)
	}

	var result struct {
		Status  string `json:"status"`
		Summary string `json:"summary"`
	}
	decodeErr := json.Unmarshal(body, &result)

	if status < 200 || status >= 300 || decodeErr != nil || result.Status != "success" || result.Summary == "" {
		return "", fmt.Errorf("%s", extractAPIError(body, "failed to retrieve summary"))
	}

	return result.Summary, nil
}
