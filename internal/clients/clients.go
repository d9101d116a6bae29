// Package clients holds the HTTP clients for the external collaborators:
// the scraper service (review retrieval, CSV parsing, AI summaries) and the
// model service (sentiment/emotion, spam detection, rating prediction).
// Implementations of the analytical work live behind these contracts.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// defaultTimeout bounds every collaborator call. The model service can chew
// on thousands of reviews, so this is generous.
const defaultTimeout = 5 * time.Minute

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// apiErrorBody is the error shape both collaborators use.
type apiErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// extractAPIError pulls a human-readable message out of a collaborator
// response body, preferring "message" over "error". Returns fallback when
// neither is present or the body is not JSON.
func extractAPIError(body []byte, fallback string) string {
	var e apiErrorBody
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return fallback
}

// postJSON issues a JSON POST and returns the raw response body and status.
func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	return resp.StatusCode, respBody, nil
}
