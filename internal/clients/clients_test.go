package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestExtractAPIError tests collaborator error-message extraction
func TestExtractAPIError(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"message":"app not found","error":"ignored"}`, "app not found"},
		{`{"error":"scrape failed"}`, "scrape failed"},
		{`{"status":"error"}`, "fallback"},
		{`not json at all`, "fallback"},
		{``, "fallback"},
	}
	for _, tc := range cases {
		if got := extractAPIError([]byte(tc.body), "fallback"); got != tc.want {
			t.Errorf("extractAPIError(%q) = %q, want %q", tc.body, got, tc.want)
		}
	}
}

// TestDecodeReviewsResponse tests status enforcement on review payloads
func TestDecodeReviewsResponse(t *testing.T) {
	result, err := decodeReviewsResponse(200, []byte(`{"status":"success","reviews":[{"a":1},{"a":2}]}`), "fallback")
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	// A missing count defaults to the review slice length
	if result.ReviewsCount != 2 {
		t.Errorf("Expected reviews count 2, got %d", result.ReviewsCount)
	}

	// A 200 with a body-level error status still fails
	if _, err := decodeReviewsResponse(200, []byte(`{"status":"error","message":"app not found"}`), "fallback"); err == nil {
		t.Error("Expected error for body-level error status")
	} else if err.Error() != "app not found" {
		t.Errorf("Expected the collaborator's message, got %q", err.Error())
	}

	if _, err := decodeReviewsResponse(500, []byte(`{"status":"success","reviews":[]}`), "fallback"); err == nil {
		t.Error("Expected error for a non-2xx status")
	}
	if _, err := decodeReviewsResponse(200, []byte(`garbage`), "fallback"); err == nil {
		t.Error("Expected error for an undecodable body")
	}
}

// TestParseCSVSendsMultipart tests the CSV upload wire format
func TestParseCSVSendsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/reviews/google-play-csv" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		mediaType := r.Header.Get("Content-Type")
		if !strings.HasPrefix(mediaType, "multipart/form-data") {
			t.Errorf("Expected multipart content type, got %s", mediaType)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("Failed to parse multipart form: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("Expected a file field: %v", err)
		}
		defer file.Close()
		if header.Filename != "reviews.csv" {
			t.Errorf("Expected filename reviews.csv, got %s", header.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"success","reviews":[{"content":"ok"}]}`)
	}))
	defer server.Close()

	client := NewScraperClient(server.URL)
	result, err := client.ParseCSV(context.Background(), "reviews.csv", strings.NewReader("content,score\nok,3\n"))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if result.ReviewsCount != 1 {
		t.Errorf("Expected 1 review, got %d", result.ReviewsCount)
	}
}

// TestGenerateReviewSummaryRejectsEmpty tests that an empty summary is an error
func TestGenerateReviewSummaryRejectsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"summary":""}`)
	}))
	defer server.Close()

	client := NewScraperClient(server.URL)
	if _, err := client.GenerateReviewSummary(context.Background(), map[string]string{}); err == nil {
		t.Error("Expected error for an empty summary")
	}
}

// TestGenerateEstimationSummaryStatusFlag tests body-level status enforcement
func TestGenerateEstimationSummaryStatusFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"error","summary":"ignored","message":"quota exceeded"}`)
	}))
	defer server.Close()

	client := NewScraperClient(server.URL)
	_, err := client.GenerateEstimationSummary(context.Background(), map[string]string{})
	if err == nil {
		t.Fatal("Expected error for a non-success status")
	}
	if err.Error() != "quota exceeded" {
		t.Errorf("Expected the collaborator's message, got %q", err.Error())
	}
}
