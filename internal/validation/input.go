// Package validation holds the client-input checks that must reject bad
// submissions before any collaborator is called.
package validation

import (
	"regexp"
	"strings"

	"github.com/quicktify/quicktify-api/internal/types"
)

// MaxCSVSize is the upload ceiling for review CSV files.
const MaxCSVSize = 32 * 1024 * 1024 // 32 MiB

// Google Play application identifiers: dot-separated segments of
// letters/digits/underscores, at least two segments, first character a
// letter, last character alphanumeric or underscore. Case-insensitive.
var appIDPattern = regexp.MustCompile(`(?i)^[a-z][a-z0-9_]*(\.[a-z0-9_]+)+[0-9a-z_]$`)

// ValidAppID reports whether id is a well-formed Google Play app identifier.
func ValidAppID(id string) bool {
	return appIDPattern.MatchString(id)
}

// CheckAppID validates a Google Play app identifier.
func CheckAppID(id string) error {
	if id == "" {
		return types.NewValidationError("app ID is required")
	}
	if !ValidAppID(id) {
		return types.NewValidationError("invalid app ID format, expected something like com.example.app")
	}
	return nil
}

// CheckCSV validates an uploaded review CSV by name, MIME type and size.
func CheckCSV(filename, contentType string, size int64) error {
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") && contentType != "text/csv" {
		return types.NewValidationError("file must be in .csv format")
	}
	if size > MaxCSVSize {
		return types.NewValidationError("file size exceeds the 32MB maximum")
	}
	return nil
}
