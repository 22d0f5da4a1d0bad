// Package validator classifies extraction payloads as PASSED, FLAGGED, or
// FAILED via deterministic rules. It is a pure function of the payload and
// never touches the database or the LLM.
package validator

import (
	"time"

	"paperbridge/internal/domain"
)

const (
	minSummaryLength = 10
	minConfidence    = 0.6
)

// Validate applies the rules in order, first match wins:
// FAILED on structurally bad data, FLAGGED on low confidence, PASSED otherwise.
func Validate(data *domain.ExtractionPayload) domain.ValidationStatus {
	if data.DocumentType == "" {
		return domain.ValidationStatusFailed
	}
	if len(data.Summary) < minSummaryLength {
		return domain.ValidationStatusFailed
	}
	if data.DateIssued != "" && !parseableDate(data.DateIssued) {
		return domain.ValidationStatusFailed
	}
	if data.TotalAmount < 0 {
		return domain.ValidationStatusFailed
	}
	if !validCurrency(data.Currency) {
		return domain.ValidationStatusFailed
	}

	if data.Confidence < minConfidence {
		return domain.ValidationStatusFlagged
	}

	return domain.ValidationStatusPassed
}

// parseableDate accepts ISO dates and timestamps, including a trailing Z.
func parseableDate(s string) bool {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// validCurrency requires exactly 3 uppercase ASCII letters.
func validCurrency(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
