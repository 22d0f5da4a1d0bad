package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"paperbridge/internal/domain"
	"paperbridge/internal/validator"
)

func validPayload() *domain.ExtractionPayload {
	return &domain.ExtractionPayload{
		DocumentType: "invoice",
		DateIssued:   "2026-03-15",
		Issuer:       "Acme Corp",
		Recipient:    "Globex Inc",
		TotalAmount:  1299.50,
		Currency:     "USD",
		Summary:      "Invoice for March hardware order",
		Confidence:   0.92,
	}
}

func TestValidate_Passed(t *testing.T) {
	assert.Equal(t, domain.ValidationStatusPassed, validator.Validate(validPayload()))
}

func TestValidate_FailedRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.ExtractionPayload)
	}{
		{"missing document type", func(p *domain.ExtractionPayload) { p.DocumentType = "" }},
		{"summary too short", func(p *domain.ExtractionPayload) { p.Summary = "too short" }},
		{"unparseable date", func(p *domain.ExtractionPayload) { p.DateIssued = "March 15th" }},
		{"negative total", func(p *domain.ExtractionPayload) { p.TotalAmount = -1 }},
		{"lowercase currency", func(p *domain.ExtractionPayload) { p.Currency = "usd" }},
		{"currency too long", func(p *domain.ExtractionPayload) { p.Currency = "USDT" }},
		{"empty currency", func(p *domain.ExtractionPayload) { p.Currency = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPayload()
			tc.mutate(p)
			assert.Equal(t, domain.ValidationStatusFailed, validator.Validate(p))
		})
	}
}

func TestValidate_EmptyDateIsAllowed(t *testing.T) {
	p := validPayload()
	p.DateIssued = ""
	assert.Equal(t, domain.ValidationStatusPassed, validator.Validate(p))
}

func TestValidate_AcceptedDateLayouts(t *testing.T) {
	for _, date := range []string{"2026-03-15", "2026-03-15T10:30:00", "2026-03-15T10:30:00Z"} {
		p := validPayload()
		p.DateIssued = date
		assert.Equal(t, domain.ValidationStatusPassed, validator.Validate(p), "date %q", date)
	}
}

func TestValidate_LowConfidenceFlagged(t *testing.T) {
	p := validPayload()
	p.Confidence = 0.59
	assert.Equal(t, domain.ValidationStatusFlagged, validator.Validate(p))

	p.Confidence = 0.6
	assert.Equal(t, domain.ValidationStatusPassed, validator.Validate(p))
}

func TestValidate_FailedBeatsFlagged(t *testing.T) {
	// Structural failure wins even when confidence is also low.
	p := validPayload()
	p.Confidence = 0.1
	p.Currency = "??"
	assert.Equal(t, domain.ValidationStatusFailed, validator.Validate(p))
}

func TestValidate_ZeroTotalIsAllowed(t *testing.T) {
	p := validPayload()
	p.TotalAmount = 0
	assert.Equal(t, domain.ValidationStatusPassed, validator.Validate(p))
}
