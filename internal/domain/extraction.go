package domain

import "encoding/json"

// LineItem is a single billed line inside an extracted document.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// ExtractionPayload is the structured result the LLM extractor returns for a
// document. It round-trips through the extractions.data JSONB column.
type ExtractionPayload struct {
	DocumentType    string     `json:"document_type"`
	DateIssued      string     `json:"date_issued,omitempty"`
	Issuer          string     `json:"issuer"`
	Recipient       string     `json:"recipient"`
	PartNumbers     []string   `json:"part_numbers"`
	TotalAmount     float64    `json:"total_amount"`
	Currency        string     `json:"currency"`
	LineItems       []LineItem `json:"line_items"`
	Summary         string     `json:"summary"`
	Confidence      float64    `json:"confidence"`
	ExtractionNotes string     `json:"extraction_notes,omitempty"`
}

// Marshal serializes the payload for persistence.
func (p *ExtractionPayload) Marshal() (json.RawMessage, error) {
	return json.Marshal(p)
}
