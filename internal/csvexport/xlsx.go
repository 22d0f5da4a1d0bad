package csvexport

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"paperbridge/internal/domain"
)

const (
	sheetSummary   = "Summary"
	sheetLineItems = "Line Items"
)

// BuildXLSX renders an extraction into a two-sheet workbook: a Summary sheet
// with the document-level fields and a Line Items sheet. The caller owns
// closing the returned file.
func BuildXLSX(doc *domain.Document, ex *domain.Extraction) (*excelize.File, error) {
	payload, err := decodePayload(ex)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return nil, fmt.Errorf("csvexport.BuildXLSX: %w", err)
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return nil, fmt.Errorf("csvexport.BuildXLSX: %w", err)
	}

	summaryRows := [][]interface{}{
		{"Document Name", doc.Filename},
		{"Version", doc.Version},
		{"Validation Status", string(ex.Status)},
		{"Document Type", payload.DocumentType},
		{"Date Issued", payload.DateIssued},
		{"Issuer", payload.Issuer},
		{"Recipient", payload.Recipient},
		{"Part Numbers", strings.Join(payload.PartNumbers, "; ")},
		{"Total Amount", payload.TotalAmount},
		{"Currency", payload.Currency},
		{"Confidence", payload.Confidence},
		{"Summary", payload.Summary},
		{"Extraction Notes", payload.ExtractionNotes},
		{"Extracted At", ex.CreatedAt.Format(time.RFC3339)},
		{"Uploaded At", doc.CreatedAt.Format(time.RFC3339)},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("csvexport.BuildXLSX: %w", err)
		}
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return nil, fmt.Errorf("csvexport.BuildXLSX: %w", err)
		}
	}

	if _, err := f.NewSheet(sheetLineItems); err != nil {
		return nil, fmt.Errorf("csvexport.BuildXLSX: %w", err)
	}
	header := []interface{}{"Description", "Quantity", "Unit Price", "Total"}
	if err := f.SetSheetRow(sheetLineItems, "A1", &header); err != nil {
		return nil, fmt.Errorf("csvexport.BuildXLSX: %w", err)
	}
	for i, item := range payload.LineItems {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("csvexport.BuildXLSX: %w", err)
		}
		row := []interface{}{item.Description, item.Quantity, item.UnitPrice, item.Total}
		if err := f.SetSheetRow(sheetLineItems, cell, &row); err != nil {
			return nil, fmt.Errorf("csvexport.BuildXLSX: %w", err)
		}
	}

	return f, nil
}
