package csvexport

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"paperbridge/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Document Name",
	"Version",
	"Validation Status",
	"Document Type",
	"Date Issued",
	"Issuer",
	"Recipient",
	"Part Numbers",
	"Total Amount",
	"Currency",
	"Line Item Count",
	"Confidence",
	"Summary",
	"Extraction Notes",
	"Extracted At",
	"Uploaded At",
}

// lineItemColumns defines the header row of the line item section.
var lineItemColumns = []string{
	"Description",
	"Quantity",
	"Unit Price",
	"Total",
}

// Writer wraps csv.Writer for exporting extractions as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the document-level header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteExtraction writes the document-level row followed by one row per line
// item under a second header.
func (w *Writer) WriteExtraction(doc *domain.Document, ex *domain.Extraction) error {
	payload, err := decodePayload(ex)
	if err != nil {
		return err
	}

	if err := w.csv.Write(extractionToRow(doc, ex, payload)); err != nil {
		return err
	}
	if len(payload.LineItems) == 0 {
		return nil
	}

	if err := w.csv.Write([]string{}); err != nil {
		return err
	}
	if err := w.csv.Write(lineItemColumns); err != nil {
		return err
	}
	for _, item := range payload.LineItems {
		row := []string{
			item.Description,
			formatQuantity(item.Quantity),
			formatMoney(item.UnitPrice),
			formatMoney(item.Total),
		}
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func decodePayload(ex *domain.Extraction) (*domain.ExtractionPayload, error) {
	var payload domain.ExtractionPayload
	if err := json.Unmarshal(ex.Data, &payload); err != nil {
		return nil, fmt.Errorf("csvexport: decoding extraction %s: %w", ex.ID, err)
	}
	return &payload, nil
}

func extractionToRow(doc *domain.Document, ex *domain.Extraction, payload *domain.ExtractionPayload) []string {
	row := make([]string, len(columns))
	row[0] = doc.Filename
	row[1] = strconv.Itoa(doc.Version)
	row[2] = string(ex.Status)
	row[3] = payload.DocumentType
	row[4] = payload.DateIssued
	row[5] = payload.Issuer
	row[6] = payload.Recipient
	row[7] = strings.Join(payload.PartNumbers, "; ")
	row[8] = formatMoney(payload.TotalAmount)
	row[9] = payload.Currency
	row[10] = strconv.Itoa(len(payload.LineItems))
	row[11] = strconv.FormatFloat(payload.Confidence, 'f', 2, 64)
	row[12] = payload.Summary
	row[13] = payload.ExtractionNotes
	row[14] = ex.CreatedAt.Format(time.RFC3339)
	row[15] = doc.CreatedAt.Format(time.RFC3339)
	return row
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a document filename for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(documentName, ext string) string {
	sanitized := SanitizeFilename(strings.TrimSuffix(documentName, ".pdf"))
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
