package csvexport_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperbridge/internal/csvexport"
	"paperbridge/internal/domain"
)

func sampleDocument() *domain.Document {
	return &domain.Document{
		ID:        uuid.New(),
		Filename:  "invoice.pdf",
		Version:   2,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func sampleExtraction(t *testing.T) *domain.Extraction {
	t.Helper()
	payload := domain.ExtractionPayload{
		DocumentType: "invoice",
		DateIssued:   "2026-02-28",
		Issuer:       "Acme Corp",
		Recipient:    "Globex Inc",
		PartNumbers:  []string{"A-100", "B-200"},
		TotalAmount:  540.5,
		Currency:     "EUR",
		LineItems: []domain.LineItem{
			{Description: "Widget", Quantity: 2, UnitPrice: 120.25, Total: 240.5},
			{Description: "Gadget", Quantity: 3, UnitPrice: 100, Total: 300},
		},
		Summary:    "Invoice for widgets and gadgets",
		Confidence: 0.9,
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return &domain.Extraction{
		ID:         uuid.New(),
		DocumentID: uuid.New(),
		Data:       data,
		Status:     domain.ValidationStatusPassed,
		CreatedAt:  time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestWriteExtraction(t *testing.T) {
	var buf bytes.Buffer
	w := csvexport.NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteExtraction(sampleDocument(), sampleExtraction(t)))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(strings.NewReader(buf.String()))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	// Header + document row + blank + line item header + 2 line items.
	require.Len(t, records, 5)

	docRow := records[1]
	assert.Equal(t, "invoice.pdf", docRow[0])
	assert.Equal(t, "2", docRow[1])
	assert.Equal(t, "PASSED", docRow[2])
	assert.Equal(t, "invoice", docRow[3])
	assert.Equal(t, "A-100; B-200", docRow[7])
	assert.Equal(t, "540.50", docRow[8])
	assert.Equal(t, "EUR", docRow[9])
	assert.Equal(t, "2", docRow[10])

	assert.Equal(t, []string{"Description", "Quantity", "Unit Price", "Total"}, records[2])
	assert.Equal(t, []string{"Widget", "2", "120.25", "240.50"}, records[3])
	assert.Equal(t, []string{"Gadget", "3", "100.00", "300.00"}, records[4])
}

func TestWriteExtraction_InvalidData(t *testing.T) {
	var buf bytes.Buffer
	w := csvexport.NewWriter(&buf)

	ex := sampleExtraction(t)
	ex.Data = json.RawMessage(`not json`)
	err := w.WriteExtraction(sampleDocument(), ex)
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"Invoice #42 (final).pdf": "Invoice_42_final_pdf",
		"simple":                  "simple",
		"a__b___c":                "a_b_c",
		"__trimmed__":             "trimmed",
	}
	for in, want := range cases {
		assert.Equal(t, want, csvexport.SanitizeFilename(in), "input %q", in)
	}
}

func TestSanitizeFilename_Truncates(t *testing.T) {
	long := strings.Repeat("a", 150)
	assert.Len(t, csvexport.SanitizeFilename(long), 100)
}

func TestBuildFilename(t *testing.T) {
	name := csvexport.BuildFilename("quarterly report.pdf", "csv")
	assert.True(t, strings.HasPrefix(name, "quarterly_report_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
}

func TestBuildXLSX(t *testing.T) {
	f, err := csvexport.BuildXLSX(sampleDocument(), sampleExtraction(t))
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "invoice.pdf", name)

	desc, err := f.GetCellValue("Line Items", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Widget", desc)
}
