package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"paperbridge/internal/csvexport"
	"paperbridge/internal/domain"
	"paperbridge/internal/port"
)

// ExportResult pairs a document with its latest extraction for JSON export.
type ExportResult struct {
	Document   *domain.Document   `json:"document"`
	Extraction *domain.Extraction `json:"extraction"`
}

// ExportService renders a document's latest extraction in the supported
// download formats.
type ExportService interface {
	ExportJSON(ctx context.Context, documentID uuid.UUID) (*ExportResult, error)
	// ExportCSV streams a BOM-prefixed CSV to w and returns the suggested
	// download filename.
	ExportCSV(ctx context.Context, documentID uuid.UUID, w io.Writer) (string, error)
	ExportXLSX(ctx context.Context, documentID uuid.UUID, w io.Writer) (string, error)
}

type exportService struct {
	docRepo        port.DocumentRepository
	extractionRepo port.ExtractionRepository
}

// NewExportService creates a new ExportService implementation.
func NewExportService(docRepo port.DocumentRepository, extractionRepo port.ExtractionRepository) ExportService {
	return &exportService{
		docRepo:        docRepo,
		extractionRepo: extractionRepo,
	}
}

func (s *exportService) load(ctx context.Context, documentID uuid.UUID) (*domain.Document, *domain.Extraction, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	ex, err := s.extractionRepo.GetLatestByDocument(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	return doc, ex, nil
}

func (s *exportService) ExportJSON(ctx context.Context, documentID uuid.UUID) (*ExportResult, error) {
	doc, ex, err := s.load(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return &ExportResult{Document: doc, Extraction: ex}, nil
}

func (s *exportService) ExportCSV(ctx context.Context, documentID uuid.UUID, w io.Writer) (string, error) {
	doc, ex, err := s.load(ctx, documentID)
	if err != nil {
		return "", err
	}

	if _, err := w.Write(csvexport.BOM); err != nil {
		return "", fmt.Errorf("exportService.ExportCSV: %w", err)
	}
	writer := csvexport.NewWriter(w)
	if err := writer.WriteHeader(); err != nil {
		return "", fmt.Errorf("exportService.ExportCSV: %w", err)
	}
	if err := writer.WriteExtraction(doc, ex); err != nil {
		return "", fmt.Errorf("exportService.ExportCSV: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("exportService.ExportCSV: %w", err)
	}
	return csvexport.BuildFilename(doc.Filename, "csv"), nil
}

func (s *exportService) ExportXLSX(ctx context.Context, documentID uuid.UUID, w io.Writer) (string, error) {
	doc, ex, err := s.load(ctx, documentID)
	if err != nil {
		return "", err
	}

	f, err := csvexport.BuildXLSX(doc, ex)
	if err != nil {
		return "", fmt.Errorf("exportService.ExportXLSX: %w", err)
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return "", fmt.Errorf("exportService.ExportXLSX: %w", err)
	}
	return csvexport.BuildFilename(doc.Filename, "xlsx"), nil
}
