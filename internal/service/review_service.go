package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"paperbridge/internal/domain"
	"paperbridge/internal/port"
	"paperbridge/internal/validator"
)

// SubmitReviewInput is the DTO for a human correction of an extraction.
type SubmitReviewInput struct {
	ExtractionID uuid.UUID
	UpdatedData  json.RawMessage
	EditedBy     string
}

// ReviewService records human corrections against extractions. Edits are
// append-only; the extraction row always reflects the latest accepted data.
type ReviewService interface {
	SubmitReview(ctx context.Context, input *SubmitReviewInput) (*domain.Extraction, error)
	ListEdits(ctx context.Context, extractionID uuid.UUID) ([]domain.ReviewEdit, error)
	GetLatestByDocument(ctx context.Context, documentID uuid.UUID) (*domain.Extraction, error)
}

type reviewService struct {
	extractionRepo port.ExtractionRepository
	editRepo       port.ReviewEditRepository
}

// NewReviewService creates a new ReviewService implementation.
func NewReviewService(extractionRepo port.ExtractionRepository, editRepo port.ReviewEditRepository) ReviewService {
	return &reviewService{
		extractionRepo: extractionRepo,
		editRepo:       editRepo,
	}
}

func (s *reviewService) SubmitReview(ctx context.Context, input *SubmitReviewInput) (*domain.Extraction, error) {
	var payload domain.ExtractionPayload
	if err := json.Unmarshal(input.UpdatedData, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidReviewData, err)
	}

	ex, err := s.extractionRepo.GetByID(ctx, input.ExtractionID)
	if err != nil {
		return nil, err
	}

	edit := &domain.ReviewEdit{
		ID:           uuid.New(),
		ExtractionID: ex.ID,
		OriginalData: ex.Data,
		UpdatedData:  input.UpdatedData,
		EditedBy:     input.EditedBy,
	}
	if err := s.editRepo.Create(ctx, edit); err != nil {
		return nil, err
	}

	// The corrected payload goes back through validation so a fixed extraction
	// can graduate out of FLAGGED/FAILED.
	ex.Data = input.UpdatedData
	ex.Status = validator.Validate(&payload)
	if err := s.extractionRepo.UpdateData(ctx, ex); err != nil {
		return nil, err
	}
	return ex, nil
}

func (s *reviewService) ListEdits(ctx context.Context, extractionID uuid.UUID) ([]domain.ReviewEdit, error) {
	if _, err := s.extractionRepo.GetByID(ctx, extractionID); err != nil {
		return nil, err
	}
	return s.editRepo.ListByExtraction(ctx, extractionID)
}

func (s *reviewService) GetLatestByDocument(ctx context.Context, documentID uuid.UUID) (*domain.Extraction, error) {
	return s.extractionRepo.GetLatestByDocument(ctx, documentID)
}
