package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paperbridge/internal/domain"
	"paperbridge/internal/service"
	"paperbridge/mocks"
)

func setupReviewService() (*mocks.MockExtractionRepo, *mocks.MockReviewEditRepo, service.ReviewService) {
	extractionRepo := new(mocks.MockExtractionRepo)
	editRepo := new(mocks.MockReviewEditRepo)
	svc := service.NewReviewService(extractionRepo, editRepo)
	return extractionRepo, editRepo, svc
}

func payloadJSON(t *testing.T, p *domain.ExtractionPayload) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	return data
}

func TestSubmitReview_InvalidJSON(t *testing.T) {
	_, _, svc := setupReviewService()

	_, err := svc.SubmitReview(context.Background(), &service.SubmitReviewInput{
		ExtractionID: uuid.New(),
		UpdatedData:  json.RawMessage(`{"document_type": 42}`),
		EditedBy:     "alice",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReviewData)
}

func TestSubmitReview_ExtractionMissing(t *testing.T) {
	extractionRepo, _, svc := setupReviewService()
	id := uuid.New()
	extractionRepo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrExtractionNotFound)

	_, err := svc.SubmitReview(context.Background(), &service.SubmitReviewInput{
		ExtractionID: id,
		UpdatedData:  payloadJSON(t, goodPayload()),
		EditedBy:     "alice",
	})
	assert.ErrorIs(t, err, domain.ErrExtractionNotFound)
}

func TestSubmitReview_AppendsEditAndRevalidates(t *testing.T) {
	extractionRepo, editRepo, svc := setupReviewService()

	original := payloadJSON(t, &domain.ExtractionPayload{
		DocumentType: "invoice",
		Currency:     "USD",
		Summary:      "Low confidence extraction",
		Confidence:   0.2,
	})
	ex := &domain.Extraction{
		ID:         uuid.New(),
		DocumentID: uuid.New(),
		Data:       original,
		Status:     domain.ValidationStatusFlagged,
	}
	corrected := payloadJSON(t, goodPayload())

	extractionRepo.On("GetByID", mock.Anything, ex.ID).Return(ex, nil)
	editRepo.On("Create", mock.Anything, mock.MatchedBy(func(edit *domain.ReviewEdit) bool {
		return edit.ExtractionID == ex.ID &&
			string(edit.OriginalData) == string(original) &&
			string(edit.UpdatedData) == string(corrected) &&
			edit.EditedBy == "alice"
	})).Return(nil)
	extractionRepo.On("UpdateData", mock.Anything, ex).Return(nil)

	updated, err := svc.SubmitReview(context.Background(), &service.SubmitReviewInput{
		ExtractionID: ex.ID,
		UpdatedData:  corrected,
		EditedBy:     "alice",
	})

	require.NoError(t, err)
	// A corrected payload that passes validation graduates out of FLAGGED.
	assert.Equal(t, domain.ValidationStatusPassed, updated.Status)
	assert.Equal(t, string(corrected), string(updated.Data))
	editRepo.AssertExpectations(t)
}

func TestListEdits_RequiresExtraction(t *testing.T) {
	extractionRepo, editRepo, svc := setupReviewService()
	id := uuid.New()
	extractionRepo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrExtractionNotFound)

	_, err := svc.ListEdits(context.Background(), id)

	assert.ErrorIs(t, err, domain.ErrExtractionNotFound)
	editRepo.AssertNotCalled(t, "ListByExtraction", mock.Anything, mock.Anything)
}

func TestListEdits_ReturnsHistory(t *testing.T) {
	extractionRepo, editRepo, svc := setupReviewService()
	id := uuid.New()
	history := []domain.ReviewEdit{{ID: uuid.New(), ExtractionID: id, EditedBy: "alice"}}

	extractionRepo.On("GetByID", mock.Anything, id).Return(&domain.Extraction{ID: id}, nil)
	editRepo.On("ListByExtraction", mock.Anything, id).Return(history, nil)

	edits, err := svc.ListEdits(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, history, edits)
}
