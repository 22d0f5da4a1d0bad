package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paperbridge/internal/chunker"
	"paperbridge/internal/domain"
	"paperbridge/internal/service"
	"paperbridge/mocks"
)

type jobServiceMocks struct {
	jobRepo        *mocks.MockJobRepo
	docRepo        *mocks.MockDocumentRepo
	pageRepo       *mocks.MockPageRepo
	extractionRepo *mocks.MockExtractionRepo
	embeddingRepo  *mocks.MockEmbeddingRepo
	extractor      *mocks.MockExtractor
	embedder       *mocks.MockEmbedder
	email          *mocks.MockEmailSender
}

func setupJobService(t *testing.T) (*jobServiceMocks, service.JobService) {
	t.Helper()
	m := &jobServiceMocks{
		jobRepo:        new(mocks.MockJobRepo),
		docRepo:        new(mocks.MockDocumentRepo),
		pageRepo:       new(mocks.MockPageRepo),
		extractionRepo: new(mocks.MockExtractionRepo),
		embeddingRepo:  new(mocks.MockEmbeddingRepo),
		extractor:      new(mocks.MockExtractor),
		embedder:       new(mocks.MockEmbedder),
		email:          new(mocks.MockEmailSender),
	}

	c, err := chunker.New(50, 10, func(string) int { return 1 })
	require.NoError(t, err)

	svc := service.NewJobService(
		m.jobRepo, m.docRepo, m.pageRepo, m.extractionRepo, m.embeddingRepo,
		m.extractor, m.embedder, c,
		m.email, "reviewer@example.com", 100,
	)
	return m, svc
}

func goodPayload() *domain.ExtractionPayload {
	return &domain.ExtractionPayload{
		DocumentType: "invoice",
		Issuer:       "Acme Corp",
		Recipient:    "Globex Inc",
		TotalAmount:  100,
		Currency:     "USD",
		Summary:      "Hardware invoice for March",
		Confidence:   0.95,
	}
}

func page(docID uuid.UUID, n int, text string) domain.DocumentPage {
	return domain.DocumentPage{
		ID:         uuid.New(),
		DocumentID: docID,
		PageNumber: n,
		Text:       text,
	}
}

func TestTrigger_InvalidTaskType(t *testing.T) {
	_, svc := setupJobService(t)

	_, err := svc.Trigger(context.Background(), uuid.New(), domain.TaskType("transcode"))
	assert.ErrorIs(t, err, domain.ErrInvalidTaskType)
}

func TestTrigger_DocumentMissing(t *testing.T) {
	m, svc := setupJobService(t)
	docID := uuid.New()
	m.docRepo.On("GetByID", mock.Anything, docID).Return(nil, domain.ErrDocumentNotFound)

	_, err := svc.Trigger(context.Background(), docID, domain.TaskTypeExtract)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestTrigger_DuplicateActiveJob(t *testing.T) {
	m, svc := setupJobService(t)
	docID := uuid.New()
	m.docRepo.On("GetByID", mock.Anything, docID).Return(&domain.Document{ID: docID}, nil)
	m.jobRepo.On("CreateQueued", mock.Anything, mock.AnythingOfType("*domain.Job")).
		Return(domain.ErrJobAlreadyActive)

	_, err := svc.Trigger(context.Background(), docID, domain.TaskTypeEmbed)
	assert.ErrorIs(t, err, domain.ErrJobAlreadyActive)
}

func TestTrigger_PipelineSeedsStepMetadata(t *testing.T) {
	m, svc := setupJobService(t)
	docID := uuid.New()
	m.docRepo.On("GetByID", mock.Anything, docID).Return(&domain.Document{ID: docID}, nil)
	m.jobRepo.On("CreateQueued", mock.Anything, mock.AnythingOfType("*domain.Job")).Return(nil)

	job, err := svc.Trigger(context.Background(), docID, domain.TaskTypePipeline)

	require.NoError(t, err)
	var meta domain.PipelineMetadata
	require.NoError(t, json.Unmarshal(job.TaskMetadata, &meta))
	assert.Equal(t, domain.StepStatusQueued, meta.Steps["extract"].Status)
	assert.Equal(t, domain.StepStatusQueued, meta.Steps["embed"].Status)
}

func TestRunJob_ExtractPassedEndsDone(t *testing.T) {
	m, svc := setupJobService(t)
	docID := uuid.New()
	job := &domain.Job{ID: uuid.New(), DocumentID: docID, TaskType: domain.TaskTypeExtract}

	m.pageRepo.On("ListByDocument", mock.Anything, docID).
		Return([]domain.DocumentPage{page(docID, 1, "hello"), page(docID, 2, "world")}, nil)
	m.extractor.On("Extract", mock.Anything, "hello\n\nworld").Return(goodPayload(), nil)
	m.extractionRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Extraction")).Return(nil)
	m.jobRepo.On("Finish", mock.Anything, job).Return(nil)

	svc.RunJob(context.Background(), job)

	assert.Equal(t, domain.JobStatusDone, job.Status)
	m.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunJob_ExtractFlaggedEndsNeedsReviewAndNotifies(t *testing.T) {
	m, svc := setupJobService(t)
	docID := uuid.New()
	job := &domain.Job{ID: uuid.New(), DocumentID: docID, TaskType: domain.TaskTypeExtract}

	payload := goodPayload()
	payload.Confidence = 0.3

	m.pageRepo.On("ListByDocument", mock.Anything, docID).
		Return([]domain.DocumentPage{page(docID, 1, "scan text")}, nil)
	m.extractor.On("Extract", mock.Anything, mock.Anything).Return(payload, nil)
	m.extractionRepo.On("Create", mock.Anything, mock.MatchedBy(func(ex *domain.Extraction) bool {
		return ex.Status == domain.ValidationStatusFlagged && ex.DocumentID == docID
	})).Return(nil)
	m.jobRepo.On("Finish", mock.Anything, job).Return(nil)
	m.docRepo.On("GetByID", mock.Anything, docID).
		Return(&domain.Document{ID: docID, Filename: "scan.pdf", Version: 1}, nil)
	m.email.On("Send", mock.Anything, "reviewer@example.com", mock.Anything, mock.Anything).Return(nil)

	svc.RunJob(context.Background(), job)

	assert.Equal(t, domain.JobStatusNeedsReview, job.Status)
	m.email.AssertExpectations(t)
}

func TestRunJob_ExtractFailedValidationEndsNeedsReview(t *testing.T) {
	m, svc := setupJobService(t)
	docID := uuid.New()
	job := &domain.Job{ID: uuid.New(), DocumentID: docID, TaskType: domain.TaskTypeExtract}

	payload := goodPayload()
	payload.TotalAmount = -1

	m.pageRepo.On("ListByDocument", mock.Anything, docID).
		Return([]domain.DocumentPage{page(docID, 1, "credit note")}, nil)
	m.extractor.On("Extract", mock.Anything, mock.Anything).Return(payload, nil)
	m.extractionRepo.On("Create", mock.Anything, mock.MatchedBy(func(ex *domain.Extraction) bool {
		return ex.Status == domain.ValidationStatusFailed && ex.DocumentID == docID
	})).Return(nil)
	m.jobRepo.On("Finish", mock.Anything, job).Return(nil)
	m.docRepo.On("GetByID", mock.Anything, docID).
		Return(&domain.Document{ID: docID, Filename: "note.pdf", Version: 1}, nil)
	m.email.On("Send", mock.Anything, "reviewer@example.com", mock.Anything, mock.Anything).Return(nil)

	svc.RunJob(context.Background(), job)

	// The extraction row is persisted even when validation fails outright; the
	// job routes to a human instead of the failed state.
	assert.Equal(t, domain.JobStatusNeedsReview, job.Status)
	assert.Empty(t, job.ErrorMessage)
	m.extractionRepo.AssertExpectations(t)
	m.email.AssertExpectations(t)
}

func TestRunJob_ExtractorErrorFailsJob(t *testing.T) {
	m, svc := setupJobService(t)
	docID := uuid.New()
	job := &domain.Job{ID: uuid.New(), DocumentID: docID, TaskType: domain.TaskTypeExtract}

	m.pageRepo.On("ListByDocument", mock.Anything, docID).
		Return([]domain.DocumentPage{page(docID, 1, "text")}, nil)
	m.extractor.On("Extract", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)
	m.jobRepo.On("Finish", mock.Anything, job).Return(nil)

	svc.RunJob(context.Background(), job)

	assert.Equal(t, domain.JobStatusFailed, job.Status)
	assert.NotEmpty(t, job.ErrorMessage)
}

func TestRunJob_ExtractNoPagesFails(t *testing.T) {
	m, svc := setupJobService(t)
	docID := uuid.New()
	job := &domain.Job{ID: uuid.New(), DocumentID: docID, TaskType: domain.TaskTypeExtract}

	m.pageRepo.On("ListByDocument", mock.Anything, docID).Return([]domain.DocumentPage{}, nil)
	m.jobRepo.On("Finish", mock.Anything, job).Return(nil)

	svc.RunJob(context.Background(), job)

	assert.Equal(t, domain.JobStatusFailed, job.Status)
}

func TestRunJob_EmbedRebuildsChunks(t *testing.T) {
	m, svc := setupJobService(t)
	docID := uuid.New()
	job := &domain.Job{ID: uuid.New(), DocumentID: docID, TaskType: domain.TaskTypeEmbed}

	m.pageRepo.On("ListByDocument", mock.Anything, docID).
		Return([]domain.DocumentPage{page(docID, 1, "alpha beta"), page(docID, 2, "gamma")}, nil)
	m.embedder.On("Embed", mock.Anything, []string{"alpha beta", "gamma"}).
		Return([][]float32{{0.1, 0.2}, {0.3, 0.4}}, nil)
	m.embeddingRepo.On("DeleteByDocument", mock.Anything, docID).Return(int64(2), nil)
	m.embeddingRepo.On("InsertBatch", mock.Anything, mock.MatchedBy(func(batch []domain.Embedding) bool {
		return len(batch) == 2 &&
			batch[0].ChunkID == "p1-c0" && batch[0].PageStart == 1 && batch[0].PageEnd == 1 &&
			batch[1].ChunkID == "p2-c0" && batch[1].PageStart == 2
	})).Return(nil)
	m.jobRepo.On("Finish", mock.Anything, job).Return(nil)

	svc.RunJob(context.Background(), job)

	assert.Equal(t, domain.JobStatusDone, job.Status)
	m.embeddingRepo.AssertExpectations(t)
}

func TestRunJob_EmbedProviderFailureKeepsOldIndex(t *testing.T) {
	m, svc := setupJobService(t)
	docID := uuid.New()
	job := &domain.Job{ID: uuid.New(), DocumentID: docID, TaskType: domain.TaskTypeEmbed}

	m.pageRepo.On("ListByDocument", mock.Anything, docID).
		Return([]domain.DocumentPage{page(docID, 1, "alpha")}, nil)
	m.embedder.On("Embed", mock.Anything, mock.Anything).Return(nil, assert.AnError)
	m.jobRepo.On("Finish", mock.Anything, job).Return(nil)

	svc.RunJob(context.Background(), job)

	assert.Equal(t, domain.JobStatusFailed, job.Status)
	m.embeddingRepo.AssertNotCalled(t, "DeleteByDocument", mock.Anything, mock.Anything)
}

func TestRunJob_EmbedNoTextEndsDoneWithZeroChunks(t *testing.T) {
	m, svc := setupJobService(t)
	docID := uuid.New()
	job := &domain.Job{ID: uuid.New(), DocumentID: docID, TaskType: domain.TaskTypeEmbed}

	m.pageRepo.On("ListByDocument", mock.Anything, docID).
		Return([]domain.DocumentPage{page(docID, 1, "   "), page(docID, 2, "")}, nil)
	m.jobRepo.On("Finish", mock.Anything, job).Return(nil)

	svc.RunJob(context.Background(), job)

	assert.Equal(t, domain.JobStatusDone, job.Status)
	m.embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
	m.embeddingRepo.AssertNotCalled(t, "DeleteByDocument", mock.Anything, mock.Anything)
	m.embeddingRepo.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestRunJob_PipelineRecordsSteps(t *testing.T) {
	m, svc := setupJobService(t)
	docID := uuid.New()
	job := &domain.Job{ID: uuid.New(), DocumentID: docID, TaskType: domain.TaskTypePipeline}

	m.pageRepo.On("ListByDocument", mock.Anything, docID).
		Return([]domain.DocumentPage{page(docID, 1, "alpha beta")}, nil)
	m.extractor.On("Extract", mock.Anything, mock.Anything).Return(goodPayload(), nil)
	m.extractionRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Extraction")).Return(nil)
	m.embedder.On("Embed", mock.Anything, mock.Anything).
		Return([][]float32{{0.1}}, nil)
	m.embeddingRepo.On("DeleteByDocument", mock.Anything, docID).Return(int64(0), nil)
	m.embeddingRepo.On("InsertBatch", mock.Anything, mock.Anything).Return(nil)
	m.jobRepo.On("UpdateMetadata", mock.Anything, job).Return(nil)
	m.jobRepo.On("Finish", mock.Anything, job).Return(nil)

	svc.RunJob(context.Background(), job)

	assert.Equal(t, domain.JobStatusDone, job.Status)
	var meta domain.PipelineMetadata
	require.NoError(t, json.Unmarshal(job.TaskMetadata, &meta))
	assert.Equal(t, domain.StepStatusDone, meta.Steps["extract"].Status)
	assert.Equal(t, domain.StepStatusDone, meta.Steps["embed"].Status)
	assert.NotNil(t, meta.CompletedAt)
}

func TestRunJob_PipelineExtractFailureSkipsEmbed(t *testing.T) {
	m, svc := setupJobService(t)
	docID := uuid.New()
	job := &domain.Job{ID: uuid.New(), DocumentID: docID, TaskType: domain.TaskTypePipeline}

	m.pageRepo.On("ListByDocument", mock.Anything, docID).
		Return([]domain.DocumentPage{page(docID, 1, "alpha")}, nil)
	m.extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, assert.AnError)
	m.jobRepo.On("UpdateMetadata", mock.Anything, job).Return(nil)
	m.jobRepo.On("Finish", mock.Anything, job).Return(nil)

	svc.RunJob(context.Background(), job)

	assert.Equal(t, domain.JobStatusFailed, job.Status)
	var meta domain.PipelineMetadata
	require.NoError(t, json.Unmarshal(job.TaskMetadata, &meta))
	assert.Equal(t, domain.StepStatusFailed, meta.Steps["extract"].Status)
	assert.Equal(t, domain.StepStatusSkipped, meta.Steps["embed"].Status)
	assert.NotNil(t, meta.FailedAt)
	m.embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
}
