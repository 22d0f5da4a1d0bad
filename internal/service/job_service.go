package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"paperbridge/internal/chunker"
	"paperbridge/internal/domain"
	"paperbridge/internal/port"
	"paperbridge/internal/validator"
)

// JobService defines the async job contract: triggering work on a document and
// executing claimed jobs.
type JobService interface {
	Trigger(ctx context.Context, documentID uuid.UUID, taskType domain.TaskType) (*domain.Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	// RunJob executes a claimed job to a terminal status. It never returns an
	// error: failures are converted into the job's failed state.
	RunJob(ctx context.Context, job *domain.Job)
}

type jobService struct {
	jobRepo        port.JobRepository
	docRepo        port.DocumentRepository
	pageRepo       port.PageRepository
	extractionRepo port.ExtractionRepository
	embeddingRepo  port.EmbeddingRepository
	extractor      port.Extractor
	embedder       port.Embedder
	chunker        *chunker.Chunker
	email          port.EmailSender
	reviewerTo     string
	embedBatchSize int
}

// NewJobService creates a new JobService implementation. email may be nil,
// which disables needs-review notifications.
func NewJobService(
	jobRepo port.JobRepository,
	docRepo port.DocumentRepository,
	pageRepo port.PageRepository,
	extractionRepo port.ExtractionRepository,
	embeddingRepo port.EmbeddingRepository,
	extractor port.Extractor,
	embedder port.Embedder,
	textChunker *chunker.Chunker,
	email port.EmailSender,
	reviewerTo string,
	embedBatchSize int,
) JobService {
	if embedBatchSize <= 0 {
		embedBatchSize = 100
	}
	return &jobService{
		jobRepo:        jobRepo,
		docRepo:        docRepo,
		pageRepo:       pageRepo,
		extractionRepo: extractionRepo,
		embeddingRepo:  embeddingRepo,
		extractor:      extractor,
		embedder:       embedder,
		chunker:        textChunker,
		email:          email,
		reviewerTo:     reviewerTo,
		embedBatchSize: embedBatchSize,
	}
}

func (s *jobService) Trigger(ctx context.Context, documentID uuid.UUID, taskType domain.TaskType) (*domain.Job, error) {
	if !domain.ValidTaskTypes[taskType] {
		return nil, domain.ErrInvalidTaskType
	}
	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	job := &domain.Job{
		ID:         uuid.New(),
		DocumentID: documentID,
		TaskType:   taskType,
	}
	if taskType == domain.TaskTypePipeline {
		meta, err := json.Marshal(domain.NewPipelineMetadata())
		if err != nil {
			return nil, fmt.Errorf("jobService.Trigger: %w", err)
		}
		job.TaskMetadata = meta
	}

	if err := s.jobRepo.CreateQueued(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	return s.jobRepo.GetByID(ctx, id)
}

func (s *jobService) RunJob(ctx context.Context, job *domain.Job) {
	log.Printf("jobService.RunJob: job %s (%s) for document %s", job.ID, job.TaskType, job.DocumentID)

	var status domain.JobStatus
	var err error
	switch job.TaskType {
	case domain.TaskTypeExtract:
		status, err = s.runExtract(ctx, job.DocumentID)
	case domain.TaskTypeEmbed:
		status, err = s.runEmbed(ctx, job.DocumentID)
	case domain.TaskTypePipeline:
		status, err = s.runPipeline(ctx, job)
	default:
		err = domain.ErrInvalidTaskType
	}

	job.Status = status
	if err != nil {
		job.Status = domain.JobStatusFailed
		job.ErrorMessage = err.Error()
		log.Printf("jobService.RunJob: job %s failed: %v", job.ID, err)
	}

	if finishErr := s.jobRepo.Finish(ctx, job); finishErr != nil {
		log.Printf("jobService.RunJob: persisting terminal status for job %s failed: %v", job.ID, finishErr)
		return
	}
	log.Printf("jobService.RunJob: job %s finished with status %s", job.ID, job.Status)

	if job.Status == domain.JobStatusNeedsReview {
		s.notifyReview(ctx, job)
	}
}

// runExtract reads the document's parsed pages, extracts structured data and
// persists the extraction. Validation decides between done and needs_review.
func (s *jobService) runExtract(ctx context.Context, documentID uuid.UUID) (domain.JobStatus, error) {
	pages, err := s.pageRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return domain.JobStatusFailed, err
	}
	if len(pages) == 0 {
		return domain.JobStatusFailed, fmt.Errorf("document %s has no parsed pages", documentID)
	}

	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	fullText := strings.Join(texts, "\n\n")

	payload, err := s.extractor.Extract(ctx, fullText)
	if err != nil {
		return domain.JobStatusFailed, err
	}

	status := validator.Validate(payload)
	data, err := payload.Marshal()
	if err != nil {
		return domain.JobStatusFailed, fmt.Errorf("serializing extraction: %w", err)
	}

	extraction := &domain.Extraction{
		ID:         uuid.New(),
		DocumentID: documentID,
		Data:       data,
		Status:     status,
	}
	if err := s.extractionRepo.Create(ctx, extraction); err != nil {
		return domain.JobStatusFailed, err
	}

	if status == domain.ValidationStatusPassed {
		return domain.JobStatusDone, nil
	}
	return domain.JobStatusNeedsReview, nil
}

// runEmbed rebuilds the document's chunk vectors from scratch. All vectors are
// computed before the old set is deleted, so a provider failure leaves the
// previous index intact.
func (s *jobService) runEmbed(ctx context.Context, documentID uuid.UUID) (domain.JobStatus, error) {
	pages, err := s.pageRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return domain.JobStatusFailed, err
	}

	embeddings := buildChunks(documentID, pages, s.chunker)
	if len(embeddings) == 0 {
		log.Printf("jobService.runEmbed: document %s produced no chunks", documentID)
		return domain.JobStatusDone, nil
	}

	for start := 0; start < len(embeddings); start += s.embedBatchSize {
		end := start + s.embedBatchSize
		if end > len(embeddings) {
			end = len(embeddings)
		}
		batch := embeddings[start:end]

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].Content
		}
		vectors, err := s.embedder.Embed(ctx, texts)
		if err != nil {
			return domain.JobStatusFailed, err
		}
		for i := range batch {
			batch[i].Embedding = pgvector.NewVector(vectors[i])
		}
	}

	deleted, err := s.embeddingRepo.DeleteByDocument(ctx, documentID)
	if err != nil {
		return domain.JobStatusFailed, err
	}
	if deleted > 0 {
		log.Printf("jobService.runEmbed: replaced %d existing chunks for document %s", deleted, documentID)
	}

	for start := 0; start < len(embeddings); start += s.embedBatchSize {
		end := start + s.embedBatchSize
		if end > len(embeddings) {
			end = len(embeddings)
		}
		if err := s.embeddingRepo.InsertBatch(ctx, embeddings[start:end]); err != nil {
			return domain.JobStatusFailed, err
		}
	}
	return domain.JobStatusDone, nil
}

// runPipeline runs the extract and embed bodies in order under a single job,
// recording per-step outcomes in the job's task metadata.
func (s *jobService) runPipeline(ctx context.Context, job *domain.Job) (domain.JobStatus, error) {
	meta := domain.NewPipelineMetadata()
	now := time.Now().UTC()
	meta.StartedAt = &now

	s.setStep(ctx, job, meta, domain.TaskTypeExtract, domain.StepStatusProcessing, "")
	extractStatus, err := s.runExtract(ctx, job.DocumentID)
	if err != nil {
		s.setStep(ctx, job, meta, domain.TaskTypeExtract, domain.StepStatusFailed, err.Error())
		s.setStep(ctx, job, meta, domain.TaskTypeEmbed, domain.StepStatusSkipped, "")
		s.finishPipelineMeta(job, meta, true)
		return domain.JobStatusFailed, err
	}
	s.setStep(ctx, job, meta, domain.TaskTypeExtract, domain.StepStatusDone, "")

	s.setStep(ctx, job, meta, domain.TaskTypeEmbed, domain.StepStatusProcessing, "")
	if _, err := s.runEmbed(ctx, job.DocumentID); err != nil {
		s.setStep(ctx, job, meta, domain.TaskTypeEmbed, domain.StepStatusFailed, err.Error())
		s.finishPipelineMeta(job, meta, true)
		return domain.JobStatusFailed, err
	}
	s.setStep(ctx, job, meta, domain.TaskTypeEmbed, domain.StepStatusDone, "")
	s.finishPipelineMeta(job, meta, false)

	// A flagged or failed extraction still needs a human even when embedding
	// succeeded afterwards.
	if extractStatus == domain.JobStatusNeedsReview {
		return domain.JobStatusNeedsReview, nil
	}
	return domain.JobStatusDone, nil
}

// setStep updates one pipeline step and persists the metadata so pollers see
// intermediate progress.
func (s *jobService) setStep(ctx context.Context, job *domain.Job, meta *domain.PipelineMetadata, step domain.TaskType, status domain.StepStatus, errMsg string) {
	now := time.Now().UTC()
	meta.Steps[string(step)] = domain.PipelineStep{
		Status:       status,
		ErrorMessage: errMsg,
		UpdatedAt:    &now,
	}

	data, err := json.Marshal(meta)
	if err != nil {
		log.Printf("jobService.setStep: marshaling metadata for job %s: %v", job.ID, err)
		return
	}
	job.TaskMetadata = data
	if err := s.jobRepo.UpdateMetadata(ctx, job); err != nil {
		log.Printf("jobService.setStep: persisting metadata for job %s: %v", job.ID, err)
	}
}

func (s *jobService) finishPipelineMeta(job *domain.Job, meta *domain.PipelineMetadata, failed bool) {
	now := time.Now().UTC()
	if failed {
		meta.FailedAt = &now
	} else {
		meta.CompletedAt = &now
	}
	if data, err := json.Marshal(meta); err == nil {
		job.TaskMetadata = data
	}
}

func (s *jobService) notifyReview(ctx context.Context, job *domain.Job) {
	if s.email == nil || s.reviewerTo == "" {
		return
	}
	doc, err := s.docRepo.GetByID(ctx, job.DocumentID)
	if err != nil {
		log.Printf("jobService.notifyReview: looking up document %s: %v", job.DocumentID, err)
		return
	}

	subject := fmt.Sprintf("Extraction needs review: %s", doc.Filename)
	body := buildReviewHTML(doc, job)
	if err := s.email.Send(ctx, s.reviewerTo, subject, body); err != nil {
		log.Printf("jobService.notifyReview: sending review email for job %s: %v", job.ID, err)
	}
}

func buildReviewHTML(doc *domain.Document, job *domain.Job) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Extraction needs review</h2>
  <p>The %s job for <strong>%s</strong> (version %d) finished but the extracted data did not pass validation.</p>
  <p>Document ID: <code>%s</code><br>Job ID: <code>%s</code></p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">PaperBridge - Document Processing</p>
</body>
</html>`, job.TaskType, doc.Filename, doc.Version, doc.ID, job.ID)
}

// buildChunks splits each page independently and assigns deterministic chunk
// IDs of the form p{page}-c{index}.
func buildChunks(documentID uuid.UUID, pages []domain.DocumentPage, c *chunker.Chunker) []domain.Embedding {
	var embeddings []domain.Embedding
	for _, page := range pages {
		for i, content := range c.Chunk(page.Text) {
			embeddings = append(embeddings, domain.Embedding{
				ID:         uuid.New(),
				DocumentID: documentID,
				ChunkID:    fmt.Sprintf("p%d-c%d", page.PageNumber, i),
				PageStart:  page.PageNumber,
				PageEnd:    page.PageNumber,
				Content:    content,
			})
		}
	}
	return embeddings
}
