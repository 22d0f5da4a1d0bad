package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Document represents an uploaded source file and its derived metadata.
// The original bytes live in object storage under StorageKey; the row is
// written once after parsing succeeds.
type Document struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Filename       string    `db:"filename" json:"filename"`
	StorageKey     string    `db:"storage_key" json:"storage_key"`
	ChecksumSHA256 string    `db:"checksum_sha256" json:"checksum_sha256"`
	Version        int       `db:"version" json:"version"`
	TotalPages     int       `db:"total_pages" json:"total_pages"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentPage holds the extracted text of a single page. TextQualityScore is
// 1.0 for native PDF text and lower when the vision OCR fallback produced it.
type DocumentPage struct {
	ID               uuid.UUID `db:"id" json:"id"`
	DocumentID       uuid.UUID `db:"document_id" json:"document_id"`
	PageNumber       int       `db:"page_number" json:"page_number"`
	Text             string    `db:"text" json:"text"`
	TextQualityScore float64   `db:"text_quality_score" json:"text_quality_score"`
	PageImageKey     *string   `db:"page_image_key" json:"page_image_key"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Job is a unit of asynchronous work on a document. TaskMetadata carries
// per-step status for pipeline jobs and is empty for single-step jobs.
type Job struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	DocumentID   uuid.UUID       `db:"document_id" json:"document_id"`
	TaskType     TaskType        `db:"task_type" json:"task_type"`
	Status       JobStatus       `db:"status" json:"status"`
	ErrorMessage string          `db:"error_message" json:"error_message"`
	TaskMetadata json.RawMessage `db:"task_metadata" json:"task_metadata"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// PipelineStep records the outcome of one step of a pipeline job.
type PipelineStep struct {
	Status       StepStatus `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// PipelineMetadata is the structured task_metadata payload of a pipeline job.
type PipelineMetadata struct {
	Steps       map[string]PipelineStep `json:"steps"`
	StartedAt   *time.Time              `json:"started_at,omitempty"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
	FailedAt    *time.Time              `json:"failed_at,omitempty"`
}

// NewPipelineMetadata returns metadata with both steps queued.
func NewPipelineMetadata() *PipelineMetadata {
	return &PipelineMetadata{
		Steps: map[string]PipelineStep{
			string(TaskTypeExtract): {Status: StepStatusQueued},
			string(TaskTypeEmbed):   {Status: StepStatusQueued},
		},
	}
}

// Extraction stores one structured-data result for a document. The latest row
// by creation time is the active extraction consumed by export and review.
type Extraction struct {
	ID         uuid.UUID        `db:"id" json:"id"`
	DocumentID uuid.UUID        `db:"document_id" json:"document_id"`
	Data       json.RawMessage  `db:"data" json:"data"`
	Status     ValidationStatus `db:"status" json:"status"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// ReviewEdit is an append-only human correction of an extraction payload.
type ReviewEdit struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	ExtractionID uuid.UUID       `db:"extraction_id" json:"extraction_id"`
	OriginalData json.RawMessage `db:"original_data" json:"original_data"`
	UpdatedData  json.RawMessage `db:"updated_data" json:"updated_data"`
	EditedBy     string          `db:"edited_by" json:"edited_by"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Embedding is one chunk of a document's text together with its vector.
// ChunkID is derived deterministically as "p{page}-c{index}".
type Embedding struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	DocumentID uuid.UUID       `db:"document_id" json:"document_id"`
	ChunkID    string          `db:"chunk_id" json:"chunk_id"`
	PageStart  int             `db:"page_start" json:"page_start"`
	PageEnd    int             `db:"page_end" json:"page_end"`
	Content    string          `db:"content" json:"content"`
	Embedding  pgvector.Vector `db:"embedding" json:"-"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// RetrievedChunk is an embedding row annotated with its cosine distance to a
// query vector.
type RetrievedChunk struct {
	Embedding
	Distance float64 `db:"distance" json:"distance"`
}

// Citation ties an answer back to a retrieved chunk. Citations are a
// deterministic function of the retrieved set, never parsed from LLM prose.
type Citation struct {
	ChunkID    string    `json:"chunk_id"`
	DocumentID uuid.UUID `json:"document_id"`
	PageStart  int       `json:"page_start"`
	PageEnd    int       `json:"page_end"`
	Text       string    `json:"text"`
	Similarity float64   `json:"similarity"`
}

// Answer is the grounded response to a question.
type Answer struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}
