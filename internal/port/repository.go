package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"paperbridge/internal/domain"
)

// DocumentRepository defines the contract for document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	// GetByChecksum returns the highest-version document with the given
	// checksum, or domain.ErrDocumentNotFound.
	GetByChecksum(ctx context.Context, checksum string) (*domain.Document, error)
	// NextVersion returns 1 + the highest version recorded for the filename,
	// or 1 when the filename is new.
	NextVersion(ctx context.Context, filename string) (int, error)
	List(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PageRepository defines the contract for document page persistence.
type PageRepository interface {
	Create(ctx context.Context, page *domain.DocumentPage) error
	// ListByDocument returns the document's pages ordered by page number.
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.DocumentPage, error)
}

// JobRepository defines the contract for job persistence. CreateQueued must
// surface domain.ErrJobAlreadyActive when a queued or processing job already
// exists for the same (document, task type).
type JobRepository interface {
	CreateQueued(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	// ClaimQueued atomically flips up to limit queued jobs to processing and
	// returns them, oldest first.
	ClaimQueued(ctx context.Context, limit int) ([]domain.Job, error)
	// Finish persists a terminal status together with the error message and
	// step metadata accumulated by the job body.
	Finish(ctx context.Context, job *domain.Job) error
	UpdateMetadata(ctx context.Context, job *domain.Job) error
}

// ExtractionRepository defines the contract for extraction persistence.
type ExtractionRepository interface {
	Create(ctx context.Context, ex *domain.Extraction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Extraction, error)
	// GetLatestByDocument returns the newest extraction for the document.
	GetLatestByDocument(ctx context.Context, documentID uuid.UUID) (*domain.Extraction, error)
	UpdateData(ctx context.Context, ex *domain.Extraction) error
}

// ReviewEditRepository defines the contract for append-only review edits.
type ReviewEditRepository interface {
	Create(ctx context.Context, edit *domain.ReviewEdit) error
	ListByExtraction(ctx context.Context, extractionID uuid.UUID) ([]domain.ReviewEdit, error)
}

// EmbeddingRepository defines the contract for chunk/vector persistence and
// similarity search.
type EmbeddingRepository interface {
	// InsertBatch inserts one batch of embeddings.
	InsertBatch(ctx context.Context, embeddings []domain.Embedding) error
	// DeleteByDocument removes every chunk row for the document. Used by the
	// embed job before inserting a freshly computed set.
	DeleteByDocument(ctx context.Context, documentID uuid.UUID) (int64, error)
	// SearchSimilar returns up to limit chunks ordered by cosine distance to
	// the query vector (ties broken by chunk_id), optionally restricted to the
	// given document IDs.
	SearchSimilar(ctx context.Context, query pgvector.Vector, limit int, documentIDs []uuid.UUID) ([]domain.RetrievedChunk, error)
}
