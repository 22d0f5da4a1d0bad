package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"paperbridge/internal/domain"
	"paperbridge/internal/port"
)

type embeddingRepo struct {
	db *sqlx.DB
}

// NewEmbeddingRepo creates a new PostgreSQL-backed EmbeddingRepository. The
// embedding column is a pgvector vector; similarity search uses the cosine
// distance operator.
func NewEmbeddingRepo(db *sqlx.DB) port.EmbeddingRepository {
	return &embeddingRepo{db: db}
}

func (r *embeddingRepo) InsertBatch(ctx context.Context, embeddings []domain.Embedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("embeddingRepo.InsertBatch begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO embeddings (
			id, document_id, chunk_id, page_start, page_end, content, embedding, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("embeddingRepo.InsertBatch prepare: %w", err)
	}
	defer stmt.Close()

	for i := range embeddings {
		e := &embeddings[i]
		e.CreatedAt = now
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.DocumentID, e.ChunkID, e.PageStart, e.PageEnd,
			e.Content, e.Embedding, e.CreatedAt); err != nil {
			return fmt.Errorf("embeddingRepo.InsertBatch chunk %s: %w", e.ChunkID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("embeddingRepo.InsertBatch commit: %w", err)
	}
	return nil
}

func (r *embeddingRepo) DeleteByDocument(ctx context.Context, documentID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM embeddings WHERE document_id = $1", documentID)
	if err != nil {
		return 0, fmt.Errorf("embeddingRepo.DeleteByDocument: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("embeddingRepo.DeleteByDocument rows: %w", err)
	}
	return rows, nil
}

func (r *embeddingRepo) SearchSimilar(ctx context.Context, query pgvector.Vector, limit int, documentIDs []uuid.UUID) ([]domain.RetrievedChunk, error) {
	var chunks []domain.RetrievedChunk
	if len(documentIDs) == 0 {
		err := r.db.SelectContext(ctx, &chunks,
			`SELECT *, embedding <=> $1 AS distance FROM embeddings
			 ORDER BY distance ASC, chunk_id ASC LIMIT $2`,
			query, limit)
		if err != nil {
			return nil, fmt.Errorf("embeddingRepo.SearchSimilar: %w", err)
		}
		return chunks, nil
	}

	q, args, err := sqlx.In(
		`SELECT *, embedding <=> ? AS distance FROM embeddings
		 WHERE document_id IN (?)
		 ORDER BY distance ASC, chunk_id ASC LIMIT ?`,
		query, documentIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("embeddingRepo.SearchSimilar in: %w", err)
	}
	err = r.db.SelectContext(ctx, &chunks, r.db.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("embeddingRepo.SearchSimilar: %w", err)
	}
	return chunks, nil
}
