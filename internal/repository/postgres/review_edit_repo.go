package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"paperbridge/internal/domain"
	"paperbridge/internal/port"
)

type reviewEditRepo struct {
	db *sqlx.DB
}

// NewReviewEditRepo creates a new PostgreSQL-backed ReviewEditRepository.
func NewReviewEditRepo(db *sqlx.DB) port.ReviewEditRepository {
	return &reviewEditRepo{db: db}
}

func (r *reviewEditRepo) Create(ctx context.Context, edit *domain.ReviewEdit) error {
	edit.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO review_edits (
			id, extraction_id, original_data, updated_data, edited_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		edit.ID, edit.ExtractionID, edit.OriginalData, edit.UpdatedData,
		edit.EditedBy, edit.CreatedAt)
	if err != nil {
		return fmt.Errorf("reviewEditRepo.Create: %w", err)
	}
	return nil
}

func (r *reviewEditRepo) ListByExtraction(ctx context.Context, extractionID uuid.UUID) ([]domain.ReviewEdit, error) {
	var edits []domain.ReviewEdit
	err := r.db.SelectContext(ctx, &edits,
		`SELECT * FROM review_edits WHERE extraction_id = $1 ORDER BY created_at ASC`,
		extractionID)
	if err != nil {
		return nil, fmt.Errorf("reviewEditRepo.ListByExtraction: %w", err)
	}
	return edits, nil
}
