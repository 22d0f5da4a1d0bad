package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"paperbridge/internal/domain"
	"paperbridge/internal/port"
)

type extractionRepo struct {
	db *sqlx.DB
}

// NewExtractionRepo creates a new PostgreSQL-backed ExtractionRepository.
func NewExtractionRepo(db *sqlx.DB) port.ExtractionRepository {
	return &extractionRepo{db: db}
}

func (r *extractionRepo) Create(ctx context.Context, ex *domain.Extraction) error {
	now := time.Now().UTC()
	ex.CreatedAt = now
	ex.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO extractions (
			id, document_id, data, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		ex.ID, ex.DocumentID, ex.Data, ex.Status, ex.CreatedAt, ex.UpdatedAt)
	if err != nil {
		return fmt.Errorf("extractionRepo.Create: %w", err)
	}
	return nil
}

func (r *extractionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Extraction, error) {
	var ex domain.Extraction
	err := r.db.GetContext(ctx, &ex, "SELECT * FROM extractions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExtractionNotFound
		}
		return nil, fmt.Errorf("extractionRepo.GetByID: %w", err)
	}
	return &ex, nil
}

func (r *extractionRepo) GetLatestByDocument(ctx context.Context, documentID uuid.UUID) (*domain.Extraction, error) {
	var ex domain.Extraction
	err := r.db.GetContext(ctx, &ex,
		`SELECT * FROM extractions WHERE document_id = $1
		 ORDER BY created_at DESC LIMIT 1`, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExtractionNotFound
		}
		return nil, fmt.Errorf("extractionRepo.GetLatestByDocument: %w", err)
	}
	return &ex, nil
}

func (r *extractionRepo) UpdateData(ctx context.Context, ex *domain.Extraction) error {
	ex.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		"UPDATE extractions SET data = $1, status = $2, updated_at = $3 WHERE id = $4",
		ex.Data, ex.Status, ex.UpdatedAt, ex.ID)
	if err != nil {
		return fmt.Errorf("extractionRepo.UpdateData: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrExtractionNotFound
	}
	return nil
}
