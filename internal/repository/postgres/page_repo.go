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

type pageRepo struct {
	db *sqlx.DB
}

// NewPageRepo creates a new PostgreSQL-backed PageRepository.
func NewPageRepo(db *sqlx.DB) port.PageRepository {
	return &pageRepo{db: db}
}

func (r *pageRepo) Create(ctx context.Context, page *domain.DocumentPage) error {
	page.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO document_pages (
			id, document_id, page_number, text, text_quality_score, page_image_key, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		page.ID, page.DocumentID, page.PageNumber, page.Text,
		page.TextQualityScore, page.PageImageKey, page.CreatedAt)
	if err != nil {
		return fmt.Errorf("pageRepo.Create: %w", err)
	}
	return nil
}

func (r *pageRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.DocumentPage, error) {
	var pages []domain.DocumentPage
	err := r.db.SelectContext(ctx, &pages,
		`SELECT * FROM document_pages WHERE document_id = $1 ORDER BY page_number ASC`,
		documentID)
	if err != nil {
		return nil, fmt.Errorf("pageRepo.ListByDocument: %w", err)
	}
	return pages, nil
}
