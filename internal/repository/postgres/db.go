// Package postgres implements the repository ports on PostgreSQL through sqlx,
// using the pgx stdlib driver. The embeddings repo additionally relies on the
// pgvector extension being installed.
package postgres

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"paperbridge/internal/config"
)

// NewDB opens a connection pool sized from the database configuration. Connect
// pings the database, so a bad DSN fails here rather than on first query.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres pool: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	return db, nil
}
