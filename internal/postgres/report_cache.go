// Package postgres stores cached reports in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rpggio/pmbot/internal/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS pmbot_reports (
    roadmap_id TEXT PRIMARY KEY,
    data JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewPool opens a connection pool and verifies it with a ping.
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

var _ repository.ReportCache = (*ReportCache)(nil)

// ReportCache implements repository.ReportCache for PostgreSQL.
type ReportCache struct {
	pool *pgxpool.Pool
}

// NewReportCache creates the reports table if needed.
func NewReportCache(ctx context.Context, pool *pgxpool.Pool) (*ReportCache, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create reports table: %w", err)
	}
	return &ReportCache{pool: pool}, nil
}

// Put replaces the roadmap's cached report.
func (c *ReportCache) Put(ctx context.Context, roadmapID string, data []byte) error {
	if roadmapID == "" {
		return fmt.Errorf("%w: roadmap id is required", repository.ErrInvalidInput)
	}
	_, err := c.pool.Exec(ctx, `
		INSERT INTO pmbot_reports (roadmap_id, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (roadmap_id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`, roadmapID, string(data))
	if err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}
	return nil
}

// Get returns the roadmap's cached report.
func (c *ReportCache) Get(ctx context.Context, roadmapID string) ([]byte, error) {
	var data string
	err := c.pool.QueryRow(ctx, `SELECT data::text FROM pmbot_reports WHERE roadmap_id = $1`, roadmapID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return []byte(data), nil
}
