package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/pmbot/internal/repository"
)

var _ repository.ReportCache = (*ReportCache)(nil)

// ReportCache implements repository.ReportCache for SQLite
type ReportCache struct {
	db *DB
}

// NewReportCache creates a new ReportCache
func NewReportCache(db *DB) *ReportCache {
	return &ReportCache{db: db}
}

// Put stores data as the latest report for the roadmap, replacing any
// previous one.
func (c *ReportCache) Put(ctx context.Context, roadmapID string, data []byte) error {
	if roadmapID == "" {
		return fmt.Errorf("%w: roadmap id is required", repository.ErrInvalidInput)
	}

	query := `
		INSERT INTO reports (roadmap_id, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(roadmap_id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`

	if _, err := c.db.ExecContext(ctx, query, roadmapID, data); err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}

	return nil
}

// Get returns the latest report stored for the roadmap
func (c *ReportCache) Get(ctx context.Context, roadmapID string) ([]byte, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx, `SELECT data FROM reports WHERE roadmap_id = ?`, roadmapID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return data, nil
}
