package repository

import "context"

// ReportCache stores the latest serialized report per roadmap. Put overwrites
// any previous entry; Get returns ErrNotFound when nothing was stored.
type ReportCache interface {
	Put(ctx context.Context, roadmapID string, data []byte) error
	Get(ctx context.Context, roadmapID string) ([]byte, error)
}
