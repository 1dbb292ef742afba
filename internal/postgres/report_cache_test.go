package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rpggio/pmbot/internal/repository"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *ReportCache {
	t.Helper()
	dsn := os.Getenv("PMBOT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PMBOT_TEST_POSTGRES_DSN not set")
	}
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	cache, err := NewReportCache(ctx, pool)
	require.NoError(t, err)
	return cache
}

func TestReportCache_PutGet(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	roadmapID := fmt.Sprintf("test-%d", time.Now().UnixNano())

	_, err := cache.Get(ctx, roadmapID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, cache.Put(ctx, roadmapID, []byte(`{"run_id": "a"}`)))
	require.NoError(t, cache.Put(ctx, roadmapID, []byte(`{"run_id": "b"}`)))

	got, err := cache.Get(ctx, roadmapID)
	require.NoError(t, err)
	require.JSONEq(t, `{"run_id": "b"}`, string(got))

	_, err = cache.pool.Exec(ctx, `DELETE FROM pmbot_reports WHERE roadmap_id = $1`, roadmapID)
	require.NoError(t, err)
}

func TestReportCache_RequiresRoadmap(t *testing.T) {
	cache := &ReportCache{}
	err := cache.Put(context.Background(), "", []byte(`{}`))
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}
