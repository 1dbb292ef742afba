package report

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFanOut_PreservesInputOrder(t *testing.T) {
	items := []int{5, 1, 4, 2, 3}
	results := fanOut(context.Background(), 3, items, func(ctx context.Context, n int) (int, error) {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10, nil
	})
	require.Len(t, results, len(items))
	for i, n := range items {
		require.NoError(t, results[i].err)
		require.Equal(t, n*10, results[i].value)
	}
}

func TestFanOut_IsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	results := fanOut(context.Background(), 2, []string{"ok", "fail", "panic", "ok"}, func(ctx context.Context, s string) (string, error) {
		switch s {
		case "fail":
			return "", boom
		case "panic":
			panic("bad input")
		}
		return s, nil
	})
	require.NoError(t, results[0].err)
	require.ErrorIs(t, results[1].err, boom)
	require.ErrorIs(t, results[2].err, ErrTaskPanicked)
	require.NoError(t, results[3].err)
	require.Equal(t, "ok", results[3].value)
}

func TestFanOut_RespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	fanOut(context.Background(), 2, make([]int, 8), func(ctx context.Context, _ int) (struct{}, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}, nil
	})
	require.LessOrEqual(t, peak.Load(), int32(2))
}

func TestStageOrder(t *testing.T) {
	r := &run{stage: StageStart, logger: slog.New(slog.DiscardHandler)}
	require.NoError(t, r.advance(context.Background(), StageFetched))
	require.ErrorIs(t, r.advance(context.Background(), StageStart), ErrStageOrder)
	require.ErrorIs(t, r.advance(context.Background(), StageFetched), ErrStageOrder)
	require.NoError(t, r.advance(context.Background(), StageClassified))
}
