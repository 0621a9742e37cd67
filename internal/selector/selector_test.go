// ABOUTME: Tests for unposted-riddle selection over full-catalog and batch sources.
// ABOUTME: Uses a scripted fake source and a real JSON history store in a temp dir.
package selector

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/riddleking/internal/models"
	"github.com/2389-research/riddleking/internal/source"
	"github.com/2389-research/riddleking/internal/storage"
)

// scriptedSource replays a fixed list of fetch results, repeating the last one.
type scriptedSource struct {
	complete bool
	results  []fetchResult
	calls    int
}

type fetchResult struct {
	items []models.Item
	err   error
}

func (s *scriptedSource) FetchCandidates(ctx context.Context) ([]models.Item, error) {
	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	r := s.results[i]
	return r.items, r.err
}

func (s *scriptedSource) Complete() bool { return s.complete }
func (s *scriptedSource) Name() string   { return "scripted" }

func items(ids ...string) []models.Item {
	out := make([]models.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Item{ID: models.ItemID(id), Text: "riddle " + id, Reference: "slug-" + id})
	}
	return out
}

func newHistory(t *testing.T, ids ...string) (*storage.JSONHistoryStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posted-riddles.json")
	h, err := storage.NewJSONHistoryStore(path, nil)
	require.NoError(t, err)
	for _, id := range ids {
		require.NoError(t, h.Append(models.ItemID(id)))
	}
	return h, path
}

func noBackoff(attempts, threshold int) Options {
	return Options{MaxAttempts: attempts, Backoff: -1, ResetThreshold: threshold, Rand: rand.New(rand.NewPCG(1, 2))}
}

func TestCatalogSelectsOnlyUnposted(t *testing.T) {
	src := &scriptedSource{complete: true, results: []fetchResult{{items: items("1", "2")}}}
	h, _ := newHistory(t, "1")

	sel := New(src, h, noBackoff(3, 0), nil)
	for i := 0; i < 20; i++ {
		got, err := sel.SelectUnposted(context.Background())
		require.NoError(t, err)
		assert.Equal(t, models.ItemID("2"), got.ID)
	}
	assert.Equal(t, []models.ItemID{"1"}, h.Load(), "selection must not mutate history")
}

func TestCatalogNeverPicksFromHistoryWhenUnpostedRemain(t *testing.T) {
	catalog := items("1", "2", "3", "4", "5", "6")
	src := &scriptedSource{complete: true, results: []fetchResult{{items: catalog}}}
	h, _ := newHistory(t, "1", "3", "5")

	sel := New(src, h, noBackoff(3, 0), nil)
	seen := map[models.ItemID]bool{}
	for i := 0; i < 50; i++ {
		got, err := sel.SelectUnposted(context.Background())
		require.NoError(t, err)
		assert.False(t, h.Contains(got.ID), "picked posted id %s", got.ID)
		seen[got.ID] = true
	}
	assert.Len(t, seen, 3, "random choice should reach every unposted item")
}

func TestCatalogExhaustedResetsHistory(t *testing.T) {
	src := &scriptedSource{complete: true, results: []fetchResult{{items: items("1", "2")}}}
	h, path := newHistory(t, "1", "2")

	sel := New(src, h, noBackoff(3, 0), nil)
	got, err := sel.SelectUnposted(context.Background())
	require.NoError(t, err)
	assert.Contains(t, []models.ItemID{"1", "2"}, got.ID)
	assert.Empty(t, h.Load())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}

func TestCatalogHistoryLargerThanCatalogResets(t *testing.T) {
	src := &scriptedSource{complete: true, results: []fetchResult{{items: items("a", "b")}}}
	h, _ := newHistory(t, "a", "b", "old-1", "old-2", "old-3")

	got, err := New(src, h, noBackoff(3, 0), nil).SelectUnposted(context.Background())
	require.NoError(t, err)
	assert.Contains(t, []models.ItemID{"a", "b"}, got.ID)
	assert.Empty(t, h.Load())
}

func TestCatalogEmptyIsFailure(t *testing.T) {
	src := &scriptedSource{complete: true, results: []fetchResult{{items: nil}}}
	h, _ := newHistory(t)

	_, err := New(src, h, noBackoff(5, 0), nil).SelectUnposted(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoItemAvailable)
	assert.Equal(t, 1, src.calls, "an empty catalog is not retried")
}

func TestCatalogRetriesFetchErrors(t *testing.T) {
	boom := source.ErrSourceUnavailable
	src := &scriptedSource{complete: true, results: []fetchResult{{err: boom}, {err: boom}, {items: items("7")}}}
	h, _ := newHistory(t)

	got, err := New(src, h, noBackoff(3, 0), nil).SelectUnposted(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ItemID("7"), got.ID)
	assert.Equal(t, 3, src.calls)
}

func TestCatalogGivesUpAfterCeiling(t *testing.T) {
	src := &scriptedSource{complete: true, results: []fetchResult{{err: source.ErrSourceUnavailable}}}
	h, _ := newHistory(t, "1")

	_, err := New(src, h, noBackoff(3, 0), nil).SelectUnposted(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoItemAvailable)
	assert.Equal(t, 3, src.calls)
	assert.Equal(t, []models.ItemID{"1"}, h.Load(), "failed selection leaves history untouched")
}

func TestBatchReturnsFirstUnposted(t *testing.T) {
	src := &scriptedSource{results: []fetchResult{{items: items("1", "2", "3", "4")}}}
	h, _ := newHistory(t, "1", "2")

	got, err := New(src, h, noBackoff(3, 0), nil).SelectUnposted(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ItemID("3"), got.ID, "first match, not random")
	assert.Equal(t, 1, src.calls)
}

func TestBatchRetriesFreshBatches(t *testing.T) {
	src := &scriptedSource{results: []fetchResult{
		{items: items("1", "2")},
		{err: source.ErrSourceUnavailable},
		{items: items("2", "9")},
	}}
	h, _ := newHistory(t, "1", "2")

	got, err := New(src, h, noBackoff(5, 0), nil).SelectUnposted(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ItemID("9"), got.ID)
	assert.Equal(t, 3, src.calls)
	assert.Len(t, h.Load(), 2)
}

func TestBatchExhaustedResetsAndRetriesOnce(t *testing.T) {
	batch := items("1", "2", "3", "4", "5")
	src := &scriptedSource{results: []fetchResult{{items: batch}}}
	h, path := newHistory(t, "1", "2", "3", "4", "5")

	got, err := New(src, h, noBackoff(3, 0), nil).SelectUnposted(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ItemID("1"), got.ID)
	assert.Equal(t, 4, src.calls, "three exhausted batches then one after the reset")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}

func TestBatchBelowThresholdDoesNotReset(t *testing.T) {
	src := &scriptedSource{results: []fetchResult{{items: items("1", "2")}}}
	h, _ := newHistory(t, "1", "2")

	_, err := New(src, h, noBackoff(3, 10), nil).SelectUnposted(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoItemAvailable)
	assert.Equal(t, 3, src.calls)
	assert.Len(t, h.Load(), 2, "history below threshold is kept")
}

func TestBatchResetRoundIsBounded(t *testing.T) {
	src := &scriptedSource{results: []fetchResult{{err: errors.New("network down")}}}
	h, _ := newHistory(t, "1")

	_, err := New(src, h, noBackoff(3, 0), nil).SelectUnposted(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoItemAvailable)
	assert.Contains(t, err.Error(), "network down")
	assert.Equal(t, 6, src.calls, "one reset round, never more")
	assert.Empty(t, h.Load())
}

func TestBatchEmptySourceIsFailure(t *testing.T) {
	src := &scriptedSource{results: []fetchResult{{items: []models.Item{}}}}
	h, _ := newHistory(t)

	_, err := New(src, h, noBackoff(2, 0), nil).SelectUnposted(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoItemAvailable)
	assert.Equal(t, 2, src.calls)
}

func TestBackoffBetweenAttempts(t *testing.T) {
	src := &scriptedSource{results: []fetchResult{{err: source.ErrSourceUnavailable}}}
	h, _ := newHistory(t)

	opts := Options{MaxAttempts: 3, Backoff: 30 * time.Millisecond}
	start := time.Now()
	_, err := New(src, h, opts, nil).SelectUnposted(context.Background())
	require.Error(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestCancelledContextStopsRetries(t *testing.T) {
	src := &scriptedSource{results: []fetchResult{{err: source.ErrSourceUnavailable}}}
	h, _ := newHistory(t, "1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(src, h, Options{MaxAttempts: 10, Backoff: time.Hour}, nil).SelectUnposted(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, src.calls)
	assert.Len(t, h.Load(), 1)
}

func TestDefaultsApplied(t *testing.T) {
	h, _ := newHistory(t)
	sel := New(&scriptedSource{results: []fetchResult{{}}}, h, Options{}, nil)
	assert.Equal(t, DefaultMaxAttempts, sel.opts.MaxAttempts)
	assert.Equal(t, DefaultBackoff, sel.opts.Backoff)
}

func TestPeekExhaustedCatalogKeepsHistory(t *testing.T) {
	src := &scriptedSource{complete: true, results: []fetchResult{{items: items("1", "2")}}}
	h, path := newHistory(t, "1", "2")

	got, err := New(src, h, noBackoff(3, 0), nil).Peek(context.Background())
	require.NoError(t, err)
	assert.Contains(t, []models.ItemID{"1", "2"}, got.ID)
	assert.Equal(t, []models.ItemID{"1", "2"}, h.Load())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2")
}

func TestPeekExhaustedBatchKeepsHistory(t *testing.T) {
	src := &scriptedSource{results: []fetchResult{{items: items("4", "5")}}}
	h, _ := newHistory(t, "4", "5")

	got, err := New(src, h, noBackoff(3, 0), nil).Peek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ItemID("4"), got.ID)
	assert.Equal(t, 3, src.calls, "no second round without a reset")
	assert.Equal(t, []models.ItemID{"4", "5"}, h.Load())
}

func TestPeekDuringOutageKeepsHistory(t *testing.T) {
	src := &scriptedSource{results: []fetchResult{{err: errors.New("network down")}}}
	h, _ := newHistory(t, "1", "2")

	_, err := New(src, h, noBackoff(3, 0), nil).Peek(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoItemAvailable)
	assert.Equal(t, 3, src.calls)
	assert.Equal(t, []models.ItemID{"1", "2"}, h.Load())
}

func TestPeekMatchesSelectWhenUnpostedExists(t *testing.T) {
	src := &scriptedSource{results: []fetchResult{{items: items("1", "2", "3")}}}
	h, _ := newHistory(t, "1")

	got, err := New(src, h, noBackoff(3, 0), nil).Peek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ItemID("2"), got.ID)
	assert.Equal(t, []models.ItemID{"1"}, h.Load())
}
