package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewRepository(db)
}

func TestWatchlistAddAndList(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.AddToWatchlist(&WatchlistItem{Symbol: " 2330 ", CompanyName: "台積電", Score: 62.3, IsHighGrowth: true}))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.AddToWatchlist(&WatchlistItem{Symbol: "nvda", CompanyName: "NVIDIA", Score: 150}))

	items, err := repo.GetWatchlist()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "NVDA", items[0].Symbol)
	assert.Equal(t, "2330", items[1].Symbol)
	assert.True(t, items[1].IsHighGrowth)
}

func TestWatchlistUpsertKeepsAddTime(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.AddToWatchlist(&WatchlistItem{Symbol: "TSM", CompanyName: "old", Score: 10}))
	first, err := repo.GetWatchlistItem("tsm")
	require.NoError(t, err)

	require.NoError(t, repo.AddToWatchlist(&WatchlistItem{Symbol: "tsm", CompanyName: "Taiwan Semi", Score: 55, IsHighGrowth: true}))

	items, err := repo.GetWatchlist()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Taiwan Semi", items[0].CompanyName)
	assert.Equal(t, 55.0, items[0].Score)
	assert.True(t, items[0].IsHighGrowth)
	assert.True(t, first.CreatedAt.Equal(items[0].CreatedAt))
}

func TestWatchlistRejectsEmptySymbol(t *testing.T) {
	repo := newTestRepo(t)
	assert.Error(t, repo.AddToWatchlist(&WatchlistItem{Symbol: "  "}))
}

func TestWatchlistRemove(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.AddToWatchlist(&WatchlistItem{Symbol: "AAPL"}))

	require.NoError(t, repo.RemoveFromWatchlist("aapl"))
	assert.True(t, errors.Is(repo.RemoveFromWatchlist("aapl"), ErrNotFound))

	_, err := repo.GetWatchlistItem("AAPL")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdateWatchlistScore(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.AddToWatchlist(&WatchlistItem{Symbol: "2454", Score: 20}))

	require.NoError(t, repo.UpdateWatchlistScore("2454", 41.5, true))
	item, err := repo.GetWatchlistItem("2454")
	require.NoError(t, err)
	assert.Equal(t, 41.5, item.Score)
	assert.True(t, item.IsHighGrowth)

	assert.True(t, errors.Is(repo.UpdateWatchlistScore("9999", 1, false), ErrNotFound))
}

func TestAnalysisLogs(t *testing.T) {
	repo := newTestRepo(t)

	for _, q := range []string{"台積電", "NVDA", "2317"} {
		require.NoError(t, repo.SaveAnalysisLog(&AnalysisLog{Query: q, Provider: "fake"}))
	}

	logs, err := repo.GetRecentAnalyses(2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "2317", logs[0].Query)
	assert.Equal(t, "NVDA", logs[1].Query)
}
