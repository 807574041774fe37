package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuig/stockgrowth/internal/ai"
	"github.com/camuig/stockgrowth/internal/analysis"
	"github.com/camuig/stockgrowth/internal/logger"
	"github.com/camuig/stockgrowth/internal/storage"
)

type fakeAnalyzer struct {
	scores   map[string]float64
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeAnalyzer) Threshold() float64 { return 40 }

func (f *fakeAnalyzer) Analyze(ctx context.Context, query string) (*analysis.Result, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)

	score, ok := f.scores[query]
	if !ok {
		return nil, errors.New("model unavailable")
	}
	return &analysis.Result{
		Financials:   analysis.Financials{Symbol: query, CompanyName: "Co " + query},
		Score:        score,
		IsHighGrowth: score >= 40,
	}, nil
}

type fakeStore struct {
	mu      sync.Mutex
	items   []storage.WatchlistItem
	updates map[string]float64
	err     error
}

func (f *fakeStore) GetWatchlist() ([]storage.WatchlistItem, error) {
	return f.items, f.err
}

func (f *fakeStore) UpdateWatchlistScore(symbol string, score float64, isHighGrowth bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updates == nil {
		f.updates = map[string]float64{}
	}
	f.updates[symbol] = score
	return nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	up      []string
	down    []string
	errored []string
}

func (f *fakeNotifier) NotifyHighGrowth(symbol, name string, score, threshold float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.up = append(f.up, symbol)
}

func (f *fakeNotifier) NotifyDropped(symbol, name string, score, threshold float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = append(f.down, symbol)
}

func (f *fakeNotifier) NotifyError(ctx string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errored = append(f.errored, ctx)
}

func TestRefreshOnce(t *testing.T) {
	an := &fakeAnalyzer{scores: map[string]float64{
		"2330": 62,  // was low, now high
		"NVDA": 150, // stays high
		"INTC": 5,   // was high, now low
		"AMD":  30,  // stays low
	}}
	store := &fakeStore{items: []storage.WatchlistItem{
		{Symbol: "2330", Score: 35},
		{Symbol: "NVDA", Score: 120, IsHighGrowth: true},
		{Symbol: "INTC", Score: 45, IsHighGrowth: true},
		{Symbol: "AMD", Score: 20},
		{Symbol: "GONE"},
	}}
	notifier := &fakeNotifier{}

	s := NewScheduler(an, store, notifier, time.Hour, 2, logger.Discard())
	stats, err := s.RefreshOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, CycleStats{Refreshed: 4, Failed: 1, Crossed: 2}, stats)
	assert.Equal(t, []string{"2330"}, notifier.up)
	assert.Equal(t, []string{"INTC"}, notifier.down)
	assert.Equal(t, 62.0, store.updates["2330"])
	assert.NotContains(t, store.updates, "GONE")
	assert.LessOrEqual(t, an.maxSeen.Load(), int32(2))
}

func TestRefreshOnceStoreError(t *testing.T) {
	s := NewScheduler(&fakeAnalyzer{}, &fakeStore{err: errors.New("locked")}, &fakeNotifier{}, time.Hour, 0, logger.Discard())
	_, err := s.RefreshOnce(context.Background())
	assert.ErrorContains(t, err, "load watchlist")
}

func TestRunCycleReportsErrors(t *testing.T) {
	notifier := &fakeNotifier{}
	s := NewScheduler(&fakeAnalyzer{}, &fakeStore{err: errors.New("locked")}, notifier, time.Hour, 1, logger.Discard())
	s.runCycle(context.Background())
	assert.Equal(t, []string{"watchlist refresh"}, notifier.errored)
}

type panickingModel struct{}

func (panickingModel) Name() string { return "panic/model" }

func (panickingModel) Generate(ctx context.Context, prompt string) (*ai.Response, error) {
	panic("sdk bug")
}

func TestRunCycleSurvivesAnalysisPanic(t *testing.T) {
	an := analysis.NewAnalyzer(panickingModel{}, nil, nil, 40, logger.Discard())
	store := &fakeStore{items: []storage.WatchlistItem{{Symbol: "2330"}, {Symbol: "NVDA"}}}
	s := NewScheduler(an, store, &fakeNotifier{}, time.Hour, 2, logger.Discard())

	require.NotPanics(t, func() { s.runCycle(context.Background()) })
	assert.Empty(t, store.updates)

	stats, err := s.RefreshOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CycleStats{Failed: 2}, stats)
}

func TestRunStopsOnCancel(t *testing.T) {
	an := &fakeAnalyzer{scores: map[string]float64{"AAPL": 50}}
	store := &fakeStore{items: []storage.WatchlistItem{{Symbol: "AAPL"}}}
	s := NewScheduler(an, store, &fakeNotifier{}, 20*time.Millisecond, 1, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.updates["AAPL"] == 50
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
