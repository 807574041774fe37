// Package scheduler periodically re-analyzes watchlist stocks so their stored
// scores stay current.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/camuig/stockgrowth/internal/analysis"
	"github.com/camuig/stockgrowth/internal/logger"
	"github.com/camuig/stockgrowth/internal/storage"
)

type Analyzer interface {
	Analyze(ctx context.Context, query string) (*analysis.Result, error)
	Threshold() float64
}

type WatchlistStore interface {
	GetWatchlist() ([]storage.WatchlistItem, error)
	UpdateWatchlistScore(symbol string, score float64, isHighGrowth bool) error
}

type Notifier interface {
	NotifyHighGrowth(symbol, companyName string, score, threshold float64)
	NotifyDropped(symbol, companyName string, score, threshold float64)
	NotifyError(context string, err error)
}

type Scheduler struct {
	analyzer    Analyzer
	repo        WatchlistStore
	notifier    Notifier
	interval    time.Duration
	concurrency int
	logger      *logger.Logger
}

// CycleStats summarizes one refresh pass.
type CycleStats struct {
	Refreshed int
	Failed    int
	Crossed   int
}

func NewScheduler(a Analyzer, repo WatchlistStore, notifier Notifier, interval time.Duration, concurrency int, log *logger.Logger) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scheduler{
		analyzer:    a,
		repo:        repo,
		notifier:    notifier,
		interval:    interval,
		concurrency: concurrency,
		logger:      log,
	}
}

// Run refreshes the watchlist every interval until ctx is cancelled. The first
// pass happens after one interval, not at startup.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("watchlist refresher started", "interval", s.interval.String(), "concurrency", s.concurrency)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("watchlist refresher stopped")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in refresh cycle", "panic", fmt.Sprint(r))
			s.notifier.NotifyError("watchlist refresh panic", fmt.Errorf("%v", r))
		}
	}()

	if _, err := s.RefreshOnce(ctx); err != nil {
		s.logger.Error("watchlist refresh", "error", err)
		s.notifier.NotifyError("watchlist refresh", err)
	}
}

// RefreshOnce re-analyzes every watchlist item. Individual failures are
// counted and logged; only failing to read the watchlist is an error.
func (s *Scheduler) RefreshOnce(ctx context.Context) (CycleStats, error) {
	items, err := s.repo.GetWatchlist()
	if err != nil {
		return CycleStats{}, fmt.Errorf("load watchlist: %w", err)
	}

	s.logger.Info("starting watchlist refresh", "items", len(items))

	var refreshed, failed, crossed atomic.Int32
	threshold := s.analyzer.Threshold()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, item := range items {
		g.Go(func() error {
			res, err := s.analyzer.Analyze(gctx, item.Symbol)
			if err != nil {
				s.logger.Error("refresh analysis", "symbol", item.Symbol, "error", err)
				failed.Add(1)
				return nil
			}

			if err := s.repo.UpdateWatchlistScore(item.Symbol, res.Score, res.IsHighGrowth); err != nil {
				s.logger.Error("update watchlist score", "symbol", item.Symbol, "error", err)
				failed.Add(1)
				return nil
			}
			refreshed.Add(1)

			name := item.CompanyName
			if name == "" {
				name = res.Financials.CompanyName
			}

			switch {
			case res.IsHighGrowth && !item.IsHighGrowth:
				crossed.Add(1)
				s.notifier.NotifyHighGrowth(item.Symbol, name, res.Score, threshold)
			case !res.IsHighGrowth && item.IsHighGrowth:
				crossed.Add(1)
				s.notifier.NotifyDropped(item.Symbol, name, res.Score, threshold)
			}

			s.logger.Debug("watchlist item refreshed", "symbol", item.Symbol, "score", res.Score)
			return nil
		})
	}
	_ = g.Wait()

	stats := CycleStats{
		Refreshed: int(refreshed.Load()),
		Failed:    int(failed.Load()),
		Crossed:   int(crossed.Load()),
	}
	s.logger.Info("watchlist refresh completed",
		"refreshed", stats.Refreshed, "failed", stats.Failed, "crossed", stats.Crossed)
	return stats, nil
}
