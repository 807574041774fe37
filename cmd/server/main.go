package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camuig/stockgrowth/internal/ai"
	"github.com/camuig/stockgrowth/internal/analysis"
	"github.com/camuig/stockgrowth/internal/config"
	"github.com/camuig/stockgrowth/internal/logger"
	"github.com/camuig/stockgrowth/internal/lookup"
	"github.com/camuig/stockgrowth/internal/scheduler"
	"github.com/camuig/stockgrowth/internal/storage"
	"github.com/camuig/stockgrowth/internal/telegram"
	"github.com/camuig/stockgrowth/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	log.Info("starting stockgrowth", "provider", cfg.Analysis.Provider, "threshold", cfg.Analysis.Threshold)

	db, err := storage.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	repo := storage.NewRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model, err := ai.New(ctx, cfg, log)
	if err != nil {
		log.Error("model client init failed", "error", err)
		os.Exit(1)
	}
	log.Info("model client ready", "model", model.Name())

	// Instrument lookup is optional; without it queries go to the model as typed.
	var resolver analysis.Resolver
	var lookupClient *lookup.Resolver
	if cfg.LookupEnabled() {
		lookupClient, err = lookup.NewResolver(ctx, cfg, log)
		if err != nil {
			log.Warn("instrument lookup disabled", "error", err)
		} else {
			resolver = lookupClient
		}
	}

	notifier := telegram.NewNotifier(cfg, log)
	analyzer := analysis.NewAnalyzer(model, resolver, repo, cfg.Analysis.Threshold, log)
	webServer := web.NewServer(analyzer, repo, cfg, log)

	if cfg.Watchlist.RefreshEnabled {
		sched := scheduler.NewScheduler(analyzer, repo, notifier, cfg.RefreshInterval(),
			cfg.Watchlist.RefreshConcurrency, log)
		go sched.Run(ctx)
	}

	go func() {
		if err := webServer.Start(); err != nil {
			log.Error("web server error", "error", err)
			cancel()
		}
	}()

	notifier.NotifyStatus(fmt.Sprintf("📈 StockGrowth 已啟動 (port %d)", cfg.Web.Port))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}

	cancel() // stop scheduler

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error("web server shutdown error", "error", err)
	}

	if lookupClient != nil {
		if err := lookupClient.Stop(); err != nil {
			log.Error("lookup client stop error", "error", err)
		}
	}

	notifier.NotifyStatus("🛑 StockGrowth 已停止")
	log.Info("stockgrowth stopped")
}
