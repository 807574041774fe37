package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/camuig/stockgrowth/internal/ai"
	"github.com/camuig/stockgrowth/internal/analysis"
	"github.com/camuig/stockgrowth/internal/config"
	"github.com/camuig/stockgrowth/internal/logger"
	"github.com/camuig/stockgrowth/internal/lookup"
	"github.com/camuig/stockgrowth/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	query := flag.String("q", "", "stock symbol or company name")
	filter := flag.String("filter", analysis.CategoryAll, "news category: All, Expansion, Investment, Technology, Orders, US_Cooperation")
	asJSON := flag.Bool("json", false, "print the result as JSON")
	watch := flag.Bool("watch", false, "add the analyzed stock to the watchlist")
	flag.Parse()

	if *query == "" && flag.NArg() > 0 {
		*query = strings.Join(flag.Args(), " ")
	}
	if strings.TrimSpace(*query) == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -q <symbol or company name> [-filter Category] [-json] [-watch]")
		os.Exit(2)
	}
	if _, ok := analysis.LookupCategory(*filter); !ok {
		fmt.Fprintf(os.Stderr, "unknown filter %q\n", *filter)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the result
	log := logger.NewWithWriter(os.Stderr, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.NewDatabase(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database init error: %v\n", err)
		os.Exit(1)
	}
	repo := storage.NewRepository(db)

	model, err := ai.New(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "model init error: %v\n", err)
		os.Exit(1)
	}

	var resolver analysis.Resolver
	if cfg.LookupEnabled() {
		lr, err := lookup.NewResolver(ctx, cfg, log)
		if err != nil {
			log.Warn("instrument lookup disabled", "error", err)
		} else {
			defer lr.Stop()
			resolver = lr
		}
	}

	analyzer := analysis.NewAnalyzer(model, resolver, repo, cfg.Analysis.Threshold, log)

	res, err := analyzer.Analyze(ctx, *query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyze error: %v\n", err)
		os.Exit(1)
	}
	res.News = analysis.FilterNews(res.News, *filter)

	if *watch {
		item := &storage.WatchlistItem{
			Symbol:       res.Financials.Symbol,
			CompanyName:  res.Financials.CompanyName,
			Score:        res.Score,
			IsHighGrowth: res.IsHighGrowth,
		}
		if err := repo.AddToWatchlist(item); err != nil {
			fmt.Fprintf(os.Stderr, "watchlist error: %v\n", err)
			os.Exit(1)
		}
		log.Info("added to watchlist", "symbol", item.Symbol)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(os.Stderr, "encode error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printResult(res, *filter, analyzer.Threshold())
}

func printResult(res *analysis.Result, filter string, threshold float64) {
	f := res.Financials
	fmt.Printf("%s (%s), %s\n\n", f.CompanyName, f.Symbol, f.Currency)
	fmt.Printf("  當月營收:          %s\n", f.CurrentMonthRevenue)
	fmt.Printf("  累計營收年增率:    %s\n", f.AccumulatedRevenueYoY)
	fmt.Printf("  當季毛利率:        %s\n", f.CurrentQuarterGrossMargin)
	fmt.Printf("  累計毛利率:        %s\n", f.AccumulatedGrossMargin)
	fmt.Printf("  累計毛利率年增率:  %s\n\n", f.AccumulatedGrossMarginYoY)

	verdict := "符合成長標準"
	if !res.IsHighGrowth {
		verdict = fmt.Sprintf("未達 %.0f 標準", threshold)
	}
	fmt.Printf("Score %.1f / %.0f: %s\n\n", res.Score, threshold, verdict)

	if res.Summary != "" {
		fmt.Printf("%s\n\n", res.Summary)
	}

	if len(res.News) == 0 {
		cat, _ := analysis.LookupCategory(filter)
		if cat.ID == analysis.CategoryAll {
			fmt.Println("未找到符合特定策略標準的近期新聞。")
		} else {
			fmt.Printf("在「%s」類別中未找到相關新聞。\n", cat.Label)
		}
		return
	}

	fmt.Printf("Found %d news item(s):\n\n", len(res.News))
	for _, n := range res.News {
		labels := make([]string, 0, len(n.Tags))
		for _, t := range n.Tags {
			labels = append(labels, analysis.TagLabel(t))
		}
		fmt.Printf("  [%s] %s (%s)\n", n.Date, n.Headline, n.Source)
		if n.URL != "" {
			fmt.Printf("         %s\n", n.URL)
		}
		if len(labels) > 0 {
			fmt.Printf("         %s\n", strings.Join(labels, ", "))
		}
	}
}
