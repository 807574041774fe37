package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/camuig/stockgrowth/internal/ai"
	"github.com/camuig/stockgrowth/internal/logger"
	"github.com/camuig/stockgrowth/internal/storage"
)

// Resolver maps a free-text query to a listed instrument.
type Resolver interface {
	Resolve(ctx context.Context, query string) (*Hint, error)
}

// History records every analysis attempt.
type History interface {
	SaveAnalysisLog(log *storage.AnalysisLog) error
}

type Analyzer struct {
	model     ai.Model
	resolver  Resolver
	history   History
	threshold float64
	logger    *logger.Logger
	now       func() time.Time
	group     singleflight.Group
}

// NewAnalyzer wires the model with optional resolver and history; either may be nil.
func NewAnalyzer(model ai.Model, resolver Resolver, history History, threshold float64, log *logger.Logger) *Analyzer {
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	return &Analyzer{
		model:     model,
		resolver:  resolver,
		history:   history,
		threshold: threshold,
		logger:    log,
		now:       time.Now,
	}
}

func (a *Analyzer) Threshold() float64 {
	return a.threshold
}

// Analyze runs one prompt/response exchange for query. Concurrent calls with
// the same query (ignoring case and surrounding space) share a single model
// call; each caller gets its own copy of the result.
func (a *Analyzer) Analyze(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	key := strings.ToLower(query)
	ch := a.group.DoChan(key, func() (res any, err error) {
		// singleflight re-panics on its own goroutine, out of reach of any caller
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("panic in analysis", "query", query, "panic", fmt.Sprint(r))
				res, err = nil, fmt.Errorf("analysis panic: %v", r)
			}
		}()
		// detached so one caller giving up does not fail the others
		return a.analyze(context.WithoutCancel(ctx), query)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Result).Clone(), nil
	}
}

func (a *Analyzer) analyze(ctx context.Context, query string) (*Result, error) {
	hint := a.resolve(ctx, query)
	prompt := BuildPrompt(query, hint, a.threshold, a.now())

	a.logger.Info("starting analysis", "query", query, "model", a.model.Name())

	resp, err := a.model.Generate(ctx, prompt)
	if err != nil {
		a.logger.Error("AI analysis", "query", query, "error", err)
		a.saveLog(query, "", nil, err)
		return nil, err
	}

	result, err := ParseResult(resp.Text)
	if err != nil {
		a.logger.Error("parse AI response", "query", query, "error", err)
		a.saveLog(query, resp.Text, nil, err)
		return nil, err
	}

	Finalize(result, a.threshold)
	result.News = AttachSources(result.News, resp.Citations)

	a.logger.Info("analysis completed",
		"query", query,
		"symbol", result.Financials.Symbol,
		"score", result.Score,
		"high_growth", result.IsHighGrowth,
		"news", len(result.News))

	a.saveLog(query, resp.Text, result, nil)
	return result, nil
}

func (a *Analyzer) resolve(ctx context.Context, query string) *Hint {
	if a.resolver == nil {
		return nil
	}
	hint, err := a.resolver.Resolve(ctx, query)
	if err != nil {
		a.logger.Debug("instrument lookup failed, continuing without hint", "query", query, "error", err)
		return nil
	}
	return hint
}

func (a *Analyzer) saveLog(query, raw string, result *Result, err error) {
	if a.history == nil {
		return
	}

	entry := &storage.AnalysisLog{
		Query:       query,
		Provider:    a.model.Name(),
		RawResponse: raw,
	}
	if result != nil {
		entry.Symbol = result.Financials.Symbol
		entry.Score = result.Score
		entry.IsHighGrowth = result.IsHighGrowth
		if data, mErr := json.Marshal(result); mErr == nil {
			entry.ResultJSON = string(data)
		}
	}
	if err != nil {
		entry.Error = err.Error()
	}

	if dbErr := a.history.SaveAnalysisLog(entry); dbErr != nil {
		a.logger.Error("save analysis log", "error", dbErr)
	}
}
