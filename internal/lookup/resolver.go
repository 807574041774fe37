// Package lookup resolves free-text stock queries to listed instruments via
// the T-Invest instruments service.
package lookup

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/russianinvestments/invest-api-go-sdk/investgo"
	pb "github.com/russianinvestments/invest-api-go-sdk/proto"

	"github.com/camuig/stockgrowth/internal/analysis"
	"github.com/camuig/stockgrowth/internal/config"
	"github.com/camuig/stockgrowth/internal/logger"
)

const endpoint = "invest-public-api.tinkoff.ru:443"

type findFunc func(query string) ([]*pb.InstrumentShort, error)

type Resolver struct {
	client *investgo.Client
	find   findFunc
	cache  sync.Map // lower-cased query -> *analysis.Hint
	logger *logger.Logger
}

func NewResolver(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Resolver, error) {
	client, err := investgo.NewClient(ctx, investgo.Config{
		EndPoint: endpoint,
		Token:    cfg.Lookup.Token,
		AppName:  "stockgrowth",
	}, log)
	if err != nil {
		return nil, fmt.Errorf("create investgo client: %w", err)
	}

	instruments := client.NewInstrumentsServiceClient()
	r := &Resolver{
		client: client,
		logger: log,
		find: func(query string) ([]*pb.InstrumentShort, error) {
			resp, err := instruments.FindInstrument(query)
			if err != nil {
				return nil, err
			}
			return resp.GetInstruments(), nil
		},
	}
	return r, nil
}

// Resolve returns the best instrument for query. Results are cached for the
// lifetime of the process.
func (r *Resolver) Resolve(ctx context.Context, query string) (*analysis.Hint, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if cached, ok := r.cache.Load(key); ok {
		return cached.(*analysis.Hint), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	list, err := r.find(strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("find instrument %q: %w", query, err)
	}

	inst := pickInstrument(query, list)
	if inst == nil {
		return nil, fmt.Errorf("instrument not found: %s", query)
	}

	hint := &analysis.Hint{
		Ticker:    inst.GetTicker(),
		Name:      inst.GetName(),
		ClassCode: inst.GetClassCode(),
	}
	r.cache.Store(key, hint)
	r.logger.Debug("instrument resolved", "query", query, "ticker", hint.Ticker, "name", hint.Name)
	return hint, nil
}

// pickInstrument prefers an exact ticker match, then the first share. Bonds,
// futures and other instruments are never used as a hint.
func pickInstrument(query string, list []*pb.InstrumentShort) *pb.InstrumentShort {
	if len(list) == 0 {
		return nil
	}

	q := strings.TrimSpace(query)
	for _, inst := range list {
		if strings.EqualFold(inst.GetTicker(), q) {
			return inst
		}
	}
	for _, inst := range list {
		if inst.GetInstrumentType() == "share" {
			return inst
		}
	}
	return nil
}

func (r *Resolver) Stop() error {
	if r.client == nil {
		return nil
	}
	return r.client.Stop()
}
