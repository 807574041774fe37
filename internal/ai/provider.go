package ai

import (
	"context"
	"fmt"

	"github.com/camuig/stockgrowth/internal/config"
	"github.com/camuig/stockgrowth/internal/logger"
)

// New builds the model selected by analysis.provider.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (Model, error) {
	switch cfg.Analysis.Provider {
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Analysis.Provider)
	}
}
