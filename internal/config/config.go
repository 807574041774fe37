package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Gemini    GeminiConfig    `yaml:"gemini"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Watchlist WatchlistConfig `yaml:"watchlist"`
	Lookup    LookupConfig    `yaml:"lookup"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Web       WebConfig       `yaml:"web"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type AnalysisConfig struct {
	Provider       string  `yaml:"provider"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	Threshold      float64 `yaml:"threshold"`
}

type WatchlistConfig struct {
	RefreshEnabled     bool   `yaml:"refresh_enabled"`
	RefreshInterval    string `yaml:"refresh_interval"`
	RefreshConcurrency int    `yaml:"refresh_concurrency"`
}

// LookupConfig enables instrument resolution through the T-Invest API.
type LookupConfig struct {
	Token string `yaml:"token"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML file at path, applies .env and environment overrides,
// fills defaults and validates the result. A missing config file is not an
// error: everything can come from the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// .env is optional
	_ = godotenv.Load()
	applyEnv(cfg)

	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("TINKOFF_TOKEN"); v != "" {
		cfg.Lookup.Token = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Analysis.Provider == "" {
		cfg.Analysis.Provider = ProviderGemini
	}
	if cfg.Analysis.TimeoutSeconds == 0 {
		cfg.Analysis.TimeoutSeconds = 120
	}
	if cfg.Analysis.Threshold == 0 {
		cfg.Analysis.Threshold = 40
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.5-flash"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.Watchlist.RefreshInterval == "" {
		cfg.Watchlist.RefreshInterval = "24h"
	}
	if cfg.Watchlist.RefreshConcurrency == 0 {
		cfg.Watchlist.RefreshConcurrency = 2
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8080
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/stockgrowth.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func (c *Config) Validate() error {
	switch c.Analysis.Provider {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("gemini.api_key is required when analysis.provider is %q", ProviderGemini)
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("openai.api_key is required when analysis.provider is %q", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("unknown analysis.provider %q", c.Analysis.Provider)
	}
	if c.Analysis.TimeoutSeconds < 0 {
		return fmt.Errorf("analysis.timeout_seconds must not be negative")
	}
	d, err := time.ParseDuration(c.Watchlist.RefreshInterval)
	if err != nil {
		return fmt.Errorf("invalid watchlist.refresh_interval %q: %w", c.Watchlist.RefreshInterval, err)
	}
	if c.Watchlist.RefreshEnabled && d <= 0 {
		return fmt.Errorf("watchlist.refresh_interval must be positive when refresh is enabled")
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

func (c *Config) AnalysisTimeout() time.Duration {
	return time.Duration(c.Analysis.TimeoutSeconds) * time.Second
}

func (c *Config) RefreshInterval() time.Duration {
	d, _ := time.ParseDuration(c.Watchlist.RefreshInterval)
	return d
}

func (c *Config) LookupEnabled() bool {
	return c.Lookup.Token != ""
}
