package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/camuig/stockgrowth/internal/config"
	"github.com/camuig/stockgrowth/internal/logger"
)

const systemPrompt = "You are a professional financial analyst. Answer with the requested summary followed by the JSON block, nothing else."

var thinkTagRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinkTags removes reasoning-model <think> blocks from the response.
func StripThinkTags(text string) string {
	return strings.TrimSpace(thinkTagRegex.ReplaceAllString(text, ""))
}

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint
// (OpenAI, DeepSeek, local gateways). It has no search tool, so responses
// never carry citations.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *logger.Logger
}

func NewOpenAIClient(cfg *config.Config, log *logger.Logger) *OpenAIClient {
	ocfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		ocfg.BaseURL = cfg.OpenAI.BaseURL
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(ocfg),
		model:   cfg.OpenAI.Model,
		timeout: cfg.AnalysisTimeout(),
		logger:  log,
	}
}

func (o *OpenAIClient) Name() string {
	return "openai/" + o.model
}

func (o *OpenAIClient) Generate(ctx context.Context, prompt string) (*Response, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	o.logger.Info("sending analysis request to OpenAI-compatible API", "model", o.model, "prompt_length", len(prompt))

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai API call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	text := StripThinkTags(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	o.logger.Info("received AI response", "length", len(text))
	o.logger.Debug("AI raw response", "content", text)

	return &Response{Text: text}, nil
}
