package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/camuig/stockgrowth/internal/config"
	"github.com/camuig/stockgrowth/internal/logger"
)

type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *logger.Logger
}

func NewGeminiClient(ctx context.Context, cfg *config.Config, log *logger.Logger) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   cfg.Gemini.Model,
		timeout: cfg.AnalysisTimeout(),
		logger:  log,
	}, nil
}

func (g *GeminiClient) Name() string {
	return "gemini/" + g.model
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (*Response, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	g.logger.Info("sending analysis request to Gemini", "model", g.model, "prompt_length", len(prompt))

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		generateConfig(),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini API call: %w", err)
	}

	out, err := responseFromGemini(resp)
	if err != nil {
		return nil, err
	}

	g.logger.Info("received AI response", "length", len(out.Text), "citations", len(out.Citations))
	g.logger.Debug("AI raw response", "content", out.Text)
	return out, nil
}

// generateConfig enables Google Search grounding and turns off the safety
// filters; company news about defence or chemicals is otherwise dropped.
func generateConfig() *genai.GenerateContentConfig {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	safety := make([]*genai.SafetySetting, 0, len(categories))
	for _, c := range categories {
		safety = append(safety, &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockThresholdBlockNone,
		})
	}

	return &genai.GenerateContentConfig{
		Tools:          []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		SafetySettings: safety,
	}
}

// responseFromGemini joins the text parts of the first candidate and collects
// the web grounding chunks in the order the API returned them.
func responseFromGemini(resp *genai.GenerateContentResponse) (*Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, blockedError(resp)
	}

	cand := resp.Candidates[0]
	out := &Response{}

	if cand.Content != nil {
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			sb.WriteString(part.Text)
		}
		out.Text = sb.String()
	}

	if strings.TrimSpace(out.Text) == "" {
		return nil, blockedError(resp)
	}

	if cand.GroundingMetadata != nil {
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				out.Citations = append(out.Citations, Citation{})
				continue
			}
			out.Citations = append(out.Citations, Citation{
				Title: chunk.Web.Title,
				URI:   chunk.Web.URI,
			})
		}
	}

	return out, nil
}

func blockedError(resp *genai.GenerateContentResponse) error {
	if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return fmt.Errorf("%w (block reason: %s)", ErrEmptyResponse, resp.PromptFeedback.BlockReason)
	}
	return ErrEmptyResponse
}
