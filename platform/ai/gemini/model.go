package gemini

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// Config for Gemini
type Config struct {
	APIKey string
	Model  string
}

// GeminiModel adapts the Gemini API to the ADK model.LLM interface
type GeminiModel struct {
	config Config
	client *genai.Client
}

func NewModel(ctx context.Context, cfg Config) (*GeminiModel, error) {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiModel{
		config: cfg,
		client: client,
	}, nil
}

func (m *GeminiModel) Name() string {
	return m.config.Model
}

// GenerateContent forwards ADK requests to the Gemini API. Streaming is not
// supported; the full response is yielded once.
func (m *GeminiModel) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		resp, err := m.generate(ctx, req)
		yield(resp, err)
	}
}

func (m *GeminiModel) generate(ctx context.Context, req *model.LLMRequest) (*model.LLMResponse, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.config.Model, req.Contents, req.Config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	return &model.LLMResponse{
		Content: resp.Candidates[0].Content,
	}, nil
}
