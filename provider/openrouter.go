package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"mailcraft/config"
	"mailcraft/model"
)

// OpenRouterProvider implements model.Provider against OpenRouter, which is
// OpenAI-compatible.
type OpenRouterProvider struct {
	client  openai.Client
	model   string
	baseURL string
}

// NewOpenRouterProvider creates a new OpenRouter provider instance.
//
// Parameters:
//   - baseURL: OpenRouter API base URL ("https://openrouter.ai/api/v1")
//   - apiKey: OpenRouter API key
//   - model: Initial model to use (can be changed with SetModel)
func NewOpenRouterProvider(baseURL, apiKey, modelID string) (*OpenRouterProvider, error) {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required")
	}
	if modelID == "" {
		modelID = "google/gemini-2.5-flash"
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithHeader("X-Title", "mailcraft"),
	)

	return &OpenRouterProvider{
		client:  client,
		model:   modelID,
		baseURL: baseURL,
	}, nil
}

func (p *OpenRouterProvider) Generate(ctx context.Context, req model.GenerateRequest, callback model.StreamCallback) error {
	config.DebugLog.Debugw("openrouter generate", "model", p.model, "edit", req.IsEdit())
	return streamChatCompletion(ctx, p.client, chatParams(p.model, req), callback)
}

// ListModels implements model.Provider with vendor prefixes stripped from
// the display names.
func (p *OpenRouterProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	modelsPage, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list OpenRouter models: %w", err)
	}

	result := make([]model.ModelInfo, 0, len(modelsPage.Data))
	for _, m := range modelsPage.Data {
		result = append(result, model.ModelInfo{
			ID:       m.ID,                      // API: "meta-llama/llama-3.2-90b-instruct"
			Name:     stripProviderPrefix(m.ID), // Display: "llama-3.2-90b-instruct"
			Provider: "openrouter",
		})
	}
	return result, nil
}

func (p *OpenRouterProvider) GetModel() string {
	return p.model
}

func (p *OpenRouterProvider) SetModel(modelID string) {
	p.model = modelID
}

func (p *OpenRouterProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("OpenRouter ping failed: %w", err)
	}
	return nil
}

// stripProviderPrefix removes vendor prefixes from OpenRouter model names.
// Example: "anthropic/claude-3.5-sonnet" → "claude-3.5-sonnet"
func stripProviderPrefix(modelName string) string {
	if idx := strings.Index(modelName, "/"); idx != -1 {
		return modelName[idx+1:]
	}
	return modelName
}
