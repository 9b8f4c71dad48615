package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"mailcraft/model"
)

// OpenAIProvider implements model.Provider using OpenAI's official API.
type OpenAIProvider struct {
	client  openai.Client
	model   string
	baseURL string
}

// NewOpenAIProvider creates a new OpenAI provider instance.
//
// Parameters:
//   - baseURL: OpenAI API base URL (default: "https://api.openai.com/v1")
//   - apiKey: OpenAI API key (required)
//   - model: Initial model to use (default: "gpt-4.1-mini")
func NewOpenAIProvider(baseURL, apiKey, modelID string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if modelID == "" {
		modelID = "gpt-4.1-mini"
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &OpenAIProvider{
		client:  client,
		model:   modelID,
		baseURL: baseURL,
	}, nil
}

// Generate implements model.Provider with a streaming chat completion.
func (p *OpenAIProvider) Generate(ctx context.Context, req model.GenerateRequest, callback model.StreamCallback) error {
	return streamChatCompletion(ctx, p.client, chatParams(p.model, req), callback)
}

// chatParams builds the request shared by OpenAI-compatible backends.
func chatParams(modelID string, req model.GenerateRequest) openai.ChatCompletionNewParams {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemInstruction != "" {
		messages = append(messages, openai.SystemMessage(req.SystemInstruction))
	}
	messages = append(messages, openai.UserMessage(req.Prompt()))

	return openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               openai.ChatModel(modelID),
		Temperature:         openai.Float(req.Temperature),
		MaxCompletionTokens: openai.Int(maxOutputTokens),
	}
}

func streamChatCompletion(ctx context.Context, client openai.Client, params openai.ChatCompletionNewParams, callback model.StreamCallback) error {
	stream := client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" || callback == nil {
			continue
		}
		if err := callback(chunk.Choices[0].Delta.Content); err != nil {
			return err
		}
	}
	return stream.Err()
}

// ListModels implements model.Provider.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	modelsPage, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list OpenAI models: %w", err)
	}

	result := make([]model.ModelInfo, 0, len(modelsPage.Data))
	for _, m := range modelsPage.Data {
		result = append(result, model.ModelInfo{
			ID:       m.ID,
			Name:     m.ID,
			Provider: "openai", // must match the provider ID
		})
	}
	return result, nil
}

func (p *OpenAIProvider) GetModel() string {
	return p.model
}

func (p *OpenAIProvider) SetModel(modelID string) {
	p.model = modelID
}

// Ping implements model.Provider by attempting to list models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("OpenAI ping failed: %w", err)
	}
	return nil
}
