package provider

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"mailcraft/model"
)

const DefaultGeminiModel = "gemini-3-flash-preview"

// geminiModels is the curated selection offered in the model picker.
var geminiModels = []model.ModelInfo{
	{ID: "gemini-3-flash-preview", Name: "Gemini 3 Flash", Description: "Fast & Reliable", Provider: "gemini"},
	{ID: "gemini-3-pro-preview", Name: "Gemini 3 Pro", Description: "Complex Reasoning", Provider: "gemini"},
}

// GeminiProvider implements model.Provider with the Google Gen AI SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini provider. baseURL may be empty to use
// the public Gemini API endpoint.
//
// Returns an error if the API key is missing or the client cannot be built.
func NewGeminiProvider(baseURL, apiKey, modelID string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if modelID == "" {
		modelID = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	// NewClient does not touch the network.
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: modelID}, nil
}

// Generate implements model.Provider by streaming GenerateContent.
//
// The system instruction travels in the request config, the prompt as a
// single user turn.
func (p *GeminiProvider) Generate(ctx context.Context, req model.GenerateRequest, callback model.StreamCallback) error {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: maxOutputTokens,
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.Prompt(), genai.RoleUser),
	}

	for resp, err := range p.client.Models.GenerateContentStream(ctx, p.model, contents, cfg) {
		if err != nil {
			return err
		}
		text := resp.Text()
		if text == "" || callback == nil {
			continue
		}
		if err := callback(text); err != nil {
			return err
		}
	}
	return nil
}

// ListModels returns the curated Gemini models.
func (p *GeminiProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return append([]model.ModelInfo(nil), geminiModels...), nil
}

func (p *GeminiProvider) GetModel() string {
	return p.model
}

func (p *GeminiProvider) SetModel(modelID string) {
	p.model = modelID
}

// Ping implements model.Provider by fetching the selected model's metadata,
// which fails fast on an invalid key.
func (p *GeminiProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.Get(ctx, p.model, nil); err != nil {
		return fmt.Errorf("Gemini ping failed: %w", err)
	}
	return nil
}
