package provider

import (
	"context"
	"fmt"

	"mailcraft/model"
	"mailcraft/ollama"
)

// OllamaProvider wraps ollama.Client to implement model.Provider.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - baseURL: The Ollama server URL. Defaults to "http://localhost:11434".
//   - model: The model name to use. Defaults to "llama3.1:latest".
//
// Returns an error if the baseURL is invalid.
func NewOllamaProvider(baseURL, modelID string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}
	return &OllamaProvider{client: client}, nil
}

func (p *OllamaProvider) Generate(ctx context.Context, req model.GenerateRequest, callback model.StreamCallback) error {
	opts := ollama.Options{Temperature: req.Temperature}
	return p.client.Generate(ctx, req.SystemInstruction, req.Prompt(), opts, ollama.StreamCallback(callback))
}

// ListModels implements model.Provider with the models installed locally.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	infos, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]model.ModelInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, model.ModelInfo{
			ID:       info.Name, // Ollama uses the same name for display and API
			Name:     info.Name,
			Provider: "ollama",
			Size:     info.Size,
		})
	}
	return result, nil
}

func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

func (p *OllamaProvider) SetModel(modelID string) {
	p.client.SetModel(modelID)
}

// Ping checks that the Ollama server is reachable.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}
