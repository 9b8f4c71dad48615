package model

import (
	"context"
	"time"
)

// Provider generates template text from a prompt.
//
// This interface is defined in the model package (not provider package) to
// avoid import cycles: provider implementations import model, and model uses
// Provider without importing the provider package.
type Provider interface {
	// Generate streams the response for req, calling callback once per text
	// fragment in arrival order. A callback error aborts the stream and is
	// returned unchanged.
	Generate(ctx context.Context, req GenerateRequest, callback StreamCallback) error

	ListModels(ctx context.Context) ([]ModelInfo, error)

	GetModel() string

	SetModel(model string)

	// Ping checks if the provider is reachable with the configured credential.
	Ping(ctx context.Context) error
}

// StreamCallback receives each streamed fragment.
type StreamCallback func(chunk string) error

// ProviderFactory builds a provider for one exchange. The credential is
// passed on every call so a key entered mid-session takes effect at once.
type ProviderFactory func(providerID, apiKey, modelID string) (Provider, error)

// GenerateRequest is everything a provider needs for one exchange.
type GenerateRequest struct {
	ProviderID        string
	Model             string
	APIKey            string
	Instruction       string
	PriorHTML         string // empty for a fresh template
	SystemInstruction string
	Temperature       float64
}

// Prompt is the user turn sent to the model.
func (r GenerateRequest) Prompt() string {
	return BuildPrompt(r.Instruction, r.PriorHTML)
}

func (r GenerateRequest) IsEdit() bool {
	return r.PriorHTML != ""
}

// ModelInfo describes a selectable model.
type ModelInfo struct {
	ID          string // name used in API calls
	Name        string // display name
	Description string
	Provider    string
	Size        int64
}

// RequiresCredential reports whether providerID needs an API key. Ollama
// runs locally without one.
func RequiresCredential(providerID string) bool {
	return providerID != "ollama"
}

const modelCacheTTL = time.Hour
