package provider

import (
	"fmt"

	"mailcraft/config"
	"mailcraft/model"
)

// NewProvider creates a provider based on configuration.
//
// This is the centralized factory function for creating any provider type.
// It dispatches to the matching constructor based on Config.Type.
//
// Returns an error if:
//   - The provider type is unknown
//   - A cloud provider is missing its API key
//   - The provider-specific constructor fails (e.g., invalid URL)
func NewProvider(cfg Config) (model.Provider, error) {
	var (
		p   model.Provider
		err error
	)

	switch cfg.Type {
	case ProviderTypeGemini:
		var gp *GeminiProvider
		gp, err = NewGeminiProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
		p = gp
	case ProviderTypeOllama:
		var op *OllamaProvider
		op, err = NewOllamaProvider(cfg.BaseURL, cfg.Model)
		p = op
	case ProviderTypeOpenRouter:
		var rp *OpenRouterProvider
		rp, err = NewOpenRouterProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
		p = rp
	case ProviderTypeOpenAI:
		var ap *OpenAIProvider
		ap, err = NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
		p = ap
	case ProviderTypeAnthropic:
		var cp *AnthropicProvider
		cp, err = NewAnthropicProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
		p = cp
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}

	// Keep a failed constructor from leaking a typed nil through the interface.
	if err != nil {
		return nil, err
	}
	return p, nil
}

// MapProviderIDToType converts a config provider ID to its ProviderType.
//
// For unknown IDs, returns the ID cast as ProviderType (NewProvider will error).
func MapProviderIDToType(id string) ProviderType {
	switch id {
	case "gemini":
		return ProviderTypeGemini
	case "ollama":
		return ProviderTypeOllama
	case "openrouter":
		return ProviderTypeOpenRouter
	case "openai":
		return ProviderTypeOpenAI
	case "anthropic":
		return ProviderTypeAnthropic
	default:
		return ProviderType(id)
	}
}

// Factory returns a model.ProviderFactory that builds providers with the
// base URLs from cfg. A disabled provider is refused.
func Factory(cfg *config.Config) model.ProviderFactory {
	return func(providerID, apiKey, modelID string) (model.Provider, error) {
		pc := cfg.Provider(providerID)
		if !pc.Enabled {
			return nil, fmt.Errorf("provider %s is disabled in config.toml", providerID)
		}

		config.DebugLog.Debugw("creating provider", "provider", providerID, "model", modelID, "base_url", pc.BaseURL)

		return NewProvider(Config{
			Type:    MapProviderIDToType(providerID),
			BaseURL: pc.BaseURL,
			Model:   modelID,
			APIKey:  apiKey,
		})
	}
}
