package config

import (
	"fmt"
)

// ProviderConfig is a [[providers]] entry in config.toml.
type ProviderConfig struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url,omitempty"`
}

// KnownProviders lists every provider id mailcraft can talk to, default first.
var KnownProviders = []string{"gemini", "openai", "anthropic", "openrouter", "ollama"}

func DefaultProviders() []ProviderConfig {
	providers := make([]ProviderConfig, 0, len(KnownProviders))
	for _, id := range KnownProviders {
		providers = append(providers, ProviderConfig{
			ID:      id,
			Name:    ProviderDisplayName(id),
			Enabled: true,
			BaseURL: DefaultBaseURL(id),
		})
	}
	return providers
}

func IsKnownProvider(id string) bool {
	for _, known := range KnownProviders {
		if known == id {
			return true
		}
	}
	return false
}

func ProviderDisplayName(providerID string) string {
	switch providerID {
	case "gemini":
		return "Google Gemini"
	case "ollama":
		return "Ollama"
	case "openrouter":
		return "OpenRouter"
	case "anthropic":
		return "Anthropic"
	case "openai":
		return "OpenAI"
	default:
		return providerID
	}
}

func DefaultBaseURL(providerID string) string {
	switch providerID {
	case "ollama":
		return "http://localhost:11434"
	case "openrouter":
		return "https://openrouter.ai/api/v1"
	case "anthropic":
		return "https://api.anthropic.com"
	case "openai":
		return "https://api.openai.com/v1"
	default:
		return ""
	}
}

// SetDefaultModel persists the provider and model choice to config.toml.
func SetDefaultModel(dataDir, providerID, modelID string) error {
	if !IsKnownProvider(providerID) {
		return fmt.Errorf("unknown provider: %s", providerID)
	}

	cfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Generation.Provider = providerID
	cfg.Generation.Model = modelID

	if err := SaveUserConfig(cfg, dataDir); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
