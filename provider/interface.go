// Package provider implements model.Provider for the supported LLM backends.
//
// mailcraft talks to Google Gemini by default and can also use OpenAI,
// Anthropic, OpenRouter or a local Ollama server. Every backend streams the
// answer to a single-turn prompt (the instruction, or an edit request that
// embeds the current template) under the email system instruction.
//
// # Architecture
//
//   - model.Provider defines the contract (in the model package to avoid an
//     import cycle)
//   - provider.GeminiProvider, OpenAIProvider, OpenRouterProvider,
//     AnthropicProvider and OllamaProvider implement it
//   - provider.NewProvider() creates a provider from a Config
//   - provider.Factory() adapts NewProvider to model.ProviderFactory, filling
//     base URLs from the user configuration
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:   provider.ProviderTypeGemini,
//	    APIKey: key,
//	    Model:  "gemini-3-flash-preview",
//	})
//	if err != nil {
//	    // handle error
//	}
//	err = p.Generate(ctx, req, func(chunk string) error {
//	    fmt.Print(chunk)
//	    return nil
//	})
package provider

// Note: The Provider interface and StreamCallback are defined in the model package
// (model/provider.go) to avoid import cycles. This package implements model.Provider.

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeGemini     ProviderType = "gemini"
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // unused for Ollama
}

// maxOutputTokens bounds a single template. Complete HTML emails with inline
// styles are long.
const maxOutputTokens = 8192
