package provider

import (
	"testing"

	"mailcraft/config"
	"mailcraft/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name:   "gemini provider",
			config: Config{Type: ProviderTypeGemini, APIKey: "test-key"},
		},
		{
			name:        "gemini provider without key",
			config:      Config{Type: ProviderTypeGemini},
			expectError: true,
		},
		{
			name:   "ollama provider with defaults",
			config: Config{Type: ProviderTypeOllama},
		},
		{
			name: "ollama provider with custom config",
			config: Config{
				Type:    ProviderTypeOllama,
				BaseURL: "http://localhost:11434",
				Model:   "llama3.1",
			},
		},
		{
			name: "openai provider",
			config: Config{
				Type:   ProviderTypeOpenAI,
				Model:  "gpt-4.1-mini",
				APIKey: "test-key",
			},
		},
		{
			name:        "openai provider without key",
			config:      Config{Type: ProviderTypeOpenAI},
			expectError: true,
		},
		{
			name:   "openrouter provider",
			config: Config{Type: ProviderTypeOpenRouter, APIKey: "test-key"},
		},
		{
			name: "anthropic provider",
			config: Config{
				Type:   ProviderTypeAnthropic,
				Model:  "claude-sonnet-4-5-20250929",
				APIKey: "test-key",
			},
		},
		{
			name:        "unknown provider type",
			config:      Config{Type: ProviderType("unknown"), Model: "test"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)

			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				if p != nil {
					t.Errorf("expected nil provider, got %T", p)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p == nil {
				t.Fatal("expected non-nil provider, got nil")
			}
			if p.GetModel() == "" {
				t.Error("GetModel() returned empty string")
			}
		})
	}
}

func TestNewProvider_DefaultModels(t *testing.T) {
	p, err := NewProvider(Config{Type: ProviderTypeGemini, APIKey: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.GetModel(); got != DefaultGeminiModel {
		t.Errorf("GetModel() = %s, want %s", got, DefaultGeminiModel)
	}

	p.SetModel("gemini-3-pro-preview")
	if got := p.GetModel(); got != "gemini-3-pro-preview" {
		t.Errorf("after SetModel, GetModel() = %s", got)
	}
}

func TestMapProviderIDToType(t *testing.T) {
	tests := map[string]ProviderType{
		"gemini":     ProviderTypeGemini,
		"ollama":     ProviderTypeOllama,
		"openrouter": ProviderTypeOpenRouter,
		"openai":     ProviderTypeOpenAI,
		"anthropic":  ProviderTypeAnthropic,
		"mystery":    ProviderType("mystery"),
	}
	for id, want := range tests {
		if got := MapProviderIDToType(id); got != want {
			t.Errorf("MapProviderIDToType(%q) = %s, want %s", id, got, want)
		}
	}
}

func TestFactory(t *testing.T) {
	cfg := &config.Config{Providers: config.DefaultProviders()}
	factory := Factory(cfg)

	p, err := factory("ollama", "", "llama3.2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	op, ok := p.(*OllamaProvider)
	if !ok {
		t.Fatalf("expected *OllamaProvider, got %T", p)
	}
	if op.GetModel() != "llama3.2" {
		t.Errorf("GetModel() = %s, want llama3.2", op.GetModel())
	}

	if _, err := factory("gemini", "", ""); err == nil {
		t.Error("expected an error for gemini without a key")
	}
}

func TestFactory_DisabledProvider(t *testing.T) {
	cfg := &config.Config{Providers: []config.ProviderConfig{{ID: "openai", Enabled: false}}}
	if _, err := Factory(cfg)("openai", "k", ""); err == nil {
		t.Error("expected an error for a disabled provider")
	}
}

func TestStripProviderPrefix(t *testing.T) {
	if got := stripProviderPrefix("anthropic/claude-3.5-sonnet"); got != "claude-3.5-sonnet" {
		t.Errorf("got %s", got)
	}
	if got := stripProviderPrefix("plain"); got != "plain" {
		t.Errorf("got %s", got)
	}
}

// Compile-time checks that every backend implements model.Provider.
var (
	_ model.Provider = (*GeminiProvider)(nil)
	_ model.Provider = (*OpenAIProvider)(nil)
	_ model.Provider = (*OpenRouterProvider)(nil)
	_ model.Provider = (*AnthropicProvider)(nil)
	_ model.Provider = (*OllamaProvider)(nil)
)
