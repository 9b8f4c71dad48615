package model

import (
	"context"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"mailcraft/config"
)

// FetchModelList lists models for providerID. Cloud results are cached for
// an hour; Ollama is always asked fresh.
func (m *Model) FetchModelList(providerID string) tea.Cmd {
	if providerID != "ollama" {
		if cached, ok := m.ModelCache[providerID]; ok && time.Now().Before(m.CacheExpiry[providerID]) {
			config.DebugLog.Debugw("using cached models", "provider", providerID)
			return func() tea.Msg {
				return ModelsListMsg{ProviderID: providerID, Models: cached}
			}
		}
	}

	factory := m.NewProvider
	apiKey := m.Credentials.Get(config.CredentialKey(providerID))
	ctx := m.Context()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		p, err := factory(providerID, apiKey, "")
		if err != nil {
			return ModelsListMsg{ProviderID: providerID, Err: err}
		}
		models, err := p.ListModels(ctx)
		if err != nil {
			return ModelsListMsg{ProviderID: providerID, Err: err}
		}

		sort.SliceStable(models, func(i, j int) bool {
			return models[i].Name < models[j].Name
		})
		return ModelsListMsg{ProviderID: providerID, Models: models}
	}
}

// CacheModels stores a successful listing.
func (m *Model) CacheModels(providerID string, models []ModelInfo) {
	if providerID == "ollama" || len(models) == 0 {
		return
	}
	m.ModelCache[providerID] = models
	m.CacheExpiry[providerID] = time.Now().Add(modelCacheTTL)
}

// ClearModelCache drops the cache for one provider, or all when empty.
func (m *Model) ClearModelCache(providerID string) {
	if providerID == "" {
		m.ModelCache = make(map[string][]ModelInfo)
		m.CacheExpiry = make(map[string]time.Time)
		return
	}
	delete(m.ModelCache, providerID)
	delete(m.CacheExpiry, providerID)
}

// SaveCredentialCmd stores the key, persists it and then pings the provider.
// Persisting happens synchronously so the key is used by the next exchange.
func (m *Model) SaveCredentialCmd(key string) tea.Cmd {
	if err := m.SetCredential(key); err != nil {
		return func() tea.Msg { return CredentialSavedMsg{Err: err} }
	}
	m.ClearModelCache(m.ProviderID)

	saved := func() tea.Msg { return CredentialSavedMsg{} }
	if key == "" {
		return saved
	}
	return tea.Batch(saved, m.PingProvider())
}

// PingProvider checks the current provider with the stored credential.
func (m *Model) PingProvider() tea.Cmd {
	providerID := m.ProviderID
	modelID := m.ModelID
	apiKey := m.APIKey()
	factory := m.NewProvider
	ctx := m.Context()

	return func() tea.Msg {
		if RequiresCredential(providerID) && apiKey == "" {
			return ProviderPingMsg{ProviderID: providerID, Err: &CredentialError{ProviderID: providerID}}
		}
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		p, err := factory(providerID, apiKey, modelID)
		if err != nil {
			return ProviderPingMsg{ProviderID: providerID, Err: err}
		}
		return ProviderPingMsg{ProviderID: providerID, Err: p.Ping(ctx)}
	}
}
