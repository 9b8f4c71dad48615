package provider

import (
	"context"
	"fmt"
	"sort"
	"time"

	"mailcraft/config"
	"mailcraft/model"
)

// Validate checks a provider's credential by pinging it. Used by the CLI
// before a key is stored.
func Validate(ctx context.Context, cfg *config.Config, providerID, apiKey string) error {
	if model.RequiresCredential(providerID) && apiKey == "" {
		return &model.CredentialError{ProviderID: providerID}
	}

	p, err := Factory(cfg)(providerID, apiKey, "")
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	config.DebugLog.Debugw("provider ping successful", "provider", providerID)
	return nil
}

// FetchModels lists a provider's models sorted by display name.
func FetchModels(ctx context.Context, cfg *config.Config, providerID, apiKey string) ([]model.ModelInfo, error) {
	if model.RequiresCredential(providerID) && apiKey == "" {
		return nil, &model.CredentialError{ProviderID: providerID}
	}

	p, err := Factory(cfg)(providerID, apiKey, "")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	models, err := p.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(models, func(i, j int) bool {
		return models[i].Name < models[j].Name
	})
	return models, nil
}
