package commands

import (
	"context"
	"errors"
	"fmt"

	"mailcraft/config"
	"mailcraft/mailer"
	"mailcraft/model"
	"mailcraft/provider"
	"mailcraft/storage"
)

// Dependencies holds everything a command needs beyond its flags. It is
// built once per invocation through loadDependencies, which tests replace.
type Dependencies struct {
	Config   *config.Config
	Factory  model.ProviderFactory
	Sessions *storage.SessionStorage
	Prefs    *storage.PrefStore
	Mailer   mailer.EmailSender

	// Validate pings a provider with a candidate key.
	Validate func(ctx context.Context, providerID, apiKey string) error
	// ListModels asks a provider for its models.
	ListModels func(ctx context.Context, providerID, apiKey string) ([]model.ModelInfo, error)

	closers []func()
}

// Close releases the pref store and flushes the debug log.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

var loadDependencies = defaultDependencies

func defaultDependencies() (*Dependencies, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	deps := &Dependencies{Config: cfg}
	deps.closers = append(deps.closers, config.InitDebugLog(cfg.DataDir()))

	deps.Sessions, err = storage.NewSessionStorage(cfg.DataDir())
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to initialize session storage: %w", err)
	}

	prefs, err := storage.NewPrefStore(cfg.DataDir())
	if err != nil {
		// Preferences are a convenience; run without them.
		config.DebugLog.Warnw("pref store unavailable", "err", err)
	} else {
		deps.Prefs = prefs
		deps.closers = append(deps.closers, func() { _ = prefs.Close() })
	}

	deps.Mailer, err = newSender(cfg)
	if err != nil {
		deps.Close()
		return nil, err
	}

	deps.Factory = provider.Factory(cfg)
	deps.Validate = func(ctx context.Context, providerID, apiKey string) error {
		return provider.Validate(ctx, cfg, providerID, apiKey)
	}
	deps.ListModels = func(ctx context.Context, providerID, apiKey string) ([]model.ModelInfo, error) {
		return provider.FetchModels(ctx, cfg, providerID, apiKey)
	}
	return deps, nil
}

// newSender prefers Postmark and falls back to writing files when the
// Postmark settings are unusable.
func newSender(cfg *config.Config) (mailer.EmailSender, error) {
	sender, err := mailer.New(mailer.Config{
		PostmarkServerToken:  cfg.PostmarkServerToken,
		PostmarkAccountToken: cfg.PostmarkAccountToken,
		SenderEmail:          cfg.Mailer.SenderEmail,
		SupportEmail:         cfg.Mailer.SupportEmail,
		MessageStream:        cfg.Mailer.MessageStream,
		DevOutputDir:         cfg.MailerOutputDir(),
	})
	if err == nil {
		return sender, nil
	}
	if !errors.Is(err, mailer.ErrInvalidConfig) {
		return nil, err
	}
	config.DebugLog.Warnw("falling back to dev sender", "dir", cfg.MailerOutputDir(), "err", err)
	return mailer.NewDevSender(cfg.MailerOutputDir()), nil
}

// newSessionModel builds the session state the way every command sees it:
// stored preferences first, then --provider and --model. Flag overrides are
// not persisted.
func newSessionModel(ctx context.Context, deps *Dependencies, opts model.Options) (*model.Model, error) {
	if opts.SessionStorage == nil {
		opts.SessionStorage = deps.Sessions
	}
	if opts.Mailer == nil {
		opts.Mailer = deps.Mailer
	}
	if opts.Prefs == nil && deps.Prefs != nil {
		opts.Prefs = deps.Prefs
	}
	opts.Version = Version

	m := model.NewModel(ctx, deps.Config, deps.Factory, opts)

	if providerFlag != "" {
		if !config.IsKnownProvider(providerFlag) {
			return nil, fmt.Errorf("unknown provider %q (known: %v)", providerFlag, config.KnownProviders)
		}
		m.ProviderID = providerFlag
		m.ModelID = ""
	}
	if modelFlag != "" {
		m.ModelID = modelFlag
	}
	return m, nil
}
