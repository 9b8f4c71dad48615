package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "MAILCRAFT_"

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type GenerationConfig struct {
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
}

type PreviewConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

type MailerConfig struct {
	SenderEmail   string `toml:"sender_email"`
	SupportEmail  string `toml:"support_email,omitempty"`
	Recipient     string `toml:"recipient,omitempty"`
	MessageStream string `toml:"message_stream,omitempty"`
	DevOutputDir  string `toml:"dev_output_dir,omitempty"`
}

type SecurityConfig struct {
	CredentialStorage SecurityMethod `toml:"credential_storage"`
	SSHKeyPath        string         `toml:"ssh_key_path,omitempty"`
}

type UserConfig struct {
	Generation GenerationConfig `toml:"generation"`
	Providers  []ProviderConfig `toml:"providers"`
	Preview    PreviewConfig    `toml:"preview"`
	Mailer     MailerConfig     `toml:"mailer"`
	Security   SecurityConfig   `toml:"security"`
}

// Config is the merged runtime configuration: settings.toml, the user's
// config.toml, then MAILCRAFT_* environment overrides.
type Config struct {
	DataDirectory   string
	DefaultProvider string
	DefaultModel    string
	Temperature     float64
	Providers       []ProviderConfig
	Preview         PreviewConfig
	Mailer          MailerConfig
	Security        SecurityConfig

	// Postmark tokens are secrets and only ever come from the environment.
	PostmarkServerToken  string
	PostmarkAccountToken string

	CredentialStore *CredentialStore
}

// envOverrides mirrors the subset of Config that may be set from the environment.
type envOverrides struct {
	DataDir              string   `env:"DATA_DIR"`
	Provider             string   `env:"PROVIDER"`
	Model                string   `env:"MODEL"`
	Temperature          *float64 `env:"TEMPERATURE"`
	OllamaHost           string   `env:"OLLAMA_HOST"`
	PreviewEnabled       *bool    `env:"PREVIEW_ENABLED"`
	PreviewAddr          string   `env:"PREVIEW_ADDR"`
	SenderEmail          string   `env:"SENDER_EMAIL"`
	Recipient            string   `env:"RECIPIENT"`
	PostmarkServerToken  string   `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string   `env:"POSTMARK_ACCOUNT_TOKEN"`
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// Provider returns the configuration entry for id, or a default entry when
// the user config does not list it.
func (c *Config) Provider(id string) ProviderConfig {
	for _, p := range c.Providers {
		if p.ID == id {
			return p
		}
	}
	return ProviderConfig{
		ID:      id,
		Name:    ProviderDisplayName(id),
		Enabled: true,
		BaseURL: DefaultBaseURL(id),
	}
}

func (c *Config) applyUserConfig(u *UserConfig) {
	c.DefaultProvider = u.Generation.Provider
	c.DefaultModel = u.Generation.Model
	c.Temperature = u.Generation.Temperature
	c.Providers = u.Providers
	c.Preview = u.Preview
	c.Mailer = u.Mailer
	c.Security = u.Security
}

func (c *Config) applyEnvOverrides() error {
	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	if o.DataDir != "" {
		c.DataDirectory = o.DataDir
	}
	if o.Provider != "" {
		c.DefaultProvider = o.Provider
	}
	if o.Model != "" {
		c.DefaultModel = o.Model
	}
	if o.Temperature != nil {
		c.Temperature = *o.Temperature
	}
	if o.OllamaHost != "" {
		c.setBaseURL("ollama", o.OllamaHost)
	}
	if o.PreviewEnabled != nil {
		c.Preview.Enabled = *o.PreviewEnabled
	}
	if o.PreviewAddr != "" {
		c.Preview.Addr = o.PreviewAddr
	}
	if o.SenderEmail != "" {
		c.Mailer.SenderEmail = o.SenderEmail
	}
	if o.Recipient != "" {
		c.Mailer.Recipient = o.Recipient
	}
	c.PostmarkServerToken = o.PostmarkServerToken
	c.PostmarkAccountToken = o.PostmarkAccountToken
	return nil
}

func (c *Config) setBaseURL(id, url string) {
	for i := range c.Providers {
		if c.Providers[i].ID == id {
			c.Providers[i].BaseURL = url
			return
		}
	}
	p := c.Provider(id)
	p.BaseURL = url
	c.Providers = append(c.Providers, p)
}

// Load reads settings.toml and the user config.toml (creating commented
// defaults on first run), applies environment overrides, prepares the data
// directory and loads the credential store.
func Load() (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	defaults := DefaultUserConfig()
	cfg := &Config{DataDirectory: DefaultSystemConfig().DataDirectory}
	cfg.applyUserConfig(defaults)

	// The data directory itself may be overridden, so resolve it before
	// reading the user config that lives inside it.
	if dir := os.Getenv(EnvPrefix + "DATA_DIR"); dir != "" {
		cfg.DataDirectory = dir
	} else {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		cfg.DataDirectory = systemCfg.DataDirectory
	}

	dataDir := cfg.DataDir()
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.applyUserConfig(userCfg)

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.fillDefaults(defaults)

	store, err := NewCredentialStoreFromConfig(cfg.Security)
	if err != nil {
		return nil, err
	}
	if pass := os.Getenv(EnvPrefix + "SSH_KEY_PASSPHRASE"); pass != "" {
		store.SetPassphrase(pass)
	}
	if err := store.Load(dataDir); err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	cfg.CredentialStore = store

	return cfg, nil
}

// fillDefaults restores values a hand-edited config may have blanked out.
func (c *Config) fillDefaults(d *UserConfig) {
	if c.DefaultProvider == "" {
		c.DefaultProvider = d.Generation.Provider
	}
	if c.DefaultModel == "" && c.DefaultProvider == d.Generation.Provider {
		c.DefaultModel = d.Generation.Model
	}
	if c.Temperature < 0 {
		c.Temperature = d.Generation.Temperature
	}
	if c.Preview.Addr == "" {
		c.Preview.Addr = d.Preview.Addr
	}
	if c.Security.CredentialStorage == "" {
		c.Security.CredentialStorage = SecurityPlainText
	}
	if c.Mailer.DevOutputDir == "" {
		c.Mailer.DevOutputDir = "outbox"
	}
}

// MailerOutputDir resolves the dev sender directory relative to the data dir.
func (c *Config) MailerOutputDir() string {
	dir := ExpandPath(c.Mailer.DevOutputDir)
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.DataDir(), dir)
}
