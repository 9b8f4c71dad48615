package config

const (
	DefaultProviderID  = "gemini"
	DefaultModelID     = "gemini-3-flash-preview"
	DefaultTemperature = 0.3
	DefaultPreviewAddr = "127.0.0.1:7878"
)

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/mailcraft",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Generation: GenerationConfig{
			Provider:    DefaultProviderID,
			Model:       DefaultModelID,
			Temperature: DefaultTemperature,
		},
		Providers: DefaultProviders(),
		Preview: PreviewConfig{
			Enabled: true,
			Addr:    DefaultPreviewAddr,
		},
		Mailer: MailerConfig{
			DevOutputDir: "outbox",
		},
		Security: SecurityConfig{
			CredentialStorage: SecurityPlainText,
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# mailcraft system configuration
# Location: ~/.config/mailcraft/settings.toml

# Directory where sessions, credentials and the user config are stored
data_directory = "~/.local/share/mailcraft"
`
}

func GenerateUserConfigTemplate() string {
	return `# mailcraft user configuration
# Location: <data_directory>/config.toml

[generation]
# gemini, openai, anthropic, openrouter or ollama
provider = "gemini"
model = "gemini-3-flash-preview"
temperature = 0.3

[preview]
# Serve a live browser preview of the template while you work
enabled = true
addr = "127.0.0.1:7878"

[mailer]
# Test emails go through Postmark when MAILCRAFT_POSTMARK_SERVER_TOKEN is set,
# otherwise they are written to dev_output_dir (relative to the data directory)
sender_email = ""
recipient = ""
# Postmark message stream for test sends
message_stream = "outbound"
dev_output_dir = "outbox"

[security]
# plaintext or ssh_key
credential_storage = "plaintext"
ssh_key_path = ""

[[providers]]
id = "gemini"
name = "Google Gemini"
enabled = true

[[providers]]
id = "ollama"
name = "Ollama"
enabled = true
base_url = "http://localhost:11434"
`
}
