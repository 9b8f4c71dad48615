package config

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestCredentialKey(t *testing.T) {
	assert.Equal(t, "gemini_api_key", CredentialKey("gemini"))
	assert.Equal(t, "openai_api_key", CredentialKey("openai"))
}

func TestCredentialStore_PlainTextRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store := NewCredentialStore(SecurityPlainText, "")
	require.NoError(t, store.Load(dir))
	assert.Empty(t, store.Get(CredentialKey("gemini")))

	store.Set(CredentialKey("gemini"), "AIza-test")
	require.NoError(t, store.Save(dir))

	info, err := os.Stat(filepath.Join(dir, "credentials.toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reloaded := NewCredentialStore(SecurityPlainText, "")
	require.NoError(t, reloaded.Load(dir))
	assert.Equal(t, "AIza-test", reloaded.Get("gemini_api_key"))

	reloaded.Delete("gemini_api_key")
	require.NoError(t, reloaded.Save(dir))

	again := NewCredentialStore(SecurityPlainText, "")
	require.NoError(t, again.Load(dir))
	assert.Empty(t, again.Get("gemini_api_key"))
}

func TestCredentialStore_SetIsNotPersistedWithoutSave(t *testing.T) {
	dir := t.TempDir()

	store := NewCredentialStore(SecurityPlainText, "")
	store.Set("gemini_api_key", "unsaved")

	fresh := NewCredentialStore(SecurityPlainText, "")
	require.NoError(t, fresh.Load(dir))
	assert.Empty(t, fresh.Get("gemini_api_key"))
}

func writeTestKey(t *testing.T) string {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	block, err := ssh.MarshalPrivateKey(priv, "test")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0600))
	return path
}

func TestCredentialStore_SSHKeyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	keyPath := writeTestKey(t)

	store := NewCredentialStore(SecuritySSHKey, keyPath)
	require.NoError(t, store.Load(dir))
	store.Set("gemini_api_key", "secret")
	require.NoError(t, store.Save(dir))

	raw, err := os.ReadFile(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")

	reloaded := NewCredentialStore(SecuritySSHKey, keyPath)
	require.NoError(t, reloaded.Load(dir))
	assert.Equal(t, "secret", reloaded.Get("gemini_api_key"))
}

func TestSSHCipher_TamperedCiphertext(t *testing.T) {
	c, err := NewSSHCipher(writeTestKey(t), "")
	require.NoError(t, err)

	enc, err := c.Encrypt([]byte("hello"))
	require.NoError(t, err)

	enc[len(enc)-1] ^= 0xff
	_, err = c.Decrypt(enc)
	assert.Error(t, err)

	_, err = c.Decrypt([]byte("short"))
	assert.Error(t, err)
}

func TestNewCredentialStoreFromConfig(t *testing.T) {
	store, err := NewCredentialStoreFromConfig(SecurityConfig{})
	require.NoError(t, err)
	assert.Equal(t, SecurityPlainText, store.Method())

	_, err = NewCredentialStoreFromConfig(SecurityConfig{CredentialStorage: "vault"})
	assert.Error(t, err)
}

func TestLoad_DefaultsAndEnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("MAILCRAFT_DATA_DIR", "")
	t.Setenv("MAILCRAFT_MODEL", "")
	t.Setenv("MAILCRAFT_PREVIEW_ADDR", "127.0.0.1:9999")
	t.Setenv("MAILCRAFT_OLLAMA_HOST", "http://ollama.lan:11434")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".local", "share", "mailcraft"), cfg.DataDir())
	assert.Equal(t, DefaultProviderID, cfg.DefaultProvider)
	assert.Equal(t, DefaultModelID, cfg.DefaultModel)
	assert.InDelta(t, DefaultTemperature, cfg.Temperature, 1e-9)
	assert.Equal(t, "127.0.0.1:9999", cfg.Preview.Addr)
	assert.Equal(t, "outbound", cfg.Mailer.MessageStream)
	assert.Equal(t, "http://ollama.lan:11434", cfg.Provider("ollama").BaseURL)
	assert.NotNil(t, cfg.CredentialStore)

	assert.FileExists(t, filepath.Join(home, ".config", "mailcraft", "settings.toml"))
	assert.FileExists(t, filepath.Join(cfg.DataDir(), "config.toml"))
}

func TestLoad_DataDirFromEnv(t *testing.T) {
	home := t.TempDir()
	data := filepath.Join(t.TempDir(), "data")
	t.Setenv("HOME", home)
	t.Setenv("MAILCRAFT_DATA_DIR", data)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, data, cfg.DataDir())
	assert.Equal(t, filepath.Join(data, "outbox"), cfg.MailerOutputDir())

	info, err := os.Stat(data)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestSetDefaultModel(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, SetDefaultModel(dir, "gemini", "gemini-3-pro-preview"))

	cfg, err := LoadUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.Generation.Provider)
	assert.Equal(t, "gemini-3-pro-preview", cfg.Generation.Model)

	assert.Error(t, SetDefaultModel(dir, "bogus", "x"))
}

func TestConfigProvider_FallsBackToDefaults(t *testing.T) {
	cfg := &Config{}
	p := cfg.Provider("openrouter")
	assert.Equal(t, "OpenRouter", p.Name)
	assert.Equal(t, "https://openrouter.ai/api/v1", p.BaseURL)
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	assert.Equal(t, "/home/tester/mail", ExpandPath("~/mail"))
	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, "/tmp/x", ExpandPath("/tmp//x"))
}
