package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailcraft/config"
	"mailcraft/mailer"
	"mailcraft/model"
	"mailcraft/provider/testutil"
	"mailcraft/storage"
)

type testEnv struct {
	deps     *Dependencies
	mock     *testutil.MockProvider
	calls    int
	validate []string
}

// setupTest swaps loadDependencies for an in-memory setup rooted in a temp
// dir and resets every flag cobra may have kept from an earlier run.
func setupTest(t *testing.T, apiKey string) *testEnv {
	t.Helper()

	providerFlag, modelFlag = "", ""
	editFlag, outputFlag = "", ""
	skipVerifyFlag = false
	toFlag, subjectFlag = "", ""
	setDefaultFlag = ""

	dir := t.TempDir()
	cfg := &config.Config{
		DataDirectory:   dir,
		DefaultProvider: "gemini",
		DefaultModel:    "gemini-3-flash-preview",
		Temperature:     0.3,
		CredentialStore: config.NewCredentialStore(config.SecurityPlainText, ""),
	}
	cfg.Mailer.Recipient = "team@example.com"
	if apiKey != "" {
		cfg.CredentialStore.Set(config.CredentialKey("gemini"), apiKey)
	}

	sessions, err := storage.NewSessionStorage(dir)
	require.NoError(t, err)

	env := &testEnv{mock: testutil.NewMockProvider("mock-model")}
	env.deps = &Dependencies{
		Config:   cfg,
		Factory:  testutil.Factory(env.mock, &env.calls),
		Sessions: sessions,
		Mailer:   mailer.NewDevSender(filepath.Join(dir, "outbox")),
		Validate: func(ctx context.Context, providerID, key string) error {
			env.validate = append(env.validate, providerID+":"+key)
			return nil
		},
		ListModels: func(ctx context.Context, providerID, key string) ([]model.ModelInfo, error) {
			return env.mock.ListModels(ctx)
		},
	}

	orig := loadDependencies
	loadDependencies = func() (*Dependencies, error) { return env.deps, nil }
	t.Cleanup(func() { loadDependencies = orig })
	return env
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "mailcraft", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("provider"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("model"))

	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"generate", "key", "send", "preview", "models", "sessions"} {
		assert.Contains(t, names, want)
	}
}

func TestGenerate(t *testing.T) {
	t.Run("prints cleaned template", func(t *testing.T) {
		env := setupTest(t, "test-key")
		env.mock.GenerateFunc = testutil.StreamFragments("```html\n<ta", "ble></table>", "\n```")

		out, errOut, err := execute(t, "", "generate", "A welcome email")
		require.NoError(t, err)

		assert.Equal(t, "<table></table>\n", out)
		assert.Contains(t, errOut, "Generating with gemini")
		require.Len(t, env.mock.Requests(), 1)
		assert.Equal(t, "A welcome email", env.mock.Requests()[0].Instruction)
		assert.Empty(t, env.mock.Requests()[0].PriorHTML)
	})

	t.Run("reads instruction from stdin", func(t *testing.T) {
		env := setupTest(t, "test-key")

		out, _, err := execute(t, "A receipt email", "generate")
		require.NoError(t, err)

		assert.Contains(t, out, "<p>Mock template</p>")
		assert.Equal(t, "A receipt email", env.mock.Requests()[0].Instruction)
	})

	t.Run("edits a file into output", func(t *testing.T) {
		env := setupTest(t, "test-key")
		dir := t.TempDir()
		in := filepath.Join(dir, "in.html")
		out := filepath.Join(dir, "nested", "out.html")
		require.NoError(t, os.WriteFile(in, []byte("<p>old</p>"), 0600))

		stdout, _, err := execute(t, "", "generate", "--edit", in, "--output", out, "Make it blue")
		require.NoError(t, err)
		assert.Empty(t, stdout)

		assert.Equal(t, "<p>old</p>", env.mock.Requests()[0].PriorHTML)
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "<p>Mock template</p>", string(data))
	})

	t.Run("missing key never reaches the provider", func(t *testing.T) {
		env := setupTest(t, "")

		_, _, err := execute(t, "", "generate", "A welcome email")
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrMissingCredential))
		assert.Zero(t, env.calls)
	})

	t.Run("provider failure is reported", func(t *testing.T) {
		env := setupTest(t, "test-key")
		env.mock.GenerateFunc = testutil.StreamThenFail(errors.New("quota exceeded"), "<p>")

		_, _, err := execute(t, "", "generate", "A welcome email")
		require.Error(t, err)
		assert.Equal(t, "Gemini API Error: quota exceeded", err.Error())
	})

	t.Run("provider and model flags", func(t *testing.T) {
		env := setupTest(t, "")

		_, _, err := execute(t, "", "generate", "--provider", "ollama", "--model", "llama3.2", "A welcome email")
		require.NoError(t, err)

		req := env.mock.Requests()[0]
		assert.Equal(t, "ollama", req.ProviderID)
		assert.Equal(t, "llama3.2", req.Model)
	})

	t.Run("unknown provider", func(t *testing.T) {
		setupTest(t, "test-key")

		_, _, err := execute(t, "", "generate", "--provider", "nope", "A welcome email")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider")
	})
}

func TestKeyCommands(t *testing.T) {
	t.Run("set verifies and stores", func(t *testing.T) {
		env := setupTest(t, "")

		out, _, err := execute(t, "", "key", "set", "sk-1234567890abcd")
		require.NoError(t, err)

		assert.Equal(t, []string{"gemini:sk-1234567890abcd"}, env.validate)
		assert.Contains(t, out, "sk-1*********abcd")
		assert.Equal(t, "sk-1234567890abcd", env.deps.Config.CredentialStore.Get("gemini_api_key"))

		reloaded := config.NewCredentialStore(config.SecurityPlainText, "")
		require.NoError(t, reloaded.Load(env.deps.Config.DataDir()))
		assert.Equal(t, "sk-1234567890abcd", reloaded.Get("gemini_api_key"))
	})

	t.Run("failed verification stores nothing", func(t *testing.T) {
		env := setupTest(t, "")
		env.deps.Validate = func(context.Context, string, string) error {
			return errors.New("401 unauthorized")
		}

		_, _, err := execute(t, "", "key", "set", "bad-key")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "key was not stored")
		assert.Empty(t, env.deps.Config.CredentialStore.Get("gemini_api_key"))
	})

	t.Run("skip verify", func(t *testing.T) {
		env := setupTest(t, "")

		_, _, err := execute(t, "", "key", "set", "--skip-verify", "offline-key")
		require.NoError(t, err)
		assert.Empty(t, env.validate)
		assert.Equal(t, "offline-key", env.deps.Config.CredentialStore.Get("gemini_api_key"))
	})

	t.Run("ollama needs no key", func(t *testing.T) {
		setupTest(t, "")

		_, _, err := execute(t, "", "key", "set", "--provider", "ollama", "whatever")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not use an API key")
	})

	t.Run("show and clear", func(t *testing.T) {
		env := setupTest(t, "sk-1234567890abcd")

		out, _, err := execute(t, "", "key", "show")
		require.NoError(t, err)
		assert.Contains(t, out, "sk-1*********abcd")
		assert.NotContains(t, out, "567890")

		_, _, err = execute(t, "", "key", "clear")
		require.NoError(t, err)
		assert.Empty(t, env.deps.Config.CredentialStore.Get("gemini_api_key"))

		out, _, err = execute(t, "", "key", "show")
		require.NoError(t, err)
		assert.Contains(t, out, "No Google Gemini API key stored")
	})
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"short", "*****"},
		{"12345678", "********"},
		{"abcd12345678wxyz", "abcd********wxyz"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, maskKey(tt.key))
		})
	}
}

func TestSend(t *testing.T) {
	t.Run("writes to the outbox", func(t *testing.T) {
		env := setupTest(t, "")
		file := filepath.Join(t.TempDir(), "welcome.html")
		require.NoError(t, os.WriteFile(file, []byte("<p>Hi</p>"), 0600))

		out, _, err := execute(t, "", "send", file)
		require.NoError(t, err)
		assert.Contains(t, out, "team@example.com")

		outbox := filepath.Join(env.deps.Config.DataDir(), "outbox")
		htmlFiles, err := filepath.Glob(filepath.Join(outbox, "*.html"))
		require.NoError(t, err)
		require.Len(t, htmlFiles, 1)
		body, err := os.ReadFile(htmlFiles[0])
		require.NoError(t, err)
		assert.Equal(t, "<p>Hi</p>", string(body))
	})

	t.Run("invalid recipient", func(t *testing.T) {
		setupTest(t, "")
		file := filepath.Join(t.TempDir(), "welcome.html")
		require.NoError(t, os.WriteFile(file, []byte("<p>Hi</p>"), 0600))

		_, _, err := execute(t, "", "send", file, "--to", "not-an-address")
		require.Error(t, err)
		assert.True(t, errors.Is(err, mailer.ErrInvalidParams))
	})

	t.Run("missing file", func(t *testing.T) {
		setupTest(t, "")

		_, _, err := execute(t, "", "send", filepath.Join(t.TempDir(), "nope.html"))
		require.Error(t, err)
	})
}

func TestModelsCommand(t *testing.T) {
	env := setupTest(t, "test-key")
	env.deps.Config.DefaultModel = "mock-model-2"

	out, _, err := execute(t, "", "models")
	require.NoError(t, err)

	assert.Contains(t, out, "mock-model-1")
	assert.Contains(t, out, "* ")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[2], "*"))
}

func TestModelsCommand_SetDefault(t *testing.T) {
	env := setupTest(t, "test-key")
	require.NoError(t, config.CreateDefaultUserConfig(env.deps.Config.DataDir()))

	_, _, err := execute(t, "", "models", "--set-default", "gemini-3-pro-preview")
	require.NoError(t, err)

	userCfg, err := config.LoadUserConfig(env.deps.Config.DataDir())
	require.NoError(t, err)
	assert.Equal(t, "gemini", userCfg.Generation.Provider)
	assert.Equal(t, "gemini-3-pro-preview", userCfg.Generation.Model)
}

func TestSessionsCommands(t *testing.T) {
	const id = "2f1c6c1e-7a3b-4c55-9d7e-0c2a1b3d4e5f"
	env := setupTest(t, "")
	require.NoError(t, env.deps.Sessions.Save(&storage.Session{
		ID:       id,
		Name:     "Welcome email",
		Provider: "gemini",
		Template: "<p>Hi</p>",
		Messages: []storage.Message{
			{Role: "user", Content: "A welcome email for new users", Timestamp: time.Now()},
			{Role: "model", Content: "Template updated.", Timestamp: time.Now()},
		},
	}))

	out, _, err := execute(t, "", "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "Welcome email")

	out, _, err = execute(t, "", "sessions", "search", "NEW USERS")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, _, err = execute(t, "", "sessions", "search", "invoice")
	require.NoError(t, err)
	assert.Contains(t, out, "No messages match")

	_, _, err = execute(t, "", "sessions", "delete", id)
	require.NoError(t, err)

	out, _, err = execute(t, "", "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found.")

	_, _, err = execute(t, "", "sessions", "delete", id)
	require.Error(t, err)
}

func TestNewSender(t *testing.T) {
	cfg := &config.Config{DataDirectory: t.TempDir()}
	cfg.Mailer.DevOutputDir = "outbox"

	sender, err := newSender(cfg)
	require.NoError(t, err)
	dev, ok := sender.(*mailer.DevSender)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(cfg.DataDir(), "outbox"), dev.Dir())

	// An unusable Postmark setup falls back to files.
	cfg.PostmarkServerToken = "token"
	cfg.Mailer.SenderEmail = "not-an-address"
	sender, err = newSender(cfg)
	require.NoError(t, err)
	_, ok = sender.(*mailer.DevSender)
	assert.True(t, ok)
}
