package model_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"mailcraft/config"
	"mailcraft/mailer"
	"mailcraft/model"
	"mailcraft/provider/testutil"
	"mailcraft/storage"
)

type memPrefs map[string]string

func (p memPrefs) Get(key string) (string, bool, error) {
	v, ok := p[key]
	return v, ok, nil
}

func (p memPrefs) Set(key, value string) error {
	p[key] = value
	return nil
}

type recordingPublisher struct {
	published []string
}

func (r *recordingPublisher) Publish(html string) {
	r.published = append(r.published, html)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDirectory:   t.TempDir(),
		DefaultProvider: "gemini",
		DefaultModel:    "gemini-3-flash-preview",
		Temperature:     0.3,
		CredentialStore: config.NewCredentialStore(config.SecurityPlainText, ""),
	}
}

func newTestModel(t *testing.T, p model.Provider, calls *int) *model.Model {
	t.Helper()
	cfg := testConfig(t)
	cfg.CredentialStore.Set(config.CredentialKey("gemini"), "test-key")
	return model.NewModel(context.Background(), cfg, testutil.Factory(p, calls), model.Options{})
}

var ignoreTimes = cmpopts.IgnoreFields(model.Message{}, "Timestamp")

func TestNewModel_StartsWithPlaceholder(t *testing.T) {
	pub := &recordingPublisher{}
	cfg := testConfig(t)
	m := model.NewModel(context.Background(), cfg, nil, model.Options{Preview: pub})

	assert.Equal(t, model.PlaceholderTemplate, m.Template)
	assert.Empty(t, m.Messages)
	assert.False(t, m.Generating)
	assert.False(t, m.HasTemplate())
	assert.Equal(t, []string{model.PlaceholderTemplate}, pub.published)
}

func TestNewModel_LoadsPrefs(t *testing.T) {
	prefs := memPrefs{
		storage.PrefProvider: "anthropic",
		storage.PrefModel:    "claude-sonnet-4-5",
		storage.PrefViewMode: "code",
	}
	m := model.NewModel(context.Background(), testConfig(t), nil, model.Options{Prefs: prefs})

	assert.Equal(t, "anthropic", m.ProviderID)
	assert.Equal(t, "claude-sonnet-4-5", m.ModelID)
	assert.Equal(t, model.ViewCode, m.ViewMode)
}

func TestNewModel_IgnoresUnknownProviderPref(t *testing.T) {
	prefs := memPrefs{storage.PrefProvider: "nope", storage.PrefViewMode: "sideways"}
	m := model.NewModel(context.Background(), testConfig(t), nil, model.Options{Prefs: prefs})

	assert.Equal(t, "gemini", m.ProviderID)
	assert.Equal(t, model.ViewSplit, m.ViewMode)
}

func TestSubmit_Rejections(t *testing.T) {
	m := newTestModel(t, testutil.NewMockProvider("m"), nil)

	_, err := m.Submit("   \n\t")
	assert.ErrorIs(t, err, model.ErrEmptyInput)
	assert.Empty(t, m.Messages)
	assert.Equal(t, model.PlaceholderTemplate, m.Template)

	_, err = m.Submit("a newsletter")
	require.NoError(t, err)

	before := append([]model.Message(nil), m.Messages...)
	_, err = m.Submit("another one")
	assert.ErrorIs(t, err, model.ErrGenerationInFlight)
	assert.Empty(t, cmp.Diff(before, m.Messages, ignoreTimes))
}

func TestSubmit_FreshRequestHasNoPriorHTML(t *testing.T) {
	m := newTestModel(t, testutil.NewMockProvider("m"), nil)

	req, err := m.Submit("a welcome email")
	require.NoError(t, err)

	assert.False(t, req.IsEdit())
	assert.Equal(t, "a welcome email", req.Prompt())
	assert.Equal(t, "test-key", req.APIKey)
	assert.Equal(t, model.SystemInstruction, req.SystemInstruction)
	assert.True(t, m.Generating)
	assert.Equal(t, "", m.Template)
}

func TestSubmit_EditEmbedsCurrentTemplate(t *testing.T) {
	m := newTestModel(t, testutil.NewMockProvider("m"), nil)
	m.Template = "<p>old</p>"

	req, err := m.Submit("make it blue")
	require.NoError(t, err)

	assert.True(t, req.IsEdit())
	assert.Equal(t, "<p>old</p>", req.PriorHTML)
	assert.Contains(t, req.Prompt(), `instruction: "make it blue"`)
	assert.Contains(t, req.Prompt(), "<p>old</p>")
}

func TestApplyDisplay_OnlyWhileGenerating(t *testing.T) {
	m := newTestModel(t, testutil.NewMockProvider("m"), nil)

	m.ApplyDisplay("<b>ignored</b>")
	assert.Equal(t, model.PlaceholderTemplate, m.Template)

	_, err := m.Submit("x")
	require.NoError(t, err)
	m.ApplyDisplay("<b>live</b>")
	assert.Equal(t, "<b>live</b>", m.Template)
}

func TestExchange_Success(t *testing.T) {
	mock := testutil.NewMockProvider("m")
	mock.GenerateFunc = testutil.StreamFragments("```html\n<ta", "ble></table>", "\n```")
	calls := 0
	m := newTestModel(t, mock, &calls)

	var displays []string
	err := m.Exchange(context.Background(), "a receipt", func(d string) { displays = append(displays, d) })
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"<ta", "<table></table>", "<table></table>\n```"}, displays)
	assert.Equal(t, "<table></table>", m.Template)
	assert.False(t, m.Generating)
	assert.True(t, m.HasTemplate())

	want := []model.Message{
		{Role: model.RoleUser, Content: "a receipt"},
		{Role: model.RoleModel, Content: model.ConfirmationMessage},
	}
	if diff := cmp.Diff(want, m.Messages, ignoreTimes); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestExchange_SecondTurnIsEdit(t *testing.T) {
	mock := testutil.NewMockProvider("m")
	m := newTestModel(t, mock, nil)

	require.NoError(t, m.Exchange(context.Background(), "first", nil))
	require.NoError(t, m.Exchange(context.Background(), "second", nil))

	reqs := mock.Requests()
	require.Len(t, reqs, 2)
	assert.False(t, reqs[0].IsEdit())
	assert.True(t, reqs[1].IsEdit())
	assert.Equal(t, "<p>Mock template</p>", reqs[1].PriorHTML)
	assert.Len(t, m.Messages, 4)
}

func TestExchange_ProviderFailureKeepsPartial(t *testing.T) {
	mock := testutil.NewMockProvider("m")
	mock.GenerateFunc = testutil.StreamThenFail(errors.New("quota exceeded"), "<div>", "half")
	m := newTestModel(t, mock, nil)

	err := m.Exchange(context.Background(), "promo", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrGenerationFailed)

	assert.False(t, m.Generating)
	assert.Equal(t, "<div>half", m.Template)
	last := m.Messages[len(m.Messages)-1]
	assert.Equal(t, model.RoleModel, last.Role)
	assert.Equal(t, "Gemini API Error: quota exceeded", last.Content)
	assert.True(t, m.NeedsCredentialAttention())
}

func TestExchange_MissingCredentialSkipsProvider(t *testing.T) {
	calls := 0
	cfg := testConfig(t)
	m := model.NewModel(context.Background(), cfg, testutil.Factory(testutil.NewMockProvider("m"), &calls), model.Options{})

	err := m.Exchange(context.Background(), "anything", nil)
	assert.ErrorIs(t, err, model.ErrMissingCredential)
	assert.Equal(t, 0, calls)

	last := m.Messages[len(m.Messages)-1]
	assert.Contains(t, last.Content, "API Key is missing")
	assert.Contains(t, last.Content, "Google Gemini")
	assert.False(t, m.Generating)
}

func TestExchange_OllamaNeedsNoCredential(t *testing.T) {
	calls := 0
	cfg := testConfig(t)
	m := model.NewModel(context.Background(), cfg, testutil.Factory(testutil.NewMockProvider("llama3"), &calls), model.Options{})
	m.SetProvider("ollama", "llama3")

	require.NoError(t, m.Exchange(context.Background(), "anything", nil))
	assert.Equal(t, 1, calls)
}

func TestDescribeFailure(t *testing.T) {
	assert.Equal(t, model.GenericFailureMessage, model.DescribeFailure(nil))
	assert.Equal(t, model.GenericFailureMessage, model.DescribeFailure(errors.New("")))
	assert.Equal(t, "boom", model.DescribeFailure(errors.New("boom")))
}

// drive runs cmd and feeds every stream message back into the model until
// the stream ends.
func drive(t *testing.T, m *model.Model, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var seen []tea.Msg
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			break
		}
		seen = append(seen, msg)
		switch msg.(type) {
		case model.StreamChunkMsg:
			cmd = m.HandleStreamMsg(msg)
		case model.StreamDoneMsg, model.StreamErrorMsg:
			m.HandleStreamMsg(msg)
			cmd = nil
		default:
			cmd = nil
		}
	}
	return seen
}

func TestSendToModel_StreamsThroughMessages(t *testing.T) {
	defer goleak.VerifyNone(t)

	mock := testutil.NewMockProvider("m")
	mock.GenerateFunc = testutil.StreamFragments("<h1>", "Hi", "</h1>")
	m := newTestModel(t, mock, nil)

	req, err := m.Submit("greeting")
	require.NoError(t, err)

	seen := drive(t, m, m.SendToModel(req))
	require.Len(t, seen, 4)
	assert.IsType(t, model.StreamDoneMsg{}, seen[3])
	assert.Equal(t, "<h1>Hi</h1>", m.Template)
	assert.False(t, m.Generating)
}

func TestSendToModel_ErrorEndsStream(t *testing.T) {
	defer goleak.VerifyNone(t)

	mock := testutil.NewMockProvider("m")
	mock.GenerateFunc = testutil.StreamThenFail(errors.New("network down"), "<p>")
	m := newTestModel(t, mock, nil)

	req, err := m.Submit("x")
	require.NoError(t, err)

	seen := drive(t, m, m.SendToModel(req))
	require.NotEmpty(t, seen)
	errMsg, ok := seen[len(seen)-1].(model.StreamErrorMsg)
	require.True(t, ok)
	assert.Equal(t, "<p>", errMsg.Partial.Display)
	assert.Equal(t, "<p>", m.Template)
	assert.Contains(t, m.Messages[len(m.Messages)-1].Content, "network down")
}

func TestSessionPersistence_RoundTrip(t *testing.T) {
	cfg := testConfig(t)
	cfg.CredentialStore.Set(config.CredentialKey("gemini"), "k")
	ss, err := storage.NewSessionStorage(cfg.DataDir())
	require.NoError(t, err)

	factory := testutil.Factory(testutil.NewMockProvider("m"), nil)
	m := model.NewModel(context.Background(), cfg, factory, model.Options{SessionStorage: ss})
	require.NoError(t, m.Exchange(context.Background(), "spring sale banner", nil))
	require.NoError(t, m.SaveSessionNow())
	require.NotNil(t, m.CurrentSession)
	assert.Equal(t, "spring sale banner", m.CurrentSession.Name)

	restored := model.NewModel(context.Background(), cfg, factory, model.Options{
		SessionStorage: ss,
		LastSession:    ss.LoadCurrent(),
	})
	assert.Equal(t, m.Template, restored.Template)
	if diff := cmp.Diff(m.Messages, restored.Messages, ignoreTimes, cmpopts.IgnoreFields(model.Message{}, "Rendered")); diff != "" {
		t.Errorf("restored messages mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSession_RejectedWhileGenerating(t *testing.T) {
	m := newTestModel(t, testutil.NewMockProvider("m"), nil)
	_, err := m.Submit("x")
	require.NoError(t, err)

	assert.ErrorIs(t, m.LoadSession(&storage.Session{Template: "<p>other</p>"}), model.ErrGenerationInFlight)
	assert.ErrorIs(t, m.Reset(), model.ErrGenerationInFlight)
}

func TestExportTemplateNow(t *testing.T) {
	m := newTestModel(t, testutil.NewMockProvider("m"), nil)
	path := filepath.Join(t.TempDir(), "out.html")

	assert.ErrorIs(t, m.ExportTemplateNow(path), model.ErrNoTemplate)

	require.NoError(t, m.Exchange(context.Background(), "x", nil))
	require.NoError(t, m.ExportTemplateNow(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<p>Mock template</p>", string(data))
}

func TestSendTestEmail_DevSender(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.CredentialStore.Set(config.CredentialKey("gemini"), "k")
	cfg.Mailer.Recipient = "qa@example.com"

	m := model.NewModel(context.Background(), cfg, testutil.Factory(testutil.NewMockProvider("m"), nil), model.Options{
		Mailer: mailer.NewDevSender(dir),
	})
	assert.ErrorIs(t, m.SendTestEmail(context.Background(), ""), model.ErrNoTemplate)

	require.NoError(t, m.Exchange(context.Background(), "order shipped", nil))
	require.NoError(t, m.SendTestEmail(context.Background(), ""))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var meta string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".json") {
			b, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)
			meta = string(b)
		}
	}
	assert.Contains(t, meta, "qa@example.com")
	assert.Contains(t, meta, "[mailcraft test] order shipped")
}

func TestSetCredential_PersistsAndDeletes(t *testing.T) {
	cfg := testConfig(t)
	m := model.NewModel(context.Background(), cfg, nil, model.Options{})

	require.NoError(t, m.SetCredential("  secret  "))
	assert.True(t, m.HasCredential())

	reloaded := config.NewCredentialStore(config.SecurityPlainText, "")
	require.NoError(t, reloaded.Load(cfg.DataDir()))
	assert.Equal(t, "secret", reloaded.Get(config.CredentialKey("gemini")))

	require.NoError(t, m.SetCredential(""))
	assert.False(t, m.HasCredential())
}

func TestSetters_PersistPrefs(t *testing.T) {
	prefs := memPrefs{}
	m := model.NewModel(context.Background(), testConfig(t), nil, model.Options{Prefs: prefs})

	m.SetProvider("openai", "gpt-4.1")
	m.SetViewMode(m.ViewMode.Next())

	assert.Equal(t, "openai", prefs[storage.PrefProvider])
	assert.Equal(t, "gpt-4.1", prefs[storage.PrefModel])
	assert.Equal(t, "preview", prefs[storage.PrefViewMode])
}

func TestViewMode_Next(t *testing.T) {
	assert.Equal(t, model.ViewPreview, model.ViewSplit.Next())
	assert.Equal(t, model.ViewCode, model.ViewPreview.Next())
	assert.Equal(t, model.ViewSplit, model.ViewCode.Next())
}

func TestFetchModelList_UsesCache(t *testing.T) {
	calls := 0
	mock := testutil.NewMockProvider("m")
	m := newTestModel(t, mock, &calls)

	msg := m.FetchModelList("gemini")().(model.ModelsListMsg)
	require.NoError(t, msg.Err)
	require.Len(t, msg.Models, 2)
	m.CacheModels("gemini", msg.Models)

	cached := m.FetchModelList("gemini")().(model.ModelsListMsg)
	assert.Equal(t, msg.Models, cached.Models)
	assert.Equal(t, 1, calls)

	m.ClearModelCache("gemini")
	m.FetchModelList("gemini")()
	assert.Equal(t, 2, calls)
}

func TestPingProvider_MissingCredential(t *testing.T) {
	m := model.NewModel(context.Background(), testConfig(t), testutil.Factory(testutil.NewMockProvider("m"), nil), model.Options{})
	msg := m.PingProvider()().(model.ProviderPingMsg)
	assert.ErrorIs(t, msg.Err, model.ErrMissingCredential)
}
