package testutil

import (
	"context"
	"sync"

	"mailcraft/model"
)

// MockProvider implements model.Provider for tests. Every behaviour can be
// replaced through the ...Func fields.
type MockProvider struct {
	GenerateFunc   func(ctx context.Context, req model.GenerateRequest, callback model.StreamCallback) error
	ListModelsFunc func(ctx context.Context) ([]model.ModelInfo, error)
	PingFunc       func(ctx context.Context) error

	mu           sync.Mutex
	currentModel string
	requests     []model.GenerateRequest
}

func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{currentModel: modelName}
	mock.GenerateFunc = StreamFragments("<p>Mock template</p>")
	mock.ListModelsFunc = mock.defaultListModels
	mock.PingFunc = func(context.Context) error { return nil }
	return mock
}

func (m *MockProvider) defaultListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return []model.ModelInfo{
		{ID: "mock-model-1", Name: "mock-model-1", Provider: "mock"},
		{ID: "mock-model-2", Name: "mock-model-2", Provider: "mock"},
	}, nil
}

func (m *MockProvider) Generate(ctx context.Context, req model.GenerateRequest, callback model.StreamCallback) error {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.GenerateFunc(ctx, req, callback)
}

// Requests returns every request Generate received, in order.
func (m *MockProvider) Requests() []model.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.GenerateRequest(nil), m.requests...)
}

func (m *MockProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return m.ListModelsFunc(ctx)
}

func (m *MockProvider) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentModel
}

func (m *MockProvider) SetModel(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentModel = name
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}

// StreamFragments returns a GenerateFunc that emits parts in order.
func StreamFragments(parts ...string) func(context.Context, model.GenerateRequest, model.StreamCallback) error {
	return StreamThenFail(nil, parts...)
}

// StreamThenFail emits parts and then returns err.
func StreamThenFail(err error, parts ...string) func(context.Context, model.GenerateRequest, model.StreamCallback) error {
	return func(ctx context.Context, _ model.GenerateRequest, callback model.StreamCallback) error {
		for _, p := range parts {
			if cbErr := callback(p); cbErr != nil {
				return cbErr
			}
		}
		return err
	}
}

// Factory returns a model.ProviderFactory that always hands out p and
// records how often it was called.
func Factory(p model.Provider, calls *int) model.ProviderFactory {
	return func(providerID, apiKey, modelID string) (model.Provider, error) {
		if calls != nil {
			*calls++
		}
		if modelID != "" {
			p.SetModel(modelID)
		}
		return p, nil
	}
}
