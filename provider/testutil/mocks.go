package testutil

import (
	"context"
	"sync"

	"spurchat/model"
)

// MockProvider implements model.Provider for testing. Every call is
// recorded; behaviour is overridable through the func fields.
type MockProvider struct {
	// Configurable responses
	GenerateFunc   func(ctx context.Context, req model.GenerateRequest) (string, error)
	ListModelsFunc func(ctx context.Context) ([]model.ModelInfo, error)
	PingFunc       func(ctx context.Context) error

	mu        sync.Mutex
	name      string
	model     string
	requests  []model.GenerateRequest
	pingCalls int
}

// NewMockProvider creates a mock provider with default implementations
func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{
		name:  "mock",
		model: modelName,
	}
	mock.GenerateFunc = mock.defaultGenerate
	mock.ListModelsFunc = mock.defaultListModels
	mock.PingFunc = mock.defaultPing
	return mock
}

func (m *MockProvider) defaultGenerate(ctx context.Context, req model.GenerateRequest) (string, error) {
	return "Mock response", nil
}

func (m *MockProvider) defaultListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return []model.ModelInfo{
		{Name: "mock-model-1", InternalName: "mock-model-1", Provider: m.name},
		{Name: "mock-model-2", InternalName: "mock-model-2", Provider: m.name},
	}, nil
}

func (m *MockProvider) defaultPing(ctx context.Context) error {
	return nil
}

// WithName sets the provider ID reported by Name.
func (m *MockProvider) WithName(name string) *MockProvider {
	m.name = name
	return m
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) DefaultModel() string { return m.model }

func (m *MockProvider) Generate(ctx context.Context, req model.GenerateRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.GenerateFunc(ctx, req)
}

func (m *MockProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return m.ListModelsFunc(ctx)
}

func (m *MockProvider) Ping(ctx context.Context) error {
	m.mu.Lock()
	m.pingCalls++
	m.mu.Unlock()
	return m.PingFunc(ctx)
}

// Requests returns a copy of every Generate request received so far.
func (m *MockProvider) Requests() []model.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.GenerateRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns how many Generate calls targeted modelName. An empty
// modelName counts every call.
func (m *MockProvider) Calls(modelName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.requests {
		if modelName == "" || r.Model == modelName {
			n++
		}
	}
	return n
}

// Response is one scripted Generate outcome.
type Response struct {
	Text string
	Err  error
}

// Script makes Generate return the given responses in order, per model.
// Once a model's script runs out its last response repeats.
func (m *MockProvider) Script(byModel map[string][]Response) *MockProvider {
	var mu sync.Mutex
	next := make(map[string]int)
	m.GenerateFunc = func(ctx context.Context, req model.GenerateRequest) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		steps, ok := byModel[req.Model]
		if !ok || len(steps) == 0 {
			return "Mock response", nil
		}
		i := next[req.Model]
		if i >= len(steps) {
			i = len(steps) - 1
		}
		next[req.Model] = i + 1
		return steps[i].Text, steps[i].Err
	}
	return m
}
