package provider

import (
	"context"
	"sync"

	"spurchat/model"
)

// BuildFunc constructs the upstream provider.
type BuildFunc func(ctx context.Context) (model.Provider, error)

// Handle owns the single upstream client shared by every request. The
// client is built on first use; a failed build is not cached, so adding
// credentials later takes effect without a restart. Once built the
// provider is reused as-is.
type Handle struct {
	mu       sync.Mutex
	build    BuildFunc
	provider model.Provider
}

// NewHandle returns a lazily initialized handle.
func NewHandle(build BuildFunc) *Handle {
	return &Handle{build: build}
}

// StaticHandle wraps an already constructed provider.
func StaticHandle(p model.Provider) *Handle {
	return &Handle{provider: p}
}

// Get returns the provider, building it if needed.
func (h *Handle) Get(ctx context.Context) (model.Provider, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.provider != nil {
		return h.provider, nil
	}

	p, err := h.build(ctx)
	if err != nil {
		return nil, err
	}
	h.provider = p
	return p, nil
}

// Ready reports whether the provider has been built.
func (h *Handle) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.provider != nil
}
