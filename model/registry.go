package model

import (
	"fmt"
	"sort"
	"sync"
)

// Factory constructs a Backend from a validated Config.
type Factory func(cfg Config) (Backend, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a provider available to New. Adapters call this from their
// package init, database/sql style; importing model/openai or
// model/anthropic is enough to enable the provider.
func Register(provider string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if factory == nil {
		panic("model: Register factory is nil")
	}
	if _, dup := registry[provider]; dup {
		panic("model: Register called twice for provider " + provider)
	}
	registry[provider] = factory
}

// Providers lists the registered provider names in sorted order.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New resolves cfg.Provider against the registry and constructs the backend.
// An unregistered provider is a configuration error, raised before any
// network call.
func New(cfg Config) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	registryMu.RLock()
	factory, ok := registry[cfg.Provider]
	registryMu.RUnlock()
	if !ok {
		return nil, NewError(KindConfig, cfg.Provider,
			fmt.Sprintf("unsupported provider %q (registered: %v)", cfg.Provider, Providers()), nil)
	}
	return factory(cfg)
}
