package secret

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DefaultSecretsDir is where the file provider looks when no dir is set.
const DefaultSecretsDir = "/run/secrets"

// ProviderFactory creates a Provider from its configuration block.
type ProviderFactory func(cfg map[string]any) (Provider, error)

// Registry maps provider names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

// NewDefaultRegistry creates a registry holding the env and file providers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register("env", func(map[string]any) (Provider, error) {
		return EnvProvider{}, nil
	})
	_ = r.Register("file", func(cfg map[string]any) (Provider, error) {
		dir := DefaultSecretsDir
		if v, ok := cfg["dir"]; ok {
			s, ok := v.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return nil, fmt.Errorf("secret: file provider: dir must be a non-empty string")
			}
			dir = s
		}
		return &FileProvider{Dir: dir}, nil
	})
	return r
}

// Register adds a provider factory under name.
func (r *Registry) Register(name string, factory ProviderFactory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return fmt.Errorf("%w: empty name or nil factory", ErrInvalidRef)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateProvider, name)
	}
	r.factories[name] = factory
	return nil
}

// Create instantiates the provider registered under name.
func (r *Registry) Create(name string, cfg map[string]any) (Provider, error) {
	name = strings.TrimSpace(name)

	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotRegistered, name)
	}
	return factory(cfg)
}

// List returns registered provider names in order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates a Resolver holding every registered provider. configs
// supplies per-provider settings keyed by provider name.
func (r *Registry) Build(strict bool, configs map[string]map[string]any) (*Resolver, error) {
	res := NewResolver(strict)
	for _, name := range r.List() {
		p, err := r.Create(name, configs[name])
		if err != nil {
			return nil, fmt.Errorf("secret: provider %q: %w", name, err)
		}
		res.Register(p)
	}
	for name := range configs {
		if _, ok := res.providers[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrProviderNotRegistered, name)
		}
	}
	return res, nil
}
