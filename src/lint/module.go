package lint

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Module is the interface every lint rule implements.
type Module interface {
	Name() string
	Check(ctx context.Context, target *Target) ([]Finding, error)
	DefaultEnabled() bool
}

// ConfigurableModule receives the options map from lint.modules.<name>.options.
// Configure is called once before any Check, with nil when no options are set.
type ConfigurableModule interface {
	Module
	Configure(opts map[string]any) error
}

// CacheTTLModule is implemented by modules whose result depends on more than
// the descriptor source. A zero TTL caches forever; a negative TTL disables
// caching for the module.
type CacheTTLModule interface {
	Module
	CacheTTL() time.Duration
}

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Module{}
)

// Register adds a module constructor to the global registry.
// Called from init() in each module file.
func Register(name string, constructor func() Module) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("lint: duplicate module registration: %s", name))
	}
	registry[name] = constructor
}

// Get returns a new instance of the named module.
func Get(name string) (Module, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("lint: unknown module: %s", name)
	}
	return ctor(), nil
}

// All returns sorted names of all registered modules.
func All() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
