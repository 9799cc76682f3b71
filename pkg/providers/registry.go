package providers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-credentials/pkg/contexts"
	"github.com/goliatone/go-credentials/pkg/credentials"
	"github.com/goliatone/go-credentials/pkg/interfaces/logger"
)

// Registry holds the process-wide ordered set of providers. It is explicitly
// constructed and passed down rather than reachable through a global.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	logger    logger.Logger
	timeout   time.Duration
}

// NewRegistry builds an empty registry. A nil logger falls back to Nop.
func NewRegistry(log logger.Logger, opts ...RegistryOption) *Registry {
	if log == nil {
		log = &logger.Nop{}
	}
	r := &Registry{logger: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegistryOption tweaks registry construction.
type RegistryOption func(*Registry)

// WithProviderTimeout bounds every individual provider call so one slow
// remote backend cannot stall resolutions served by the others.
func WithProviderTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) { r.timeout = d }
}

// Register appends the provider and re-sorts by priority. The sort is stable
// so equal priorities keep registration order.
func (r *Registry) Register(ps ...Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, ps...)
	sort.SliceStable(r.providers, func(i, j int) bool {
		return r.providers[i].Priority() > r.providers[j].Priority()
	})
}

// Deregister removes the named provider. Stores it already produced become
// orphans; Mutate reports ErrProviderMissing for them.
func (r *Registry) Deregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.providers[:0]
	for _, p := range r.providers {
		if p.Name() != name {
			out = append(out, p)
		}
	}
	r.providers = out
}

// Provider looks up a provider by name.
func (r *Registry) Provider(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.providers {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Providers returns the current priority-ordered snapshot.
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// StoresFor collects the stores every enabled provider supplies for the
// context, in provider priority order. A failing provider contributes nothing
// and is surfaced through the diagnostic log only, so one slow or broken
// backend cannot abort an unrelated listing.
func (r *Registry) StoresFor(ctx context.Context, owner contexts.Context) []Store {
	var stores []Store
	for _, p := range r.Providers() {
		if !p.Enabled() {
			continue
		}
		got, err := r.callStores(ctx, p, owner)
		if err != nil {
			r.logger.Warn("provider store lookup failed",
				logger.Field{Key: "provider", Value: p.Name()},
				logger.Field{Key: "context", Value: contextID(owner)},
				logger.Field{Key: "error", Value: err})
			continue
		}
		stores = append(stores, got...)
	}
	return stores
}

// callStores bounds a single provider call with the configured timeout.
func (r *Registry) callStores(ctx context.Context, p Provider, owner contexts.Context) ([]Store, error) {
	if r.timeout <= 0 {
		return p.Stores(ctx, owner)
	}
	bounded, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return p.Stores(bounded, owner)
}

// Types returns the credential types reachable from the context across
// enabled providers, deduplicated in first-seen order.
func (r *Registry) Types(ctx context.Context, owner contexts.Context) []credentials.Type {
	seen := map[credentials.Type]bool{}
	var out []credentials.Type
	for _, s := range r.StoresFor(ctx, owner) {
		for _, d := range s.Domains() {
			for _, c := range s.Credentials(d.Name) {
				if !seen[c.Type] {
					seen[c.Type] = true
					out = append(out, c.Type)
				}
			}
		}
	}
	return out
}

// Mutate runs fn against the store's writable surface after checking that the
// backing provider is still registered and enabled. A store whose provider
// went away fails loudly for that store only.
func (r *Registry) Mutate(s Store, fn func(MutableStore) error) error {
	p, ok := r.Provider(s.ProviderName())
	if !ok || !p.Enabled() {
		return credentials.ErrProviderMissing
	}
	ms, ok := s.(MutableStore)
	if !ok {
		return credentials.ErrUnsupported
	}
	return fn(ms)
}

// OpenMutable materializes the named provider's writable store for the
// context. Admin surfaces use this to target a specific provider; missing or
// disabled providers fail loudly, read-only providers report ErrUnsupported.
func (r *Registry) OpenMutable(ctx context.Context, name string, owner contexts.Context) (MutableStore, error) {
	p, ok := r.Provider(name)
	if !ok || !p.Enabled() {
		return nil, credentials.ErrProviderMissing
	}
	if opener, ok := p.(StoreOpener); ok {
		return opener.Open(ctx, owner)
	}
	stores, err := r.callStores(ctx, p, owner)
	if err != nil {
		return nil, err
	}
	for _, s := range stores {
		if ms, ok := s.(MutableStore); ok {
			return ms, nil
		}
	}
	return nil, credentials.ErrUnsupported
}

func contextID(c contexts.Context) string {
	if c == nil {
		return ""
	}
	return string(c.Kind()) + ":" + c.ID()
}
