package secrets

import (
	"context"

	"github.com/goliatone/go-credentials/pkg/credentials"
)

// Registry dispatches secret operations to the provider named by each
// reference.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a registry from name → provider pairs.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register associates a provider with a reference provider name.
func (r *Registry) Register(name string, p Provider) {
	r.providers[name] = p
}

// ProviderFor returns the provider matching the reference, or nil.
func (r *Registry) ProviderFor(ref credentials.SecretRef) Provider {
	if r == nil {
		return nil
	}
	return r.providers[ref.Provider]
}

// Fetch resolves the payload of a single reference. Implements Resolver.
func (r *Registry) Fetch(ctx context.Context, ref credentials.SecretRef) ([]byte, error) {
	if err := ValidateRef(ref); err != nil {
		return nil, err
	}
	p := r.ProviderFor(ref)
	if p == nil {
		return nil, ErrNotFound
	}
	val, err := p.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	return val.Data, nil
}

var _ Resolver = (*Registry)(nil)
