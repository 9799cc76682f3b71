package providers

import (
	"context"

	"github.com/goliatone/go-credentials/pkg/contexts"
	"github.com/goliatone/go-credentials/pkg/credentials"
)

// Store is the per-context holder of a domain → credential-list map.
type Store interface {
	// Context returns the node this store is attached to.
	Context() contexts.Context
	// ProviderName names the provider that produced the store.
	ProviderName() string
	// Scopes returns the tiers this store accepts: the intersection of what
	// the provider declares and what is valid for the store's context.
	Scopes() []credentials.Scope
	// Domains returns the store's domains in priority order; the global
	// domain, when present, comes first.
	Domains() []credentials.Domain
	// Credentials returns the entries of the named domain ("" for global).
	Credentials(domain string) []credentials.Credential
}

// MutableStore extends Store with serialized write access. Mutations carry no
// context.Context; implementations that write through to external storage
// persist under a background context, so caller deadlines do not bound the
// write-through.
type MutableStore interface {
	Store
	AddCredential(domain string, c credentials.Credential) error
	UpdateCredential(domain string, c credentials.Credential) error
	RemoveCredential(domain, id string) error
	SetDomain(d credentials.Domain) error
	// Apply reconciles the full domain map with the given strategy.
	Apply(strategy credentials.Strategy, incoming *credentials.DomainMap) error
}

// Provider is a registered factory of stores for contexts.
type Provider interface {
	Name() string
	// Priority orders providers in the registry; higher wins. Ties keep
	// registration order.
	Priority() int
	Enabled() bool
	Scopes() []credentials.Scope
	// Stores returns the provider's stores for the given context: none when
	// the context is not applicable, usually one.
	Stores(ctx context.Context, owner contexts.Context) ([]Store, error)
}

// StoreOpener is implemented by providers whose stores can be materialized
// on demand for writing, creating backing state on first use.
type StoreOpener interface {
	Open(ctx context.Context, owner contexts.Context) (MutableStore, error)
}

// ValidScopes returns the tiers that make sense for a context kind; used by
// stores to narrow the provider's declared scopes.
func ValidScopes(kind contexts.Kind) []credentials.Scope {
	switch kind {
	case contexts.KindRoot, contexts.KindAgent:
		return []credentials.Scope{credentials.ScopeSystem, credentials.ScopeGlobal}
	case contexts.KindUser:
		return []credentials.Scope{credentials.ScopeGlobal, credentials.ScopeUser}
	case contexts.KindFolder, contexts.KindItem:
		return []credentials.Scope{credentials.ScopeGlobal}
	default:
		return nil
	}
}

// IntersectScopes returns declared ∩ valid preserving declared order.
func IntersectScopes(declared, valid []credentials.Scope) []credentials.Scope {
	allowed := make(map[credentials.Scope]bool, len(valid))
	for _, s := range valid {
		allowed[s] = true
	}
	var out []credentials.Scope
	for _, s := range declared {
		if allowed[s] {
			out = append(out, s)
		}
	}
	return out
}
