package providers

import (
	"context"
	"sync"

	"github.com/goliatone/go-credentials/pkg/contexts"
	"github.com/goliatone/go-credentials/pkg/credentials"
)

// MemStore is the canonical in-memory MutableStore. Reads work against an
// immutable snapshot swapped atomically under the lock, so concurrent readers
// never observe a half-applied mutation or reload; writes are serialized per
// store.
type MemStore struct {
	owner    contexts.Context
	provider string
	scopes   []credentials.Scope

	mu    sync.RWMutex
	state *credentials.DomainMap
}

var _ MutableStore = (*MemStore)(nil)

// NewMemStore builds a store for the context with the provider's declared
// scopes narrowed to what the context allows.
func NewMemStore(owner contexts.Context, provider string, declared []credentials.Scope) *MemStore {
	kind := contexts.Kind("")
	if owner != nil {
		kind = owner.Kind()
	}
	return &MemStore{
		owner:    owner,
		provider: provider,
		scopes:   IntersectScopes(declared, ValidScopes(kind)),
		state:    credentials.NewDomainMap(),
	}
}

func (s *MemStore) Context() contexts.Context   { return s.owner }
func (s *MemStore) ProviderName() string        { return s.provider }
func (s *MemStore) Scopes() []credentials.Scope { return s.scopes }

// Snapshot returns the current immutable state.
func (s *MemStore) Snapshot() *credentials.DomainMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState atomically replaces the whole state. Used by reload paths.
func (s *MemStore) SetState(m *credentials.DomainMap) {
	if m == nil {
		m = credentials.NewDomainMap()
	}
	s.mu.Lock()
	s.state = m
	s.mu.Unlock()
}

func (s *MemStore) Domains() []credentials.Domain {
	return s.Snapshot().Domains()
}

func (s *MemStore) Credentials(domain string) []credentials.Credential {
	return s.Snapshot().Credentials(domain)
}

// mutate clones the snapshot, applies fn, and swaps the result in. Mutations
// to the same store are sequenced by the write lock.
func (s *MemStore) mutate(fn func(*credentials.DomainMap) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.Clone()
	if next == nil {
		next = credentials.NewDomainMap()
	}
	if err := fn(next); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *MemStore) AddCredential(domain string, c credentials.Credential) error {
	if err := credentials.ValidateID(c.ID); err != nil {
		return err
	}
	if c.Scope != "" && !c.Scope.Valid() {
		return credentials.ErrInvalidScope
	}
	return s.mutate(func(m *credentials.DomainMap) error {
		d, creds, ok := m.Get(domain)
		if !ok {
			d = credentials.Domain{Name: domain}
		}
		for _, existing := range creds {
			if existing.ID == c.ID {
				return credentials.ErrUnsupported
			}
		}
		m.Set(d, append(creds, c))
		return nil
	})
}

func (s *MemStore) UpdateCredential(domain string, c credentials.Credential) error {
	return s.mutate(func(m *credentials.DomainMap) error {
		d, creds, ok := m.Get(domain)
		if !ok {
			return credentials.ErrNotFound
		}
		for i := range creds {
			if creds[i].ID == c.ID {
				next := make([]credentials.Credential, len(creds))
				copy(next, creds)
				next[i] = c
				m.Set(d, next)
				return nil
			}
		}
		return credentials.ErrNotFound
	})
}

func (s *MemStore) RemoveCredential(domain, id string) error {
	return s.mutate(func(m *credentials.DomainMap) error {
		d, creds, ok := m.Get(domain)
		if !ok {
			return credentials.ErrNotFound
		}
		for i := range creds {
			if creds[i].ID == id {
				next := append(append([]credentials.Credential{}, creds[:i]...), creds[i+1:]...)
				m.Set(d, next)
				return nil
			}
		}
		return credentials.ErrNotFound
	})
}

func (s *MemStore) SetDomain(d credentials.Domain) error {
	return s.mutate(func(m *credentials.DomainMap) error {
		_, creds, _ := m.Get(d.Name)
		m.Set(d, creds)
		return nil
	})
}

func (s *MemStore) Apply(strategy credentials.Strategy, incoming *credentials.DomainMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = strategy.Apply(s.state, incoming)
	return nil
}

// StaticProvider serves pre-built stores keyed by context ID. It backs tests
// and simple embedded setups.
type StaticProvider struct {
	ProviderName     string
	ProviderPriority int
	Disabled         bool
	DeclaredScopes   []credentials.Scope

	mu     sync.RWMutex
	stores map[string][]Store
}

var _ Provider = (*StaticProvider)(nil)

func NewStaticProvider(name string, priority int, scopes ...credentials.Scope) *StaticProvider {
	if len(scopes) == 0 {
		scopes = []credentials.Scope{credentials.ScopeGlobal}
	}
	return &StaticProvider{
		ProviderName:     name,
		ProviderPriority: priority,
		DeclaredScopes:   scopes,
		stores:           make(map[string][]Store),
	}
}

func (p *StaticProvider) Name() string                { return p.ProviderName }
func (p *StaticProvider) Priority() int               { return p.ProviderPriority }
func (p *StaticProvider) Enabled() bool               { return !p.Disabled }
func (p *StaticProvider) Scopes() []credentials.Scope { return p.DeclaredScopes }

// StoreFor returns (creating on first use) the provider's store for the
// context.
func (p *StaticProvider) StoreFor(owner contexts.Context) *MemStore {
	key := contextID(owner)
	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.stores[key]; ok && len(existing) > 0 {
		return existing[0].(*MemStore)
	}
	store := NewMemStore(owner, p.ProviderName, p.DeclaredScopes)
	p.stores[key] = []Store{store}
	return store
}

// Open implements StoreOpener.
func (p *StaticProvider) Open(_ context.Context, owner contexts.Context) (MutableStore, error) {
	return p.StoreFor(owner), nil
}

func (p *StaticProvider) Stores(_ context.Context, owner contexts.Context) ([]Store, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stores[contextID(owner)], nil
}
