package storage

import (
	"context"
	"sync"

	"github.com/goliatone/go-credentials/pkg/contexts"
	"github.com/goliatone/go-credentials/pkg/credentials"
	"github.com/goliatone/go-credentials/pkg/domain"
	"github.com/goliatone/go-credentials/pkg/interfaces/logger"
	"github.com/goliatone/go-credentials/pkg/interfaces/store"
	"github.com/goliatone/go-credentials/pkg/providers"
)

// ProviderName identifies the repository-backed provider.
const ProviderName = "database"

// Provider serves credential stores persisted as state blobs through a
// StoreStateRepository. Loaded stores are cached; mutations write through to
// the repository before the in-memory snapshot swap.
type Provider struct {
	repo     store.StoreStateRepository
	priority int
	scopes   []credentials.Scope
	logger   logger.Logger
	disabled bool

	mu     sync.Mutex
	stores map[string]*dbStore
}

var _ providers.Provider = (*Provider)(nil)

type ProviderOption func(*Provider)

func WithPriority(priority int) ProviderOption {
	return func(p *Provider) { p.priority = priority }
}

func WithScopes(scopes ...credentials.Scope) ProviderOption {
	return func(p *Provider) { p.scopes = scopes }
}

func DisabledProvider() ProviderOption {
	return func(p *Provider) { p.disabled = true }
}

func NewProvider(repo store.StoreStateRepository, log logger.Logger, opts ...ProviderOption) *Provider {
	if log == nil {
		log = &logger.Nop{}
	}
	p := &Provider{
		repo:   repo,
		scopes: []credentials.Scope{credentials.ScopeSystem, credentials.ScopeGlobal, credentials.ScopeUser},
		logger: log,
		stores: make(map[string]*dbStore),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string                { return ProviderName }
func (p *Provider) Priority() int               { return p.priority }
func (p *Provider) Enabled() bool               { return !p.disabled }
func (p *Provider) Scopes() []credentials.Scope { return p.scopes }

// Stores returns the store for the context if one is cached or persisted.
// Contexts with no persisted state yield no stores.
func (p *Provider) Stores(ctx context.Context, owner contexts.Context) ([]providers.Store, error) {
	kind, id := contextKey(owner)

	p.mu.Lock()
	cached, ok := p.stores[kind+":"+id]
	p.mu.Unlock()
	if ok {
		return []providers.Store{cached}, nil
	}

	state, err := p.repo.GetByContext(ctx, kind, id)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return []providers.Store{p.materialize(owner, state)}, nil
}

// StoreFor returns the mutable store for the context, creating an empty
// persisted row on first use.
func (p *Provider) StoreFor(ctx context.Context, owner contexts.Context) (*dbStore, error) {
	kind, id := contextKey(owner)

	p.mu.Lock()
	if cached, ok := p.stores[kind+":"+id]; ok {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	state, err := p.repo.GetByContext(ctx, kind, id)
	if err != nil && err != store.ErrNotFound {
		return nil, err
	}
	if err == store.ErrNotFound {
		state = &domain.StoreState{
			ContextKind: kind,
			ContextID:   id,
			Provider:    ProviderName,
		}
		if err := p.repo.Upsert(ctx, state); err != nil {
			return nil, err
		}
	}
	return p.materialize(owner, state), nil
}

// Open implements providers.StoreOpener.
func (p *Provider) Open(ctx context.Context, owner contexts.Context) (providers.MutableStore, error) {
	return p.StoreFor(ctx, owner)
}

func (p *Provider) materialize(owner contexts.Context, state *domain.StoreState) *dbStore {
	kind, id := contextKey(owner)
	key := kind + ":" + id

	p.mu.Lock()
	defer p.mu.Unlock()
	if cached, ok := p.stores[key]; ok {
		return cached
	}

	s := &dbStore{
		MemStore: providers.NewMemStore(owner, ProviderName, p.scopes),
		repo:     p.repo,
		kind:     kind,
		id:       id,
	}
	if len(state.Payload) > 0 {
		m, err := providers.UnmarshalState(state.Payload)
		if err != nil {
			p.logger.Error("persisted credential store corrupt, treating as empty",
				logger.Field{Key: "context", Value: key},
				logger.Field{Key: "error", Value: err})
			m = credentials.NewDomainMap()
		}
		s.SetState(m)
	}
	p.stores[key] = s
	return s
}

// dbStore is a MemStore that writes its state blob back through the
// repository after each mutation.
type dbStore struct {
	*providers.MemStore
	repo store.StoreStateRepository
	kind string
	id   string
}

var _ providers.MutableStore = (*dbStore)(nil)

func (s *dbStore) save() error {
	payload, err := providers.MarshalState(s.Snapshot())
	if err != nil {
		return err
	}
	return s.repo.Upsert(context.Background(), &domain.StoreState{
		ContextKind: s.kind,
		ContextID:   s.id,
		Provider:    ProviderName,
		Payload:     payload,
	})
}

func (s *dbStore) AddCredential(domainName string, c credentials.Credential) error {
	if err := s.MemStore.AddCredential(domainName, c); err != nil {
		return err
	}
	return s.save()
}

func (s *dbStore) UpdateCredential(domainName string, c credentials.Credential) error {
	if err := s.MemStore.UpdateCredential(domainName, c); err != nil {
		return err
	}
	return s.save()
}

func (s *dbStore) RemoveCredential(domainName, id string) error {
	if err := s.MemStore.RemoveCredential(domainName, id); err != nil {
		return err
	}
	return s.save()
}

func (s *dbStore) SetDomain(d credentials.Domain) error {
	if err := s.MemStore.SetDomain(d); err != nil {
		return err
	}
	return s.save()
}

func (s *dbStore) Apply(strategy credentials.Strategy, incoming *credentials.DomainMap) error {
	if err := s.MemStore.Apply(strategy, incoming); err != nil {
		return err
	}
	return s.save()
}

func contextKey(owner contexts.Context) (kind, id string) {
	if owner == nil {
		return string(contexts.KindRoot), "root"
	}
	return string(owner.Kind()), owner.ID()
}
