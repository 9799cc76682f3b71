package memory

import (
	"context"
	"sync"

	"github.com/goliatone/go-credentials/pkg/domain"
	"github.com/goliatone/go-credentials/pkg/interfaces/store"
	"github.com/google/uuid"
)

type StoreStateRepository struct {
	base      baseMemoryRepo[domain.StoreState]
	mu        sync.Mutex
	byContext map[string]uuid.UUID
}

func NewStoreStateRepository() *StoreStateRepository {
	return &StoreStateRepository{
		base:      newBaseMemoryRepo(func(s *domain.StoreState) *domain.RecordMeta { return &s.RecordMeta }),
		byContext: make(map[string]uuid.UUID),
	}
}

func (r *StoreStateRepository) Create(ctx context.Context, record *domain.StoreState) error {
	if err := r.base.create(ctx, record); err != nil {
		return err
	}
	r.mu.Lock()
	r.byContext[record.ContextKey()] = record.ID
	r.mu.Unlock()
	return nil
}

func (r *StoreStateRepository) Update(ctx context.Context, record *domain.StoreState) error {
	return r.base.update(ctx, record)
}

func (r *StoreStateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.StoreState, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *StoreStateRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.StoreState], error) {
	return r.base.list(ctx, opts)
}

func (r *StoreStateRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *StoreStateRepository) GetByContext(ctx context.Context, kind, id string) (*domain.StoreState, error) {
	r.mu.Lock()
	recID, ok := r.byContext[kind+":"+id]
	r.mu.Unlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return r.base.getByID(ctx, recID, false)
}

func (r *StoreStateRepository) Upsert(ctx context.Context, state *domain.StoreState) error {
	existing, err := r.GetByContext(ctx, state.ContextKind, state.ContextID)
	if err == nil {
		state.RecordMeta = existing.RecordMeta
		return r.base.update(ctx, state)
	}
	return r.Create(ctx, state)
}

var _ store.StoreStateRepository = (*StoreStateRepository)(nil)
