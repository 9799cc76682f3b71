package bunrepo

import (
	"context"

	"github.com/goliatone/go-credentials/pkg/domain"
	"github.com/goliatone/go-credentials/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type StoreStateRepository struct {
	base baseRepository[domain.StoreState]
}

func NewStoreStateRepository(db *bun.DB) *StoreStateRepository {
	handlers := repository.ModelHandlers[*domain.StoreState]{
		NewRecord: func() *domain.StoreState { return &domain.StoreState{} },
		GetID:     func(s *domain.StoreState) uuid.UUID { return s.ID },
		SetID: func(s *domain.StoreState, id uuid.UUID) {
			s.ID = id
		},
		GetIdentifier:      func() string { return "context_id" },
		GetIdentifierValue: func(s *domain.StoreState) string { return s.ContextID },
	}
	return &StoreStateRepository{
		base: newBaseRepository[domain.StoreState](db, handlers, func(s *domain.StoreState) *domain.RecordMeta { return &s.RecordMeta }),
	}
}

func (r *StoreStateRepository) Create(ctx context.Context, state *domain.StoreState) error {
	return r.base.create(ctx, state)
}

func (r *StoreStateRepository) Update(ctx context.Context, state *domain.StoreState) error {
	return r.base.update(ctx, state)
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
	record, err := r.base.repo.Get(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("context_kind = ? AND context_id = ?", kind, id)
		},
		withoutDeleted(),
	)
	if err != nil {
		return nil, mapError(err)
	}
	return record, nil
}

func (r *StoreStateRepository) Upsert(ctx context.Context, state *domain.StoreState) error {
	existing, err := r.GetByContext(ctx, state.ContextKind, state.ContextID)
	if err == nil {
		state.RecordMeta = existing.RecordMeta
		return r.base.update(ctx, state)
	}
	if err != store.ErrNotFound {
		return err
	}
	return r.base.create(ctx, state)
}

var _ store.StoreStateRepository = (*StoreStateRepository)(nil)
