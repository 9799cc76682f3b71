package bunrepo

import (
	"context"
	"time"

	"github.com/goliatone/go-credentials/pkg/domain"
	"github.com/goliatone/go-credentials/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type UsageRecordRepository struct {
	base baseRepository[domain.UsageRecord]
	db   *bun.DB
}

func NewUsageRecordRepository(db *bun.DB) *UsageRecordRepository {
	handlers := repository.ModelHandlers[*domain.UsageRecord]{
		NewRecord: func() *domain.UsageRecord { return &domain.UsageRecord{} },
		GetID:     func(u *domain.UsageRecord) uuid.UUID { return u.ID },
		SetID: func(u *domain.UsageRecord, id uuid.UUID) {
			u.ID = id
		},
		GetIdentifier:      func() string { return "credential_id" },
		GetIdentifierValue: func(u *domain.UsageRecord) string { return u.CredentialID },
	}
	return &UsageRecordRepository{
		base: newBaseRepository[domain.UsageRecord](db, handlers, func(u *domain.UsageRecord) *domain.RecordMeta { return &u.RecordMeta }),
		db:   db,
	}
}

func (r *UsageRecordRepository) Create(ctx context.Context, rec *domain.UsageRecord) error {
	return r.base.create(ctx, rec)
}

func (r *UsageRecordRepository) Update(ctx context.Context, rec *domain.UsageRecord) error {
	return r.base.update(ctx, rec)
}

func (r *UsageRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UsageRecord, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *UsageRecordRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.UsageRecord], error) {
	return r.base.list(ctx, opts)
}

func (r *UsageRecordRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *UsageRecordRepository) Touch(ctx context.Context, contextKey, credentialID string) error {
	rec, err := r.base.repo.Get(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("context_key = ? AND credential_id = ?", contextKey, credentialID)
		},
		withoutDeleted(),
	)
	if err == nil {
		rec.Count++
		rec.LastUsedAt = time.Now().UTC()
		return r.base.update(ctx, rec)
	}
	if mapError(err) != store.ErrNotFound {
		return mapError(err)
	}
	return r.base.create(ctx, &domain.UsageRecord{
		ContextKey:   contextKey,
		CredentialID: credentialID,
		Count:        1,
		LastUsedAt:   time.Now().UTC(),
	})
}

func (r *UsageRecordRepository) ListByCredential(ctx context.Context, credentialID string) ([]domain.UsageRecord, error) {
	records, _, err := r.base.repo.List(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("credential_id = ?", credentialID).Order("context_key ASC")
		},
		withoutDeleted(),
	)
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]domain.UsageRecord, len(records))
	for i, rec := range records {
		out[i] = *rec
	}
	return out, nil
}

var _ store.UsageRecordRepository = (*UsageRecordRepository)(nil)
