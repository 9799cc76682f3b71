package memory

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-credentials/pkg/domain"
	"github.com/goliatone/go-credentials/pkg/interfaces/store"
	"github.com/google/uuid"
)

type UsageRecordRepository struct {
	base   baseMemoryRepo[domain.UsageRecord]
	mu     sync.Mutex
	byPair map[string]uuid.UUID
}

func NewUsageRecordRepository() *UsageRecordRepository {
	return &UsageRecordRepository{
		base:   newBaseMemoryRepo(func(u *domain.UsageRecord) *domain.RecordMeta { return &u.RecordMeta }),
		byPair: make(map[string]uuid.UUID),
	}
}

func (r *UsageRecordRepository) Create(ctx context.Context, record *domain.UsageRecord) error {
	if err := r.base.create(ctx, record); err != nil {
		return err
	}
	r.mu.Lock()
	r.byPair[record.ContextKey+"|"+record.CredentialID] = record.ID
	r.mu.Unlock()
	return nil
}

func (r *UsageRecordRepository) Update(ctx context.Context, record *domain.UsageRecord) error {
	return r.base.update(ctx, record)
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
	r.mu.Lock()
	id, ok := r.byPair[contextKey+"|"+credentialID]
	r.mu.Unlock()
	if !ok {
		return r.Create(ctx, &domain.UsageRecord{
			ContextKey:   contextKey,
			CredentialID: credentialID,
			Count:        1,
			LastUsedAt:   time.Now().UTC(),
		})
	}
	rec, err := r.base.getByID(ctx, id, false)
	if err != nil {
		return err
	}
	rec.Count++
	rec.LastUsedAt = time.Now().UTC()
	return r.base.update(ctx, rec)
}

func (r *UsageRecordRepository) ListByCredential(ctx context.Context, credentialID string) ([]domain.UsageRecord, error) {
	all, err := r.base.list(ctx, store.ListOptions{})
	if err != nil {
		return nil, err
	}
	var out []domain.UsageRecord
	for _, rec := range all.Items {
		if rec.CredentialID == credentialID {
			out = append(out, rec)
		}
	}
	return out, nil
}

var _ store.UsageRecordRepository = (*UsageRecordRepository)(nil)
