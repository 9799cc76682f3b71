package store

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-credentials/pkg/domain"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a record cannot be located.
var ErrNotFound = errors.New("store: not found")

// ListOptions capture pagination and filtering knobs common to repositories.
type ListOptions struct {
	Limit              int
	Offset             int
	Since              time.Time
	Until              time.Time
	IncludeSoftDeleted bool
}

// ListResult bundles records and totals.
type ListResult[T any] struct {
	Items []T
	Total int
}

// Repository defines base CRUD helpers reused by entity-specific interfaces.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, record *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, opts ListOptions) (ListResult[T], error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// StoreStateRepository persists context-scoped store payloads.
type StoreStateRepository interface {
	Repository[domain.StoreState]
	GetByContext(ctx context.Context, kind, id string) (*domain.StoreState, error)
	// Upsert saves the payload for the context, creating the row on first
	// write.
	Upsert(ctx context.Context, state *domain.StoreState) error
}

// UsageRecordRepository persists credential usage, one row per
// (context, credential) pair.
type UsageRecordRepository interface {
	Repository[domain.UsageRecord]
	// Touch increments the pair's counter, creating the row on first use.
	Touch(ctx context.Context, contextKey, credentialID string) error
	ListByCredential(ctx context.Context, credentialID string) ([]domain.UsageRecord, error)
}
