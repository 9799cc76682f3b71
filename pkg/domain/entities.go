package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RecordMeta captures identifiers and audit fields shared across entities.
type RecordMeta struct {
	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt time.Time `bun:",soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureID assigns a UUID when the struct is about to be persisted.
func (m *RecordMeta) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

// JSONMap persists arbitrary metadata fields as JSON.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if m == nil {
		return errors.New("JSONMap: Scan on nil pointer")
	}
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("JSONMap: unsupported type %T", value)
	}
}

// StoreState is the persisted form of one context-scoped credential store:
// the serialized domain → credential-list map plus addressing fields. The
// payload uses the same layout as the file provider so states move between
// backends.
type StoreState struct {
	bun.BaseModel `bun:"table:credential_stores"`
	RecordMeta

	ContextKind string  `bun:",notnull,unique:store_context" json:"context_kind"`
	ContextID   string  `bun:",notnull,unique:store_context" json:"context_id"`
	Provider    string  `bun:",notnull" json:"provider"`
	Payload     []byte  `bun:",type:jsonb" json:"payload"`
	Metadata    JSONMap `bun:",type:jsonb" json:"metadata,omitempty"`
}

// ContextKey returns the unique addressing key of the store's context.
func (s StoreState) ContextKey() string {
	return s.ContextKind + ":" + s.ContextID
}

// UsageRecord tracks which context used which credential, one row per pair
// with a running count.
type UsageRecord struct {
	bun.BaseModel `bun:"table:credential_usage"`
	RecordMeta

	ContextKey   string    `bun:",notnull,unique:usage_pair" json:"context_key"`
	CredentialID string    `bun:",notnull,unique:usage_pair" json:"credential_id"`
	Count        int64     `bun:",notnull,default:0" json:"count"`
	LastUsedAt   time.Time `bun:",nullzero" json:"last_used_at"`
}
