package bunrepo

import (
	"context"
	"time"

	iface "github.com/goliatone/go-credentials/pkg/interfaces/secrets"
	"github.com/uptrace/bun"
)

type secretRecord struct {
	bun.BaseModel `bun:"table:secrets"`

	ID        int64          `bun:",pk,autoincrement"`
	Key       string         `bun:",notnull,unique:secret_identity"`
	Version   string         `bun:",notnull,unique:secret_identity"`
	Cipher    []byte         `bun:",notnull"`
	Nonce     []byte         `bun:",notnull"`
	Metadata  map[string]any `bun:",type:jsonb"`
	CreatedAt time.Time      `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time      `bun:",nullzero,notnull,default:current_timestamp"`
	DeletedAt bun.NullTime   `bun:",soft_delete,nullzero"`
}

// SecretStore persists sealed payload records in the secrets table.
type SecretStore struct {
	db *bun.DB
}

func NewSecretStore(db *bun.DB) *SecretStore {
	return &SecretStore{db: db}
}

func (s *SecretStore) Put(ctx context.Context, rec iface.Record) error {
	model := &secretRecord{
		Key:      rec.Key,
		Version:  rec.Version,
		Cipher:   rec.Cipher,
		Nonce:    rec.Nonce,
		Metadata: rec.Metadata,
	}
	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (key, version) DO UPDATE").
		Set("cipher = EXCLUDED.cipher").
		Set("nonce = EXCLUDED.nonce").
		Set("metadata = EXCLUDED.metadata").
		Set("updated_at = current_timestamp").
		Exec(ctx)
	return err
}

func (s *SecretStore) GetLatest(ctx context.Context, key string) (iface.Record, error) {
	var rec secretRecord
	err := s.db.NewSelect().
		Model(&rec).
		Where("key = ?", key).
		Where("deleted_at IS NULL").
		OrderExpr("version DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return iface.Record{}, err
	}
	return fromSecretRecord(rec), nil
}

func (s *SecretStore) GetVersion(ctx context.Context, key, version string) (iface.Record, error) {
	var rec secretRecord
	err := s.db.NewSelect().
		Model(&rec).
		Where("key = ? AND version = ?", key, version).
		Where("deleted_at IS NULL").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return iface.Record{}, err
	}
	return fromSecretRecord(rec), nil
}

func (s *SecretStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().
		Model((*secretRecord)(nil)).
		Where("key = ?", key).
		Exec(ctx)
	return err
}

func (s *SecretStore) List(ctx context.Context, keyPrefix string) ([]iface.Record, error) {
	var recs []secretRecord
	query := s.db.NewSelect().Model(&recs).Where("deleted_at IS NULL")
	if keyPrefix != "" {
		query = query.Where("key LIKE ?", keyPrefix+"%")
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	results := make([]iface.Record, 0, len(recs))
	for _, r := range recs {
		results = append(results, fromSecretRecord(r))
	}
	return results, nil
}

func fromSecretRecord(rec secretRecord) iface.Record {
	return iface.Record{
		Key:      rec.Key,
		Version:  rec.Version,
		Cipher:   rec.Cipher,
		Nonce:    rec.Nonce,
		Metadata: rec.Metadata,
	}
}

var _ iface.Store = (*SecretStore)(nil)
