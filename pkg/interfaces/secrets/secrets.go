package secrets

import "context"

// Record represents an encrypted secret payload persisted by a store. Key and
// Version mirror the credential's secret reference; the payload is always
// stored sealed.
type Record struct {
	Key      string
	Version  string
	Cipher   []byte
	Nonce    []byte
	Metadata map[string]any
}

// Store defines persistence operations for sealed secret records.
type Store interface {
	Put(ctx context.Context, rec Record) error
	GetLatest(ctx context.Context, key string) (Record, error)
	GetVersion(ctx context.Context, key, version string) (Record, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, keyPrefix string) ([]Record, error)
}
