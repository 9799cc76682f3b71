package secrets

import (
	"context"
	"time"

	"github.com/goliatone/go-credentials/pkg/credentials"
)

// Value carries a resolved secret payload.
type Value struct {
	Data      []byte
	Version   string
	Retrieved time.Time
	Metadata  map[string]any
}

// Provider stores and resolves secret payloads addressed by credential secret
// references. Implementations may be backed by an encrypted local store or a
// remote secret manager; all calls honor the context deadline.
type Provider interface {
	Get(ctx context.Context, ref credentials.SecretRef) (Value, error)
	Put(ctx context.Context, ref credentials.SecretRef, value []byte) (string, error)
	Delete(ctx context.Context, ref credentials.SecretRef) error
	// Describe returns non-sensitive metadata only.
	Describe(ctx context.Context, ref credentials.SecretRef) (map[string]any, error)
}

// Resolver is the read-side surface the resolution engine consumes.
type Resolver interface {
	Fetch(ctx context.Context, ref credentials.SecretRef) ([]byte, error)
}
