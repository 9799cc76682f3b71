package secrets

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/goliatone/go-credentials/pkg/credentials"
	iface "github.com/goliatone/go-credentials/pkg/interfaces/secrets"
	"golang.org/x/crypto/chacha20poly1305"
)

// EncryptedStoreProvider persists secret payloads sealed with
// XChaCha20-Poly1305 through a record Store.
type EncryptedStoreProvider struct {
	store iface.Store
	aead  cipherSuite
	now   func() time.Time
}

type cipherSuite interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
}

// NewEncryptedStoreProvider builds a provider using the given store and key.
func NewEncryptedStoreProvider(store iface.Store, key []byte) (*EncryptedStoreProvider, error) {
	if store == nil {
		return nil, fmt.Errorf("encrypted provider: store required")
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("encrypted provider: key must be %d bytes", chacha20poly1305.KeySize)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &EncryptedStoreProvider{
		store: store,
		aead:  aead,
		now:   time.Now().UTC,
	}, nil
}

func (p *EncryptedStoreProvider) Get(ctx context.Context, ref credentials.SecretRef) (Value, error) {
	if err := ValidateRef(ref); err != nil {
		return Value{}, err
	}
	var rec iface.Record
	var err error
	if ref.Version != "" {
		rec, err = p.store.GetVersion(ctx, ref.Key, ref.Version)
	} else {
		rec, err = p.store.GetLatest(ctx, ref.Key)
	}
	if err != nil {
		return Value{}, translateStoreError(err)
	}
	plain, err := p.aead.Open(nil, rec.Nonce, rec.Cipher, nil)
	if err != nil {
		return Value{}, fmt.Errorf("decrypt: %w", err)
	}
	return Value{
		Data:      plain,
		Version:   rec.Version,
		Retrieved: p.now(),
		Metadata:  rec.Metadata,
	}, nil
}

func (p *EncryptedStoreProvider) Put(ctx context.Context, ref credentials.SecretRef, value []byte) (string, error) {
	if err := ValidateRef(ref); err != nil {
		return "", err
	}
	if len(value) == 0 {
		return "", ErrEmptyValue
	}
	if ref.Version == "" {
		ref.Version = p.now().Format(time.RFC3339Nano)
	}
	nonce := make([]byte, p.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	cipher := p.aead.Seal(nil, nonce, value, nil)
	rec := iface.Record{
		Key:      ref.Key,
		Version:  ref.Version,
		Cipher:   cipher,
		Nonce:    nonce,
		Metadata: map[string]any{"created_at": p.now()},
	}
	if err := p.store.Put(ctx, rec); err != nil {
		return "", translateStoreError(err)
	}
	return ref.Version, nil
}

func (p *EncryptedStoreProvider) Delete(ctx context.Context, ref credentials.SecretRef) error {
	if err := ValidateRef(ref); err != nil {
		return err
	}
	return translateStoreError(p.store.Delete(ctx, ref.Key))
}

func (p *EncryptedStoreProvider) Describe(ctx context.Context, ref credentials.SecretRef) (map[string]any, error) {
	if err := ValidateRef(ref); err != nil {
		return nil, err
	}
	rec, err := p.store.GetLatest(ctx, ref.Key)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return map[string]any{
		"version": rec.Version,
		"meta":    rec.Metadata,
	}, nil
}

func translateStoreError(err error) error {
	switch err {
	case nil:
		return nil
	case sql.ErrNoRows:
		return ErrNotFound
	default:
		return err
	}
}
