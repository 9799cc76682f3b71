package secrets

import (
	"context"

	"github.com/goliatone/go-credentials/pkg/credentials"
)

// NopProvider always returns ErrNotFound. Useful when a provider is optional.
type NopProvider struct{}

func (NopProvider) Get(context.Context, credentials.SecretRef) (Value, error) {
	return Value{}, ErrNotFound
}

func (NopProvider) Put(context.Context, credentials.SecretRef, []byte) (string, error) {
	return "", ErrUnsupported
}

func (NopProvider) Delete(context.Context, credentials.SecretRef) error { return ErrUnsupported }

func (NopProvider) Describe(context.Context, credentials.SecretRef) (map[string]any, error) {
	return nil, ErrNotFound
}
