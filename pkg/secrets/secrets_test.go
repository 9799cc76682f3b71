package secrets

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-credentials/pkg/credentials"
	"golang.org/x/crypto/chacha20poly1305"
)

func testKey() []byte {
	key := make([]byte, chacha20poly1305.KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestEncryptedStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	provider, err := NewEncryptedStoreProvider(NewMemoryStore(), testKey())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	ref := credentials.SecretRef{Provider: "local", Key: "db-password"}
	version, err := provider.Put(ctx, ref, []byte("hunter2"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if version == "" {
		t.Fatal("put should mint a version")
	}

	val, err := provider.Get(ctx, ref)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(val.Data, []byte("hunter2")) {
		t.Fatalf("payload mismatch: %q", val.Data)
	}
	if val.Version != version {
		t.Fatalf("version mismatch: %q vs %q", val.Version, version)
	}
}

func TestEncryptedStoreVersions(t *testing.T) {
	ctx := context.Background()
	provider, err := NewEncryptedStoreProvider(NewMemoryStore(), testKey())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	ref := credentials.SecretRef{Provider: "local", Key: "token"}
	if _, err := provider.Put(ctx, credentials.SecretRef{Provider: "local", Key: "token", Version: "v1"}, []byte("one")); err != nil {
		t.Fatalf("put v1: %v", err)
	}
	if _, err := provider.Put(ctx, credentials.SecretRef{Provider: "local", Key: "token", Version: "v2"}, []byte("two")); err != nil {
		t.Fatalf("put v2: %v", err)
	}

	latest, err := provider.Get(ctx, ref)
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if string(latest.Data) != "two" {
		t.Fatalf("latest should be v2, got %q", latest.Data)
	}

	pinned, err := provider.Get(ctx, credentials.SecretRef{Provider: "local", Key: "token", Version: "v1"})
	if err != nil {
		t.Fatalf("get pinned: %v", err)
	}
	if string(pinned.Data) != "one" {
		t.Fatalf("pinned version mismatch: %q", pinned.Data)
	}
}

func TestEncryptedStoreValidation(t *testing.T) {
	ctx := context.Background()
	provider, err := NewEncryptedStoreProvider(NewMemoryStore(), testKey())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	if _, err := provider.Get(ctx, credentials.SecretRef{}); !errors.Is(err, ErrInvalidRef) {
		t.Fatalf("empty ref should be ErrInvalidRef, got %v", err)
	}
	if _, err := provider.Put(ctx, credentials.SecretRef{Provider: "local", Key: "k"}, nil); !errors.Is(err, ErrEmptyValue) {
		t.Fatalf("empty value should be ErrEmptyValue, got %v", err)
	}
	if _, err := provider.Get(ctx, credentials.SecretRef{Provider: "local", Key: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key should be ErrNotFound, got %v", err)
	}

	if _, err := NewEncryptedStoreProvider(NewMemoryStore(), []byte("short")); err == nil {
		t.Fatal("short key must be rejected")
	}
}

type countingResolver struct {
	calls int
	data  []byte
	err   error
}

func (r *countingResolver) Fetch(context.Context, credentials.SecretRef) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.data, nil
}

func TestCachingResolverCachesSuccesses(t *testing.T) {
	inner := &countingResolver{data: []byte("cached")}
	resolver := NewCachingResolver(inner, time.Minute)

	ref := credentials.SecretRef{Provider: "remote", Key: "k"}
	for i := 0; i < 3; i++ {
		got, err := resolver.Fetch(context.Background(), ref)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if string(got) != "cached" {
			t.Fatalf("unexpected payload: %q", got)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected one inner call, got %d", inner.calls)
	}
}

func TestCachingResolverDoesNotCacheFailures(t *testing.T) {
	inner := &countingResolver{err: ErrNotFound}
	resolver := NewCachingResolver(inner, time.Minute)

	ref := credentials.SecretRef{Provider: "remote", Key: "k"}
	for i := 0; i < 2; i++ {
		if _, err := resolver.Fetch(context.Background(), ref); !errors.Is(err, ErrNotFound) {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if inner.calls != 2 {
		t.Fatalf("failures must not be cached, got %d calls", inner.calls)
	}
}

func TestCachingResolverZeroTTLPassthrough(t *testing.T) {
	inner := &countingResolver{data: []byte("x")}
	if got := NewCachingResolver(inner, 0); got != Resolver(inner) {
		t.Fatal("zero TTL should return the inner resolver unchanged")
	}
}

func TestMaskValuesNeverLeaksPlaintext(t *testing.T) {
	ref := credentials.SecretRef{Provider: "local", Key: "api_key"}
	masked := MaskValues(map[credentials.SecretRef]Value{
		ref: {Data: []byte("supersecretvalue"), Version: "v3"},
	})

	entry, ok := masked["api_key"].(map[string]any)
	if !ok {
		t.Fatalf("expected an entry per key: %+v", masked)
	}
	if entry["version"] != "v3" {
		t.Fatalf("version lost: %+v", entry)
	}
	value, _ := entry["value"].(string)
	if value == "" || value == "supersecretvalue" {
		t.Fatalf("plaintext must not survive masking: %q", value)
	}

	if MaskValues(nil) != nil {
		t.Fatal("empty input should yield nil")
	}
}

func TestRegistryDispatchesByProvider(t *testing.T) {
	reg := NewRegistry()
	reg.Register("static", NewStaticProvider(map[credentials.SecretRef]Value{
		{Provider: "static", Key: "k", Version: "v1"}: {Data: []byte("payload"), Version: "v1"},
	}))

	got, err := reg.Fetch(context.Background(), credentials.SecretRef{Provider: "static", Key: "k"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("unexpected payload: %q", got)
	}

	reg.Register("nop", NopProvider{})
	if _, err := reg.Fetch(context.Background(), credentials.SecretRef{Provider: "nop", Key: "k"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("nop provider should resolve nothing, got %v", err)
	}

	if _, err := reg.Fetch(context.Background(), credentials.SecretRef{Provider: "other", Key: "k"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown provider should be ErrNotFound, got %v", err)
	}
	if _, err := reg.Fetch(context.Background(), credentials.SecretRef{}); !errors.Is(err, ErrInvalidRef) {
		t.Fatalf("invalid ref should be ErrInvalidRef, got %v", err)
	}
}
