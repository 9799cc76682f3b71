package secrets

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-credentials/pkg/credentials"
)

// StaticProvider keeps payloads in memory without encryption. Intended for
// tests and demos.
type StaticProvider struct {
	mu    sync.RWMutex
	store map[credentials.SecretRef]Value
}

// NewStaticProvider builds an in-memory provider seeded with optional values.
func NewStaticProvider(seed map[credentials.SecretRef]Value) *StaticProvider {
	p := &StaticProvider{store: make(map[credentials.SecretRef]Value)}
	for ref, val := range seed {
		p.store[ref] = val
	}
	return p
}

func (p *StaticProvider) Get(_ context.Context, ref credentials.SecretRef) (Value, error) {
	if err := ValidateRef(ref); err != nil {
		return Value{}, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if ref.Version != "" {
		if val, ok := p.store[ref]; ok {
			return val, nil
		}
		return Value{}, ErrNotFound
	}
	// No version requested: return the latest by lexical max.
	var latest Value
	var found bool
	for k, v := range p.store {
		if k.Provider == ref.Provider && k.Key == ref.Key {
			if !found || v.Version > latest.Version {
				latest = v
				found = true
			}
		}
	}
	if !found {
		return Value{}, ErrNotFound
	}
	return latest, nil
}

func (p *StaticProvider) Put(_ context.Context, ref credentials.SecretRef, value []byte) (string, error) {
	if err := ValidateRef(ref); err != nil {
		return "", err
	}
	if len(value) == 0 {
		return "", ErrEmptyValue
	}
	if ref.Version == "" {
		ref.Version = time.Now().UTC().Format(time.RFC3339Nano)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.store[ref] = Value{
		Data:      append([]byte(nil), value...),
		Version:   ref.Version,
		Retrieved: time.Now().UTC(),
	}
	return ref.Version, nil
}

func (p *StaticProvider) Delete(_ context.Context, ref credentials.SecretRef) error {
	if err := ValidateRef(ref); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for k := range p.store {
		if k.Provider == ref.Provider && k.Key == ref.Key {
			delete(p.store, k)
		}
	}
	return nil
}

func (p *StaticProvider) Describe(ctx context.Context, ref credentials.SecretRef) (map[string]any, error) {
	val, err := p.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	return map[string]any{"version": val.Version}, nil
}
