package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-credentials/pkg/contexts"
	"github.com/goliatone/go-credentials/pkg/credentials"
)

type failingProvider struct {
	name string
}

func (p *failingProvider) Name() string                { return p.name }
func (p *failingProvider) Priority() int               { return 100 }
func (p *failingProvider) Enabled() bool               { return true }
func (p *failingProvider) Scopes() []credentials.Scope { return []credentials.Scope{credentials.ScopeGlobal} }
func (p *failingProvider) Stores(context.Context, contexts.Context) ([]Store, error) {
	return nil, errors.New("backend unavailable")
}

func TestRegistryPriorityOrdering(t *testing.T) {
	r := NewRegistry(nil)
	low := NewStaticProvider("low", 1)
	high := NewStaticProvider("high", 10)
	mid := NewStaticProvider("mid", 5)
	r.Register(low, high, mid)

	ps := r.Providers()
	want := []string{"high", "mid", "low"}
	for i, name := range want {
		if ps[i].Name() != name {
			t.Fatalf("provider order %d = %q, want %q", i, ps[i].Name(), name)
		}
	}
}

func TestRegistryStableTies(t *testing.T) {
	r := NewRegistry(nil)
	first := NewStaticProvider("first", 5)
	second := NewStaticProvider("second", 5)
	r.Register(first, second)

	ps := r.Providers()
	if ps[0].Name() != "first" || ps[1].Name() != "second" {
		t.Fatalf("equal priorities must keep registration order: %q, %q", ps[0].Name(), ps[1].Name())
	}
}

func TestRegistrySkipsDisabledProviders(t *testing.T) {
	r := NewRegistry(nil)
	enabled := NewStaticProvider("enabled", 1)
	disabled := NewStaticProvider("disabled", 10)
	disabled.Disabled = true

	root := &contexts.Root{Name: "root"}
	enabled.StoreFor(root)
	disabled.StoreFor(root)
	r.Register(enabled, disabled)

	stores := r.StoresFor(context.Background(), root)
	if len(stores) != 1 {
		t.Fatalf("expected 1 store, got %d", len(stores))
	}
	if stores[0].ProviderName() != "enabled" {
		t.Fatalf("unexpected provider: %q", stores[0].ProviderName())
	}
}

func TestRegistryFailingProviderContributesNothing(t *testing.T) {
	r := NewRegistry(nil)
	working := NewStaticProvider("working", 1)
	root := &contexts.Root{Name: "root"}
	working.StoreFor(root)
	r.Register(&failingProvider{name: "broken"}, working)

	stores := r.StoresFor(context.Background(), root)
	if len(stores) != 1 || stores[0].ProviderName() != "working" {
		t.Fatalf("broken provider must not abort the listing: %v", stores)
	}
}

func TestRegistryMutateProviderGone(t *testing.T) {
	r := NewRegistry(nil)
	p := NewStaticProvider("ephemeral", 1)
	root := &contexts.Root{Name: "root"}
	store := p.StoreFor(root)
	r.Register(p)

	r.Deregister("ephemeral")
	err := r.Mutate(store, func(ms MutableStore) error { return nil })
	if !errors.Is(err, credentials.ErrProviderMissing) {
		t.Fatalf("expected ErrProviderMissing, got %v", err)
	}
}

func TestRegistryMutateDisabledProvider(t *testing.T) {
	r := NewRegistry(nil)
	p := NewStaticProvider("toggled", 1)
	root := &contexts.Root{Name: "root"}
	store := p.StoreFor(root)
	r.Register(p)

	p.Disabled = true
	err := r.Mutate(store, func(ms MutableStore) error { return nil })
	if !errors.Is(err, credentials.ErrProviderMissing) {
		t.Fatalf("expected ErrProviderMissing for disabled provider, got %v", err)
	}
}

func TestRegistryOpenMutable(t *testing.T) {
	r := NewRegistry(nil)
	p := NewStaticProvider("writable", 1)
	r.Register(p)

	root := &contexts.Root{Name: "root"}
	ms, err := r.OpenMutable(context.Background(), "writable", root)
	if err != nil {
		t.Fatalf("open mutable: %v", err)
	}
	if err := ms.AddCredential("", credentials.Credential{ID: "k", Scope: credentials.ScopeGlobal}); err != nil {
		t.Fatalf("add credential: %v", err)
	}

	if _, err := r.OpenMutable(context.Background(), "missing", root); !errors.Is(err, credentials.ErrProviderMissing) {
		t.Fatalf("expected ErrProviderMissing, got %v", err)
	}
}

func TestRegistryTypesDedupFirstSeen(t *testing.T) {
	r := NewRegistry(nil)
	p := NewStaticProvider("p", 1)
	root := &contexts.Root{Name: "root"}
	s := p.StoreFor(root)
	for _, c := range []credentials.Credential{
		{ID: "a", Type: "ssh-key", Scope: credentials.ScopeGlobal},
		{ID: "b", Type: "secret-text", Scope: credentials.ScopeGlobal},
		{ID: "c", Type: "ssh-key", Scope: credentials.ScopeGlobal},
	} {
		if err := s.AddCredential("", c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	r.Register(p)

	types := r.Types(context.Background(), root)
	if len(types) != 2 || types[0] != "ssh-key" || types[1] != "secret-text" {
		t.Fatalf("unexpected types: %v", types)
	}
}
