package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-credentials/pkg/auth"
	"github.com/goliatone/go-credentials/pkg/contexts"
	"github.com/goliatone/go-credentials/pkg/credentials"
	"github.com/goliatone/go-credentials/pkg/providers"
)

func newEngine(t *testing.T, reg *providers.Registry, authorizer auth.Authorizer) *Engine {
	t.Helper()
	return New(Dependencies{Registry: reg, Authorizer: authorizer})
}

func seedStore(t *testing.T, s *providers.MemStore, domain string, creds ...credentials.Credential) {
	t.Helper()
	for _, c := range creds {
		if err := s.AddCredential(domain, c); err != nil {
			t.Fatalf("seed %q/%q: %v", domain, c.ID, err)
		}
	}
}

func TestListFirstOccurrenceWins(t *testing.T) {
	root := &contexts.Root{Name: "root"}
	folder := &contexts.Folder{Name: "team", Owner: root}
	item := &contexts.Item{Name: "deploy", Owner: folder}

	p := providers.NewStaticProvider("p", 0, credentials.ScopeGlobal)
	seedStore(t, p.StoreFor(folder), "", credentials.Credential{
		ID: "X", Scope: credentials.ScopeGlobal, Description: "near",
	})
	seedStore(t, p.StoreFor(root), "", credentials.Credential{
		ID: "X", Scope: credentials.ScopeGlobal, Description: "far",
	})

	reg := providers.NewRegistry(nil)
	reg.Register(p)
	engine := newEngine(t, reg, nil)

	got, err := engine.List(context.Background(), Query{Context: item, Principal: auth.System()})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("duplicate ids must collapse to one entry, got %d", len(got))
	}
	if got[0].Description != "near" {
		t.Fatalf("nearest occurrence must win, got %q", got[0].Description)
	}
}

func TestListProviderPriorityWithinNode(t *testing.T) {
	root := &contexts.Root{Name: "root"}

	high := providers.NewStaticProvider("high", 10, credentials.ScopeGlobal)
	low := providers.NewStaticProvider("low", 1, credentials.ScopeGlobal)
	seedStore(t, high.StoreFor(root), "", credentials.Credential{
		ID: "shared", Scope: credentials.ScopeGlobal, Description: "from-high",
	})
	seedStore(t, low.StoreFor(root), "", credentials.Credential{
		ID: "shared", Scope: credentials.ScopeGlobal, Description: "from-low",
	})

	reg := providers.NewRegistry(nil)
	reg.Register(low, high)
	engine := newEngine(t, reg, nil)

	got, err := engine.List(context.Background(), Query{Context: root, Principal: auth.System()})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Description != "from-high" {
		t.Fatalf("higher priority provider must win the collision: %+v", got)
	}
}

func TestListSystemScopeBoundary(t *testing.T) {
	root := &contexts.Root{Name: "root"}
	item := &contexts.Item{Name: "job", Owner: root}
	agent := &contexts.Agent{Name: "builder", Owner: root}

	p := providers.NewStaticProvider("p", 0,
		credentials.ScopeSystem, credentials.ScopeGlobal)
	seedStore(t, p.StoreFor(root), "",
		credentials.Credential{ID: "deploy-master-key", Scope: credentials.ScopeSystem},
		credentials.Credential{ID: "shared-token", Scope: credentials.ScopeGlobal},
	)

	reg := providers.NewRegistry(nil)
	reg.Register(p)
	engine := newEngine(t, reg, nil)

	fromItem, err := engine.List(context.Background(), Query{Context: item, Principal: auth.System()})
	if err != nil {
		t.Fatalf("list from item: %v", err)
	}
	if len(fromItem) != 1 || fromItem[0].ID != "shared-token" {
		t.Fatalf("system credential must not surface from an item: %+v", fromItem)
	}

	fromRoot, err := engine.List(context.Background(), Query{Context: root, Principal: auth.System()})
	if err != nil {
		t.Fatalf("list from root: %v", err)
	}
	if len(fromRoot) != 2 {
		t.Fatalf("root resolution should see both tiers: %+v", fromRoot)
	}

	fromAgent, err := engine.List(context.Background(), Query{Context: agent, Principal: auth.System()})
	if err != nil {
		t.Fatalf("list from agent: %v", err)
	}
	if len(fromAgent) != 2 {
		t.Fatalf("agent resolution should see system scope: %+v", fromAgent)
	}
}

func TestListPermissionFailureYieldsEmptyNotError(t *testing.T) {
	root := &contexts.Root{Name: "root"}
	p := providers.NewStaticProvider("p", 0, credentials.ScopeGlobal)
	seedStore(t, p.StoreFor(root), "", credentials.Credential{ID: "hidden", Scope: credentials.ScopeGlobal})

	reg := providers.NewRegistry(nil)
	reg.Register(p)
	engine := newEngine(t, reg, auth.SystemOnly{})

	got, err := engine.List(context.Background(), Query{Context: root, Principal: auth.Principal{ID: "mallory"}})
	if err != nil {
		t.Fatalf("permission failure must not error on the listing path: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("unauthorized caller should get empty results, got %+v", got)
	}
}

func TestFindByIDNotFoundIndistinguishable(t *testing.T) {
	root := &contexts.Root{Name: "root"}
	p := providers.NewStaticProvider("p", 0, credentials.ScopeGlobal)
	seedStore(t, p.StoreFor(root), "", credentials.Credential{ID: "real", Scope: credentials.ScopeGlobal})

	reg := providers.NewRegistry(nil)
	reg.Register(p)
	engine := newEngine(t, reg, auth.SystemOnly{})

	// Unknown id for an authorized caller.
	_, err := engine.FindByID(context.Background(), "ghost", Query{Context: root, Principal: auth.System()})
	if !errors.Is(err, credentials.ErrNotFound) {
		t.Fatalf("unknown id should be ErrNotFound, got %v", err)
	}

	// Known id for an unauthorized caller must look identical.
	_, err = engine.FindByID(context.Background(), "real", Query{Context: root, Principal: auth.Principal{ID: "mallory"}})
	if !errors.Is(err, credentials.ErrNotFound) {
		t.Fatalf("forbidden id should also be ErrNotFound, got %v", err)
	}
}

func TestListDomainRequirements(t *testing.T) {
	root := &contexts.Root{Name: "root"}
	p := providers.NewStaticProvider("p", 0, credentials.ScopeGlobal)
	s := p.StoreFor(root)
	if err := s.SetDomain(credentials.Domain{
		Name:  "internal-db",
		Specs: []credentials.Specification{credentials.HostnameSpecification{Includes: "*.db.internal"}},
	}); err != nil {
		t.Fatalf("set domain: %v", err)
	}
	seedStore(t, s, "internal-db", credentials.Credential{ID: "db-cred", Scope: credentials.ScopeGlobal})
	seedStore(t, s, "", credentials.Credential{ID: "anywhere", Scope: credentials.ScopeGlobal})

	reg := providers.NewRegistry(nil)
	reg.Register(p)
	engine := newEngine(t, reg, nil)

	matching, err := engine.List(context.Background(), Query{
		Context:      root,
		Principal:    auth.System(),
		Requirements: credentials.RequirementsFromURI("postgres://primary.db.internal/app"),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(matching) != 2 {
		t.Fatalf("expected domain + global credentials, got %+v", matching)
	}

	nonMatching, err := engine.List(context.Background(), Query{
		Context:      root,
		Principal:    auth.System(),
		Requirements: credentials.RequirementsFromURI("https://public.example.com/"),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(nonMatching) != 1 || nonMatching[0].ID != "anywhere" {
		t.Fatalf("non-matching host should only see global domain: %+v", nonMatching)
	}
}

func TestListUserScopeRequiresOwnContext(t *testing.T) {
	root := &contexts.Root{Name: "root"}
	alice := &contexts.User{Username: "alice", Owner: root}
	item := &contexts.Item{Name: "job", Owner: root}

	p := providers.NewStaticProvider("p", 0, credentials.ScopeGlobal, credentials.ScopeUser)
	seedStore(t, p.StoreFor(alice), "", credentials.Credential{ID: "alice-ssh", Scope: credentials.ScopeUser})

	reg := providers.NewRegistry(nil)
	reg.Register(p)
	engine := newEngine(t, reg, nil)

	// Without the user context in the query, nothing surfaces.
	got, err := engine.List(context.Background(), Query{Context: item, Principal: auth.Principal{ID: "alice"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("user store must be opt-in: %+v", got)
	}

	// Acting principal owns the appended user context.
	got, err = engine.List(context.Background(), Query{
		Context:   item,
		Principal: auth.Principal{ID: "alice"},
		User:      alice,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "alice-ssh" {
		t.Fatalf("owner should see their user credentials: %+v", got)
	}

	// A different principal gets nothing from alice's store.
	got, err = engine.List(context.Background(), Query{
		Context:   item,
		Principal: auth.Principal{ID: "bob"},
		User:      alice,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("foreign principal must not see alice's user credentials: %+v", got)
	}
}

func TestListTypeAndMatcherFilters(t *testing.T) {
	root := &contexts.Root{Name: "root"}
	p := providers.NewStaticProvider("p", 0, credentials.ScopeGlobal)
	seedStore(t, p.StoreFor(root), "",
		credentials.Credential{ID: "ssh", Scope: credentials.ScopeGlobal, Type: "ssh-key"},
		credentials.Credential{ID: "pw", Scope: credentials.ScopeGlobal, Type: "username-password"},
	)

	reg := providers.NewRegistry(nil)
	reg.Register(p)
	engine := newEngine(t, reg, nil)

	got, err := engine.List(context.Background(), Query{
		Context:   root,
		Principal: auth.System(),
		Type:      "ssh-key",
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "ssh" {
		t.Fatalf("type filter failed: %+v", got)
	}

	got, err = engine.List(context.Background(), Query{
		Context:   root,
		Principal: auth.System(),
		Matcher:   func(c credentials.Credential) bool { return c.ID == "pw" },
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "pw" {
		t.Fatalf("matcher filter failed: %+v", got)
	}
}
