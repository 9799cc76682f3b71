package awssm

import (
	"sort"

	"github.com/goliatone/go-credentials/pkg/contexts"
	"github.com/goliatone/go-credentials/pkg/credentials"
	"github.com/goliatone/go-credentials/pkg/providers"
)

// listingStore is the read-only snapshot a remote listing produced. Mutation
// goes through the remote console, never through this store.
type listingStore struct {
	owner contexts.Context
	state *credentials.DomainMap
}

var _ providers.Store = (*listingStore)(nil)

func newListingStore(owner contexts.Context, byDomain map[string][]credentials.Credential) *listingStore {
	state := credentials.NewDomainMap()
	names := make([]string, 0, len(byDomain))
	for name := range byDomain {
		names = append(names, name)
	}
	// Global domain first, then lexical, so listings are stable across calls.
	sort.Strings(names)
	for _, name := range names {
		state.Set(credentials.Domain{Name: name}, byDomain[name])
	}
	return &listingStore{owner: owner, state: state}
}

func (s *listingStore) withContext(owner contexts.Context) *listingStore {
	if s.owner == owner {
		return s
	}
	return &listingStore{owner: owner, state: s.state}
}

func (s *listingStore) Context() contexts.Context { return s.owner }
func (s *listingStore) ProviderName() string      { return ProviderName }

func (s *listingStore) Scopes() []credentials.Scope {
	return []credentials.Scope{credentials.ScopeGlobal}
}

func (s *listingStore) Domains() []credentials.Domain { return s.state.Domains() }

func (s *listingStore) Credentials(domain string) []credentials.Credential {
	return s.state.Credentials(domain)
}
