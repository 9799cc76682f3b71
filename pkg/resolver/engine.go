package resolver

import (
	"context"

	"github.com/goliatone/go-credentials/pkg/auth"
	"github.com/goliatone/go-credentials/pkg/contexts"
	"github.com/goliatone/go-credentials/pkg/credentials"
	"github.com/goliatone/go-credentials/pkg/interfaces/logger"
	"github.com/goliatone/go-credentials/pkg/providers"
)

// Query describes one resolution request.
type Query struct {
	// Type filters credentials by type tag; empty accepts every type.
	Type credentials.Type
	// Context is the node resolution originates from.
	Context contexts.Context
	// Principal is who the work runs as. For queued executions this is the
	// principal the execution will actually run under, not whoever asked for
	// the resolution, so a job resolves the same set regardless of the
	// trigger.
	Principal auth.Principal
	// Requirements constrain which domains apply.
	Requirements []credentials.Requirement
	// Matcher is an optional extra predicate; nil accepts everything.
	Matcher credentials.Matcher
	// User, when non-nil, is the principal's personal context to append to
	// the walk. Its user-scoped credentials surface only when it belongs to
	// the acting principal and use-own permission is granted.
	User contexts.Context
}

// Dependencies bundles the engine collaborators. Per-provider call bounds
// live on the registry (providers.WithProviderTimeout).
type Dependencies struct {
	Registry   *providers.Registry
	Authorizer auth.Authorizer
	Secrets    SecretReader
	Logger     logger.Logger
}

// Engine walks the context hierarchy and provider registry to answer
// listing and lookup queries. It is safe for concurrent use; listing takes no
// locks beyond per-store read snapshots.
type Engine struct {
	registry   *providers.Registry
	authorizer auth.Authorizer
	secrets    SecretReader
	logger     logger.Logger
	tracker    *Tracker
}

// New builds an engine. Registry is required; a nil authorizer allows
// everything and a nil logger is a Nop.
func New(deps Dependencies) *Engine {
	if deps.Authorizer == nil {
		deps.Authorizer = auth.AllowAll{}
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Engine{
		registry:   deps.Registry,
		authorizer: deps.Authorizer,
		secrets:    deps.Secrets,
		logger:     deps.Logger,
		tracker:    NewTracker(deps.Logger),
	}
}

// Tracker exposes the engine's usage tracker.
func (e *Engine) Tracker() *Tracker { return e.tracker }

// List returns the deduplicated, ordered credentials visible to the query.
// First occurrence wins: nearest context first, then provider priority.
// An empty result is a normal outcome; permission-insufficient callers get
// empty results rather than an error so listing never leaks existence.
//
// Deduplication applies within one call only. Callers combining several List
// results into one selection widget own the cross-call dedup convention.
func (e *Engine) List(ctx context.Context, q Query) ([]credentials.Credential, error) {
	var out []credentials.Credential
	seen := map[string]bool{}
	origin := contexts.Kind("")
	if q.Context != nil {
		origin = q.Context.Kind()
	}

	for _, node := range e.walk(q) {
		for _, store := range e.storesFor(ctx, node) {
			if !e.authorizer.Can(q.Principal, auth.PermissionView, store.Context()) {
				continue
			}
			allowed := map[credentials.Scope]bool{}
			for _, s := range store.Scopes() {
				allowed[s] = true
			}
			for _, d := range store.Domains() {
				if !d.Matches(q.Requirements) {
					continue
				}
				for _, c := range store.Credentials(d.Name) {
					if !c.AssignableTo(q.Type) {
						continue
					}
					if c.Scope != "" && (!allowed[c.Scope] || !c.Scope.VisibleIn(origin)) {
						continue
					}
					if c.Scope == credentials.ScopeUser && !e.ownUserStore(q, node) {
						continue
					}
					if q.Matcher != nil && !q.Matcher(c) {
						continue
					}
					if seen[c.ID] {
						continue
					}
					seen[c.ID] = true
					out = append(out, c)
				}
			}
		}
	}
	return out, nil
}

// FindByID resolves a single credential by identifier, or ErrNotFound. Not
// found is a normal outcome; an unknown identifier and one the principal may
// not see are indistinguishable here.
func (e *Engine) FindByID(ctx context.Context, id string, q Query) (credentials.Credential, error) {
	q.Matcher = credentials.AllOf(q.Matcher, credentials.WithID(id))
	got, err := e.List(ctx, q)
	if err != nil {
		return credentials.Credential{}, err
	}
	if len(got) == 0 {
		return credentials.Credential{}, credentials.ErrNotFound
	}
	return got[0], nil
}

// walk builds the ordered chain of contexts to consult: the origin and its
// ancestors nearest-first, then the principal's personal context when the
// caller opted in.
func (e *Engine) walk(q Query) []contexts.Context {
	chain := contexts.Walk(q.Context)
	if q.User != nil {
		present := false
		for _, c := range chain {
			if c == q.User {
				present = true
				break
			}
		}
		if !present {
			chain = append(chain, q.User)
		}
	}
	return chain
}

// ownUserStore reports whether user-scoped credentials at this walk node may
// surface: the node must be the acting principal's own user context and the
// principal must hold use-own permission there.
func (e *Engine) ownUserStore(q Query, node contexts.Context) bool {
	if node == nil || node.Kind() != contexts.KindUser {
		return false
	}
	if !q.Principal.System && node.ID() != q.Principal.ID {
		return false
	}
	return e.authorizer.Can(q.Principal, auth.PermissionUseOwn, node)
}

func (e *Engine) storesFor(ctx context.Context, node contexts.Context) []providers.Store {
	if e.registry == nil {
		return nil
	}
	return e.registry.StoresFor(ctx, node)
}
