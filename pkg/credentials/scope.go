package credentials

import "github.com/goliatone/go-credentials/pkg/contexts"

// Scope defines the visibility tier of a credential.
type Scope string

const (
	// ScopeSystem credentials are usable only from the root or agent
	// contexts, never handed to individual jobs.
	ScopeSystem Scope = "system"
	// ScopeGlobal credentials are inherited by every descendant of the
	// declaring context.
	ScopeGlobal Scope = "global"
	// ScopeUser credentials live in the owning user's personal context and
	// are reachable only when the resolver is asked to include it.
	ScopeUser Scope = "user"
)

// Valid reports whether the scope is one of the known tiers.
func (s Scope) Valid() bool {
	switch s {
	case ScopeSystem, ScopeGlobal, ScopeUser:
		return true
	default:
		return false
	}
}

// VisibleIn reports whether credentials of this scope may surface when
// resolving from a context of the given kind. Pure and total: unknown scopes
// and kinds return false rather than erroring.
//
// User-scope visibility is structural only; actual reachability of a user
// store is decided by the resolver's context walk.
func (s Scope) VisibleIn(kind contexts.Kind) bool {
	switch s {
	case ScopeSystem:
		return kind == contexts.KindRoot || kind == contexts.KindAgent
	case ScopeGlobal:
		switch kind {
		case contexts.KindRoot, contexts.KindFolder, contexts.KindItem, contexts.KindUser, contexts.KindAgent:
			return true
		}
		return false
	case ScopeUser:
		switch kind {
		case contexts.KindRoot, contexts.KindFolder, contexts.KindItem, contexts.KindUser, contexts.KindAgent:
			return true
		}
		return false
	default:
		return false
	}
}
