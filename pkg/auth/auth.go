package auth

import (
	"errors"

	"github.com/goliatone/go-credentials/pkg/contexts"
)

// Permission names an action checked against a store's context.
type Permission string

const (
	PermissionView   Permission = "credentials.view"
	PermissionUse    Permission = "credentials.use"
	PermissionManage Permission = "credentials.manage"
	// PermissionUseOwn gates a job resolving credentials out of the personal
	// store of the user it runs on behalf of.
	PermissionUseOwn Permission = "credentials.use-own"
)

// ErrPermission is returned by administrative operations only; the public
// resolution surface answers permission failures with empty results instead.
var ErrPermission = errors.New("auth: permission denied")

// Principal identifies who a resolution or mutation is performed as.
type Principal struct {
	ID     string
	System bool
}

// System is the administrative identity used for internally triggered work.
func System() Principal { return Principal{ID: "system", System: true} }

// Anonymous is the zero-value unauthenticated principal.
func Anonymous() Principal { return Principal{} }

// IsAnonymous reports whether the principal carries no identity.
func (p Principal) IsAnonymous() bool { return p.ID == "" && !p.System }

// Authorizer answers permission checks for a principal against a context.
type Authorizer interface {
	Can(p Principal, perm Permission, ctx contexts.Context) bool
}

// AllowAll grants everything. The default for embedded library use where the
// host application enforces access upstream.
type AllowAll struct{}

func (AllowAll) Can(Principal, Permission, contexts.Context) bool { return true }

// SystemOnly grants mutation and system-context reads to the system
// principal, view/use elsewhere to everyone.
type SystemOnly struct{}

func (SystemOnly) Can(p Principal, perm Permission, ctx contexts.Context) bool {
	if p.System {
		return true
	}
	switch perm {
	case PermissionManage:
		return false
	case PermissionView, PermissionUse, PermissionUseOwn:
		// Non-system principals cannot read stores attached to the root.
		return ctx == nil || ctx.Kind() != contexts.KindRoot
	default:
		return false
	}
}

// OwnerOnly restricts user contexts to their owner on top of an inner
// authorizer. A nil inner defaults to AllowAll.
type OwnerOnly struct {
	Inner Authorizer
}

func (o OwnerOnly) Can(p Principal, perm Permission, ctx contexts.Context) bool {
	if ctx != nil && ctx.Kind() == contexts.KindUser && ctx.ID() != p.ID && !p.System {
		return false
	}
	inner := o.Inner
	if inner == nil {
		inner = AllowAll{}
	}
	return inner.Can(p, perm, ctx)
}
