package credman

import (
	"context"
	"errors"

	"github.com/goliatone/go-credentials/pkg/binder"
	"github.com/goliatone/go-credentials/pkg/credentials"
	"github.com/goliatone/go-credentials/pkg/interfaces/logger"
	"github.com/goliatone/go-credentials/pkg/resolver"
)

// Manager orchestrates resolution, execution bindings, and tracked access.
type Manager struct {
	engine  *resolver.Engine
	binders *binder.Registry
	logger  logger.Logger
}

// Dependencies bundles the collaborators required by the manager.
type Dependencies struct {
	Engine  *resolver.Engine
	Binders *binder.Registry
	Logger  logger.Logger
}

var (
	ErrMissingEngine = errors.New("credman: resolution engine is required")
	// ErrUnbound reports a parameter with no credential bound to it.
	ErrUnbound = errors.New("credman: parameter is not bound")
)

// NewManager constructs the manager.
func NewManager(deps Dependencies) (*Manager, error) {
	if deps.Engine == nil {
		return nil, ErrMissingEngine
	}
	if deps.Binders == nil {
		deps.Binders = binder.NewRegistry()
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Manager{
		engine:  deps.Engine,
		binders: deps.Binders,
		logger:  deps.Logger,
	}, nil
}

// List returns the credentials visible to the query, deduplicated and ordered
// nearest-context first.
func (m *Manager) List(ctx context.Context, q resolver.Query) ([]credentials.Credential, error) {
	return m.engine.List(ctx, q)
}

// Find resolves one credential by identifier.
func (m *Manager) Find(ctx context.Context, id string, q resolver.Query) (credentials.Credential, error) {
	return m.engine.FindByID(ctx, id, q)
}

// Binder returns the execution's parameter binder, creating it on first use.
func (m *Manager) Binder(executionID string) *binder.Binder {
	return m.binders.For(executionID)
}

// Release discards the execution's bindings once the execution completes.
func (m *Manager) Release(executionID string) {
	m.binders.Drop(executionID)
}

// ResolveBinding looks up the credential bound to an execution parameter and
// resolves it against the query. An unbound parameter is ErrUnbound; a bound
// but unresolvable credential surfaces as credentials.ErrNotFound.
func (m *Manager) ResolveBinding(ctx context.Context, executionID, parameter string, q resolver.Query) (credentials.Credential, error) {
	bd, ok := m.binders.For(executionID).Lookup(parameter)
	if !ok {
		return credentials.Credential{}, ErrUnbound
	}
	return m.engine.FindByID(ctx, bd.CredentialID, q)
}

// Access fetches the credential's secret payload, fulfilling the usage
// tracking obligation. The returned flag confirms the use was recorded.
func (m *Manager) Access(ctx context.Context, q resolver.Query, c credentials.Credential) ([]byte, bool, error) {
	return m.engine.Access(ctx, q.Context, c)
}

// Peek fetches the payload without recording a use, for validation flows.
func (m *Manager) Peek(ctx context.Context, c credentials.Credential) ([]byte, error) {
	return m.engine.Peek(ctx, c)
}
