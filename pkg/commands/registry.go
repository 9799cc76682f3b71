package commands

import (
	command "github.com/goliatone/go-command"
	internalcommands "github.com/goliatone/go-credentials/internal/commands"
	"github.com/goliatone/go-credentials/pkg/auth"
	"github.com/goliatone/go-credentials/pkg/credentials"
	"github.com/goliatone/go-credentials/pkg/interfaces/logger"
	"github.com/goliatone/go-credentials/pkg/providers"
)

// Re-export request types so consumers need not import internal packages.
type (
	ContextRef         = internalcommands.ContextRef
	SpecInput          = internalcommands.SpecInput
	UpsertCredential   = internalcommands.UpsertCredential
	RemoveCredential   = internalcommands.RemoveCredential
	SaveDomain         = internalcommands.SaveDomain
	ApplyConfiguration = internalcommands.ApplyConfiguration
)

// Registry exposes go-command compatible handlers backed by the module.
type Registry struct {
	Catalog            *internalcommands.Catalog
	UpsertCredential   command.Commander[UpsertCredential]
	RemoveCredential   command.Commander[RemoveCredential]
	SaveDomain         command.Commander[SaveDomain]
	ApplyConfiguration command.Commander[ApplyConfiguration]
}

// Dependencies mirror the internal command dependencies but keep them public.
type Dependencies struct {
	Providers  *providers.Registry
	Authorizer auth.Authorizer
	Contexts   internalcommands.ContextLookup
	Strategy   func() credentials.Strategy
	Logger     logger.Logger
}

// New builds the registry using the provided dependencies.
func New(deps Dependencies) (*Registry, error) {
	catalog, err := internalcommands.NewCatalog(internalcommands.Dependencies{
		Registry:   deps.Providers,
		Authorizer: deps.Authorizer,
		Contexts:   deps.Contexts,
		Strategy:   deps.Strategy,
		Logger:     deps.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Registry{
		Catalog:            catalog,
		UpsertCredential:   catalog.UpsertCredential,
		RemoveCredential:   catalog.RemoveCredential,
		SaveDomain:         catalog.SaveDomain,
		ApplyConfiguration: catalog.ApplyConfiguration,
	}, nil
}

// Commanders returns every handler so callers can register them with
// go-command registries.
func (r *Registry) Commanders() []any {
	if r == nil {
		return nil
	}
	return []any{
		r.UpsertCredential,
		r.RemoveCredential,
		r.SaveDomain,
		r.ApplyConfiguration,
	}
}
