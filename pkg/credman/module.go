package credman

import (
	"context"

	internalcommands "github.com/goliatone/go-credentials/internal/commands"
	"github.com/goliatone/go-credentials/internal/di"
	"github.com/goliatone/go-credentials/pkg/auth"
	"github.com/goliatone/go-credentials/pkg/binder"
	"github.com/goliatone/go-credentials/pkg/commands"
	"github.com/goliatone/go-credentials/pkg/config"
	"github.com/goliatone/go-credentials/pkg/interfaces/logger"
	"github.com/goliatone/go-credentials/pkg/providers"
	"github.com/goliatone/go-credentials/pkg/providers/awssm"
	"github.com/goliatone/go-credentials/pkg/resolver"
	"github.com/goliatone/go-credentials/pkg/secrets"
	"github.com/goliatone/go-credentials/pkg/storage"
)

// ModuleOptions configure the credential module facade.
type ModuleOptions struct {
	Config     config.Config
	Storage    storage.Providers
	Logger     logger.Logger
	Authorizer auth.Authorizer
	Secrets    secrets.Resolver
	Providers  []providers.Provider
	AWSClient  awssm.Client
	Contexts   internalcommands.ContextLookup
}

// Module bundles the container and exposes high-level accessors. It replaces
// reach-through globals: hosts construct one module and pass it down.
type Module struct {
	container *di.Container
	manager   *Manager
}

// NewModule assembles repositories, providers, the resolution engine, binders,
// and commands.
func NewModule(opts ModuleOptions) (*Module, error) {
	container, err := di.New(di.Options{
		Config:     opts.Config,
		Storage:    opts.Storage,
		Logger:     opts.Logger,
		Authorizer: opts.Authorizer,
		Secrets:    opts.Secrets,
		Providers:  opts.Providers,
		AWSClient:  opts.AWSClient,
		Contexts:   opts.Contexts,
	})
	if err != nil {
		return nil, err
	}
	manager, err := NewManager(Dependencies{
		Engine:  container.Engine,
		Binders: container.Binders,
		Logger:  opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Module{container: container, manager: manager}, nil
}

// Start launches background work: the file provider watcher when configured.
// It returns immediately; watchers stop when ctx is done.
func (m *Module) Start(ctx context.Context) error {
	if m == nil || m.container == nil {
		return nil
	}
	if m.container.FileProvider != nil && m.container.Config.Providers.File.Watch {
		return m.container.FileProvider.Watch(ctx)
	}
	return nil
}

// Manager returns the resolution manager.
func (m *Module) Manager() *Manager {
	if m == nil || m.container == nil {
		return nil
	}
	return m.manager
}

// Engine returns the resolution engine.
func (m *Module) Engine() *resolver.Engine {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Engine
}

// Providers returns the provider registry.
func (m *Module) Providers() *providers.Registry {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Registry
}

// Binders returns the per-execution binder registry.
func (m *Module) Binders() *binder.Registry {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Binders
}

// Commands returns the go-command registry.
func (m *Module) Commands() *commands.Registry {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Commands
}

// Config returns the effective module configuration.
func (m *Module) Config() config.Config {
	if m == nil || m.container == nil {
		return config.Config{}
	}
	return m.container.Config
}

// Container returns the internal DI container.
// This is exposed for advanced use cases like direct storage access.
func (m *Module) Container() *di.Container {
	if m == nil {
		return nil
	}
	return m.container
}
