package di

import (
	"reflect"

	internalcommands "github.com/goliatone/go-credentials/internal/commands"
	"github.com/goliatone/go-credentials/pkg/auth"
	"github.com/goliatone/go-credentials/pkg/binder"
	"github.com/goliatone/go-credentials/pkg/commands"
	"github.com/goliatone/go-credentials/pkg/config"
	"github.com/goliatone/go-credentials/pkg/credentials"
	"github.com/goliatone/go-credentials/pkg/interfaces/logger"
	"github.com/goliatone/go-credentials/pkg/providers"
	"github.com/goliatone/go-credentials/pkg/providers/awssm"
	"github.com/goliatone/go-credentials/pkg/providers/file"
	"github.com/goliatone/go-credentials/pkg/resolver"
	"github.com/goliatone/go-credentials/pkg/secrets"
	"github.com/goliatone/go-credentials/pkg/storage"
)

// Options configure the DI container.
type Options struct {
	Config     config.Config
	Storage    storage.Providers
	Logger     logger.Logger
	Authorizer auth.Authorizer
	Secrets    secrets.Resolver
	// Providers are host-supplied extras registered alongside the bundled
	// file/database/AWS providers.
	Providers []providers.Provider
	// AWSClient enables the Secrets Manager provider when the config switches
	// it on; without a client the provider stays unregistered.
	AWSClient awssm.Client
	Contexts  internalcommands.ContextLookup
}

// Container wires repositories, provider registry, engine, binders, and
// commands.
type Container struct {
	Config   config.Config
	Storage  storage.Providers
	Registry *providers.Registry
	Engine   *resolver.Engine
	Binders  *binder.Registry
	Commands *commands.Registry
	Secrets  secrets.Resolver
	// FileProvider is non-nil when the file provider is enabled; its watcher
	// lifecycle belongs to the module facade.
	FileProvider *file.Provider
}

func isZeroConfig(cfg config.Config) bool {
	return reflect.ValueOf(cfg).IsZero()
}

// New constructs the container using the supplied options.
func New(opts Options) (*Container, error) {
	cfg := opts.Config
	if isZeroConfig(cfg) {
		cfg = config.Defaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	repos := opts.Storage
	if repos.StoreStates == nil {
		repos = storage.NewMemoryProviders()
	}

	lgr := opts.Logger
	if lgr == nil {
		lgr = &logger.Nop{}
	}

	authorizer := opts.Authorizer
	if authorizer == nil {
		authorizer = auth.AllowAll{}
	}

	secretsResolver := opts.Secrets
	if secretsResolver == nil {
		// An empty registry resolves nothing; hosts register providers per
		// reference namespace.
		secretsResolver = secrets.NewRegistry()
	}
	if cfg.Secrets.CacheTTL > 0 {
		secretsResolver = secrets.NewCachingResolver(secretsResolver, cfg.Secrets.CacheTTL)
	}

	registry := providers.NewRegistry(lgr, providers.WithProviderTimeout(cfg.Providers.Timeout))
	registry.Register(storage.NewProvider(repos.StoreStates, lgr))

	var fileProvider *file.Provider
	if cfg.Providers.File.Enabled {
		fp, err := file.New(cfg.Providers.File.Dir, lgr)
		if err != nil {
			return nil, err
		}
		fileProvider = fp
		registry.Register(fp)
	}

	if cfg.Providers.AWS.Enabled && opts.AWSClient != nil {
		registry.Register(awssm.New(lgr, awssm.Config{
			Region:   cfg.Providers.AWS.Region,
			Profile:  cfg.Providers.AWS.Profile,
			Prefix:   cfg.Providers.AWS.Prefix,
			CacheTTL: cfg.Providers.AWS.CacheTTL,
		}, awssm.WithClient(opts.AWSClient)))
	}

	if len(opts.Providers) > 0 {
		registry.Register(opts.Providers...)
	}

	engine := resolver.New(resolver.Dependencies{
		Registry:   registry,
		Authorizer: authorizer,
		Secrets:    secretsResolver,
		Logger:     lgr,
	})
	engine.Tracker().SetSink(storage.NewUsageRecorder(repos.Usage, lgr))

	cmdRegistry, err := commands.New(commands.Dependencies{
		Providers:  registry,
		Authorizer: authorizer,
		Contexts:   opts.Contexts,
		Strategy:   func() credentials.Strategy { return cfg.Strategy() },
		Logger:     lgr,
	})
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Storage:      repos,
		Registry:     registry,
		Engine:       engine,
		Binders:      binder.NewRegistry(),
		Commands:     cmdRegistry,
		Secrets:      secretsResolver,
		FileProvider: fileProvider,
	}, nil
}
