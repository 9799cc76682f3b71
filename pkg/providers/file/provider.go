package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/goliatone/go-credentials/pkg/contexts"
	"github.com/goliatone/go-credentials/pkg/credentials"
	"github.com/goliatone/go-credentials/pkg/interfaces/logger"
	"github.com/goliatone/go-credentials/pkg/providers"
)

// ProviderName identifies the file provider in registries and store
// back-pointers.
const ProviderName = "file"

// Provider serves one JSON-file-backed store per context out of a directory.
type Provider struct {
	dir      string
	priority int
	scopes   []credentials.Scope
	logger   logger.Logger
	disabled bool

	mu     sync.Mutex
	stores map[string]*Store
}

// Option tweaks provider construction.
type Option func(*Provider)

// WithPriority overrides the default priority (0).
func WithPriority(p int) Option {
	return func(fp *Provider) { fp.priority = p }
}

// WithScopes overrides the declared scopes (default system+global).
func WithScopes(scopes ...credentials.Scope) Option {
	return func(fp *Provider) { fp.scopes = scopes }
}

// Disabled registers the provider switched off.
func Disabled() Option {
	return func(fp *Provider) { fp.disabled = true }
}

// New builds a provider over the directory, creating it when absent.
func New(dir string, log logger.Logger, opts ...Option) (*Provider, error) {
	if log == nil {
		log = &logger.Nop{}
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	p := &Provider{
		dir:    dir,
		scopes: []credentials.Scope{credentials.ScopeSystem, credentials.ScopeGlobal, credentials.ScopeUser},
		logger: log,
		stores: make(map[string]*Store),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Provider) Name() string                { return ProviderName }
func (p *Provider) Priority() int               { return p.priority }
func (p *Provider) Enabled() bool               { return !p.disabled }
func (p *Provider) Scopes() []credentials.Scope { return p.scopes }

// Stores returns the context's store when its file exists or a store was
// already materialized through StoreFor; other contexts get none.
func (p *Provider) Stores(_ context.Context, owner contexts.Context) ([]providers.Store, error) {
	path := storePath(p.dir, owner)
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.stores[path]; ok {
		return []providers.Store{s}, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	s := newStore(owner, ProviderName, path, p.scopes, p.logger)
	p.stores[path] = s
	return []providers.Store{s}, nil
}

// StoreFor materializes (or returns) the store for the context, creating its
// backing file on first mutation.
func (p *Provider) StoreFor(owner contexts.Context) *Store {
	path := storePath(p.dir, owner)
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.stores[path]; ok {
		return s
	}
	s := newStore(owner, ProviderName, path, p.scopes, p.logger)
	p.stores[path] = s
	return s
}

// Open implements providers.StoreOpener.
func (p *Provider) Open(_ context.Context, owner contexts.Context) (providers.MutableStore, error) {
	return p.StoreFor(owner), nil
}

// Watch reloads stores whose files change on disk until ctx is done. External
// edits become visible atomically; the watcher goroutine owns all reloads.
func (p *Provider) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(p.dir); err != nil {
		watcher.Close()
		return err
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
					continue
				}
				if filepath.Ext(event.Name) != ".json" {
					continue
				}
				p.mu.Lock()
				s, tracked := p.stores[filepath.Clean(event.Name)]
				p.mu.Unlock()
				if tracked {
					s.Reload()
					p.logger.Debug("credential store reloaded",
						logger.Field{Key: "path", Value: event.Name})
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				p.logger.Warn("credential store watcher error",
					logger.Field{Key: "error", Value: err})
			}
		}
	}()
	return nil
}
