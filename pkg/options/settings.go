package options

import (
	"fmt"
	"strings"
	"time"

	opts "github.com/goliatone/go-options"
)

// Provider settings resolve through three layers, lowest priority first:
// shared defaults from the configuration root node, the named provider's
// sub-node, and per-context overrides.
func DefaultsScope() opts.Scope {
	return opts.NewScope("defaults", opts.ScopePrioritySystem-1000, opts.WithScopeLabel("Defaults"))
}

func ProviderScope(name string) opts.Scope {
	return opts.NewScope("provider:"+name, opts.ScopePrioritySystem)
}

func ContextScope(contextID string) opts.Scope {
	return opts.NewScope("context:"+contextID, opts.ScopePriorityUser)
}

// ProviderSettings exposes the effective settings for one provider after
// layering.
type ProviderSettings struct {
	Name     string
	resolver *Resolver
}

// ProviderSettingsInput carries the raw layers for one provider.
type ProviderSettingsInput struct {
	Name      string
	Defaults  map[string]any
	Provider  map[string]any
	ContextID string
	Overrides map[string]any
}

// NewProviderSettings layers defaults, the provider sub-node, and optional
// per-context overrides into a resolvable settings view.
func NewProviderSettings(in ProviderSettingsInput) (*ProviderSettings, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("options: provider name is required")
	}

	snapshots := []Snapshot{{Scope: DefaultsScope(), Data: in.Defaults}}
	if len(in.Provider) > 0 {
		snapshots = append(snapshots, Snapshot{Scope: ProviderScope(name), Data: in.Provider})
	}
	if len(in.Overrides) > 0 {
		contextID := in.ContextID
		if contextID == "" {
			contextID = "default"
		}
		snapshots = append(snapshots, Snapshot{Scope: ContextScope(contextID), Data: in.Overrides})
	}

	resolver, err := NewResolver(snapshots...)
	if err != nil {
		return nil, err
	}
	return &ProviderSettings{Name: name, resolver: resolver}, nil
}

// Resolver exposes the underlying layered resolver for trace inspection.
func (s *ProviderSettings) Resolver() *Resolver { return s.resolver }

// Enabled reports whether the provider is switched on. Missing values
// default to enabled.
func (s *ProviderSettings) Enabled() bool {
	enabled, _, err := s.resolver.ResolveBool("enabled")
	if err != nil {
		return true
	}
	return enabled
}

// Priority returns the provider's resolution priority, falling back to the
// supplied default when no layer sets one.
func (s *ProviderSettings) Priority(fallback int) int {
	priority, _, err := s.resolver.ResolveInt("priority")
	if err != nil {
		return fallback
	}
	return priority
}

// Timeout returns the per-provider store lookup timeout.
func (s *ProviderSettings) Timeout(fallback time.Duration) time.Duration {
	timeout, _, err := s.resolver.ResolveDuration("timeout")
	if err != nil {
		return fallback
	}
	return timeout
}

// String resolves an arbitrary string setting such as a directory or region.
func (s *ProviderSettings) String(path, fallback string) string {
	value, _, err := s.resolver.ResolveString(path)
	if err != nil {
		return fallback
	}
	return value
}
