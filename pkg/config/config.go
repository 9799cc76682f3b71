package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/goliatone/go-config/cfgx"
	"github.com/goliatone/go-credentials/pkg/credentials"
)

// StrategyEnvVar overrides the configured apply strategy; "merge" keeps
// untracked domains and credentials, anything else replaces.
const StrategyEnvVar = "CREDENTIALS_APPLY_STRATEGY"

// Config captures module-level configuration knobs. Feature packages
// (resolver, providers, secrets) pull from these nested structs.
type Config struct {
	Apply     ApplyConfig     `mapstructure:"apply" json:"apply"`
	Providers ProvidersConfig `mapstructure:"providers" json:"providers"`
	Secrets   SecretsConfig   `mapstructure:"secrets" json:"secrets"`
}

// ApplyConfig selects how declarative configuration reconciles with existing
// store state.
type ApplyConfig struct {
	Strategy string `mapstructure:"strategy" json:"strategy"`
}

// ProvidersConfig toggles the bundled providers.
type ProvidersConfig struct {
	// Timeout bounds each individual provider call during resolution.
	Timeout time.Duration      `mapstructure:"timeout" json:"timeout"`
	File    FileProviderConfig `mapstructure:"file" json:"file"`
	AWS     AWSProviderConfig  `mapstructure:"aws" json:"aws"`
}

// FileProviderConfig controls the file-backed provider.
type FileProviderConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Dir     string `mapstructure:"dir" json:"dir"`
	Watch   bool   `mapstructure:"watch" json:"watch"`
}

// AWSProviderConfig controls the Secrets Manager provider.
type AWSProviderConfig struct {
	Enabled  bool          `mapstructure:"enabled" json:"enabled"`
	Region   string        `mapstructure:"region" json:"region"`
	Profile  string        `mapstructure:"profile" json:"profile"`
	Prefix   string        `mapstructure:"prefix" json:"prefix"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" json:"cache_ttl"`
}

// SecretsConfig scopes payload resolution behavior.
type SecretsConfig struct {
	// CacheTTL caches resolved payloads to spare remote round trips.
	CacheTTL time.Duration `mapstructure:"cache_ttl" json:"cache_ttl"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Apply: ApplyConfig{Strategy: string(credentials.StrategyReplace)},
		Providers: ProvidersConfig{
			Timeout: 10 * time.Second,
			File: FileProviderConfig{
				Enabled: true,
				Dir:     "credentials.d",
			},
		},
		Secrets: SecretsConfig{CacheTTL: time.Minute},
	}
}

// Strategy resolves the effective apply strategy, honoring the environment
// override.
func (c Config) Strategy() credentials.Strategy {
	if env := os.Getenv(StrategyEnvVar); env != "" {
		if credentials.Strategy(env) == credentials.StrategyMerge {
			return credentials.StrategyMerge
		}
		return credentials.StrategyReplace
	}
	if credentials.Strategy(c.Apply.Strategy) == credentials.StrategyMerge {
		return credentials.StrategyMerge
	}
	return credentials.StrategyReplace
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	switch credentials.Strategy(c.Apply.Strategy) {
	case credentials.StrategyMerge, credentials.StrategyReplace:
	default:
		return fmt.Errorf("apply.strategy must be merge or replace, got %q", c.Apply.Strategy)
	}
	if c.Providers.Timeout < 0 {
		return fmt.Errorf("providers.timeout must be >= 0")
	}
	if c.Providers.File.Enabled && c.Providers.File.Dir == "" {
		return fmt.Errorf("providers.file.dir is required when the file provider is enabled")
	}
	if c.Secrets.CacheTTL < 0 {
		return fmt.Errorf("secrets.cache_ttl must be >= 0")
	}
	return nil
}

// Load decodes arbitrary input (struct, map) using cfgx helpers. While
// cfgx.Build still returns zero values we fall back to a lightweight decoder
// to keep smoke tests meaningful.
func Load(input any, opts ...LoadOption) (Config, error) {
	settings := loadOptions{}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg, err := cfgx.Build(input, settings.buildOpts...)
	if err != nil {
		return Config{}, err
	}

	if isZero(cfg) {
		if err := decodeFallback(input, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg = cfg.withDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadOption lets callers amend cfgx build options.
type LoadOption func(*loadOptions)

type loadOptions struct {
	buildOpts []cfgx.Option[Config]
}

// WithBuildOptions forwards cfgx options (duration hooks, preprocessors, etc.).
func WithBuildOptions(opts ...cfgx.Option[Config]) LoadOption {
	return func(lo *loadOptions) {
		lo.buildOpts = append(lo.buildOpts, opts...)
	}
}

func (c Config) withDefaults() Config {
	defaults := Defaults()

	if c.Apply.Strategy == "" {
		c.Apply.Strategy = defaults.Apply.Strategy
	}
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = defaults.Providers.Timeout
	}
	if c.Providers.File.Dir == "" {
		c.Providers.File.Dir = defaults.Providers.File.Dir
	}
	if c.Providers.AWS.CacheTTL == 0 {
		c.Providers.AWS.CacheTTL = time.Minute
	}
	if c.Secrets.CacheTTL == 0 {
		c.Secrets.CacheTTL = defaults.Secrets.CacheTTL
	}
	return c
}

func isZero(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func decodeFallback(input any, cfg *Config) error {
	switch v := input.(type) {
	case nil:
		return nil
	case Config:
		*cfg = v
		return nil
	case *Config:
		if v != nil {
			*cfg = *v
		}
		return nil
	case map[string]any:
		return decodeMap(v, cfg)
	default:
		return fmt.Errorf("unsupported config input type: %T", input)
	}
}

func decodeMap(input map[string]any, cfg *Config) error {
	if input == nil {
		return nil
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, cfg)
}
