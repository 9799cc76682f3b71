package awssm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/goliatone/go-credentials/pkg/contexts"
	"github.com/goliatone/go-credentials/pkg/credentials"
	"github.com/goliatone/go-credentials/pkg/interfaces/logger"
	"github.com/goliatone/go-credentials/pkg/providers"
	"github.com/goliatone/go-credentials/pkg/retry"
	"github.com/goliatone/go-credentials/pkg/secrets"
)

// ProviderName identifies the AWS Secrets Manager provider.
const ProviderName = "aws-secretsmanager"

// Tags on remote secrets that map them into the credential model.
const (
	TagType        = "credentials-type"
	TagDomain      = "credentials-domain"
	TagDescription = "credentials-description"
)

// Client abstracts the Secrets Manager API for testing.
type Client interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	ListSecrets(ctx context.Context, params *secretsmanager.ListSecretsInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error)
}

// Config holds Secrets Manager settings.
type Config struct {
	Region  string
	Profile string
	// Prefix filters which remote secrets surface as credentials.
	Prefix string
	// CacheTTL bounds how long listings are reused before re-fetching.
	CacheTTL time.Duration
}

// Provider surfaces remote secrets as a read-only global store at the root
// context, and doubles as a secret payload provider for lazy fetch. Remote
// calls honor the context deadline so a slow backend can be bounded by the
// registry without stalling unrelated resolutions.
type Provider struct {
	cfg      Config
	priority int
	disabled bool
	logger   logger.Logger
	backoff  retry.Backoff
	attempts int

	mu      sync.Mutex
	client  Client
	store   *listingStore
	fetched time.Time
}

type Option func(*Provider)

// WithClient injects a custom client.
func WithClient(c Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.client = c
		}
	}
}

// WithPriority overrides the default priority (-10, below local providers).
func WithPriority(prio int) Option {
	return func(p *Provider) { p.priority = prio }
}

// WithBackoff overrides the retry policy for remote calls.
func WithBackoff(b retry.Backoff, attempts int) Option {
	return func(p *Provider) {
		p.backoff = b
		if attempts > 0 {
			p.attempts = attempts
		}
	}
}

// Disabled registers the provider switched off.
func Disabled() Option {
	return func(p *Provider) { p.disabled = true }
}

// New constructs the provider.
func New(l logger.Logger, cfg Config, opts ...Option) *Provider {
	if l == nil {
		l = &logger.Nop{}
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	p := &Provider{
		cfg:      cfg,
		priority: -10,
		logger:   l,
		backoff:  retry.DefaultBackoff(),
		attempts: 3,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func (p *Provider) Name() string  { return ProviderName }
func (p *Provider) Priority() int { return p.priority }
func (p *Provider) Enabled() bool { return !p.disabled }

func (p *Provider) Scopes() []credentials.Scope {
	return []credentials.Scope{credentials.ScopeGlobal}
}

func (p *Provider) ensureClient(ctx context.Context) error {
	if p.client != nil {
		return nil
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(p.cfg.Region),
	}
	if p.cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(p.cfg.Profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return fmt.Errorf("awssm: load config: %w", err)
	}
	p.client = secretsmanager.NewFromConfig(cfg)
	return nil
}

// Stores lists tagged remote secrets into a single read-only store attached
// to the root context. Listings are cached for CacheTTL; a remote failure
// after retries yields no store for this call, logged as a diagnostic.
func (p *Provider) Stores(ctx context.Context, owner contexts.Context) ([]providers.Store, error) {
	if owner == nil || owner.Kind() != contexts.KindRoot {
		return nil, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.store != nil && time.Since(p.fetched) < p.cfg.CacheTTL {
		return []providers.Store{p.store.withContext(owner)}, nil
	}
	if err := p.ensureClient(ctx); err != nil {
		return nil, err
	}
	creds, err := p.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("awssm: list secrets: %w", err)
	}
	p.store = newListingStore(owner, creds)
	p.fetched = time.Now()
	return []providers.Store{p.store}, nil
}

func (p *Provider) list(ctx context.Context) (map[string][]credentials.Credential, error) {
	byDomain := make(map[string][]credentials.Credential)
	var next *string
	for {
		var out *secretsmanager.ListSecretsOutput
		err := p.withRetry(ctx, func() error {
			var callErr error
			out, callErr = p.client.ListSecrets(ctx, &secretsmanager.ListSecretsInput{NextToken: next})
			return callErr
		})
		if err != nil {
			return nil, err
		}
		for _, entry := range out.SecretList {
			if c, domain, ok := p.credentialOf(entry); ok {
				byDomain[domain] = append(byDomain[domain], c)
			}
		}
		if out.NextToken == nil {
			return byDomain, nil
		}
		next = out.NextToken
	}
}

func (p *Provider) credentialOf(entry types.SecretListEntry) (credentials.Credential, string, bool) {
	name := aws.ToString(entry.Name)
	if name == "" || (p.cfg.Prefix != "" && !strings.HasPrefix(name, p.cfg.Prefix)) {
		return credentials.Credential{}, "", false
	}
	tags := map[string]string{}
	for _, t := range entry.Tags {
		tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	id := strings.TrimPrefix(name, p.cfg.Prefix)
	if credentials.ValidateID(id) != nil {
		return credentials.Credential{}, "", false
	}
	return credentials.Credential{
		ID:          id,
		Scope:       credentials.ScopeGlobal,
		Type:        credentials.Type(tags[TagType]),
		Description: tags[TagDescription],
		Secret: credentials.SecretRef{
			Provider: ProviderName,
			Key:      name,
		},
	}, tags[TagDomain], true
}

func (p *Provider) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == p.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff.Next(attempt)):
		}
	}
	return err
}

// Get fetches a secret payload. Implements secrets.Provider reads so the
// resolution engine can lazily access remote material.
func (p *Provider) Get(ctx context.Context, ref credentials.SecretRef) (secrets.Value, error) {
	if err := secrets.ValidateRef(ref); err != nil {
		return secrets.Value{}, err
	}
	p.mu.Lock()
	err := p.ensureClient(ctx)
	client := p.client
	p.mu.Unlock()
	if err != nil {
		return secrets.Value{}, err
	}
	in := &secretsmanager.GetSecretValueInput{SecretId: aws.String(ref.Key)}
	if ref.Version != "" {
		in.VersionId = aws.String(ref.Version)
	}
	var out *secretsmanager.GetSecretValueOutput
	err = p.withRetry(ctx, func() error {
		var callErr error
		out, callErr = client.GetSecretValue(ctx, in)
		return callErr
	})
	if err != nil {
		return secrets.Value{}, fmt.Errorf("awssm: get secret: %w", err)
	}
	data := out.SecretBinary
	if data == nil && out.SecretString != nil {
		data = []byte(*out.SecretString)
	}
	return secrets.Value{
		Data:      data,
		Version:   aws.ToString(out.VersionId),
		Retrieved: time.Now().UTC(),
	}, nil
}

// Put is unsupported; the remote store is managed out of band.
func (p *Provider) Put(context.Context, credentials.SecretRef, []byte) (string, error) {
	return "", secrets.ErrUnsupported
}

// Delete is unsupported; the remote store is managed out of band.
func (p *Provider) Delete(context.Context, credentials.SecretRef) error {
	return secrets.ErrUnsupported
}

// Describe returns non-sensitive metadata for the reference.
func (p *Provider) Describe(ctx context.Context, ref credentials.SecretRef) (map[string]any, error) {
	val, err := p.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	return map[string]any{"version": val.Version}, nil
}

var _ providers.Provider = (*Provider)(nil)
var _ secrets.Provider = (*Provider)(nil)
