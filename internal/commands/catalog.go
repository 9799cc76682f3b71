package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-credentials/pkg/auth"
	"github.com/goliatone/go-credentials/pkg/contexts"
	"github.com/goliatone/go-credentials/pkg/credentials"
	"github.com/goliatone/go-credentials/pkg/interfaces/logger"
	"github.com/goliatone/go-credentials/pkg/providers"
)

// Catalog exposes go-command compatible handlers for host transports. These
// are the administrative paths: permission failures here surface as
// auth.ErrPermission rather than empty results.
type Catalog struct {
	UpsertCredential   command.Commander[UpsertCredential]
	RemoveCredential   command.Commander[RemoveCredential]
	SaveDomain         command.Commander[SaveDomain]
	ApplyConfiguration command.Commander[ApplyConfiguration]
}

// ContextLookup resolves a (kind, id) reference from a command payload into a
// context node. Hosts plug in their tree; the default builds a detached node.
type ContextLookup func(kind, id string) (contexts.Context, error)

// StrategyFunc supplies the apply strategy when a payload does not pin one.
type StrategyFunc func() credentials.Strategy

// Dependencies wires the provider registry and authorizer into the catalog.
type Dependencies struct {
	Registry   *providers.Registry
	Authorizer auth.Authorizer
	Contexts   ContextLookup
	Strategy   StrategyFunc
	Logger     logger.Logger
}

// NewCatalog builds the command catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Registry == nil {
		return nil, errors.New("commands: provider registry is required")
	}
	if deps.Authorizer == nil {
		deps.Authorizer = auth.AllowAll{}
	}
	if deps.Contexts == nil {
		deps.Contexts = detachedContext
	}
	if deps.Strategy == nil {
		deps.Strategy = func() credentials.Strategy { return credentials.StrategyReplace }
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}

	base := commandBase{
		registry:   deps.Registry,
		authorizer: deps.Authorizer,
		contexts:   deps.Contexts,
		logger:     deps.Logger,
	}
	return &Catalog{
		UpsertCredential:   credentialUpsertCommand{commandBase: base},
		RemoveCredential:   credentialRemoveCommand{commandBase: base},
		SaveDomain:         domainSaveCommand{commandBase: base},
		ApplyConfiguration: applyConfigurationCommand{commandBase: base, strategy: deps.Strategy},
	}, nil
}

// ContextRef locates the store context a command targets.
type ContextRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type commandBase struct {
	registry   *providers.Registry
	authorizer auth.Authorizer
	contexts   ContextLookup
	logger     logger.Logger
}

// open authorizes the principal for manage access on the referenced context
// and materializes the named provider's writable store.
func (b commandBase) open(ctx context.Context, principal auth.Principal, ref ContextRef, provider string) (providers.MutableStore, contexts.Context, error) {
	owner, err := b.contexts(ref.Kind, ref.ID)
	if err != nil {
		return nil, nil, err
	}
	if !b.authorizer.Can(principal, auth.PermissionManage, owner) {
		return nil, nil, auth.ErrPermission
	}
	if strings.TrimSpace(provider) == "" {
		return nil, nil, errors.New("commands: provider name is required")
	}
	store, err := b.registry.OpenMutable(ctx, provider, owner)
	if err != nil {
		return nil, nil, err
	}
	return store, owner, nil
}

// UpsertCredential creates or updates one credential inside a domain.
type UpsertCredential struct {
	Context     ContextRef             `json:"context"`
	Principal   auth.Principal         `json:"principal"`
	Provider    string                 `json:"provider"`
	Domain      string                 `json:"domain"`
	Credential  credentials.Credential `json:"credential"`
	AllowUpdate bool                   `json:"allow_update"`
}

type credentialUpsertCommand struct {
	commandBase
}

func (c credentialUpsertCommand) Execute(ctx context.Context, msg UpsertCredential) error {
	if err := credentials.ValidateID(msg.Credential.ID); err != nil {
		return fmt.Errorf("%w: %q", err, msg.Credential.ID)
	}
	store, owner, err := c.open(ctx, msg.Principal, msg.Context, msg.Provider)
	if err != nil {
		return err
	}
	err = store.AddCredential(msg.Domain, msg.Credential)
	if errors.Is(err, credentials.ErrUnsupported) && msg.AllowUpdate {
		err = store.UpdateCredential(msg.Domain, msg.Credential)
	}
	if err != nil {
		return err
	}
	c.logger.Info("credential upserted",
		logger.Field{Key: "context", Value: contextLabel(owner)},
		logger.Field{Key: "domain", Value: msg.Domain},
		logger.Field{Key: "credential", Value: msg.Credential.ID})
	return nil
}

// RemoveCredential deletes one credential from a domain.
type RemoveCredential struct {
	Context   ContextRef     `json:"context"`
	Principal auth.Principal `json:"principal"`
	Provider  string         `json:"provider"`
	Domain    string         `json:"domain"`
	ID        string         `json:"id"`
}

type credentialRemoveCommand struct {
	commandBase
}

func (c credentialRemoveCommand) Execute(ctx context.Context, msg RemoveCredential) error {
	store, owner, err := c.open(ctx, msg.Principal, msg.Context, msg.Provider)
	if err != nil {
		return err
	}
	if err := store.RemoveCredential(msg.Domain, msg.ID); err != nil {
		return err
	}
	c.logger.Info("credential removed",
		logger.Field{Key: "context", Value: contextLabel(owner)},
		logger.Field{Key: "domain", Value: msg.Domain},
		logger.Field{Key: "credential", Value: msg.ID})
	return nil
}

// SpecInput is the serialized form of a domain specification.
type SpecInput struct {
	Type     string `json:"type"`
	Includes string `json:"includes,omitempty"`
	Excludes string `json:"excludes,omitempty"`
	Schemes  string `json:"schemes,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
}

func (s SpecInput) specification() (credentials.Specification, error) {
	switch s.Type {
	case "hostname":
		return credentials.HostnameSpecification{Includes: s.Includes, Excludes: s.Excludes}, nil
	case "scheme":
		return credentials.SchemeSpecification{Schemes: s.Schemes}, nil
	case "path":
		return credentials.PathSpecification{Prefix: s.Prefix}, nil
	default:
		return nil, fmt.Errorf("commands: unknown specification type %q", s.Type)
	}
}

// SaveDomain creates or redefines a domain without touching its credentials.
type SaveDomain struct {
	Context     ContextRef     `json:"context"`
	Principal   auth.Principal `json:"principal"`
	Provider    string         `json:"provider"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Specs       []SpecInput    `json:"specs"`
}

type domainSaveCommand struct {
	commandBase
}

func (c domainSaveCommand) Execute(ctx context.Context, msg SaveDomain) error {
	domain := credentials.Domain{Name: msg.Name, Description: msg.Description}
	for _, s := range msg.Specs {
		spec, err := s.specification()
		if err != nil {
			return err
		}
		domain.Specs = append(domain.Specs, spec)
	}
	store, owner, err := c.open(ctx, msg.Principal, msg.Context, msg.Provider)
	if err != nil {
		return err
	}
	if err := store.SetDomain(domain); err != nil {
		return err
	}
	c.logger.Info("domain saved",
		logger.Field{Key: "context", Value: contextLabel(owner)},
		logger.Field{Key: "domain", Value: msg.Name})
	return nil
}

// ApplyConfiguration reconciles a store against a declarative state document
// using the configured strategy unless the payload pins one.
type ApplyConfiguration struct {
	Context   ContextRef      `json:"context"`
	Principal auth.Principal  `json:"principal"`
	Provider  string          `json:"provider"`
	Strategy  string          `json:"strategy"`
	State     json.RawMessage `json:"state"`
}

type applyConfigurationCommand struct {
	commandBase
	strategy StrategyFunc
}

func (c applyConfigurationCommand) Execute(ctx context.Context, msg ApplyConfiguration) error {
	incoming, err := providers.UnmarshalState(msg.State)
	if err != nil {
		return fmt.Errorf("commands: invalid state document: %w", err)
	}
	strategy := c.strategy()
	if msg.Strategy != "" {
		strategy = credentials.Strategy(msg.Strategy)
	}
	store, owner, err := c.open(ctx, msg.Principal, msg.Context, msg.Provider)
	if err != nil {
		return err
	}
	if err := store.Apply(strategy, incoming); err != nil {
		return err
	}
	c.logger.Info("configuration applied",
		logger.Field{Key: "context", Value: contextLabel(owner)},
		logger.Field{Key: "strategy", Value: string(strategy)},
		logger.Field{Key: "domains", Value: incoming.Len()})
	return nil
}

func detachedContext(kind, id string) (contexts.Context, error) {
	switch contexts.Kind(kind) {
	case contexts.KindRoot, "":
		return &contexts.Root{Name: id}, nil
	case contexts.KindFolder:
		return &contexts.Folder{Name: id}, nil
	case contexts.KindItem:
		return &contexts.Item{Name: id}, nil
	case contexts.KindUser:
		return &contexts.User{Username: id}, nil
	case contexts.KindAgent:
		return &contexts.Agent{Name: id}, nil
	default:
		return nil, fmt.Errorf("commands: unknown context kind %q", kind)
	}
}

func contextLabel(c contexts.Context) string {
	if c == nil {
		return ""
	}
	return string(c.Kind()) + ":" + c.ID()
}
