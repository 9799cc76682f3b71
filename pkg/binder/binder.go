package binder

import (
	"sync"

	"github.com/goliatone/go-credentials/pkg/credentials"
)

// Binding associates an execution parameter with a credential and the
// principal that supplied it.
type Binding struct {
	Parameter    string
	UserID       string
	CredentialID string
	IsDefault    bool
}

// Binder holds the credential bindings of one execution. Bind/Unbind/Lookup
// are safe under concurrent invocation from independently scheduled steps of
// the same execution.
type Binder struct {
	mu       sync.RWMutex
	bindings map[string]Binding
}

func newBinder() *Binder {
	return &Binder{bindings: make(map[string]Binding)}
}

// Bind inserts or overwrites the binding for the parameter. Last write wins;
// rebinding replaces, never accumulates.
func (b *Binder) Bind(userID, parameter, credentialID string, isDefault bool) error {
	if err := credentials.ValidateID(credentialID); err != nil {
		return err
	}
	b.mu.Lock()
	b.bindings[parameter] = Binding{
		Parameter:    parameter,
		UserID:       userID,
		CredentialID: credentialID,
		IsDefault:    isDefault,
	}
	b.mu.Unlock()
	return nil
}

// Unbind removes the parameter's binding if present.
func (b *Binder) Unbind(parameter string) {
	b.mu.Lock()
	delete(b.bindings, parameter)
	b.mu.Unlock()
}

// Lookup returns the binding for the parameter.
func (b *Binder) Lookup(parameter string) (Binding, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	bd, ok := b.bindings[parameter]
	return bd, ok
}

// Bindings returns a copy of every binding, keyed by parameter.
func (b *Binder) Bindings() map[string]Binding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]Binding, len(b.bindings))
	for k, v := range b.bindings {
		out[k] = v
	}
	return out
}

// Parameter is one invocation-time parameter value. Credential selects which
// values seed bindings.
type Parameter struct {
	Name       string
	Value      string
	Credential bool
}

// Seed loads bindings from credential-tagged parameters, attributed to the
// triggering user when known. Invalid credential values are skipped.
func (b *Binder) Seed(userID string, params []Parameter) {
	for _, p := range params {
		if !p.Credential {
			continue
		}
		_ = b.Bind(userID, p.Name, p.Value, false)
	}
}

// Registry hands out per-execution binders, created lazily on first access
// and discarded with the execution record. Isolation is per execution; there
// is no cross-execution lock.
type Registry struct {
	mu      sync.Mutex
	binders map[string]*Binder
}

func NewRegistry() *Registry {
	return &Registry{binders: make(map[string]*Binder)}
}

// For returns the binder of the execution, creating it on first access.
func (r *Registry) For(executionID string) *Binder {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.binders[executionID]
	if !ok {
		b = newBinder()
		r.binders[executionID] = b
	}
	return b
}

// Drop discards the execution's bindings.
func (r *Registry) Drop(executionID string) {
	r.mu.Lock()
	delete(r.binders, executionID)
	r.mu.Unlock()
}
