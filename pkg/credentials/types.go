package credentials

import "strings"

// Type tags the kind of secret material a credential carries
// ("username-password", "secret-text", "ssh-key", ...). An empty Type in a
// query matches every credential.
type Type string

// SecretRef is an opaque pointer to the encrypted payload of a credential.
// The payload itself is fetched lazily through a secrets resolver; the
// reference is the only part of a credential that mutates after retrieval.
type SecretRef struct {
	Provider string `json:"provider"`
	Key      string `json:"key"`
	Version  string `json:"version,omitempty"`
}

// Credential is a single entry in a store domain. Immutable once retrieved
// except for the secret reference.
type Credential struct {
	ID          string    `json:"id"`
	Scope       Scope     `json:"scope"`
	Type        Type      `json:"type"`
	Description string    `json:"description,omitempty"`
	Secret      SecretRef `json:"secret"`
}

// AssignableTo reports whether the credential satisfies the requested type.
func (c Credential) AssignableTo(t Type) bool {
	return t == "" || c.Type == t
}

// ValidateID rejects identifiers that collide with expression syntax.
// Identifiers wrapped in ${...} would be indistinguishable from unresolved
// parameter references in declarative configuration.
func ValidateID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidID
	}
	if strings.HasPrefix(id, "${") && strings.HasSuffix(id, "}") {
		return ErrInvalidID
	}
	return nil
}

// Matcher narrows a listing beyond type and domain matching. A nil Matcher
// accepts every credential.
type Matcher func(Credential) bool

// WithID returns a matcher accepting only the credential with the given
// identifier.
func WithID(id string) Matcher {
	return func(c Credential) bool { return c.ID == id }
}

// AllOf combines matchers conjunctively.
func AllOf(ms ...Matcher) Matcher {
	return func(c Credential) bool {
		for _, m := range ms {
			if m != nil && !m(c) {
				return false
			}
		}
		return true
	}
}
