package credentials

// Requirement is a runtime-supplied constraint a caller needs the credential
// domain to satisfy, e.g. "reachable host" or "URI scheme". Requirements are
// grouped by category; specifications only understand requirements of their
// own category.
type Requirement interface {
	Category() string
}

// Result is the outcome of testing one specification against one requirement.
type Result int

const (
	// ResultUnknown means the specification does not understand the
	// requirement's category and abstains.
	ResultUnknown Result = iota
	ResultAccepted
	ResultRejected
)

// Specification is one matching rule attached to a domain. Implementations
// must be deterministic: the same requirement always yields the same result.
type Specification interface {
	Test(req Requirement) Result
}

// Domain is a named bucket of credentials qualified by specifications. The
// empty name denotes the global domain, which matches any requirement set.
type Domain struct {
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Specs       []Specification `json:"-"`
}

// Global returns the implicit global domain.
func Global() Domain { return Domain{} }

// IsGlobal reports whether this is the unnamed catch-all domain.
func (d Domain) IsGlobal() bool { return d.Name == "" }

// Matches reports whether every supplied requirement is satisfied.
//
// Semantics: conjunction over requirements, disjunction over specifications
// per requirement. A requirement no specification recognizes is skipped, so
// domains stay forward-compatible with requirement categories introduced
// after they were configured. An empty requirement set matches every domain.
// A named domain with no specifications at all matches only the empty
// requirement set; the skip rule applies per requirement category, not to
// domains that declare nothing.
func (d Domain) Matches(reqs []Requirement) bool {
	if d.IsGlobal() || len(reqs) == 0 {
		return true
	}
	if len(d.Specs) == 0 {
		return false
	}
	for _, req := range reqs {
		recognized := false
		accepted := false
		for _, spec := range d.Specs {
			if spec == nil {
				continue
			}
			switch spec.Test(req) {
			case ResultAccepted:
				recognized = true
				accepted = true
			case ResultRejected:
				recognized = true
			}
			if accepted {
				break
			}
		}
		if recognized && !accepted {
			return false
		}
	}
	return true
}

// DomainMap is an insertion-ordered domain name → credential list map. The
// deterministic iteration order is what makes merge collision resolution
// (last write in incoming order wins) reproducible.
type DomainMap struct {
	entries []domainEntry
}

type domainEntry struct {
	domain Domain
	creds  []Credential
}

// NewDomainMap builds a map seeded with the given domains in order.
func NewDomainMap() *DomainMap { return &DomainMap{} }

// Len returns the number of domains.
func (m *DomainMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Set inserts or replaces the entry for the domain's name. Replacement keeps
// the original position and adopts the incoming domain descriptor, so
// updating a domain's description or specs while keeping its name is an
// update in place.
func (m *DomainMap) Set(d Domain, creds []Credential) {
	for i := range m.entries {
		if m.entries[i].domain.Name == d.Name {
			m.entries[i].domain = d
			m.entries[i].creds = creds
			return
		}
	}
	m.entries = append(m.entries, domainEntry{domain: d, creds: creds})
}

// Get returns the domain and its credentials by name.
func (m *DomainMap) Get(name string) (Domain, []Credential, bool) {
	if m == nil {
		return Domain{}, nil, false
	}
	for _, e := range m.entries {
		if e.domain.Name == name {
			return e.domain, e.creds, true
		}
	}
	return Domain{}, nil, false
}

// Domains returns the domains in insertion order.
func (m *DomainMap) Domains() []Domain {
	if m == nil {
		return nil
	}
	out := make([]Domain, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.domain
	}
	return out
}

// Credentials returns the list stored under the named domain.
func (m *DomainMap) Credentials(name string) []Credential {
	_, creds, _ := m.Get(name)
	return creds
}

// Clone returns a deep-enough copy: entries and credential slices are copied,
// credentials themselves are values.
func (m *DomainMap) Clone() *DomainMap {
	if m == nil {
		return nil
	}
	out := &DomainMap{entries: make([]domainEntry, len(m.entries))}
	for i, e := range m.entries {
		creds := make([]Credential, len(e.creds))
		copy(creds, e.creds)
		out.entries[i] = domainEntry{domain: e.domain, creds: creds}
	}
	return out
}
