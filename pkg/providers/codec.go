package providers

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-credentials/pkg/credentials"
)

// stateDoc is the serialized layout shared by persistent stores: the file
// provider writes one document per context file, the database provider one
// document per store row.
type stateDoc struct {
	Domains []domainDoc `json:"domains"`
}

type domainDoc struct {
	Name        string                   `json:"name,omitempty"`
	Description string                   `json:"description,omitempty"`
	Specs       []specDoc                `json:"specs,omitempty"`
	Credentials []credentials.Credential `json:"credentials"`
}

type specDoc struct {
	Type     string `json:"type"`
	Includes string `json:"includes,omitempty"`
	Excludes string `json:"excludes,omitempty"`
	Schemes  string `json:"schemes,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
}

const (
	specHostname = "hostname"
	specScheme   = "scheme"
	specPath     = "path"
)

func (s specDoc) specification() (credentials.Specification, error) {
	switch s.Type {
	case specHostname:
		return credentials.HostnameSpecification{Includes: s.Includes, Excludes: s.Excludes}, nil
	case specScheme:
		return credentials.SchemeSpecification{Schemes: s.Schemes}, nil
	case specPath:
		return credentials.PathSpecification{Prefix: s.Prefix}, nil
	default:
		return nil, fmt.Errorf("providers: unknown specification type %q", s.Type)
	}
}

func specDocOf(spec credentials.Specification) (specDoc, bool) {
	switch v := spec.(type) {
	case credentials.HostnameSpecification:
		return specDoc{Type: specHostname, Includes: v.Includes, Excludes: v.Excludes}, true
	case credentials.SchemeSpecification:
		return specDoc{Type: specScheme, Schemes: v.Schemes}, true
	case credentials.PathSpecification:
		return specDoc{Type: specPath, Prefix: v.Prefix}, true
	default:
		return specDoc{}, false
	}
}

// UnmarshalState decodes a serialized store state, validating credential IDs.
func UnmarshalState(data []byte) (*credentials.DomainMap, error) {
	var doc stateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	m := credentials.NewDomainMap()
	for _, d := range doc.Domains {
		domain := credentials.Domain{Name: d.Name, Description: d.Description}
		for _, s := range d.Specs {
			spec, err := s.specification()
			if err != nil {
				return nil, err
			}
			domain.Specs = append(domain.Specs, spec)
		}
		for _, c := range d.Credentials {
			if err := credentials.ValidateID(c.ID); err != nil {
				return nil, fmt.Errorf("%w: %q", err, c.ID)
			}
		}
		m.Set(domain, d.Credentials)
	}
	return m, nil
}

func stateDocOf(m *credentials.DomainMap) stateDoc {
	doc := stateDoc{}
	for _, d := range m.Domains() {
		dd := domainDoc{
			Name:        d.Name,
			Description: d.Description,
			Credentials: m.Credentials(d.Name),
		}
		for _, spec := range d.Specs {
			if sd, ok := specDocOf(spec); ok {
				dd.Specs = append(dd.Specs, sd)
			}
		}
		doc.Domains = append(doc.Domains, dd)
	}
	return doc
}

// MarshalState encodes a store state as compact JSON.
func MarshalState(m *credentials.DomainMap) ([]byte, error) {
	return json.Marshal(stateDocOf(m))
}

// MarshalStateIndent encodes a store state with indentation, for files meant
// to be edited by hand.
func MarshalStateIndent(m *credentials.DomainMap) ([]byte, error) {
	return json.MarshalIndent(stateDocOf(m), "", "  ")
}
