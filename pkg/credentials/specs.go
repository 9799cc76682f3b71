package credentials

import (
	"net/url"
	"path"
	"strings"
)

const (
	CategoryHostname = "hostname"
	CategoryScheme   = "scheme"
	CategoryPath     = "path"
)

// HostnameRequirement asks for credentials usable against a specific host.
type HostnameRequirement struct {
	Hostname string
}

func (HostnameRequirement) Category() string { return CategoryHostname }

// SchemeRequirement asks for credentials usable over a URI scheme.
type SchemeRequirement struct {
	Scheme string
}

func (SchemeRequirement) Category() string { return CategoryScheme }

// PathRequirement asks for credentials usable under a URL path.
type PathRequirement struct {
	Path string
}

func (PathRequirement) Category() string { return CategoryPath }

// RequirementsFromURI derives hostname/scheme/path requirements from a raw
// URI. Unparseable input yields no requirements, which matches every domain.
func RequirementsFromURI(raw string) []Requirement {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil
	}
	reqs := []Requirement{HostnameRequirement{Hostname: u.Hostname()}}
	if u.Scheme != "" {
		reqs = append(reqs, SchemeRequirement{Scheme: u.Scheme})
	}
	if u.Path != "" && u.Path != "/" {
		reqs = append(reqs, PathRequirement{Path: u.Path})
	}
	return reqs
}

// HostnameSpecification restricts a domain to a set of hosts. Includes and
// Excludes are comma-separated lists of hostnames; entries may use a leading
// "*." wildcard. Empty Includes means "any host"; Excludes are checked first.
type HostnameSpecification struct {
	Includes string `json:"includes,omitempty"`
	Excludes string `json:"excludes,omitempty"`
}

func (s HostnameSpecification) Test(req Requirement) Result {
	hr, ok := req.(HostnameRequirement)
	if !ok {
		return ResultUnknown
	}
	host := strings.ToLower(strings.TrimSpace(hr.Hostname))
	if host == "" {
		return ResultRejected
	}
	if matchesHostList(s.Excludes, host) {
		return ResultRejected
	}
	if strings.TrimSpace(s.Includes) == "" || matchesHostList(s.Includes, host) {
		return ResultAccepted
	}
	return ResultRejected
}

func matchesHostList(list, host string) bool {
	for _, pattern := range strings.Split(list, ",") {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		if pattern == host {
			return true
		}
		if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
			if strings.HasSuffix(host, "."+suffix) || host == suffix {
				return true
			}
		}
	}
	return false
}

// SchemeSpecification restricts a domain to a comma-separated set of URI
// schemes. Comparison is case-insensitive per RFC 3986.
type SchemeSpecification struct {
	Schemes string `json:"schemes,omitempty"`
}

func (s SchemeSpecification) Test(req Requirement) Result {
	sr, ok := req.(SchemeRequirement)
	if !ok {
		return ResultUnknown
	}
	want := strings.ToLower(strings.TrimSpace(sr.Scheme))
	for _, scheme := range strings.Split(s.Schemes, ",") {
		if strings.ToLower(strings.TrimSpace(scheme)) == want && want != "" {
			return ResultAccepted
		}
	}
	return ResultRejected
}

// PathSpecification restricts a domain to URL paths under a prefix.
type PathSpecification struct {
	Prefix string `json:"prefix,omitempty"`
}

func (s PathSpecification) Test(req Requirement) Result {
	pr, ok := req.(PathRequirement)
	if !ok {
		return ResultUnknown
	}
	prefix := path.Clean("/" + strings.TrimSpace(s.Prefix))
	got := path.Clean("/" + pr.Path)
	if prefix == "/" || got == prefix || strings.HasPrefix(got, prefix+"/") {
		return ResultAccepted
	}
	return ResultRejected
}
