package credentials

import "testing"

func TestGlobalDomainMatchesEverything(t *testing.T) {
	g := Global()
	if !g.IsGlobal() {
		t.Fatal("unnamed domain should be global")
	}
	reqs := []Requirement{
		HostnameRequirement{Hostname: "db.internal"},
		SchemeRequirement{Scheme: "postgres"},
	}
	if !g.Matches(reqs) {
		t.Fatal("global domain must match any requirement set")
	}
}

func TestDomainMatchesEmptyRequirements(t *testing.T) {
	d := Domain{
		Name:  "prod",
		Specs: []Specification{HostnameSpecification{Includes: "db.internal"}},
	}
	if !d.Matches(nil) {
		t.Fatal("empty requirement set must match every domain")
	}
}

func TestDomainMatchesConjunctionOverRequirements(t *testing.T) {
	d := Domain{
		Name: "prod-db",
		Specs: []Specification{
			HostnameSpecification{Includes: "db.internal"},
			SchemeSpecification{Schemes: "postgres,mysql"},
		},
	}
	ok := []Requirement{
		HostnameRequirement{Hostname: "db.internal"},
		SchemeRequirement{Scheme: "postgres"},
	}
	if !d.Matches(ok) {
		t.Fatal("expected both requirements satisfied")
	}
	bad := []Requirement{
		HostnameRequirement{Hostname: "db.internal"},
		SchemeRequirement{Scheme: "https"},
	}
	if d.Matches(bad) {
		t.Fatal("one rejected requirement must fail the whole match")
	}
}

func TestDomainMatchesDisjunctionOverSpecs(t *testing.T) {
	d := Domain{
		Name: "multi",
		Specs: []Specification{
			HostnameSpecification{Includes: "a.example.com"},
			HostnameSpecification{Includes: "b.example.com"},
		},
	}
	if !d.Matches([]Requirement{HostnameRequirement{Hostname: "b.example.com"}}) {
		t.Fatal("any accepting spec should satisfy the requirement")
	}
	if d.Matches([]Requirement{HostnameRequirement{Hostname: "c.example.com"}}) {
		t.Fatal("no accepting spec should fail the requirement")
	}
}

func TestNamedDomainWithoutSpecsMatchesOnlyEmptyRequirements(t *testing.T) {
	d := Domain{Name: "prod-db"}
	if !d.Matches(nil) {
		t.Fatal("empty requirement set must match a spec-less named domain")
	}
	if d.Matches([]Requirement{HostnameRequirement{Hostname: "db.internal"}}) {
		t.Fatal("named domain with no specifications must not match a non-empty requirement set")
	}
}

type customRequirement struct{}

func (customRequirement) Category() string { return "protocol-version" }

func TestDomainSkipsUnrecognizedRequirementCategories(t *testing.T) {
	d := Domain{
		Name:  "fwd-compat",
		Specs: []Specification{HostnameSpecification{Includes: "db.internal"}},
	}
	reqs := []Requirement{
		HostnameRequirement{Hostname: "db.internal"},
		customRequirement{},
	}
	if !d.Matches(reqs) {
		t.Fatal("a requirement no spec recognizes must be skipped, not rejected")
	}
}

func TestDomainMapInsertionOrder(t *testing.T) {
	m := NewDomainMap()
	m.Set(Domain{Name: "b"}, nil)
	m.Set(Domain{Name: "a"}, nil)
	m.Set(Domain{Name: "c"}, nil)

	names := []string{}
	for _, d := range m.Domains() {
		names = append(names, d.Name)
	}
	want := []string{"b", "a", "c"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("iteration order %v, want %v", names, want)
		}
	}
}

func TestDomainMapSetReplacesInPlace(t *testing.T) {
	m := NewDomainMap()
	m.Set(Domain{Name: "first"}, nil)
	m.Set(Domain{Name: "second", Description: "old"}, []Credential{{ID: "x"}})
	m.Set(Domain{Name: "third"}, nil)

	m.Set(Domain{Name: "second", Description: "new"}, []Credential{{ID: "y"}})

	if m.Len() != 3 {
		t.Fatalf("expected 3 domains, got %d", m.Len())
	}
	if m.Domains()[1].Name != "second" || m.Domains()[1].Description != "new" {
		t.Fatalf("replacement should keep position and adopt descriptor: %+v", m.Domains()[1])
	}
	creds := m.Credentials("second")
	if len(creds) != 1 || creds[0].ID != "y" {
		t.Fatalf("unexpected credentials after replace: %+v", creds)
	}
}

func TestDomainMapCloneIsIndependent(t *testing.T) {
	m := NewDomainMap()
	m.Set(Domain{Name: "d"}, []Credential{{ID: "one"}})

	clone := m.Clone()
	clone.Set(Domain{Name: "d"}, []Credential{{ID: "two"}})
	clone.Set(Domain{Name: "extra"}, nil)

	if got := m.Credentials("d"); len(got) != 1 || got[0].ID != "one" {
		t.Fatalf("clone mutation leaked into original: %+v", got)
	}
	if m.Len() != 1 {
		t.Fatalf("original gained domains: %d", m.Len())
	}
}
