package providers

import (
	"strings"
	"testing"

	"github.com/goliatone/go-credentials/pkg/credentials"
)

func TestStateCodecRoundTrip(t *testing.T) {
	m := credentials.NewDomainMap()
	m.Set(credentials.Global(), []credentials.Credential{
		{ID: "global-token", Scope: credentials.ScopeGlobal, Type: "secret-text"},
	})
	m.Set(credentials.Domain{
		Name:        "prod-db",
		Description: "production databases",
		Specs: []credentials.Specification{
			credentials.HostnameSpecification{Includes: "*.db.internal", Excludes: "staging.db.internal"},
			credentials.SchemeSpecification{Schemes: "postgres"},
			credentials.PathSpecification{Prefix: "/primary"},
		},
	}, []credentials.Credential{
		{ID: "db-admin", Scope: credentials.ScopeSystem, Type: "username-password"},
	})

	data, err := MarshalState(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalState(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Len() != 2 {
		t.Fatalf("expected 2 domains, got %d", got.Len())
	}
	d, creds, ok := got.Get("prod-db")
	if !ok {
		t.Fatal("prod-db domain missing after round trip")
	}
	if d.Description != "production databases" || len(d.Specs) != 3 {
		t.Fatalf("domain descriptor lost: %+v", d)
	}
	if len(creds) != 1 || creds[0].ID != "db-admin" || creds[0].Scope != credentials.ScopeSystem {
		t.Fatalf("credentials lost: %+v", creds)
	}
	hs, ok := d.Specs[0].(credentials.HostnameSpecification)
	if !ok || hs.Excludes != "staging.db.internal" {
		t.Fatalf("hostname spec lost: %+v", d.Specs[0])
	}
}

func TestUnmarshalStateRejectsUnknownSpecType(t *testing.T) {
	payload := `{"domains":[{"name":"d","specs":[{"type":"regex"}],"credentials":[]}]}`
	if _, err := UnmarshalState([]byte(payload)); err == nil || !strings.Contains(err.Error(), "regex") {
		t.Fatalf("expected unknown spec type error, got %v", err)
	}
}

func TestUnmarshalStateValidatesCredentialIDs(t *testing.T) {
	payload := `{"domains":[{"credentials":[{"id":"${injected}"}]}]}`
	if _, err := UnmarshalState([]byte(payload)); err == nil {
		t.Fatal("expected invalid id error")
	}
}
