package credentials

import "testing"

func seededMap(entries map[string][]string) *DomainMap {
	m := NewDomainMap()
	for name, ids := range entries {
		creds := make([]Credential, 0, len(ids))
		for _, id := range ids {
			creds = append(creds, Credential{ID: id, Scope: ScopeGlobal})
		}
		m.Set(Domain{Name: name}, creds)
	}
	return m
}

func credentialIDs(m *DomainMap, domain string) []string {
	var ids []string
	for _, c := range m.Credentials(domain) {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestMergeKeepsUntrackedEntries(t *testing.T) {
	existing := NewDomainMap()
	existing.Set(Domain{Name: "kept"}, []Credential{{ID: "untouched"}})
	existing.Set(Domain{Name: "shared"}, []Credential{{ID: "a"}, {ID: "b"}})

	incoming := NewDomainMap()
	incoming.Set(Domain{Name: "shared"}, []Credential{
		{ID: "b", Description: "updated"},
		{ID: "c"},
	})

	out := Merge(existing, incoming)

	if _, _, ok := out.Get("kept"); !ok {
		t.Fatal("merge must not delete domains absent from incoming")
	}
	got := credentialIDs(out, "shared")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("shared ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("shared ids = %v, want %v", got, want)
		}
	}
	if out.Credentials("shared")[1].Description != "updated" {
		t.Fatal("same-ID credential must be replaced in place")
	}
}

func TestMergeReplacesInPositionAndAppendsNew(t *testing.T) {
	existing := seededMap(map[string][]string{"d": {"a", "b", "c"}})

	incoming := NewDomainMap()
	incoming.Set(Domain{Name: "d"}, []Credential{
		{ID: "b", Type: "ssh-key"},
		{ID: "z"},
	})

	out := Merge(existing, incoming)
	got := credentialIDs(out, "d")
	want := []string{"a", "b", "c", "z"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}
	if out.Credentials("d")[1].Type != "ssh-key" {
		t.Fatal("replacement should carry the incoming payload")
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	existing := seededMap(map[string][]string{"d": {"a"}})
	incoming := seededMap(map[string][]string{"d": {"a", "b"}, "new": {"n"}})

	once := Merge(existing, incoming)
	twice := Merge(once, incoming)

	if once.Len() != twice.Len() {
		t.Fatalf("domain count changed on re-merge: %d vs %d", once.Len(), twice.Len())
	}
	for _, d := range once.Domains() {
		a := credentialIDs(once, d.Name)
		b := credentialIDs(twice, d.Name)
		if len(a) != len(b) {
			t.Fatalf("domain %q ids diverged: %v vs %v", d.Name, a, b)
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("domain %q ids diverged: %v vs %v", d.Name, a, b)
			}
		}
	}
}

func TestMergeRenamedDomainIntroducesNew(t *testing.T) {
	existing := seededMap(map[string][]string{"old-name": {"a"}})
	incoming := seededMap(map[string][]string{"new-name": {"a"}})

	out := Merge(existing, incoming)
	if out.Len() != 2 {
		t.Fatalf("renaming should add a domain, not replace: %d domains", out.Len())
	}
	if _, _, ok := out.Get("old-name"); !ok {
		t.Fatal("old domain must survive a rename")
	}
}

func TestReplaceDiscardsExisting(t *testing.T) {
	existing := seededMap(map[string][]string{"gone": {"a"}})
	incoming := seededMap(map[string][]string{"kept": {"b"}})

	out := Replace(existing, incoming)
	if _, _, ok := out.Get("gone"); ok {
		t.Fatal("replace must drop domains absent from incoming")
	}
	if _, _, ok := out.Get("kept"); !ok {
		t.Fatal("replace must adopt incoming domains")
	}
}

func TestStrategyApplyUnknownFallsBackToReplace(t *testing.T) {
	existing := seededMap(map[string][]string{"gone": {"a"}})
	incoming := seededMap(map[string][]string{"kept": {"b"}})

	out := Strategy("bogus").Apply(existing, incoming)
	if _, _, ok := out.Get("gone"); ok {
		t.Fatal("unknown strategy must behave like replace")
	}
}

func TestReplaceNilIncomingYieldsEmpty(t *testing.T) {
	existing := seededMap(map[string][]string{"d": {"a"}})
	out := Replace(existing, nil)
	if out.Len() != 0 {
		t.Fatalf("expected empty map, got %d domains", out.Len())
	}
}
