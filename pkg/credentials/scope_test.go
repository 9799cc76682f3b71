package credentials

import (
	"testing"

	"github.com/goliatone/go-credentials/pkg/contexts"
)

func TestScopeValid(t *testing.T) {
	for _, s := range []Scope{ScopeSystem, ScopeGlobal, ScopeUser} {
		if !s.Valid() {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range []Scope{"", "folder", "SYSTEM"} {
		if s.Valid() {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestScopeVisibleIn(t *testing.T) {
	cases := []struct {
		scope Scope
		kind  contexts.Kind
		want  bool
	}{
		{ScopeSystem, contexts.KindRoot, true},
		{ScopeSystem, contexts.KindAgent, true},
		{ScopeSystem, contexts.KindFolder, false},
		{ScopeSystem, contexts.KindItem, false},
		{ScopeSystem, contexts.KindUser, false},
		{ScopeGlobal, contexts.KindRoot, true},
		{ScopeGlobal, contexts.KindFolder, true},
		{ScopeGlobal, contexts.KindItem, true},
		{ScopeGlobal, contexts.KindUser, true},
		{ScopeGlobal, contexts.KindAgent, true},
		{ScopeUser, contexts.KindItem, true},
		{ScopeUser, contexts.KindUser, true},
	}
	for _, tc := range cases {
		if got := tc.scope.VisibleIn(tc.kind); got != tc.want {
			t.Fatalf("VisibleIn(%q, %q) = %v, want %v", tc.scope, tc.kind, got, tc.want)
		}
	}
}

func TestScopeVisibleInUnknownInputs(t *testing.T) {
	if Scope("mystery").VisibleIn(contexts.KindRoot) {
		t.Fatal("unknown scope must not be visible anywhere")
	}
	if ScopeGlobal.VisibleIn(contexts.Kind("cluster")) {
		t.Fatal("unknown context kind must not admit any scope")
	}
	if ScopeSystem.VisibleIn("") {
		t.Fatal("empty kind must not admit system scope")
	}
}
