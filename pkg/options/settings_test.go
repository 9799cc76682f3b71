package options

import (
	"testing"
	"time"
)

func TestProviderSettingsLayering(t *testing.T) {
	settings, err := NewProviderSettings(ProviderSettingsInput{
		Name: "file",
		Defaults: map[string]any{
			"enabled": true,
			"timeout": "10s",
			"dir":     "credentials.d",
		},
		Provider: map[string]any{
			"dir":      "/var/lib/credentials",
			"priority": 5,
		},
		ContextID: "prod",
		Overrides: map[string]any{
			"timeout": "2s",
		},
	})
	if err != nil {
		t.Fatalf("new settings: %v", err)
	}

	if !settings.Enabled() {
		t.Fatal("enabled should come from the defaults layer")
	}
	if got := settings.String("dir", ""); got != "/var/lib/credentials" {
		t.Fatalf("provider layer should override defaults, got %q", got)
	}
	if got := settings.Priority(0); got != 5 {
		t.Fatalf("priority lost: %d", got)
	}
	if got := settings.Timeout(time.Minute); got != 2*time.Second {
		t.Fatalf("context override should win, got %v", got)
	}
}

func TestProviderSettingsFallbacks(t *testing.T) {
	settings, err := NewProviderSettings(ProviderSettingsInput{
		Name:     "aws",
		Defaults: map[string]any{"region": "us-east-1"},
	})
	if err != nil {
		t.Fatalf("new settings: %v", err)
	}

	if !settings.Enabled() {
		t.Fatal("missing enabled should default to on")
	}
	if got := settings.Priority(-10); got != -10 {
		t.Fatalf("missing priority should fall back, got %d", got)
	}
	if got := settings.Timeout(30 * time.Second); got != 30*time.Second {
		t.Fatalf("missing timeout should fall back, got %v", got)
	}
	if got := settings.String("region", ""); got != "us-east-1" {
		t.Fatalf("region lost: %q", got)
	}
}

func TestProviderSettingsRequiresName(t *testing.T) {
	if _, err := NewProviderSettings(ProviderSettingsInput{}); err == nil {
		t.Fatal("empty provider name must be rejected")
	}
}

func TestResolverTypedHelpers(t *testing.T) {
	r, err := NewResolver(Snapshot{
		Scope: DefaultsScope(),
		Data: map[string]any{
			"count":   float64(3),
			"wait":    "250ms",
			"targets": []any{"a", "b"},
		},
	})
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	if n, _, err := r.ResolveInt("count"); err != nil || n != 3 {
		t.Fatalf("int coercion failed: %d %v", n, err)
	}
	if d, _, err := r.ResolveDuration("wait"); err != nil || d != 250*time.Millisecond {
		t.Fatalf("duration parse failed: %v %v", d, err)
	}
	if list, _, err := r.ResolveStringSlice("targets"); err != nil || len(list) != 2 {
		t.Fatalf("slice conversion failed: %v %v", list, err)
	}
	if _, _, err := r.ResolveDuration("count"); err == nil {
		t.Fatal("non-string duration must error")
	}
}
