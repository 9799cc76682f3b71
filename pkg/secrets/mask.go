package secrets

import (
	"strings"

	"github.com/goliatone/go-credentials/pkg/credentials"
	masker "github.com/goliatone/go-masker"
)

var defaultSecretFields = []string{
	"token", "access_token", "refresh_token",
	"api_key", "apikey", "apiKey",
	"client_secret", "secret", "signing_key",
	"passphrase", "password", "private_key",
}

func init() {
	// Register common secret-ish fields so masking uses sane defaults.
	for _, field := range defaultSecretFields {
		masker.Default.RegisterMaskField(field, "preserveEnds(2,2)")
	}
}

// MaskValues returns a masked copy of resolved values for the administrative
// diagnostic path. Only masked values ever reach a log line.
func MaskValues(values map[credentials.SecretRef]Value) map[string]any {
	if len(values) == 0 {
		return nil
	}
	masked := make(map[string]any, len(values))
	for ref, val := range values {
		masked[ref.Key] = map[string]any{
			"value":   maskString(string(val.Data)),
			"version": val.Version,
		}
	}
	return masked
}

func maskString(value string) string {
	if value == "" {
		return ""
	}
	if masked, err := masker.Default.String("preserveEnds(2,2)", value); err == nil {
		return masked
	}
	// Fallback masking if no rule is registered.
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
}
