package secrets

import (
	"errors"
	"strings"

	"github.com/goliatone/go-credentials/pkg/credentials"
)

var (
	ErrNotFound    = errors.New("secrets: not found")
	ErrInvalidRef  = errors.New("secrets: invalid reference")
	ErrUnsupported = errors.New("secrets: unsupported operation")
	ErrEmptyValue  = errors.New("secrets: empty value")
)

// ValidateRef performs basic checks on a secret reference.
func ValidateRef(ref credentials.SecretRef) error {
	if strings.TrimSpace(ref.Provider) == "" || strings.TrimSpace(ref.Key) == "" {
		return ErrInvalidRef
	}
	return nil
}
