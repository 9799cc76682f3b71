package credentials

import "errors"

var (
	ErrNotFound        = errors.New("credentials: not found")
	ErrProviderMissing = errors.New("credentials: backing provider no longer registered")
	ErrUnsupported     = errors.New("credentials: unsupported operation")
	ErrInvalidID       = errors.New("credentials: invalid identifier")
	ErrInvalidScope    = errors.New("credentials: invalid scope")
)
