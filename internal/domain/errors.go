package domain

import "errors"

// Error categories. Loaders and mergers wrap these so callers can tell a
// broken configuration from broken input with errors.Is.
var (
	ErrConfiguration  = errors.New("configuration error")
	ErrMalformedInput = errors.New("malformed input")
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrMissingDomain  = errors.New("missing domain")
)
