package snapshot

import "errors"

// Common errors.
var (
	ErrMalformed          = errors.New("snapshot: malformed snapshot")
	ErrUnsupportedVersion = errors.New("snapshot: unsupported format version")
)
