package domain

import "errors"

// Sentinel errors shared across repository and use-case layers. HTTP
// handlers translate these into the taxonomy of the external API.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrForbidden   = errors.New("forbidden")
	ErrUnsupported = errors.New("unsupported operation")
)
