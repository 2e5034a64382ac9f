// Package pkg holds utilities shared across the project.
// This file defines the domain-level errors.
//
// Errors are sentinel values compared with errors.Is, so callers match
// on identity instead of typo-prone string comparison:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
package pkg

import "errors"

// Domain-level errors. The ws layer maps these to outbound notices
// (or a silent close); the service layer returns them unwrapped.
var (
	ErrMissingIdentity = errors.New("missing nickname or fingerprint")
	ErrNotFound        = errors.New("not found")
)
