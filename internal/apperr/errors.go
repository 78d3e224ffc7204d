// Package apperr holds the sentinel errors shared across the engines.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")

	// ErrOutsideRoot marks a path that lies outside the directory it must be under.
	ErrOutsideRoot          = errors.New("outside root")
	ErrNoMapping            = errors.New("no matching dir mapping")
	ErrInvalidName          = errors.New("invalid name")
	ErrInvalidTag           = errors.New("invalid tag")
	ErrMalformedFrontmatter = errors.New("malformed frontmatter")
	// ErrInconsistent marks a dual rename that left the two trees out of sync.
	ErrInconsistent = errors.New("trees left inconsistent")
)
