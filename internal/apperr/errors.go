// Package apperr defines the sentinel errors shared across Synapse components.
package apperr

import "errors"

var (
	// ErrNotFound marks a missing file or cache row.
	ErrNotFound = errors.New("not found")
	// ErrIO marks a filesystem failure other than a missing file.
	ErrIO = errors.New("io error")
	// ErrParse marks malformed frontmatter. Callers recover by treating the
	// note as having no frontmatter; it is never fatal.
	ErrParse = errors.New("parse error")
	// ErrStore marks a failure in the cache database. Always propagated,
	// never retried.
	ErrStore = errors.New("store error")
	// ErrAlreadyExists marks an attempt to create a note over an existing path.
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict marks an optimistic-concurrency checksum mismatch on save.
	ErrConflict = errors.New("conflict")
)
