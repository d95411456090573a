// Package storage defines the vault file-system abstraction.
package storage

import "github.com/halvard/synapse/internal/models"

// Provider is the interface for vault file operations. Paths are always
// relative to the vault root and use forward slashes.
type Provider interface {
	// List returns every entry under dir (relative to the vault root),
	// excluding any path whose components start with a dot. Directories
	// sort first, then entries sort alphabetically.
	List(dir string) ([]models.VaultEntry, error)
	// ListNotes returns only the .md files from List.
	ListNotes(dir string) ([]models.VaultEntry, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file or directory at path.
	Delete(path string) error
	// Move renames oldPath to newPath, creating parent directories.
	Move(oldPath, newPath string) error
	// Copy duplicates the file at src to dst.
	Copy(src, dst string) error
}
