// Package storage defines the vault file-system abstraction.
package storage

// Provider is the interface for vault file operations. Paths are absolute
// (inside the vault) or relative to the vault root.
type Provider interface {
	// Root returns the canonical vault root.
	Root() string
	// List returns every .md file under dir, skipping hidden and excluded directories.
	List(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the content of path.
	Write(path string, content []byte) error
	// Move renames oldPath to newPath, refusing to overwrite an existing file.
	Move(oldPath, newPath string) error
	// Backup copies path into the backup directory and returns the copy's path.
	Backup(path string) (string, error)
}
