// Package storage defines the file-system abstraction used for target files.
package storage

// Provider is the interface for target file operations.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path, creating parent directories.
	Write(path string, content []byte) error
	// Exists reports whether anything is present at path.
	Exists(path string) bool
	// Create writes content to path only when nothing is there yet.
	// It reports whether the file was created.
	Create(path string, content []byte) (bool, error)
}
