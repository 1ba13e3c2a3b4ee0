// Package storage defines the file-system abstraction behind the artifact store.
package storage

import "time"

// FileInfo is the subset of file metadata the artifact store needs.
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Provider is the interface for rooted file operations. All paths are
// relative to the provider root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
	// Stat returns metadata for the file at path.
	Stat(path string) (FileInfo, error)
}
