package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/starford/flowstate/internal/apperr"
	"github.com/starford/flowstate/internal/models"
	"github.com/starford/flowstate/internal/storage"
)

// Store reads and writes the artifact file. Writes are atomic, so a reader
// never observes a partially written artifact.
type Store struct {
	fs   storage.Provider
	name string
	path string
}

// NewStore creates a Store for the artifact at path, creating its directory
// when missing.
func NewStore(path string) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("artifact: resolve path: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: create dir: %w", err)
	}
	provider, err := storage.NewFS(dir)
	if err != nil {
		return nil, fmt.Errorf("artifact: %w", err)
	}
	return &Store{fs: provider, name: filepath.Base(abs), path: abs}, nil
}

// Path returns the absolute artifact path.
func (s *Store) Path() string { return s.path }

// Raw returns the artifact file bytes without validating them. A missing
// file is DATA_NOT_FOUND.
func (s *Store) Raw() ([]byte, error) {
	data, err := s.fs.Read(s.name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.Wrap(err, apperr.CodeDataNotFound,
				"Correlation data not found. Run FlowState pipeline first.",
				"Run `flowstate build` to generate the correlation data")
		}
		return nil, apperr.Wrap(err, apperr.CodeInternal,
			"Error loading correlation data",
			"Check file permissions and try again")
	}
	return data, nil
}

// Load reads and validates the artifact. It returns the decoded artifact
// together with the raw bytes it was decoded from.
func (s *Store) Load() (*models.Artifact, []byte, error) {
	data, err := s.Raw()
	if err != nil {
		return nil, nil, err
	}
	a, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}
	return a, data, nil
}

// Save encodes and atomically writes the artifact, returning the bytes written.
func (s *Store) Save(a *models.Artifact) ([]byte, error) {
	data, err := Encode(a)
	if err != nil {
		return nil, err
	}
	if err := s.fs.Write(s.name, data); err != nil {
		return nil, fmt.Errorf("artifact: save: %w", err)
	}
	return data, nil
}

// Stat returns the artifact file metadata.
func (s *Store) Stat() (storage.FileInfo, error) {
	return s.fs.Stat(s.name)
}
