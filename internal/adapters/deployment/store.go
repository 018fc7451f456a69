package deployment

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StorageProvider = (*Store)(nil)

// Store implements ports.StorageProvider with one JSON file per location,
// named after the location's hash.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a Store rooted at dir. The directory is created on first save.
func NewStore(dir string) *Store {
	return &Store{dir: filepath.Clean(dir)}
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(location string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%016x.json", xxhash.Sum64String(location)))
}

// Load implements ports.StorageProvider.
func (s *Store) Load(location string) (*domain.StorageState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(location))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(errors.Join(domain.ErrStorageReadFailed, err), "location", location)
	}

	var st domain.StorageState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, zerr.With(errors.Join(domain.ErrStorageReadFailed, err), "location", location)
	}
	if st.Location != location {
		return nil, nil
	}
	return &st, nil
}

// Save implements ports.StorageProvider. The record is written to a temporary
// file and renamed into place.
func (s *Store) Save(state domain.StorageState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return zerr.Wrap(errors.Join(domain.ErrStorageWriteFailed, err), "marshal storage state")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return zerr.With(errors.Join(domain.ErrStorageWriteFailed, err), "dir", s.dir)
	}
	path := s.path(state.Location)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return zerr.With(errors.Join(domain.ErrStorageWriteFailed, err), "location", state.Location)
	}
	if err := os.Rename(tmp, path); err != nil {
		return zerr.With(errors.Join(domain.ErrStorageWriteFailed, err), "location", state.Location)
	}
	return nil
}

// Delete implements ports.StorageProvider.
func (s *Store) Delete(location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(location)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(errors.Join(domain.ErrStorageWriteFailed, err), "location", location)
	}
	return nil
}
