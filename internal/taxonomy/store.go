package taxonomy

import (
	"sync/atomic"

	"internmatch/internal/errors"
)

// Store hands out the current taxonomy snapshot. A request takes one
// snapshot and keeps using it even if a reload swaps the pointer mid-flight.
type Store struct {
	current  atomic.Pointer[Taxonomy]
	path     string
	logger   *errors.Logger
	onReload func(name string, ok bool)
}

// NewStore creates a store seeded with t. If path is non-empty, Reload reads it.
func NewStore(t *Taxonomy, path string, logger *errors.Logger) *Store {
	if t == nil {
		t = Default()
	}
	s := &Store{path: path, logger: logger}
	s.current.Store(t)
	return s
}

// OpenStore loads path (or the built-in taxonomy when path is empty).
func OpenStore(path string, logger *errors.Logger) (*Store, error) {
	if path == "" {
		return NewStore(Default(), "", logger), nil
	}
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewStore(t, path, logger), nil
}

// Current returns the active snapshot.
func (s *Store) Current() *Taxonomy {
	return s.current.Load()
}

// Path returns the backing file, if any.
func (s *Store) Path() string {
	return s.path
}

// OnReload registers a hook called after every reload attempt.
func (s *Store) OnReload(fn func(name string, ok bool)) {
	s.onReload = fn
}

// Reload re-reads the backing file. On failure the previous snapshot stays.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	t, err := Load(s.path)
	if err != nil {
		if s.logger != nil {
			s.logger.LogError(err, "Taxonomy reload failed, keeping previous snapshot", "file", s.path)
		}
		if s.onReload != nil {
			s.onReload(s.Current().Name, false)
		}
		return err
	}
	s.current.Store(t)
	if s.logger != nil {
		s.logger.Info("Taxonomy reloaded", "file", s.path, "name", t.Name, "skills", len(t.Skills), "regions", len(t.Regions))
	}
	if s.onReload != nil {
		s.onReload(t.Name, true)
	}
	return nil
}
