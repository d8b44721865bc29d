package procedure

import (
	"fmt"
	"sync"
)

// LoadFunc parses a procedure file. The parser package provides the
// canonical implementation; tests may stub it.
type LoadFunc func(filename string) (*Procedure, error)

// Store caches parsed sub-procedures by filename so a procedure included
// multiple times shares one instance (and therefore one workspace).
type Store struct {
	mu    sync.Mutex
	load  LoadFunc
	order []string
	cache map[string]*Procedure
}

// NewStore creates a store backed by the given loader (nil disables
// file-based includes).
func NewStore(load LoadFunc) *Store {
	return &Store{load: load, cache: make(map[string]*Procedure)}
}

// Load returns the cached procedure for a filename, parsing and setting up
// its workspace on first use.
func (s *Store) Load(filename string) (*Procedure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[filename]; ok {
		return cached, nil
	}
	if s.load == nil {
		return nil, fmt.Errorf("no procedure loader configured for %q", filename)
	}
	sub, err := s.load(filename)
	if err != nil {
		return nil, err
	}
	if err := sub.GetPreamble().Apply(sub.TypeRegistry()); err != nil {
		return nil, err
	}
	if err := sub.Workspace().Setup(sub.TypeRegistry()); err != nil {
		return nil, err
	}
	s.cache[filename] = sub
	s.order = append(s.order, filename)
	return sub, nil
}

// TeardownAll tears down all cached sub-procedure workspaces in reverse
// load order. Used when the owning procedure is torn down.
func (s *Store) TeardownAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.order) - 1; i >= 0; i-- {
		s.cache[s.order[i]].Workspace().Teardown()
	}
}

// ResetAll tears each cached workspace down and sets it up again. Used
// when the owning job resets to Initial: included procedures restart from
// their initial variable values.
func (s *Store) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.order) - 1; i >= 0; i-- {
		s.cache[s.order[i]].Workspace().Teardown()
	}
	for _, filename := range s.order {
		sub := s.cache[filename]
		if err := sub.Workspace().Setup(sub.TypeRegistry()); err != nil {
			return err
		}
	}
	return nil
}
