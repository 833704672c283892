package promise

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrNotInstalled is returned by Slot.New when no Factory is
// active.
var ErrNotInstalled = errors.New("no promise implementation installed")

// Slot holds the promise Factory a test suite creates promises
// with. Install and Uninstall bracket test execution: Install
// remembers the active factory and falls back to the default
// one only when none is active; Uninstall restores what Install
// remembered.
//
// Calls are not reference counted. A second Install without an
// Uninstall in between overwrites the remembered factory with the
// one active at that moment. Install and Uninstall must not race
// with expectations that are still pending.
type Slot struct {
	mu       sync.Mutex
	fallback Factory
	current  Factory
	saved    Factory
}

// NewSlot creates an empty Slot whose Install falls back to
// fallback.
func NewSlot(fallback Factory) *Slot {
	return &Slot{fallback: fallback}
}

// Install remembers the active factory and activates the
// fallback if none is active.
func (s *Slot) Install() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saved = s.current
	if s.current == nil {
		s.current = s.fallback
	}
}

// Uninstall restores the factory remembered by Install.
func (s *Slot) Uninstall() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.saved
}

// Set makes f the active factory.
func (s *Slot) Set(f Factory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = f
}

// Factory returns the active factory, or nil.
func (s *Slot) Factory() Factory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// New creates a pending promise with the active factory.
func (s *Slot) New() (Deferred, error) {
	f := s.Factory()
	if f == nil {
		return nil, ErrNotInstalled
	}
	return f.New(), nil
}
