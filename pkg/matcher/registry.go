package matcher

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownMatcher is returned for names with no
	// registered factory.
	ErrUnknownMatcher = errors.New("unknown matcher")

	// ErrDuplicateMatcher is returned when a name is registered
	// twice.
	ErrDuplicateMatcher = errors.New("matcher already registered")
)

// Factory creates a Matcher.
type Factory func() Matcher

// Registry manages named matcher factories.
type Registry interface {
	// Register adds a factory under name. Returns an error if
	// the name is already registered.
	Register(name string, f Factory) error

	// Get builds the matcher registered under name.
	Get(name string) (Matcher, error)

	// Has reports whether name is registered.
	Has(name string) bool

	// Names returns the registered names, sorted.
	Names() []string
}

// DefaultRegistry is the standard Registry implementation. It is
// safe for concurrent use.
type DefaultRegistry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewEmptyRegistry creates a DefaultRegistry with no matchers.
func NewEmptyRegistry() *DefaultRegistry {
	return &DefaultRegistry{factories: make(map[string]Factory)}
}

// NewRegistry creates a DefaultRegistry with the four built-in
// matchers, all evaluated by v.
func NewRegistry(v *Verifier) *DefaultRegistry {
	r := NewEmptyRegistry()
	// The registry is empty, so registration cannot collide.
	_ = RegisterDefaults(r, v)
	return r
}

// RegisterDefaults registers toBeRejected, toBeRejectedWith,
// toBeResolved and toBeResolvedWith on r.
func RegisterDefaults(r Registry, v *Verifier) error {
	defaults := []struct {
		disposition Disposition
		hasPayload  bool
	}{
		{Rejected, false},
		{Rejected, true},
		{Resolved, false},
		{Resolved, true},
	}

	for _, d := range defaults {
		d := d
		err := r.Register(NameFor(d.disposition, d.hasPayload), func() Matcher {
			return NewMatcher(v, d.disposition, d.hasPayload)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Register adds a factory under name.
func (r *DefaultRegistry) Register(name string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return errors.Wrap(ErrDuplicateMatcher, name)
	}
	r.factories[name] = f
	return nil
}

// Get builds the matcher registered under name.
func (r *DefaultRegistry) Get(name string) (Matcher, error) {
	r.mu.RLock()
	f, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Wrap(ErrUnknownMatcher, name)
	}
	return f(), nil
}

// Has reports whether name is registered.
func (r *DefaultRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[name]
	return exists
}

// Names returns the registered names, sorted.
func (r *DefaultRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
