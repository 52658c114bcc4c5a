package sequence

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownKind is returned when a factory has no creator for a name.
var ErrUnknownKind = errors.New("unknown sequence kind")

// Kind names registered by NewDefaultFactory.
const (
	KindFibonacci = "fibonacci"
	KindLucas     = "lucas"
	KindCounter   = "counter"
)

// Factory creates named Source instances. Every Create call returns a fresh,
// unshared instance, so two callers never step the same state vector.
type Factory interface {
	// Create returns a new Source of the given kind.
	Create(name string) (Source, error)

	// List returns the registered kind names in sorted order.
	List() []string

	// Describe returns the one-line description of a kind, or "" if unknown.
	Describe(name string) string

	// Register adds or replaces a kind.
	Register(name, description string, creator func() Source) error
}

type entry struct {
	description string
	creator     func() Source
}

// DefaultFactory is the thread-safe Factory used by the application.
type DefaultFactory struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewDefaultFactory returns a factory with the built-in kinds registered:
//   - "fibonacci": 0, 1, 1, 2, 3, 5, ...
//   - "lucas": 2, 1, 3, 4, 7, 11, ...
//   - "counter": 0, 1, 2, 3, ...
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{entries: make(map[string]entry)}
	_ = f.Register(KindFibonacci, "Fibonacci numbers seeded with (0, 1)", func() Source { return NewFibonacci() })
	_ = f.Register(KindLucas, "Lucas numbers seeded with (2, 1)", func() Source { return NewLucas() })
	_ = f.Register(KindCounter, "Natural numbers counting up from 0", func() Source { return NewCounter(0) })
	return f
}

// Register implements Factory.
func (f *DefaultFactory) Register(name, description string, creator func() Source) error {
	if name == "" {
		return errors.New("sequence kind name cannot be empty")
	}
	if creator == nil {
		return fmt.Errorf("nil creator for sequence kind %q", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[name] = entry{description: description, creator: creator}
	return nil
}

// Create implements Factory.
func (f *DefaultFactory) Create(name string) (Source, error) {
	f.mu.RLock()
	e, ok := f.entries[name]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, name)
	}
	return e.creator(), nil
}

// List implements Factory.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.entries))
	for name := range f.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe implements Factory.
func (f *DefaultFactory) Describe(name string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.entries[name].description
}

// Has reports whether name is registered.
func (f *DefaultFactory) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.entries[name]
	return ok
}

var globalFactory = NewDefaultFactory()

// GlobalFactory returns the process-wide factory.
func GlobalFactory() *DefaultFactory {
	return globalFactory
}
