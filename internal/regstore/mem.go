package regstore

import (
	"fmt"
	"sync"
)

// MemStore is an in-memory Store that enumerates in insertion order.
// It is safe for concurrent use.
type MemStore struct {
	mu     sync.Mutex
	names  []string
	values map[string]Value
}

// NewMemStore creates a MemStore populated with the given names and values,
// in order. names and values must have the same length.
func NewMemStore(names []string, values []Value) *MemStore {
	s := &MemStore{values: make(map[string]Value)}
	for i, name := range names {
		_ = s.SetValue(name, values[i])
	}
	return s
}

// ValueNames returns every value name in enumeration order.
func (s *MemStore) ValueNames() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.names...), nil
}

// GetValue returns the value stored under name.
func (s *MemStore) GetValue(name string) (Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[name]
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return v.Clone(), nil
}

// SetValue creates or replaces the value stored under name.
func (s *MemStore) SetValue(name string, v Value) error {
	if err := v.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]Value)
	}
	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}
	s.values[name] = v.Clone()
	return nil
}

// DeleteValue removes name from the store.
func (s *MemStore) DeleteValue(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(s.values, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
	return nil
}

// Close is a no-op.
func (s *MemStore) Close() error { return nil }

// MemOpener hands out one MemStore per namespace, creating it on first open.
type MemOpener struct {
	mu     sync.Mutex
	stores map[Namespace]*MemStore

	// OpenErr, when set, is returned by every Open call.
	OpenErr error
}

// NewMemOpener creates an empty MemOpener.
func NewMemOpener() *MemOpener {
	return &MemOpener{stores: make(map[Namespace]*MemStore)}
}

// Open returns the MemStore for ns.
func (o *MemOpener) Open(ns Namespace) (Handle, error) {
	if o.OpenErr != nil {
		return nil, NewOpError("open", ns.String(), ErrAccess, o.OpenErr)
	}
	return o.Store(ns), nil
}

// Store returns the MemStore for ns without going through Open.
func (o *MemOpener) Store(ns Namespace) *MemStore {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stores == nil {
		o.stores = make(map[Namespace]*MemStore)
	}
	s, ok := o.stores[ns]
	if !ok {
		s = &MemStore{values: make(map[string]Value)}
		o.stores[ns] = s
	}
	return s
}
