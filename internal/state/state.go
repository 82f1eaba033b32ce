// Package state provides an explicitly owned observable value container.
//
// A [Store] replaces ambient global stores: it is constructed by its owner and
// injected into whatever reads or mutates it.
package state

import "sync"

// Store holds a value of type T and notifies subscribers after every change.
//
// Writes are serialized; subscriber callbacks run after the lock is released,
// in subscription order, with the value that was written.
type Store[T any] struct {
	mu     sync.Mutex
	value  T
	subs   map[int]func(T)
	order  []int
	nextID int
}

// New returns a Store holding initial.
func New[T any](initial T) *Store[T] {
	return &Store[T]{value: initial, subs: make(map[int]func(T))}
}

// Get returns a snapshot of the current value.
//
// For reference types (slices, maps, pointers) the snapshot shares memory with
// the store; treat it as read-only and replace it with [Store.Set] or [Store.Update].
func (s *Store[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the value.
func (s *Store[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	subs := s.subscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Update replaces the value with fn applied to the current one, atomically
// with respect to other writers, and returns the new value.
func (s *Store[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	v := fn(s.value)
	s.value = v
	subs := s.subscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
	return v
}

// Subscribe registers fn and calls it once with the current value.
// The returned function removes the subscription.
func (s *Store[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)
	v := s.value
	s.mu.Unlock()

	fn(v)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; !ok {
			return
		}
		delete(s.subs, id)
		for i, o := range s.order {
			if o == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// subscribers must be called with mu held.
func (s *Store[T]) subscribers() []func(T) {
	fns := make([]func(T), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.subs[id])
	}
	return fns
}
