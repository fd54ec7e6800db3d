// Package store implements a small observable state container. Every entity
// collection in the application lives in one Store instance; UI layers and
// the persistence adapter attach through Subscribe.
package store

import "sync"

// Store holds a single value of type S and notifies subscribers on every
// change. Set and Update notify synchronously: the full notification pass
// completes before the call returns, so local mutations are strictly ordered
// by call order.
type Store[S any] struct {
	mu      sync.Mutex
	state   S
	initial S
	nextID  int
	subs    map[int]func(S)
}

// New returns a Store seeded with initial. Reset restores this value later.
func New[S any](initial S) *Store[S] {
	return &Store[S]{
		state:   initial,
		initial: initial,
		subs:    make(map[int]func(S)),
	}
}

// Get returns the current state.
func (s *Store[S]) Get() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Set replaces the state and notifies all subscribers with the new value.
func (s *Store[S]) Set(next S) {
	s.mu.Lock()
	s.state = next
	subs := s.snapshotLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// Update applies fn to the previous state to produce the next one, then
// notifies. fn must be pure: it runs under the store lock.
func (s *Store[S]) Update(fn func(prev S) S) {
	s.mu.Lock()
	s.state = fn(s.state)
	next := s.state
	subs := s.snapshotLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// Subscribe registers fn to be called on every state change and returns an
// unsubscribe function. Subscribing or unsubscribing from within a
// notification is safe: the in-flight pass works on a snapshot of the
// subscriber set taken when the change was applied.
func (s *Store[S]) Subscribe(fn func(S)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Reset restores the value captured at construction and notifies.
func (s *Store[S]) Reset() {
	s.mu.Lock()
	s.state = s.initial
	next := s.state
	subs := s.snapshotLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

func (s *Store[S]) snapshotLocked() []func(S) {
	out := make([]func(S), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}
