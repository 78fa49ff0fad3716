package view

import "sync"

// Store serializes transitions on a Deck and notifies subscribers after each.
type Store struct {
	mu     sync.Mutex
	deck   Deck
	nextID int
	subs   map[int]func(Deck)
}

// NewStore creates a store holding d.
func NewStore(d Deck) *Store {
	return &Store{deck: d, subs: make(map[int]func(Deck))}
}

// Dispatch applies ev and returns the resulting state. Subscribers are called
// synchronously, outside the lock, with that same state.
func (s *Store) Dispatch(ev Event) Deck {
	s.mu.Lock()
	s.deck = Reduce(s.deck, ev)
	deck := s.deck
	subs := make([]func(Deck), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(deck)
	}
	return deck
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Deck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn func(Deck)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
