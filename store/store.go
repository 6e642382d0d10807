package store

import (
	"sync"

	"github.com/jsphweid/rhythmdrill/drill"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("exercise not found")

// DefaultCapacity bounds how many drills are kept before the oldest is dropped.
const DefaultCapacity = 256

// Store keeps drills in memory, keyed by exercise id.
type Store struct {
	mu       sync.RWMutex
	drills   map[string]*drill.Drill
	order    []string
	capacity int
}

func New(capacity int) *Store {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Store{drills: make(map[string]*drill.Drill), capacity: capacity}
}

func (s *Store) Put(d *drill.Drill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := d.Exercise.ID
	if _, ok := s.drills[id]; !ok {
		s.order = append(s.order, id)
	}
	s.drills[id] = d
	for len(s.order) > s.capacity {
		delete(s.drills, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *Store) Get(id string) (*drill.Drill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drills[id]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, id)
	}
	return d, nil
}

// Update runs fn on a copy of the stored drill and swaps the copy in.
// Drills returned by Get are never modified afterwards.
func (s *Store) Update(id string, fn func(d *drill.Drill)) (*drill.Drill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drills[id]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, id)
	}
	next := d.Clone()
	fn(next)
	s.drills[id] = next
	return next, nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drills)
}
