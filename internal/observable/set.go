package observable

import (
	"cmp"
	"slices"
	"sync"
)

// SetOp identifies the kind of set mutation.
type SetOp int

const (
	SetAdded SetOp = iota + 1
	SetRemoved
)

func (op SetOp) String() string {
	switch op {
	case SetAdded:
		return "added"
	case SetRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// SetChange carries a single element insertion or removal.
type SetChange[T cmp.Ordered] struct {
	Op    SetOp
	Value T
}

// Set is an unordered collection of unique elements that emits one event per
// element actually inserted or removed.
type Set[T cmp.Ordered] struct {
	mu        sync.RWMutex
	items     map[T]struct{}
	listeners listenerList[SetChange[T]]
}

func NewSet[T cmp.Ordered](initial ...T) *Set[T] {
	s := &Set[T]{items: make(map[T]struct{}, len(initial))}
	for _, item := range initial {
		s.items[item] = struct{}{}
	}

	return s
}

// Add inserts item and reports whether it was absent before.
func (s *Set[T]) Add(item T) bool {
	s.mu.Lock()
	if _, ok := s.items[item]; ok {
		s.mu.Unlock()
		return false
	}
	s.items[item] = struct{}{}
	s.mu.Unlock()

	s.listeners.emit(SetChange[T]{Op: SetAdded, Value: item})

	return true
}

// Remove deletes item and reports whether it was present.
func (s *Set[T]) Remove(item T) bool {
	s.mu.Lock()
	if _, ok := s.items[item]; !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.items, item)
	s.mu.Unlock()

	s.listeners.emit(SetChange[T]{Op: SetRemoved, Value: item})

	return true
}

func (s *Set[T]) Contains(item T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[item]

	return ok
}

func (s *Set[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// Items returns the elements in ascending order.
func (s *Set[T]) Items() []T {
	s.mu.RLock()
	out := make([]T, 0, len(s.items))
	for item := range s.items {
		out = append(out, item)
	}
	s.mu.RUnlock()
	slices.Sort(out)

	return out
}

// Replace makes the set equal to items, emitting removals before insertions.
func (s *Set[T]) Replace(items []T) {
	want := make(map[T]struct{}, len(items))
	for _, item := range items {
		want[item] = struct{}{}
	}
	for _, item := range s.Items() {
		if _, ok := want[item]; !ok {
			s.Remove(item)
		}
	}
	added := make([]T, 0, len(want))
	for item := range want {
		added = append(added, item)
	}
	slices.Sort(added)
	for _, item := range added {
		s.Add(item)
	}
}

func (s *Set[T]) Subscribe(fn func(SetChange[T])) (unsubscribe func()) {
	return s.listeners.add(fn)
}

// Listeners reports how many subscriptions are currently registered.
func (s *Set[T]) Listeners() int {
	return s.listeners.len()
}
