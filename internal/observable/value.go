// Package observable holds mutable state that notifies subscribers on change.
//
// Listeners run synchronously on the goroutine that performed the mutation,
// after the internal lock is released, so a listener may read or mutate the
// same value without deadlocking.
package observable

import (
	"sync"
)

// Value is a single observable value.
type Value[T any] struct {
	mu        sync.RWMutex
	value     T
	equal     func(a, b T) bool
	listeners listenerList[ValueChange[T]]
}

// ValueChange describes a transition of a Value.
type ValueChange[T any] struct {
	Old T
	New T
}

// NewValue creates a Value using equal to suppress no-op writes.
func NewValue[T any](initial T, equal func(a, b T) bool) *Value[T] {
	return &Value[T]{value: initial, equal: equal}
}

// NewComparable creates a Value for comparable types.
func NewComparable[T comparable](initial T) *Value[T] {
	return NewValue(initial, func(a, b T) bool { return a == b })
}

func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.value
}

// Set stores next and notifies listeners. It reports whether the value changed.
func (v *Value[T]) Set(next T) bool {
	v.mu.Lock()
	prev := v.value
	if v.equal != nil && v.equal(prev, next) {
		v.mu.Unlock()
		return false
	}
	v.value = next
	v.mu.Unlock()

	v.listeners.emit(ValueChange[T]{Old: prev, New: next})

	return true
}

// Subscribe registers fn and returns a func that removes it.
func (v *Value[T]) Subscribe(fn func(ValueChange[T])) (unsubscribe func()) {
	return v.listeners.add(fn)
}

// Listeners reports how many subscriptions are currently registered.
func (v *Value[T]) Listeners() int {
	return v.listeners.len()
}

type listenerList[E any] struct {
	mu     sync.Mutex
	nextID uint64
	items  []listener[E]
}

type listener[E any] struct {
	id uint64
	fn func(E)
}

func (l *listenerList[E]) add(fn func(E)) func() {
	if fn == nil {
		return func() {}
	}
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.items = append(l.items, listener[E]{id: id, fn: fn})
	l.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			l.remove(id)
		})
	}
}

func (l *listenerList[E]) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, item := range l.items {
		if item.id == id {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			return
		}
	}
}

func (l *listenerList[E]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.items)
}

func (l *listenerList[E]) emit(event E) {
	l.mu.Lock()
	snapshot := make([]listener[E], len(l.items))
	copy(snapshot, l.items)
	l.mu.Unlock()

	for _, item := range snapshot {
		item.fn(event)
	}
}
