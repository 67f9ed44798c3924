// Package observe provides typed publish/subscribe primitives used by the
// document model and the synchronization controller.
package observe

import "sync"

// old and new value carried by a change notification
type Change[T any] struct {
	Old T
	New T
}

// Event is an ordered list of subscribers for values of type T.
// The zero value is ready to use. Subscribers run synchronously on the
// goroutine that calls Emit, in subscription order.
type Event[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it again.
// The returned function is idempotent.
func (e *Event[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscriber[T]{id: id, fn: fn})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(id) })
	}
}

func (e *Event[T]) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.subs {
		if s.id == id {
			// copy so snapshots taken by an in-flight Emit stay intact
			subs := make([]subscriber[T], 0, len(e.subs)-1)
			subs = append(subs, e.subs[:i]...)
			e.subs = append(subs, e.subs[i+1:]...)
			return
		}
	}
}

// Emit delivers v to a snapshot of the current subscribers. Subscriptions
// added or removed while Emit runs take effect on the next call.
func (e *Event[T]) Emit(v T) {
	e.mu.Lock()
	subs := e.subs
	e.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of live subscribers.
func (e *Event[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}

// Clear drops every subscriber.
func (e *Event[T]) Clear() {
	e.mu.Lock()
	e.subs = nil
	e.mu.Unlock()
}
