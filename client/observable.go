package client

import "sync"

// Observable holds a value and notifies subscribers whenever
// Set stores a value different from the current one. Setting
// the same value twice in a row notifies once.
type Observable[T comparable] struct {
	value       T
	subscribers map[uint64]func(T)
	nextId      uint64
	mu          sync.Mutex
}

func NewObservable[T comparable](initial T) *Observable[T] {
	return &Observable[T]{
		value:       initial,
		subscribers: make(map[uint64]func(T)),
	}
}

func (o *Observable[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Reports whether subscribers were notified. Callbacks run on
// the caller's goroutine, outside the lock.
func (o *Observable[T]) Set(value T) bool {
	o.mu.Lock()
	if o.value == value {
		o.mu.Unlock()
		return false
	}
	o.value = value

	callbacks := make([]func(T), 0, len(o.subscribers))
	for _, fn := range o.subscribers {
		callbacks = append(callbacks, fn)
	}
	o.mu.Unlock()

	for _, fn := range callbacks {
		fn(value)
	}
	return true
}

func (o *Observable[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextId
	o.nextId++
	o.subscribers[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subscribers, id)
		o.mu.Unlock()
	}
}
